package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"megrep/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	projectRoot   string
	logLevel      string
	logFile       string
	notifications bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "megrep",
	Short: "Bulk, resumable AVIF and WebP conversion for large image collections",
	Long: `megrep converts every JPEG and PNG under a content directory into AVIF and
WebP, mirroring the directory layout into avif/ and webp/.

Features:
  - Batched conversion with a bounded worker pool
  - Checkpointing after every batch, safe to interrupt and resume
  - Skips inputs whose outputs already exist
  - results.json with per-file sizes and compression ratios
  - Sampling tools for trial runs on a subset
  - A local viewer for comparing originals with their conversions`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch cmd.Name() {
		case "version", "help", "show":
		default:
			if !useTUI {
				ui.PrintLogo()
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./megrep.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project-root", "r", "", "project root holding contents/, avif/ and webp/")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when a run ends")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every converted and skipped file")

	rootCmd.SetVersionTemplate(`megrep {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
