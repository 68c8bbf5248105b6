package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"megrep/pkg/paths"
	"megrep/pkg/results"
	"megrep/pkg/ui"
)

// rebuildCmd represents the rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Regenerate results.json from the files on disk",
	Long: `Regenerate results.json without encoding anything.

Every input under the content directory whose AVIF and WebP outputs both
exist is recorded with its current sizes and compression ratios. Inputs
missing either output are left out. The checkpoint is not touched.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp(cmd, nil, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	list, err := a.publisher.RegenerateFromDisk(ctx)
	if err != nil {
		return err
	}

	t := results.Summarize(list)
	ui.PrintSuccess(fmt.Sprintf("Rebuilt %d results", len(list)))
	ui.PrintInfo("Original", results.FormatFileSize(t.OriginalBytes))
	ui.PrintInfo("AVIF", fmt.Sprintf("%s (%d%% smaller)", results.FormatFileSize(t.AVIFBytes), t.Savings(paths.AVIF)))
	ui.PrintInfo("WebP", fmt.Sprintf("%s (%d%% smaller)", results.FormatFileSize(t.WebPBytes), t.Savings(paths.WebP)))
	ui.PrintInfo("Results", a.publisher.Path())
	return nil
}
