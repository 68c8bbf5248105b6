package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"megrep/pkg/encoder"
	"megrep/pkg/logger"
	"megrep/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage megrep configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (MEGREP_*) and .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'megrep.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging flags, environment
variables, the configuration file and defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Required fields
  - That the content directory exists
  - That avifenc and cwebp (or the configured binaries) are installed`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# megrep configuration file
#
# Every option can also be set with MEGREP_* environment variables,
# for example MEGREP_BATCH_SIZE or MEGREP_AVIF_QUALITY.

paths:
  # Directory everything else is relative to
  project_root: "."
  # Inputs are discovered recursively here
  contents_dir: "contents"
  # Outputs mirror the contents layout
  avif_dir: "avif"
  webp_dir: "webp"
  # Destination of 'megrep sample'
  sample_dir: "contents_sample"
  # Checkpoint, removed after a completed run
  progress_file: "progress.json"
  # Results artifact read by the viewer
  results_file: "results.json"

formats:
  # Extensions to convert, matched case-insensitively
  supported_formats: [jpg, jpeg, png]
  avif:
    binary: "avifenc"
    # Passed as -q
    quality: 60
    # Passed as -s
    speed: 6
  webp:
    binary: "cwebp"
    # Passed as -q
    quality: 80
    # Passed as -m
    method: 6
    # Passed as -metadata: none, exif, icc, xmp or all
    metadata: "none"

pipeline:
  # Files per batch; the checkpoint is saved after every batch
  batch_size: 50
  # Concurrent encodes, capped at the CPU count
  workers: 4
  # Write intermediate results every N batches that encoded something
  snapshot_every: 2

notifications:
  # Desktop notifications (notify-send on Linux, osascript on macOS)
  enabled: false
  on_complete: true

logging:
  # debug, info, warn or error
  level: "info"
  # Optional JSON log file
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "megrep.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Put your images under contents/ (or edit paths.contents_dir)")
	fmt.Println("2. Run 'megrep config validate' to check the configuration")
	fmt.Println("3. Start converting with 'megrep convert'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (MEGREP_*) and .env")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in standard locations)")
	}
	fmt.Println("4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	var problems, warnings []string

	contents := cfg.Paths.Resolve(cfg.Paths.ContentsDir)
	if info, err := os.Stat(contents); err != nil || !info.IsDir() {
		problems = append(problems, fmt.Sprintf("content directory not found: %s", contents))
	}

	if err := encoder.New(cfg.Formats, nil, logger.NewNopLogger()).CheckBinaries(); err != nil {
		problems = append(problems, err.Error())
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if cfg.Pipeline.Workers > 1 && cfg.Pipeline.BatchSize < cfg.Pipeline.Workers {
		warnings = append(warnings, "batch_size is smaller than workers; some workers will idle")
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("%d configuration problems", len(problems))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Content directory: %s\n", contents)
	fmt.Printf("  Formats: %v\n", cfg.Formats.SupportedFormats)
	fmt.Printf("  AVIF: quality %d, speed %d\n", cfg.Formats.Avif.Quality, cfg.Formats.Avif.Speed)
	fmt.Printf("  WebP: quality %d, method %d, metadata %s\n", cfg.Formats.Webp.Quality, cfg.Formats.Webp.Method, cfg.Formats.Webp.Metadata)
	fmt.Printf("  Batch size: %d, workers: %d\n", cfg.Pipeline.BatchSize, cfg.Pipeline.Workers)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
