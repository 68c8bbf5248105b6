package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"megrep/pkg/checkpoint"
	"megrep/pkg/config"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
	"megrep/pkg/results"
	"megrep/pkg/scanner"
)

// app holds the components shared by every command
type app struct {
	cfg       *config.Config
	log       logger.Logger
	resolver  *paths.Resolver
	scanner   *scanner.Scanner
	store     *checkpoint.Manager
	publisher *results.Publisher
}

// commandFlags collects the global flags the user actually set, plus any
// command-local overrides, for config.MergeCommandLineFlags
func commandFlags(cmd *cobra.Command, extra map[string]interface{}) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if fs.Changed("project-root") {
		flags["project-root"] = projectRoot
	}
	if fs.Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if fs.Changed("log-file") {
		flags["log-file"] = logFile
	}
	if fs.Changed("notifications") {
		flags["notifications"] = notifications
	}
	for k, v := range extra {
		flags[k] = v
	}
	return flags
}

// loadConfig loads configuration from all sources
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, commandFlags(cmd, extra))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration and wires the shared components. With
// fileLogs set, logs go only to a JSON log file so they cannot corrupt a
// full-screen display. The returned func releases the log file.
func newApp(cmd *cobra.Command, extra map[string]interface{}, fileLogs bool) (*app, func(), error) {
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var log logger.Logger
	if fileLogs {
		f, ferr := openLogFile(cfg)
		if ferr != nil {
			return nil, nil, ferr
		}
		cleanup = func() { _ = f.Close() }
		log, err = logger.NewWithWriter(f, cfg.Logging.Level)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.SetGlobal(log)
	} else {
		if err := logger.Initialize(&cfg.Logging); err != nil {
			return nil, nil, err
		}
		log = logger.GetLogger()
	}

	p := cfg.Paths
	resolver := paths.NewResolver(p.Root(), p.Resolve(p.ContentsDir), p.Resolve(p.AvifDir), p.Resolve(p.WebpDir))
	scan := scanner.New(cfg.Formats.SupportedFormats, log)

	return &app{
		cfg:       cfg,
		log:       log.WithField("version", version),
		resolver:  resolver,
		scanner:   scan,
		store:     checkpoint.NewManager(p.Resolve(p.ProgressFile), log),
		publisher: results.NewPublisher(p.Resolve(p.ResultsFile), cfg.Formats, resolver, scan, log),
	}, cleanup, nil
}

// openLogFile opens the file TUI-mode logs go to, defaulting to megrep.log
// in the project root
func openLogFile(cfg *config.Config) (*os.File, error) {
	path := cfg.Logging.File
	if path == "" {
		path = filepath.Join(cfg.Paths.Root(), "megrep.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
