package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the converter
type Config struct {
	// Directory and artifact locations
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Input extensions and encoder parameters
	Formats FormatsConfig `yaml:"formats" json:"formats"`

	// Batch and worker settings
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PathsConfig holds the content root, output roots and artifact files.
// Relative entries are resolved against ProjectRoot.
type PathsConfig struct {
	ProjectRoot  string `yaml:"project_root" json:"project_root"`
	ContentsDir  string `yaml:"contents_dir" json:"contents_dir"`
	AvifDir      string `yaml:"avif_dir" json:"avif_dir"`
	WebpDir      string `yaml:"webp_dir" json:"webp_dir"`
	SampleDir    string `yaml:"sample_dir" json:"sample_dir"`
	ProgressFile string `yaml:"progress_file" json:"progress_file"`
	ResultsFile  string `yaml:"results_file" json:"results_file"`
}

// FormatsConfig holds supported input extensions and per-format encoder flags
type FormatsConfig struct {
	SupportedFormats []string   `yaml:"supported_formats" json:"supportedFormats"`
	Avif             AvifConfig `yaml:"avif" json:"avif"`
	Webp             WebpConfig `yaml:"webp" json:"webp"`
}

// AvifConfig is passed through to avifenc as -q and -s
type AvifConfig struct {
	Binary  string `yaml:"binary" json:"-"`
	Quality int    `yaml:"quality" json:"quality"`
	Speed   int    `yaml:"speed" json:"speed"`
}

// WebpConfig is passed through to cwebp as -metadata, -q and -m
type WebpConfig struct {
	Binary   string `yaml:"binary" json:"-"`
	Quality  int    `yaml:"quality" json:"quality"`
	Method   int    `yaml:"method" json:"method"`
	Metadata string `yaml:"metadata" json:"metadata"`
}

// PipelineConfig holds batching and worker settings
type PipelineConfig struct {
	BatchSize     int `yaml:"batch_size" json:"batch_size"`
	Workers       int `yaml:"workers" json:"workers"`
	SnapshotEvery int `yaml:"snapshot_every" json:"snapshot_every"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ProjectRoot:  ".",
			ContentsDir:  "contents",
			AvifDir:      "avif",
			WebpDir:      "webp",
			SampleDir:    "contents_sample",
			ProgressFile: "progress.json",
			ResultsFile:  "results.json",
		},
		Formats: FormatsConfig{
			SupportedFormats: []string{"jpg", "jpeg", "png"},
			Avif: AvifConfig{
				Binary:  "avifenc",
				Quality: 60,
				Speed:   6,
			},
			Webp: WebpConfig{
				Binary:   "cwebp",
				Quality:  80,
				Method:   6,
				Metadata: "none",
			},
		},
		Pipeline: PipelineConfig{
			BatchSize:     50,
			Workers:       min(4, runtime.NumCPU()),
			SnapshotEvery: 2,
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if root := os.Getenv("MEGREP_PROJECT_ROOT"); root != "" {
		c.Paths.ProjectRoot = root
	}
	if contents := os.Getenv("MEGREP_CONTENTS_DIR"); contents != "" {
		c.Paths.ContentsDir = contents
	}
	if avifDir := os.Getenv("MEGREP_AVIF_DIR"); avifDir != "" {
		c.Paths.AvifDir = avifDir
	}
	if webpDir := os.Getenv("MEGREP_WEBP_DIR"); webpDir != "" {
		c.Paths.WebpDir = webpDir
	}
	if formats := os.Getenv("MEGREP_SUPPORTED_FORMATS"); formats != "" {
		var exts []string
		for _, ext := range strings.Split(formats, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		c.Formats.SupportedFormats = exts
	}

	// Encoder parameters
	if q := os.Getenv("MEGREP_AVIF_QUALITY"); q != "" {
		var val int
		if _, err := fmt.Sscanf(q, "%d", &val); err == nil {
			c.Formats.Avif.Quality = val
		}
	}
	if q := os.Getenv("MEGREP_WEBP_QUALITY"); q != "" {
		var val int
		if _, err := fmt.Sscanf(q, "%d", &val); err == nil {
			c.Formats.Webp.Quality = val
		}
	}

	// Pipeline
	if batch := os.Getenv("MEGREP_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.Pipeline.BatchSize = val
		}
	}
	if workers := os.Getenv("MEGREP_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Pipeline.Workers = val
		}
	}

	if notifEnabled := os.Getenv("MEGREP_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}
	if logLevel := os.Getenv("MEGREP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"megrep.yaml",
		".megrep.yaml",
		".megrep.yml",
		filepath.Join(home, ".config", "megrep", "config.yaml"),
		filepath.Join(home, ".config", "megrep", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks that every required setting is present. Encoder
// parameters are passed through to the encoders and not range-checked.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.ProjectRoot == "" {
		errs = append(errs, errors.New("project root is required"))
	}
	if c.Paths.ContentsDir == "" {
		errs = append(errs, errors.New("contents directory is required"))
	}
	if c.Paths.AvifDir == "" {
		errs = append(errs, errors.New("avif output directory is required"))
	}
	if c.Paths.WebpDir == "" {
		errs = append(errs, errors.New("webp output directory is required"))
	}
	if c.Paths.ProgressFile == "" {
		errs = append(errs, errors.New("progress file is required"))
	}
	if c.Paths.ResultsFile == "" {
		errs = append(errs, errors.New("results file is required"))
	}

	if len(c.Formats.SupportedFormats) == 0 {
		errs = append(errs, errors.New("at least one supported format is required"))
	}
	for _, ext := range c.Formats.SupportedFormats {
		if strings.TrimSpace(ext) == "" {
			errs = append(errs, errors.New("supported formats cannot contain empty entries"))
			break
		}
	}
	if c.Formats.Avif.Binary == "" {
		errs = append(errs, errors.New("avif encoder binary is required"))
	}
	if c.Formats.Webp.Binary == "" {
		errs = append(errs, errors.New("webp encoder binary is required"))
	}
	if c.Formats.Webp.Metadata == "" {
		errs = append(errs, errors.New("webp metadata setting is required"))
	}

	if c.Pipeline.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.Pipeline.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Pipeline.SnapshotEvery <= 0 {
		errs = append(errs, errors.New("snapshot interval must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Resolve returns the path for entry, joined onto the project root when it
// is relative, as an absolute path.
func (p PathsConfig) Resolve(entry string) string {
	path := entry
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.ProjectRoot, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Root returns the absolute project root
func (p PathsConfig) Root() string {
	if abs, err := filepath.Abs(p.ProjectRoot); err == nil {
		return abs
	}
	return filepath.Clean(p.ProjectRoot)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if root, ok := flags["project-root"].(string); ok && root != "" {
		c.Paths.ProjectRoot = root
	}
	if batch, ok := flags["batch-size"].(int); ok && batch > 0 {
		c.Pipeline.BatchSize = batch
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Pipeline.Workers = workers
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".megrep.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
