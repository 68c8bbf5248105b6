package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Pipeline.BatchSize != 50 {
		t.Errorf("Expected default batch size to be 50, got %d", config.Pipeline.BatchSize)
	}

	if config.Pipeline.Workers < 1 || config.Pipeline.Workers > 4 {
		t.Errorf("Expected default workers between 1 and 4, got %d", config.Pipeline.Workers)
	}

	if config.Paths.ContentsDir != "contents" {
		t.Errorf("Expected default contents directory to be contents, got %s", config.Paths.ContentsDir)
	}

	assert.Equal(t, "avifenc", config.Formats.Avif.Binary)
	assert.Equal(t, "cwebp", config.Formats.Webp.Binary)
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEGREP_PROJECT_ROOT", "/srv/images")
	t.Setenv("MEGREP_SUPPORTED_FORMATS", "png, JPG ,,webp")
	t.Setenv("MEGREP_AVIF_QUALITY", "42")
	t.Setenv("MEGREP_WEBP_QUALITY", "75")
	t.Setenv("MEGREP_BATCH_SIZE", "10")
	t.Setenv("MEGREP_WORKERS", "2")
	t.Setenv("MEGREP_NOTIFICATIONS_ENABLED", "TRUE")
	t.Setenv("MEGREP_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/srv/images", config.Paths.ProjectRoot)
	assert.Equal(t, []string{"png", "JPG", "webp"}, config.Formats.SupportedFormats)
	assert.Equal(t, 42, config.Formats.Avif.Quality)
	assert.Equal(t, 75, config.Formats.Webp.Quality)
	assert.Equal(t, 10, config.Pipeline.BatchSize)
	assert.Equal(t, 2, config.Pipeline.Workers)
	assert.True(t, config.Notifications.Enabled)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MEGREP_BATCH_SIZE", "-5")
	t.Setenv("MEGREP_WORKERS", "many")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, 50, config.Pipeline.BatchSize)
	assert.Equal(t, DefaultConfig().Pipeline.Workers, config.Pipeline.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "missing contents directory",
			mutate:    func(c *Config) { c.Paths.ContentsDir = "" },
			wantError: "contents directory is required",
		},
		{
			name:      "no supported formats",
			mutate:    func(c *Config) { c.Formats.SupportedFormats = nil },
			wantError: "at least one supported format is required",
		},
		{
			name:      "blank supported format",
			mutate:    func(c *Config) { c.Formats.SupportedFormats = []string{"png", " "} },
			wantError: "empty entries",
		},
		{
			name:      "missing encoder binary",
			mutate:    func(c *Config) { c.Formats.Avif.Binary = "" },
			wantError: "avif encoder binary is required",
		},
		{
			name:      "missing webp metadata",
			mutate:    func(c *Config) { c.Formats.Webp.Metadata = "" },
			wantError: "webp metadata setting is required",
		},
		{
			name:      "zero batch size",
			mutate:    func(c *Config) { c.Pipeline.BatchSize = 0 },
			wantError: "batch size must be positive",
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "loud" },
			wantError: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestValidateJoinsAllProblems(t *testing.T) {
	config := DefaultConfig()
	config.Paths.AvifDir = ""
	config.Paths.WebpDir = ""
	config.Pipeline.Workers = 0

	err := config.Validate()
	require.Error(t, err)
	assert.Equal(t, 3, len(strings.Split(err.Error(), "\n")))
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"project-root":  "/flag/root",
		"batch-size":    25,
		"workers":       1,
		"notifications": true,
		"log-level":     "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Paths.ProjectRoot != "/flag/root" {
		t.Errorf("Expected project root to be /flag/root, got %s", config.Paths.ProjectRoot)
	}
	if config.Pipeline.BatchSize != 25 {
		t.Errorf("Expected batch size to be 25, got %d", config.Pipeline.BatchSize)
	}
	if config.Pipeline.Workers != 1 {
		t.Errorf("Expected workers to be 1, got %d", config.Pipeline.Workers)
	}
	if !config.Notifications.Enabled {
		t.Error("Expected notifications to be enabled")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "megrep.yaml")

	config := DefaultConfig()
	config.Formats.Avif.Quality = 33
	config.Formats.Webp.Metadata = "all"
	config.Pipeline.BatchSize = 8

	require.NoError(t, config.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, 33, loaded.Formats.Avif.Quality)
	assert.Equal(t, "all", loaded.Formats.Webp.Metadata)
	assert.Equal(t, 8, loaded.Pipeline.BatchSize)
	assert.Equal(t, "cwebp", loaded.Formats.Webp.Binary)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [unterminated"), 0644))

	err := DefaultConfig().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "megrep.yaml")
	yamlContent := `
pipeline:
  batch_size: 20
  workers: 3
formats:
  supported_formats: [png]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))
	t.Setenv("MEGREP_WORKERS", "2")

	config, err := Load(path, map[string]interface{}{"workers": 1})
	require.NoError(t, err)

	assert.Equal(t, 20, config.Pipeline.BatchSize, "file value should apply")
	assert.Equal(t, 1, config.Pipeline.Workers, "flag should win over env")
	assert.Equal(t, []string{"png"}, config.Formats.SupportedFormats)
}

func TestPathsResolve(t *testing.T) {
	root := t.TempDir()
	paths := DefaultConfig().Paths
	paths.ProjectRoot = root

	assert.Equal(t, filepath.Join(root, "contents"), paths.Resolve(paths.ContentsDir))
	assert.Equal(t, "/abs/avif", paths.Resolve("/abs/avif"))
	assert.Equal(t, root, paths.Root())
}
