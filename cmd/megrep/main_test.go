package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"megrep/pkg/config"
)

func TestExampleConfigMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0644))

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	require.NoError(t, cfg.Validate())

	want := config.DefaultConfig()
	assert.Equal(t, want.Paths, cfg.Paths)
	assert.Equal(t, want.Formats, cfg.Formats)
	assert.Equal(t, want.Pipeline.BatchSize, cfg.Pipeline.BatchSize)
	assert.Equal(t, want.Pipeline.SnapshotEvery, cfg.Pipeline.SnapshotEvery)
	assert.Equal(t, want.Logging, cfg.Logging)
}

func TestCommandFlagsOnlyIncludesChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().StringVar(&logFile, "log-file", "", "")
	cmd.Flags().BoolVar(&notifications, "notifications", false, "")

	require.NoError(t, cmd.Flags().Parse([]string{"--project-root", "/data", "--notifications=false"}))

	flags := commandFlags(cmd, map[string]interface{}{"workers": 2})
	assert.Equal(t, map[string]interface{}{
		"project-root":  "/data",
		"notifications": false,
		"workers":       2,
	}, flags)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"convert", "rebuild", "sample", "serve", "config", "version"} {
		assert.True(t, names[want], want)
	}
}
