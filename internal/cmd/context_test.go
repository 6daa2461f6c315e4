package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	flags := cmd.Flags()
	flags.String("config", "", "")
	flags.String("home", "", "")
	flags.String("api-url", "", "")
	flags.String("format", "", "")
	flags.Bool("no-color", false, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse(args))
	return cmd
}

func TestNewCommandContext(t *testing.T) {
	cmd := newFlagCommand(t, "--home", "/tmp/fm", "--api-url", "http://api/graphql/", "--format", "json", "--no-color", "--log-level", "debug")

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fm", cc.Home)
	assert.Equal(t, "http://api/graphql/", cc.APIURL)
	assert.Equal(t, "json", cc.Format)
	assert.True(t, cc.NoColor)
	assert.Equal(t, "debug", cc.LogLevel)
}

func TestNewCommandContextMissingFlags(t *testing.T) {
	_, err := NewCommandContext(&cobra.Command{Use: "bare"})
	assert.Error(t, err)
}

func TestLoaderAppliesFlagOverrides(t *testing.T) {
	home := t.TempDir()
	cmd := newFlagCommand(t, "--home", home, "--api-url", "http://flag/graphql/", "--format", "yaml", "--no-color", "--log-level", "error")

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	loader, err := cc.Loader()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), loader.Path())

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Storage.Dir)
	assert.Equal(t, "http://flag/graphql/", cfg.API.URL)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Output.NoColor)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoaderExplicitConfigBeatsHome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	cmd := newFlagCommand(t, "--home", t.TempDir(), "--config", path)

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	loader, err := cc.Loader()
	require.NoError(t, err)
	assert.Equal(t, path, loader.Path())
}
