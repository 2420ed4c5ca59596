package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadProfile(t *testing.T) {
	cfg := Default()
	cfg.Board.Buttons = -1
	cfg.Board.Queue = 48
	cfg.Board.Update.ChunkSize = 3000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board.buttons")
	assert.Contains(t, err.Error(), "board.queue")
	assert.Contains(t, err.Error(), "board.update")

	cfg = Default()
	cfg.Board.Queue = 0
	assert.Error(t, cfg.Validate())
}

func TestResolveFileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	profile := []byte("board:\n  buttons: 1\n  leds: 0\n  queue: 8\nrunner:\n  hz: 30\n")
	require.NoError(t, os.WriteFile(path, profile, 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--queue", "16"}))

	cfg, err := flags.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Board.Buttons)
	assert.Equal(t, 0, cfg.Board.LEDs)
	assert.Equal(t, 16, cfg.Board.Queue, "flag overrides file")
	assert.Equal(t, 30, cfg.Runner.Hz, "unset flag keeps file value")
	assert.Equal(t, 4, cfg.Board.Timers, "missing key keeps default")
}

func TestResolveFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  uarts: 5\n"), 0o644))
	t.Setenv(EnvConfig, path)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := flags.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Board.UARTs)
}

func TestRunnerLevel(t *testing.T) {
	r := Runner{LogLevel: "warn"}
	lvl, err := r.Level()
	require.NoError(t, err)
	assert.Equal(t, "WARN", lvl.String())

	_, err = Runner{LogLevel: "loud"}.Level()
	assert.Error(t, err)
}
