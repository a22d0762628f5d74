package environ_vars

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stack_calculator/internal/constants"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "stack.db", GetValue(v, constants.DB))
	assert.Equal(t, "stack.log", GetValue(v, constants.LogFile))
	n, ok := GetValueInt(v, constants.CompPow)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, n, 1)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "stack.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db: from-file.db\nlog_level: debug\n"), 0o644))
	t.Setenv("STACK_LOG_LEVEL", "warn")

	v, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", GetValue(v, constants.DB))
	lvl, err := LogLevel(v)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	v, err := New("")
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-file", "", "")
	fs.String("db", "", "")
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--db", "flag.db"}))

	assert.Equal(t, "flag.db", GetValue(v, constants.DB))
	// unchanged flags keep the default
	assert.Equal(t, "stack.log", GetValue(v, constants.LogFile))
}

func TestLogLevelUnknown(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STACK_LOG_LEVEL", "loud")
	v, err := New("")
	require.NoError(t, err)
	_, err = LogLevel(v)
	assert.Error(t, err)
}
