package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CANVAS_URL", "CANVAS_API_TOKEN",
		"COURSEWORK_CACHE_PATH", "COURSEWORK_SYNC_INTERVAL", "COURSEWORK_SYNC_TIMEOUT",
		"COURSEWORK_LOG_LEVEL", "COURSEWORK_LOG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultCachePath(), cfg.CachePath)
	assert.Equal(t, DefaultLogPath(), cfg.LogPath)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingURL)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CANVAS_URL", "https://canvas.example.edu/")
	t.Setenv("CANVAS_API_TOKEN", " secret ")
	t.Setenv("COURSEWORK_SYNC_INTERVAL", "off")
	t.Setenv("COURSEWORK_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Zero(t, cfg.Interval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("COURSEWORK_SYNC_INTERVAL", "soon")
	_, err := Load(NewViper())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr error
		ok      bool
	}{
		"missing url":   {cfg: Config{Token: "t"}, wantErr: ErrMissingURL},
		"missing token": {cfg: Config{CanvasURL: "https://canvas.example.edu"}, wantErr: ErrMissingToken},
		"bad scheme":    {cfg: Config{CanvasURL: "ftp://canvas.example.edu", Token: "t"}},
		"no host":       {cfg: Config{CanvasURL: "https://", Token: "t"}},
		"ok":            {cfg: Config{CanvasURL: "http://localhost:8080", Token: "t"}, ok: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestWriteDefaultThenRead(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	written, err := WriteDefault(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	_, err = WriteDefault(path)
	assert.ErrorIs(t, err, ErrExists)

	v := NewViper()
	used, err := ReadFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasURL)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, path, cfg.File)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}

func TestReadFileEnvWins(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  url: https://file.example.edu\n  token: from-file\nsync:\n  interval: 1h\n"), 0o600))
	t.Setenv("CANVAS_API_TOKEN", "from-env")

	v := NewViper()
	_, err := ReadFile(v, path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.edu", cfg.CanvasURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, time.Hour, cfg.Interval)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("COURSEWORK_DOTENV_NEW=from-file\nCOURSEWORK_DOTENV_KEEP=from-file\n"), 0o600))

	t.Setenv("COURSEWORK_DOTENV_KEEP", "from-shell")
	t.Cleanup(func() { _ = os.Unsetenv("COURSEWORK_DOTENV_NEW") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("COURSEWORK_DOTENV_NEW"))
	assert.Equal(t, "from-shell", os.Getenv("COURSEWORK_DOTENV_KEEP"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
