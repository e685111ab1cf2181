package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteDefault when the target file already exists.
var ErrExists = errors.New("config file already exists")

type fileTemplate struct {
	Canvas struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"canvas"`
	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`
	Sync struct {
		Interval string `yaml:"interval"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"sync"`
	Log struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"log"`
}

const templateHeader = `# coursework configuration.
# CANVAS_URL and CANVAS_API_TOKEN override the canvas section.
# Generate a token under Account > Settings > Approved Integrations.
`

// DefaultFile renders the starter config written by `coursework init`.
func DefaultFile() ([]byte, error) {
	var tpl fileTemplate
	tpl.Canvas.URL = "https://canvas.example.edu"
	tpl.Canvas.Token = ""
	tpl.Cache.Path = DefaultCachePath()
	tpl.Sync.Interval = defaultInterval
	tpl.Sync.Timeout = defaultTimeout
	tpl.Log.Level = defaultLogLevel
	tpl.Log.Path = DefaultLogPath()

	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&tpl); err != nil {
		return nil, fmt.Errorf("config: encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encode template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the starter config to path, or to the default location
// when path is empty. It never overwrites an existing file.
func WriteDefault(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", path, err)
	}
	data, err := DefaultFile()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("config: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", fmt.Errorf("config: create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("config: close %s: %w", path, err)
	}
	return path, nil
}
