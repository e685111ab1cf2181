// Package config resolves runtime settings from flags, the environment, an
// optional .env file and the YAML config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/timeutil"
)

// AppName names the per-user config, cache and state directories.
const AppName = "coursework"

const (
	envPrefix = "COURSEWORK"

	KeyCanvasURL    = "canvas.url"
	KeyCanvasToken  = "canvas.token"
	KeyCachePath    = "cache.path"
	KeySyncInterval = "sync.interval"
	KeySyncTimeout  = "sync.timeout"
	KeyLogLevel     = "log.level"
	KeyLogPath      = "log.path"

	defaultInterval = "15m"
	defaultTimeout  = "30s"
	defaultLogLevel = "info"
)

var (
	ErrMissingURL   = errors.New("canvas.url is required (set CANVAS_URL or run `coursework init`)")
	ErrMissingToken = errors.New("canvas.token is required (set CANVAS_API_TOKEN or run `coursework init`)")
)

// Config is the resolved runtime configuration.
type Config struct {
	CanvasURL    string
	Token        string
	CachePath    string
	Interval     time.Duration
	FetchTimeout time.Duration
	LogLevel     string
	LogPath      string
	// File is the config file that was read, if any.
	File string
}

// DefaultConfigPath is <xdg config home>/coursework/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultCachePath is <xdg cache home>/coursework/cache.json.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, AppName, "cache.json")
}

// DefaultLogPath is <xdg state home>/coursework/coursework.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on v. Canvas settings
// also honour the conventional CANVAS_URL and CANVAS_API_TOKEN variables.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyCanvasURL, "CANVAS_URL")
	_ = v.BindEnv(KeyCanvasToken, "CANVAS_API_TOKEN")

	v.SetDefault(KeyCachePath, DefaultCachePath())
	v.SetDefault(KeySyncInterval, defaultInterval)
	v.SetDefault(KeySyncTimeout, defaultTimeout)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLogPath, DefaultLogPath())
}

// LoadDotEnv exports the variables of a .env file into the process
// environment without overriding what is already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ReadFile merges a YAML config file into v. An explicit path must exist;
// with an empty path the default location is tried and may be absent.
func ReadFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", path, err)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("config: %w", err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("config: read %s: %w", path, err)
	}
	return path, nil
}

// Load resolves a Config from v. It does not require credentials; call
// Validate before talking to the network.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		CanvasURL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyCanvasURL)), "/"),
		Token:     strings.TrimSpace(v.GetString(KeyCanvasToken)),
		LogLevel:  v.GetString(KeyLogLevel),
		File:      v.ConfigFileUsed(),
	}

	var err error
	if cfg.CachePath, err = expand(v.GetString(KeyCachePath)); err != nil {
		return Config{}, err
	}
	if cfg.LogPath, err = expand(v.GetString(KeyLogPath)); err != nil {
		return Config{}, err
	}
	if cfg.Interval, err = timeutil.ParseInterval(v.GetString(KeySyncInterval)); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeySyncInterval, err)
	}
	if cfg.FetchTimeout, err = timeutil.ParseInterval(v.GetString(KeySyncTimeout)); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeySyncTimeout, err)
	}
	if strings.TrimSpace(cfg.CachePath) == "" {
		return Config{}, fmt.Errorf("config: %s is required", KeyCachePath)
	}
	return cfg, nil
}

// Validate checks the settings needed to reach the remote service.
func (c Config) Validate() error {
	if c.CanvasURL == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(c.CanvasURL)
	if err != nil {
		return fmt.Errorf("config: invalid canvas.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: canvas.url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("config: canvas.url %q has no host", c.CanvasURL)
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func expand(path string) (string, error) {
	if path == "" || path == "-" {
		return path, nil
	}
	out, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", path, err)
	}
	return out, nil
}
