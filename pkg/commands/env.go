package commands

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/canvas"
	"tableflip.dev/coursework/pkg/config"
	"tableflip.dev/coursework/pkg/logging"
	"tableflip.dev/coursework/pkg/store"
)

// env is the resolved configuration plus the collaborators built from it.
type env struct {
	cfg config.Config
	log *zap.Logger
}

func loadEnv(v *viper.Viper) (*env, error) {
	if err := config.LoadDotEnv(ro.EnvFile); err != nil {
		return nil, err
	}
	if _, err := config.ReadFile(v, ro.ConfigFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, err
	}
	log.Debug("configuration resolved",
		zap.String("file", cfg.File),
		zap.String("cache", cfg.CachePath),
		zap.Duration("interval", cfg.Interval))
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) persistence() (store.Persistence, error) {
	p, err := store.Load(e.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return p, nil
}

// cache opens the cache file and loads the last persisted snapshot.
func (e *env) cache() (*cache.Store, error) {
	p, err := e.persistence()
	if err != nil {
		return nil, err
	}
	c := cache.New(p, e.log)
	c.Load()
	return c, nil
}

func (e *env) client() (*canvas.Client, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return canvas.New(e.cfg.CanvasURL, e.cfg.Token, canvas.Options{Logger: e.log})
}

func (e *env) close() {
	_ = e.log.Sync()
}
