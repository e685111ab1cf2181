package ui

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/canvas"
	"tableflip.dev/coursework/pkg/config"
	"tableflip.dev/coursework/pkg/store"
	"tableflip.dev/coursework/pkg/syncer"
	"tableflip.dev/coursework/pkg/tui"
)

// UI runs the interactive client: it shows the cached snapshot immediately and
// refreshes it in the background.
type UI struct {
	Config      config.Config
	Persistence store.Persistence
	Logger      *zap.Logger
	// Fetcher overrides the Canvas client built from Config.
	Fetcher syncer.Fetcher

	// launch runs the terminal program; tui.Run when nil.
	launch func(context.Context, tui.Options) error
}

func (u *UI) Do(ctx context.Context) error {
	if u.Persistence == nil {
		return errors.New("can not start ui, no persistence")
	}
	log := u.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := cache.New(u.Persistence, log)
	c.Load()

	opts := tui.Options{Source: c, Logger: log}

	fetcher := u.Fetcher
	if fetcher == nil {
		if err := u.Config.Validate(); err != nil {
			log.Warn("starting offline", zap.Error(err))
		} else {
			client, err := canvas.New(u.Config.CanvasURL, u.Config.Token, canvas.Options{Logger: log})
			if err != nil {
				return err
			}
			fetcher = client
		}
	}

	var coordinator *syncer.Coordinator
	if fetcher != nil {
		coordinator = syncer.New(fetcher, c, syncer.Options{
			Interval:     u.Config.Interval,
			FetchTimeout: u.Config.FetchTimeout,
			Logger:       log,
		})
		opts.Syncer = coordinator
	}

	watch, err := u.Persistence.Watch(ctx)
	if err != nil {
		log.Warn("cache file watch disabled", zap.Error(err))
	} else {
		opts.Watch = watch
	}

	done := make(chan struct{})
	if coordinator != nil {
		go func() {
			defer close(done)
			if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("sync coordinator stopped", zap.Error(err))
			}
		}()
	} else {
		close(done)
	}

	launch := u.launch
	if launch == nil {
		launch = tui.Run
	}
	runErr := launch(ctx, opts)
	// Stop the coordinator before the final write so an in-flight cycle
	// can not merge behind it.
	cancel()
	<-done

	if err := c.Persist(); err != nil {
		log.Warn("final persist failed", zap.Error(err))
	}
	return runErr
}
