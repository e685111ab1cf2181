package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/printers"
	"tableflip.dev/coursework/pkg/syncer"
)

// Refresh runs one fetch cycle against the remote service, persists the result
// and prints the status of every category.
type Refresh struct {
	Fetcher      syncer.Fetcher
	Cache        *cache.Store
	FetchTimeout time.Duration
	JSON         bool

	Logger *zap.Logger
	Out    io.Writer
	Now    func() time.Time
}

// StatusJSON is the --json shape of a category status.
type StatusJSON struct {
	Category string     `json:"category"`
	Records  int        `json:"records"`
	SyncedAt *time.Time `json:"synced_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (s *Refresh) Do(ctx context.Context) error {
	if s.Fetcher == nil || s.Cache == nil {
		return errors.New("can not sync, not configured")
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}

	c := syncer.New(s.Fetcher, s.Cache, syncer.Options{
		FetchTimeout: s.FetchTimeout,
		Logger:       s.Logger,
		Now:          now,
	})
	syncErr := c.RunOnce(ctx)
	statuses := s.Cache.Read().Statuses()

	if s.JSON {
		if err := WriteStatusJSON(out, statuses); err != nil {
			return err
		}
		return syncErr
	}
	pp := printers.PrettyPrint{Out: out, Now: now()}
	pp.NewLine()
	pp.Statuses(statuses)
	if syncErr != nil {
		return fmt.Errorf("sync incomplete: %w", syncErr)
	}
	return nil
}

// WriteStatusJSON prints statuses as an indented JSON array.
func WriteStatusJSON(out io.Writer, statuses []cache.Status) error {
	rows := make([]StatusJSON, 0, len(statuses))
	for _, st := range statuses {
		j := StatusJSON{Category: string(st.Category), Records: st.Count, Error: st.Err}
		if st.Synced() {
			at := st.SyncedAt
			j.SyncedAt = &at
		}
		rows = append(rows, j)
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
