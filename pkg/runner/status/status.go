package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/printers"
	"tableflip.dev/coursework/pkg/runner/refresh"
)

// Status prints where the cache lives and how fresh each category is.
type Status struct {
	Path  string
	Cache *cache.Store
	JSON  bool
	Out   io.Writer
	Now   time.Time
}

func (s *Status) Do(_ context.Context) error {
	if s.Cache == nil {
		return errors.New("can not show status, no cache")
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}
	snap := s.Cache.Read()
	if s.JSON {
		return refresh.WriteStatusJSON(out, snap.Statuses())
	}
	pp := printers.PrettyPrint{Out: out, Now: s.Now}
	pp.NewLine()
	pp.Title("Cache")
	_, _ = fmt.Fprintf(out, "%s (revision %d)\n", s.Path, snap.Revision)
	pp.NewLine()
	pp.Statuses(snap.Statuses())
	return nil
}
