package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/coursework/pkg/config"
)

// Init writes a starter config file.
type Init struct {
	Path string
	Out  io.Writer
}

func (i *Init) Do(_ context.Context) error {
	out := i.Out
	if out == nil {
		out = color.Output
	}
	path, err := config.WriteDefault(i.Path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	_, _ = fmt.Fprintln(out, "Set canvas.url and canvas.token, or export CANVAS_URL and CANVAS_API_TOKEN.")
	return nil
}
