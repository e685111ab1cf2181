package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/coursework/pkg/canvas"
	"tableflip.dev/coursework/pkg/config"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives JSON errors; color.Output when nil.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

type errorJSON struct {
	Error      string  `json:"error"`
	Kind       string  `json:"kind,omitempty"`
	Status     int     `json:"status,omitempty"`
	RetryAfter float64 `json:"retry_after_seconds,omitempty"`
}

// HandleError reports err as a JSON object when --json is set, so scripts
// can tell an expired token from a rate limit without parsing text.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		b, err := json.Marshal(describe(err))
		if err != nil {
			return err
		}
		out := o.Out
		if out == nil {
			out = color.Output
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	}
	return err
}

func describe(err error) errorJSON {
	out := errorJSON{Error: err.Error()}
	var (
		apiErr  *canvas.APIError
		rateErr *canvas.RateLimitError
	)
	switch {
	case errors.Is(err, canvas.ErrUnauthorized):
		out.Kind = "unauthorized"
		out.Status = 401
	case errors.As(err, &rateErr):
		out.Kind = "rate_limited"
		out.Status = 429
		out.RetryAfter = rateErr.RetryAfter.Seconds()
	case errors.As(err, &apiErr):
		out.Kind = "api"
		out.Status = apiErr.Status
	case errors.Is(err, config.ErrMissingURL), errors.Is(err, config.ErrMissingToken):
		out.Kind = "config"
	}
	return out
}
