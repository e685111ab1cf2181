package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/runner/ui"
)

var errNoTerminal = errors.New("the interactive ui needs a terminal; try `coursework get dashboard`")

func addUI(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
coursework ui
coursework ui --interval off
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, v)
		},
	}

	topLevel.AddCommand(cmd)
}

func runUI(cmd *cobra.Command, v *viper.Viper) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errNoTerminal
	}
	e, err := loadEnv(v)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.persistence()
	if err != nil {
		return err
	}
	i := ui.UI{Config: e.cfg, Persistence: p, Logger: e.log}
	return i.Do(cmd.Context())
}
