package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/coursework/pkg/runner/setup"
)

func addInit(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a starter config file",
		Example: `
coursework init
coursework init --config ./coursework.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i := setup.Init{Path: ro.ConfigFile}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
