package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/coursework/pkg/commands/options"
	"tableflip.dev/coursework/pkg/config"
)

var (
	oo = &options.OutputOptions{}
	ro = &options.RootOptions{}
)

func New() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "coursework",
		Short: base.Wrap80("Canvas courses, assignments, calendar and announcements in the terminal."),
		Long: base.Wrap80("Canvas courses, assignments, calendar and announcements in the terminal. " +
			"Data is cached locally so the interface opens instantly and keeps working offline; " +
			"a background sync refreshes it."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, v)
		},
	}

	options.AddRootArgs(cmd, ro, v)
	AddCommands(cmd, v)
	return cmd
}

func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addUI(topLevel, v)
	addSync(topLevel, v)
	addGet(topLevel, v)
	addStatus(topLevel, v)
	addInit(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
