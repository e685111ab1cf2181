package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/coursework/pkg/commands/options"
	"tableflip.dev/coursework/pkg/runner/get"
	"tableflip.dev/coursework/pkg/state"
	"tableflip.dev/coursework/pkg/syncer"
)

func addGet(topLevel *cobra.Command, v *viper.Viper) {
	qo := &options.QueryOptions{}
	io := &options.IDOptions{}

	validArgs := make([]string, 0, len(state.Tabs()))
	for _, t := range state.Tabs() {
		validArgs = append(validArgs, strings.ToLower(t.String()))
	}

	cmd := &cobra.Command{
		Use:   "get [" + strings.Join(validArgs, "|") + "]",
		Short: "print a tab from the local cache",
		Long: base.Wrap80("Print one tab from the local cache without opening the interface. " +
			"Nothing is fetched unless --refresh is set."),
		Example: `
coursework get
coursework get assignments --sort status
coursework get calendar --course 101 --course 202
coursework get announcements --refresh --json
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: validArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tab := state.TabDashboard
			if len(args) == 1 {
				var err error
				if tab, err = state.ParseTab(args[0]); err != nil {
					return oo.HandleError(err)
				}
			}
			sort, err := qo.SortMode()
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := loadEnv(v)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.close()
			c, err := e.cache()
			if err != nil {
				return oo.HandleError(err)
			}

			g := get.Get{
				Tab:     tab,
				Sort:    sort,
				Courses: qo.CourseIDs(),
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Cache:   c,
				Logger:  e.log,
			}
			if qo.Refresh {
				client, err := e.client()
				if err != nil {
					return oo.HandleError(err)
				}
				g.Refresher = syncer.New(client, c, syncer.Options{
					FetchTimeout: e.cfg.FetchTimeout,
					Logger:       e.log,
				})
			}
			return oo.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddQueryArgs(cmd, qo)
	_ = cmd.RegisterFlagCompletionFunc("course", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return courseCompletions(v, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
