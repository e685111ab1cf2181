package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/commands/options"
	"tableflip.dev/coursework/pkg/runner/refresh"
)

func addSync(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "fetch every category from Canvas and update the cache",
		Example: `
coursework sync
coursework sync --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.close()

			client, err := e.client()
			if err != nil {
				return oo.HandleError(err)
			}
			c, err := e.cache()
			if err != nil {
				return oo.HandleError(err)
			}
			s := refresh.Refresh{
				Fetcher:      client,
				Cache:        c,
				FetchTimeout: e.cfg.FetchTimeout,
				JSON:         oo.JSON,
				Logger:       e.log,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
