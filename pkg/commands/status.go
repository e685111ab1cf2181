package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/commands/options"
	"tableflip.dev/coursework/pkg/runner/status"
)

func addStatus(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "show the cache location and when each category last synced",
		Example: `
coursework status
coursework status --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.close()
			c, err := e.cache()
			if err != nil {
				return oo.HandleError(err)
			}
			s := status.Status{Path: e.cfg.CachePath, Cache: c, JSON: oo.JSON}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
