package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/config"
	"tableflip.dev/coursework/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(coursework completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(coursework completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// courseCompletions offers cached course IDs, described by name. It reads the
// cache without logging so completion output stays clean.
func courseCompletions(v *viper.Viper, toComplete string) []string {
	if _, err := config.ReadFile(v, ro.ConfigFile); err != nil {
		return nil
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil
	}
	p, err := store.Load(cfg.CachePath)
	if err != nil {
		return nil
	}
	c := cache.New(p, nil)
	snap := c.Load()
	out := make([]string, 0, len(snap.Courses))
	for _, course := range snap.Courses {
		if strings.HasPrefix(string(course.ID), toComplete) {
			out = append(out, string(course.ID)+"\t"+course.Name)
		}
	}
	return out
}
