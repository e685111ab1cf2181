// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
)

// QueryOptions selects how a tab is projected for printing.
type QueryOptions struct {
	Sort    string
	Courses []string
	Refresh bool
}

// AddQueryArgs wires the sort, course filter and refresh flags.
func AddQueryArgs(cmd *cobra.Command, o *QueryOptions) {
	cmd.Flags().StringVar(&o.Sort, "sort", "due",
		"Assignment order. One of 'due', 'due-desc', 'course' or 'status'.")
	cmd.Flags().StringSliceVarP(&o.Courses, "course", "c", nil,
		"Only show these course IDs (assignments and calendar). Repeatable.")
	cmd.Flags().BoolVar(&o.Refresh, "refresh", false,
		"Sync with Canvas before printing.")
}

// SortMode parses the --sort flag.
func (o *QueryOptions) SortMode() (state.SortMode, error) {
	return state.ParseSortMode(o.Sort)
}

// CourseIDs returns the --course values as record IDs.
func (o *QueryOptions) CourseIDs() []record.ID {
	ids := make([]record.ID, 0, len(o.Courses))
	for _, c := range o.Courses {
		if c != "" {
			ids = append(ids, record.ID(c))
		}
	}
	return ids
}
