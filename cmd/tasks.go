package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the embedded task sets",
		Long: `List the task sets built into the binary. Any of them can be passed to
--queries by name; a file of the same name on disk takes precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := tasks.List()
			if err != nil {
				return fmt.Errorf("failed to list task sets: %w", err)
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No task sets found.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Available task sets:\n\n")
			for _, name := range names {
				ts, err := tasks.Load(name, tasks.KindDefault)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s (error loading: %v)\n", name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%d tasks)\n", name, len(ts))
			}

			return nil
		},
	}
}
