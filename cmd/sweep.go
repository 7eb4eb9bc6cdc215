package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/report"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

func newSweepCmd() *cobra.Command {
	var (
		queries string
		output  string
		minN    int
		maxN    int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure the speedup for every number of parallel calls in a range",
		Long: `For every N from --min-n to --max-n, ask once for N items and, in parallel,
N times for one item, over the first tasks of a template file.

Each template uses {n} for the item count and may use {context}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minN < 0 || maxN < minN {
				return fmt.Errorf("invalid range: --min-n %d, --max-n %d", minN, maxN)
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			ts := loadTasks(queries, tasks.KindGenerateN, limit)
			bar := newProgressBar((maxN-minN+1)*len(ts), "sweep")
			progress := func(n, i, total int) {
				_ = bar.Set((n-minN)*total + i - 1)
			}

			points, err := bench.Sweep(ctx, newLLMClient(settings), settings.Model, ts, minN, maxN, progress)
			_ = bar.Finish()

			if rerr := report.RenderSweep(cmd.OutOrStdout(), points); rerr != nil {
				return rerr
			}
			if output != "" {
				if werr := report.WriteSweep(output, points); werr != nil {
					return werr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nSweep written to: %s\n", output)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&queries, "queries", "generate_n_subset.yaml", "Template file; each template uses {n}")
	cmd.Flags().StringVar(&output, "output", "", "Write the sweep to this JSON or YAML file")
	cmd.Flags().IntVar(&minN, "min-n", 0, "Smallest number of parallel calls")
	cmd.Flags().IntVar(&maxN, "max-n", 50, "Largest number of parallel calls")
	cmd.Flags().IntVar(&limit, "limit", 5, "Use only the first N tasks. 0 means all")

	return cmd
}
