package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

func newE2ECmd() *cobra.Command {
	var (
		queries  string
		output   string
		format   string
		limit    int
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "Compare a request against its model-decomposed parallel version",
		Long: `Run every task's original request once as a single call. For the parallel
version a schema model first rewrites the request into one item to generate
and the number of items, then that many calls run concurrently.

The parallel duration includes the schema extraction call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, benchmarkOptions{
				tasks:    loadTasks(queries, tasks.KindGenerateN, limit),
				strategy: &bench.E2EStrategy{SchemaModel: settings.SchemaModel},
				output:   output,
				format:   format,
				failFast: failFast,
			})
		},
	}

	cmd.Flags().StringVar(&queries, "queries", "generate_n_schemas.json", "Task file with an original request per task")
	cmd.Flags().StringVar(&output, "output", "out/serial_vs_e2e_parallel.txt", "Results file")
	cmd.Flags().StringVar(&format, "format", "", "Results format: json, yaml or text (default from the output extension)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Benchmark only the first N tasks. 0 means all")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failed task")
	cmd.Flags().String("schema-model", bench.DefaultSchemaModel, "Model extracting the parallel schema")

	return cmd
}
