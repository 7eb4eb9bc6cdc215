package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/bench"
)

func newCompareCmd() *cobra.Command {
	var (
		queries  string
		task     string
		output   string
		format   string
		limit    int
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a serial prompt against its parallel template",
		Long: `Run every task of a task file twice: once as the task's serial prompt in a
single call, and once as the task's template filled in for N concurrent calls.

N is the number of data items for keyword_extraction and reading_comprehension
tasks and the task's n for generate_n tasks.

Results are written to the output file after every task, followed by the
averages over all tasks.`,
		Example: `  parallel-prompt compare --queries prompts/keyword_extraction.json --task keyword_extraction --output out/keywords.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseBenchmarkKind(task)
			if err != nil {
				return err
			}

			return runBenchmark(cmd, benchmarkOptions{
				tasks:    loadTasks(queries, kind, limit),
				strategy: &bench.TemplateStrategy{},
				output:   output,
				format:   format,
				failFast: failFast,
			})
		},
	}

	cmd.Flags().StringVar(&queries, "queries", "", "Task file (JSON or YAML). Embedded sets are found by name")
	cmd.Flags().StringVar(&task, "task", "", "Task kind: reading_comprehension, keyword_extraction or generate_n")
	cmd.Flags().StringVar(&output, "output", "", "Results file")
	cmd.Flags().StringVar(&format, "format", "", "Results format: json, yaml or text (default from the output extension)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Benchmark only the first N tasks. 0 means all")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failed task")

	_ = cmd.MarkFlagRequired("queries")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
