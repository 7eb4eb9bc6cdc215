package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/report"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

// loadTasks loads a task file. An unreadable or malformed file is reported
// and yields an empty task list, so the run still produces a summary.
func loadTasks(path string, kind tasks.Kind, limit int) []tasks.Task {
	ts, err := tasks.Load(path, kind)
	if err != nil {
		slog.Error("failed to load tasks, continuing with an empty task list", "file", path, "error", err)
		return nil
	}
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}
	slog.Debug("loaded tasks", "file", path, "kind", kind, "tasks", len(ts))
	return ts
}

// parseBenchmarkKind accepts the task kinds that can be benchmarked.
func parseBenchmarkKind(name string) (tasks.Kind, error) {
	kind, err := tasks.ParseKind(name)
	if err != nil || !slices.Contains(tasks.BenchmarkKinds, kind) {
		return tasks.KindDefault, &tasks.InvalidKindError{Name: name}
	}
	return kind, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("tasks"),
		progressbar.OptionSetRenderBlankState(true),
	)
}

type benchmarkOptions struct {
	tasks    []tasks.Task
	strategy bench.Strategy
	output   string
	format   string
	failFast bool
}

// runBenchmark runs the tasks through the strategy and writes the results to
// the output artifact and a console summary.
func runBenchmark(cmd *cobra.Command, opts benchmarkOptions) (err error) {
	format, err := report.ParseFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sink, err := report.Open(opts.output, format)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", opts.output, cerr)
		}
	}()

	r := bench.NewRunner(newLLMClient(settings), opts.strategy, settings.Model)
	r.SetSink(sink)
	r.SetFailFast(opts.failFast)

	bar := newProgressBar(len(opts.tasks), opts.strategy.Name())
	r.SetProgressFunc(func(i, _ int) {
		_ = bar.Set(i - 1)
	})

	run, err := r.Run(ctx, opts.tasks)
	_ = bar.Finish()
	if run != nil {
		if rerr := report.RenderSummary(cmd.OutOrStdout(), run); rerr != nil {
			slog.Error("failed to render summary", "error", rerr)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nResults written to: %s\n", opts.output)
	}
	return err
}
