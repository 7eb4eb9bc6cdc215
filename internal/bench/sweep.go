package bench

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/metrics"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

// SweepPoint is the summary of all tasks benchmarked with N parallel calls.
type SweepPoint struct {
	N       int             `json:"n" yaml:"n"`
	RunID   string          `json:"run_id" yaml:"run_id"`
	Summary metrics.Summary `json:"summary" yaml:"summary"`
}

// SweepProgressFunc is called before each task of each N.
type SweepProgressFunc func(n, taskIndex, totalTasks int)

// Sweep benchmarks the tasks once for every N in [minN, maxN]. The serial
// prompt asks for N items at once; the parallel phase asks N times for one.
func Sweep(ctx context.Context, client llm.Client, model string, ts []tasks.Task, minN, maxN int, progress SweepProgressFunc) ([]SweepPoint, error) {
	if minN < 0 || maxN < minN {
		return nil, fmt.Errorf("invalid sweep range [%d, %d]", minN, maxN)
	}

	points := make([]SweepPoint, 0, maxN-minN+1)
	for n := minN; n <= maxN; n++ {
		r := NewRunner(client, NewSweepStrategy(n), model)
		if progress != nil {
			r.SetProgressFunc(func(i, total int) { progress(n, i, total) })
		}

		run, err := r.Run(ctx, ts)
		if err != nil {
			return points, fmt.Errorf("sweep stopped at n=%d: %w", n, err)
		}

		points = append(points, SweepPoint{N: n, RunID: run.ID, Summary: run.Summary})
		slog.Info("sweep point complete", "n", n, "tasks", run.Summary.Tasks)
	}
	return points, nil
}
