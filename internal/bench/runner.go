// Package bench times serial against parallel prompting strategies.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/metrics"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

// Record is the benchmark result of one task.
type Record struct {
	Index  int    `json:"index" yaml:"index"`
	Prompt string `json:"prompt" yaml:"prompt"`

	SerialPrompt     string        `json:"serial_prompt,omitempty" yaml:"serial_prompt,omitempty"`
	SerialOutput     string        `json:"serial_output" yaml:"serial_output"`
	SerialTokens     int           `json:"serial_num_tokens" yaml:"serial_num_tokens"`
	SerialDuration   time.Duration `json:"-" yaml:"-"`
	SerialDurationMS float64       `json:"serial_duration_ms" yaml:"serial_duration_ms"`

	Calls                   []CallResult  `json:"parallel_calls" yaml:"parallel_calls"`
	ParallelDuration        time.Duration `json:"-" yaml:"-"`
	TotalParallelDurationMS float64       `json:"total_parallel_duration_ms" yaml:"total_parallel_duration_ms"`
	TotalParallelTokens     int           `json:"total_parallel_tokens" yaml:"total_parallel_tokens"`
	FailedCalls             int           `json:"failed_calls" yaml:"failed_calls"`

	Speedup           *float64 `json:"speedup" yaml:"speedup"`
	NormalizedSpeedup *float64 `json:"normalized_speedup" yaml:"normalized_speedup"`

	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// ParallelOutputs returns the outputs of the successful calls in call order.
func (r Record) ParallelOutputs() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		if c.Error == "" {
			out = append(out, c.Output)
		}
	}
	return out
}

func (r Record) sample() metrics.Sample {
	return metrics.Sample{
		SerialDuration:   r.SerialDuration,
		SerialTokens:     r.SerialTokens,
		ParallelDuration: r.ParallelDuration,
		ParallelTokens:   r.TotalParallelTokens,
		FailedCalls:      r.FailedCalls,
		Failed:           r.Error != "",
	}
}

// Run is a complete benchmark run.
type Run struct {
	ID         string          `json:"id" yaml:"id"`
	Strategy   string          `json:"strategy" yaml:"strategy"`
	Model      string          `json:"model,omitempty" yaml:"model,omitempty"`
	Started    time.Time       `json:"started" yaml:"started"`
	DurationMS float64         `json:"duration_ms" yaml:"duration_ms"`
	Records    []Record        `json:"results" yaml:"results"`
	Summary    metrics.Summary `json:"averages" yaml:"averages"`
}

// Sink receives benchmark results as they are produced.
type Sink interface {
	// WriteRecord is called once per task, right after the task finished.
	WriteRecord(run *Run, rec *Record) error
	// WriteSummary is called once after the last task.
	WriteSummary(run *Run) error
	Close() error
}

// ProgressFunc is called before each task is processed.
type ProgressFunc func(taskIndex, totalTasks int)

// Runner benchmarks a list of tasks one after the other.
type Runner struct {
	bench    *Bench
	strategy Strategy
	model    string
	sink     Sink
	progress ProgressFunc
	failFast bool
}

// NewRunner creates a new benchmark runner.
func NewRunner(client llm.Client, strategy Strategy, model string) *Runner {
	return &Runner{
		bench:    NewBench(client, strategy, model),
		strategy: strategy,
		model:    model,
	}
}

// SetSink sets the sink results are written to.
func (r *Runner) SetSink(sink Sink) {
	r.sink = sink
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// SetFailFast makes the first failed task abort the run.
func (r *Runner) SetFailFast(failFast bool) {
	r.failFast = failFast
}

// Run benchmarks every task and returns the run with its summary. A failed
// task is recorded and skipped unless fail-fast is set.
func (r *Runner) Run(ctx context.Context, ts []tasks.Task) (*Run, error) {
	run := &Run{
		ID:       uuid.NewString(),
		Strategy: r.strategy.Name(),
		Model:    r.model,
		Started:  time.Now(),
		Records:  make([]Record, 0, len(ts)),
	}

	slog.Info("running benchmark", "run", run.ID, "strategy", run.Strategy, "tasks", len(ts))

	var runErr error
	for i, task := range ts {
		// Check for context cancellation between tasks.
		if err := ctx.Err(); err != nil {
			slog.Warn("benchmark cancelled", "completed", i, "total", len(ts))
			runErr = fmt.Errorf("benchmark cancelled: %w", err)
			break
		}

		if r.progress != nil {
			r.progress(i+1, len(ts))
		}

		rec, err := r.runTask(ctx, task)
		if err != nil {
			slog.Error("task failed", "task", task.Index, "error", err)
			rec.Error = err.Error()
		}
		run.Records = append(run.Records, rec)

		if r.sink != nil {
			if werr := r.sink.WriteRecord(run, &run.Records[len(run.Records)-1]); werr != nil {
				return run, fmt.Errorf("failed to write result of task %d: %w", task.Index, werr)
			}
		}

		if err != nil && r.failFast {
			runErr = fmt.Errorf("task %d failed: %w", task.Index, err)
			break
		}
	}

	samples := make([]metrics.Sample, len(run.Records))
	for i, rec := range run.Records {
		samples[i] = rec.sample()
	}
	run.Summary = metrics.Summarize(samples)
	run.DurationMS = metrics.Milliseconds(time.Since(run.Started))

	if r.sink != nil {
		if err := r.sink.WriteSummary(run); err != nil {
			return run, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	slog.Info("benchmark complete",
		"run", run.ID,
		"tasks", run.Summary.Tasks,
		"failed_tasks", run.Summary.FailedTasks,
		"failed_calls", run.Summary.FailedCalls,
	)

	return run, runErr
}

func (r *Runner) runTask(ctx context.Context, task tasks.Task) (Record, error) {
	rec := Record{Index: task.Index, Prompt: task.Label()}

	serial, err := r.bench.RunSerial(ctx, task)
	if err != nil {
		return rec, err
	}
	rec.SerialPrompt = serial.Prompt
	rec.SerialOutput = serial.Output
	rec.SerialTokens = serial.Tokens
	rec.SerialDuration = serial.Duration
	rec.SerialDurationMS = metrics.Milliseconds(serial.Duration)

	parallel, err := r.bench.RunParallel(ctx, task)
	if parallel != nil {
		rec.Calls = parallel.Calls
		rec.ParallelDuration = parallel.Duration
		rec.TotalParallelDurationMS = metrics.Milliseconds(parallel.Duration)
		rec.TotalParallelTokens = parallel.Tokens
		rec.FailedCalls = parallel.Failed
		rec.Schema = parallel.Schema
	}
	if err != nil {
		return rec, err
	}

	rec.Speedup = metrics.Speedup(rec.SerialDuration, rec.ParallelDuration)
	rec.NormalizedSpeedup = metrics.NormalizedSpeedup(rec.SerialDuration, rec.SerialTokens, rec.ParallelDuration, rec.TotalParallelTokens)

	slog.Debug("task complete",
		"task", task.Index,
		"serial_tokens", rec.SerialTokens,
		"parallel_tokens", rec.TotalParallelTokens,
		"calls", len(rec.Calls),
		"failed_calls", rec.FailedCalls,
	)
	return rec, nil
}
