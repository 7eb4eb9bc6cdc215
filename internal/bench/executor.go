package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/metrics"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
	"github.com/giantswarm/parallel-prompt/internal/template"
)

// SerialResult is the outcome of the serial phase of a task.
type SerialResult struct {
	Prompt   string
	Output   string
	Tokens   int
	Duration time.Duration
}

// CallResult is the outcome of one parallel call. Results are stored by
// call index, never by completion order.
type CallResult struct {
	Index    int           `json:"index" yaml:"index"`
	Letter   string        `json:"letter,omitempty" yaml:"letter,omitempty"`
	Prompt   string        `json:"prompt" yaml:"prompt"`
	Output   string        `json:"output" yaml:"output"`
	Tokens   int           `json:"tokens" yaml:"tokens"`
	Duration time.Duration `json:"-" yaml:"-"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`

	// DurationMS mirrors Duration in artifacts.
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`
}

// ParallelResult is the outcome of the parallel phase of a task.
type ParallelResult struct {
	Calls []CallResult
	// Duration spans the whole phase, schema extraction included.
	Duration time.Duration
	// Tokens sums the completion tokens of the successful calls.
	Tokens int
	Failed int
	Schema *Schema
}

// BatchError is returned when every call of a parallel batch failed.
type BatchError struct {
	Calls int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("all %d parallel calls failed: %v", e.Calls, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Bench runs the serial and parallel phases of a task.
type Bench struct {
	client   llm.Client
	model    string
	strategy Strategy
}

// NewBench creates a Bench. An empty model leaves the choice to the client.
func NewBench(client llm.Client, strategy Strategy, model string) *Bench {
	return &Bench{
		client:   client,
		model:    model,
		strategy: strategy,
	}
}

// RunSerial issues the single serial call of task.
func (b *Bench) RunSerial(ctx context.Context, task tasks.Task) (*SerialResult, error) {
	prompt, err := b.strategy.SerialRequest(task)
	if err != nil {
		return nil, err
	}
	user, err := b.text(task, prompt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := b.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         b.model,
		SystemMessage: SerialSystemPrompt(task.Kind),
		UserMessage:   user,
		MaxTokens:     SerialMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("serial call for task %d failed: %w", task.Index, err)
	}

	return &SerialResult{
		Prompt:   user,
		Output:   resp.Content,
		Tokens:   resp.CompletionTokens,
		Duration: time.Since(start),
	}, nil
}

// RunParallel plans the parallel calls of task and runs them all
// concurrently, waiting for every one of them. A failed call is recorded in
// its CallResult; only a batch in which every call failed is an error.
func (b *Bench) RunParallel(ctx context.Context, task tasks.Task) (*ParallelResult, error) {
	start := time.Now()

	plan, err := b.strategy.ParallelRequests(ctx, b.client, task)
	if err != nil {
		return nil, err
	}

	calls := make([]CallResult, len(plan.Calls))
	prompts := make([]string, len(plan.Calls))
	for i, spec := range plan.Calls {
		if prompts[i], err = b.text(task, spec.User); err != nil {
			return nil, err
		}
	}

	// Every goroutine owns calls[i]; nothing else is shared until Wait.
	var g errgroup.Group
	for i, spec := range plan.Calls {
		g.Go(func() error {
			callStart := time.Now()
			resp, err := b.client.ChatCompletion(ctx, llm.ChatRequest{
				Model:         b.model,
				SystemMessage: spec.System,
				UserMessage:   prompts[i],
				MaxTokens:     ParallelMaxTokens,
			})
			elapsed := time.Since(callStart)
			calls[i] = CallResult{
				Index:      spec.Index,
				Letter:     spec.Letter,
				Prompt:     prompts[i],
				Duration:   elapsed,
				DurationMS: metrics.Milliseconds(elapsed),
			}
			if err != nil {
				calls[i].Error = err.Error()
				slog.Warn("parallel call failed", "task", task.Index, "call", i, "error", err)
				return nil
			}
			calls[i].Output = resp.Content
			calls[i].Tokens = resp.CompletionTokens
			return nil
		})
	}
	_ = g.Wait()

	result := &ParallelResult{
		Calls:    calls,
		Duration: time.Since(start),
		Schema:   plan.Schema,
	}
	var lastErr string
	for _, c := range calls {
		if c.Error != "" {
			result.Failed++
			lastErr = c.Error
			continue
		}
		result.Tokens += c.Tokens
	}

	if len(calls) > 0 && result.Failed == len(calls) {
		if err := ctx.Err(); err != nil {
			return result, &BatchError{Calls: len(calls), Err: err}
		}
		return result, &BatchError{Calls: len(calls), Err: errors.New(lastErr)}
	}
	return result, nil
}

func (b *Bench) text(task tasks.Task, p template.Prompt) (string, error) {
	if left := p.Placeholders(); len(left) > 0 {
		slog.Debug("prompt has unsubstituted placeholders", "task", task.Index, "placeholders", left)
	}
	text, err := p.Text()
	if err != nil {
		return "", fmt.Errorf("failed to decode prompt of task %d: %w", task.Index, err)
	}
	return text, nil
}
