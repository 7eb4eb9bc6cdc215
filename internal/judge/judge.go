// Package judge compares serial and parallel answers with an LLM as judge.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/llm"
)

// DefaultJudgeModel is the default model used for judging.
const DefaultJudgeModel = "gpt-4"

// DefaultConcurrency is the default number of judgements in flight.
const DefaultConcurrency = 4

// Config holds judging configuration.
type Config struct {
	Model       string
	Concurrency int
	// Seed fixes the order in which the two responses are shown.
	Seed uint64
}

// Winner is the outcome of one criterion.
type Winner string

const (
	WinnerTie      Winner = "tie"
	WinnerSerial   Winner = "serial"
	WinnerParallel Winner = "parallel"
)

// Verdict is a judgement mapped back to serial and parallel.
type Verdict struct {
	Accuracy   Winner `json:"accuracy"`
	Grammar    Winner `json:"grammar"`
	Detail     Winner `json:"detail"`
	Preference Winner `json:"preference"`
	Reasoning  string `json:"reasoning"`
}

// Judgement is the judge's view of one benchmark record.
type Judgement struct {
	Index            int      `json:"index"`
	Prompt           string   `json:"prompt"`
	SerialResponse   string   `json:"serial_response"`
	ParallelResponse string   `json:"parallel_response"`
	SerialFirst      bool     `json:"serial_shown_first"`
	Verdict          *Verdict `json:"verdict,omitempty"`
	RawOutput        string   `json:"raw_output,omitempty"`
	ParseErr         string   `json:"parse_error,omitempty"`
}

// CriterionStats counts the winners of one criterion.
type CriterionStats struct {
	Serial   int `json:"serial"`
	Parallel int `json:"parallel"`
	Tie      int `json:"tie"`
}

func (c *CriterionStats) add(w Winner) {
	switch w {
	case WinnerSerial:
		c.Serial++
	case WinnerParallel:
		c.Parallel++
	default:
		c.Tie++
	}
}

// Stats aggregates the parsed verdicts.
type Stats struct {
	Judged     int            `json:"judged"`
	Failed     int            `json:"failed"`
	Accuracy   CriterionStats `json:"accuracy"`
	Grammar    CriterionStats `json:"grammar"`
	Detail     CriterionStats `json:"detail"`
	Preference CriterionStats `json:"preference"`
}

// Output is the full judging output.
type Output struct {
	Metadata   Metadata    `json:"metadata"`
	Judgements []Judgement `json:"judgements"`
	Stats      Stats       `json:"stats"`
}

// Metadata holds information about the judging run.
type Metadata struct {
	Timestamp   string `json:"timestamp"`
	ResultsFile string `json:"results_file"`
	RunID       string `json:"run_id,omitempty"`
	JudgeModel  string `json:"judge_model"`
	Seed        uint64 `json:"seed"`
}

// Judge evaluates benchmark results using an LLM as judge.
type Judge struct {
	client llm.Client
	config Config
}

// NewJudge creates a new Judge.
func NewJudge(client llm.Client, config Config) *Judge {
	if config.Model == "" {
		config.Model = DefaultJudgeModel
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return &Judge{client: client, config: config}
}

// JudgeFile reads a JSON results file written by the compare command and
// judges it.
func (j *Judge) JudgeFile(ctx context.Context, resultsFile string) (*Output, error) {
	content, err := os.ReadFile(resultsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var run bench.Run
	if err := json.Unmarshal(content, &run); err != nil {
		return nil, fmt.Errorf("failed to parse results file %q: %w", resultsFile, err)
	}

	return j.Judge(ctx, &run, resultsFile)
}

// Judge evaluates every successful record of run. Judgements that fail are
// kept with a parse error and left out of the statistics.
func (j *Judge) Judge(ctx context.Context, run *bench.Run, resultsFile string) (*Output, error) {
	rng := rand.New(rand.NewPCG(j.config.Seed, j.config.Seed))

	var judgements []Judgement
	for _, rec := range run.Records {
		if rec.Error != "" {
			continue
		}
		judgements = append(judgements, Judgement{
			Index:            rec.Index,
			Prompt:           rec.Prompt,
			SerialResponse:   rec.SerialOutput,
			ParallelResponse: strings.Join(rec.ParallelOutputs(), "\n\n"),
			SerialFirst:      rng.IntN(2) == 0,
		})
	}

	slog.Info("judging results", "records", len(judgements), "model", j.config.Model)

	g := new(errgroup.Group)
	g.SetLimit(j.config.Concurrency)
	for i := range judgements {
		g.Go(func() error {
			j.evaluate(ctx, &judgements[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("judging cancelled: %w", err)
	}

	return &Output{
		Metadata: Metadata{
			Timestamp:   time.Now().Format(time.RFC3339),
			ResultsFile: resultsFile,
			RunID:       run.ID,
			JudgeModel:  j.config.Model,
			Seed:        j.config.Seed,
		},
		Judgements: judgements,
		Stats:      calculateStats(judgements),
	}, nil
}

func (j *Judge) evaluate(ctx context.Context, jd *Judgement) {
	first, second := jd.SerialResponse, jd.ParallelResponse
	if !jd.SerialFirst {
		first, second = second, first
	}

	resp, err := j.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         j.config.Model,
		SystemMessage: SystemPrompt,
		UserMessage:   fmt.Sprintf(userPromptFormat, jd.Prompt, first, second),
		Temperature:   llm.Float64Ptr(0),
	})
	if err != nil {
		slog.Error("judgement failed", "index", jd.Index, "error", err)
		jd.ParseErr = err.Error()
		return
	}
	jd.RawOutput = resp.Content

	verdict, err := parseVerdict(resp.Content, jd.SerialFirst)
	if err != nil {
		slog.Warn("could not parse judgement", "index", jd.Index, "error", err)
		jd.ParseErr = err.Error()
		return
	}
	jd.Verdict = verdict
}

// WriteJudgementFile writes the output as JSON next to the results file.
func WriteJudgementFile(output *Output, resultsFile string) (string, error) {
	judgementsFile := strings.TrimSuffix(resultsFile, filepath.Ext(resultsFile)) + "_judgements.json"

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal judgements: %w", err)
	}

	if err := os.WriteFile(judgementsFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write judgements file: %w", err)
	}

	return judgementsFile, nil
}

func calculateStats(judgements []Judgement) Stats {
	var s Stats
	for _, jd := range judgements {
		if jd.Verdict == nil {
			s.Failed++
			continue
		}
		s.Judged++
		s.Accuracy.add(jd.Verdict.Accuracy)
		s.Grammar.add(jd.Verdict.Grammar)
		s.Detail.add(jd.Verdict.Detail)
		s.Preference.add(jd.Verdict.Preference)
	}
	return s
}
