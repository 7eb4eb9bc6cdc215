package judge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/testutil"
)

func TestParseVerdict(t *testing.T) {
	reply := `{"accuracy": 1, "grammar": 2, "detail": 0, "preference": 1, "reasoning": "first is better"}`

	v, err := parseVerdict(reply, true)
	require.NoError(t, err)
	assert.Equal(t, WinnerSerial, v.Accuracy)
	assert.Equal(t, WinnerParallel, v.Grammar)
	assert.Equal(t, WinnerTie, v.Detail)
	assert.Equal(t, WinnerSerial, v.Preference)
	assert.Equal(t, "first is better", v.Reasoning)

	// Parallel was shown first, so "1" means parallel.
	v, err = parseVerdict("```json\n"+reply+"\n```", false)
	require.NoError(t, err)
	assert.Equal(t, WinnerParallel, v.Accuracy)
	assert.Equal(t, WinnerSerial, v.Grammar)
	assert.Equal(t, WinnerTie, v.Detail)
}

func TestParseVerdictInvalid(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose", "Response 1 is better."},
		{"out of range", `{"accuracy": 3, "grammar": 0, "detail": 0, "preference": 0, "reasoning": ""}`},
		{"missing reasoning", `{"accuracy": 1, "grammar": 0, "detail": 0, "preference": 0}`},
		{"string score", `{"accuracy": "1", "grammar": 0, "detail": 0, "preference": 0, "reasoning": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVerdict(tt.reply, true)
			assert.Error(t, err)
		})
	}
}

func resultsRun() *bench.Run {
	return &bench.Run{
		ID: "run-1",
		Records: []bench.Record{
			{
				Index:        0,
				Prompt:       "Write 2 taglines",
				SerialOutput: "SERIAL",
				Calls: []bench.CallResult{
					{Index: 0, Output: "P1"},
					{Index: 1, Error: "boom"},
					{Index: 2, Output: "P2"},
				},
			},
			{Index: 1, Prompt: "broken", Error: "missing serial"},
			{Index: 2, Prompt: "Write 1 poem", SerialOutput: "SERIAL", Calls: []bench.CallResult{{Output: "P3"}}},
		},
	}
}

func TestJudge(t *testing.T) {
	client := &testutil.MockLLMClient{}
	j := NewJudge(client, Config{Seed: 7, Concurrency: 2})

	out, err := j.Judge(context.Background(), resultsRun(), "results.json")
	require.NoError(t, err)

	require.Len(t, out.Judgements, 2)
	assert.Equal(t, 2, client.Calls())
	assert.Equal(t, "P1\n\nP2", out.Judgements[0].ParallelResponse)
	assert.Equal(t, DefaultJudgeModel, out.Metadata.JudgeModel)
	assert.Equal(t, "run-1", out.Metadata.RunID)

	// The mock reply is not a verdict, so nothing is counted.
	assert.Equal(t, 2, out.Stats.Failed)
	assert.Equal(t, 0, out.Stats.Judged)
	for _, jd := range out.Judgements {
		assert.NotEmpty(t, jd.ParseErr)
		assert.Nil(t, jd.Verdict)
	}

	for _, req := range client.Requests() {
		assert.Equal(t, SystemPrompt, req.SystemMessage)
		require.NotNil(t, req.Temperature)
		assert.Zero(t, *req.Temperature)
	}
}

func TestJudgeMapsShuffledResponses(t *testing.T) {
	// The judge always prefers the response containing SERIAL.
	client := funcClient(func(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		pick := 2
		if strings.Contains(req.UserMessage, "Response 1: SERIAL") {
			pick = 1
		}
		reply, _ := json.Marshal(map[string]any{
			"accuracy": pick, "grammar": 0, "detail": 3 - pick, "preference": pick, "reasoning": "serial reads better",
		})
		return &llm.ChatResponse{Content: string(reply)}, nil
	})

	j := NewJudge(client, Config{Seed: 42})
	out, err := j.Judge(context.Background(), resultsRun(), "results.json")
	require.NoError(t, err)

	assert.Equal(t, 2, out.Stats.Judged)
	assert.Equal(t, CriterionStats{Serial: 2}, out.Stats.Accuracy)
	assert.Equal(t, CriterionStats{Tie: 2}, out.Stats.Grammar)
	assert.Equal(t, CriterionStats{Parallel: 2}, out.Stats.Detail)
	assert.Equal(t, CriterionStats{Serial: 2}, out.Stats.Preference)
}

func TestJudgeSeedIsDeterministic(t *testing.T) {
	order := func(seed uint64) []bool {
		out, err := NewJudge(&testutil.MockLLMClient{}, Config{Seed: seed}).Judge(context.Background(), resultsRun(), "")
		require.NoError(t, err)
		var got []bool
		for _, jd := range out.Judgements {
			got = append(got, jd.SerialFirst)
		}
		return got
	}
	assert.Equal(t, order(3), order(3))
}

func TestJudgeFileAndWrite(t *testing.T) {
	dir := t.TempDir()
	resultsFile := filepath.Join(dir, "results.json")

	data, err := json.Marshal(resultsRun())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(resultsFile, data, 0o644))

	j := NewJudge(&testutil.MockLLMClient{}, Config{})
	out, err := j.JudgeFile(context.Background(), resultsFile)
	require.NoError(t, err)
	assert.Len(t, out.Judgements, 2)

	path, err := WriteJudgementFile(out, resultsFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results_judgements.json"), path)
	assert.FileExists(t, path)
}

func TestJudgeFileMissing(t *testing.T) {
	j := NewJudge(&testutil.MockLLMClient{}, Config{})
	_, err := j.JudgeFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// funcClient adapts a function to llm.Client.
type funcClient func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)

func (f funcClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return f(ctx, req)
}
