package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

// fakeOpenAI answers every chat completion with five completion tokens.
func fakeOpenAI(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c","object":"chat.completion","model":"fake","choices":[{"index":0,"message":{"role":"assistant","content":"one two three four five"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":5,"total_tokens":8}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeRoot(t, newRootCmd(), args...)
}

func executeRoot(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseBenchmarkKind(t *testing.T) {
	kind, err := parseBenchmarkKind("generate_n")
	require.NoError(t, err)
	assert.Equal(t, tasks.KindGenerateN, kind)

	for _, name := range []string{"default", "summarize", ""} {
		_, err := parseBenchmarkKind(name)
		var invalid *tasks.InvalidKindError
		assert.ErrorAs(t, err, &invalid, name)
	}
}

func TestLoadTasksFallsBackToEmpty(t *testing.T) {
	assert.Empty(t, loadTasks(filepath.Join(t.TempDir(), "missing.json"), tasks.KindGenerateN, 0))

	ts := loadTasks("keyword_extraction.json", tasks.KindKeywordExtraction, 1)
	assert.Len(t, ts, 1)
}

func TestCompareRequiresFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "compare", "--queries", "keyword_extraction.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestCompareRejectsInvalidTask(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "compare", "--queries", "q.json", "--task", "summarize", "--output", "out.json")
	var invalid *tasks.InvalidKindError
	assert.ErrorAs(t, err, &invalid)
}

func TestCompareWritesResults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	srv, calls := fakeOpenAI(t)

	output := filepath.Join(dir, "out", "keywords.json")
	out, err := execute(t, "compare",
		"--endpoint", srv.URL, "--api-key", "test",
		"--queries", "keyword_extraction.json", "--task", "keyword_extraction",
		"--output", output,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Results written to")

	// Two tasks with three keywords each: 2 serial + 6 parallel calls.
	assert.EqualValues(t, 8, calls.Load())

	var doc struct {
		Results []struct {
			SerialTokens        int `json:"serial_num_tokens"`
			TotalParallelTokens int `json:"total_parallel_tokens"`
		} `json:"results"`
		Averages struct {
			Tasks int `json:"tasks"`
		} `json:"averages"`
	}
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Results, 2)
	assert.Equal(t, 5, doc.Results[0].SerialTokens)
	assert.Equal(t, 15, doc.Results[0].TotalParallelTokens)
	assert.Equal(t, 2, doc.Averages.Tasks)
}

func TestCompareMissingTaskFileProducesEmptySummary(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	srv, calls := fakeOpenAI(t)

	output := filepath.Join(dir, "empty.json")
	_, err := execute(t, "compare",
		"--endpoint", srv.URL, "--api-key", "test",
		"--queries", filepath.Join(dir, "missing.json"), "--task", "generate_n",
		"--output", output,
	)
	require.NoError(t, err)
	assert.Zero(t, calls.Load())

	var doc map[string]any
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	averages := doc["averages"].(map[string]any)
	assert.EqualValues(t, 0, averages["tasks"])
	assert.Nil(t, averages["speedup"])
}

func TestTasksCommand(t *testing.T) {
	out, err := execute(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "generate_n_schemas.json (3 tasks)")
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	root.Version = "1.2.3"
	out, err := executeRoot(t, root, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "parallel-prompt version 1.2.3")
}

func TestVersionCommandLinkTimeValuesWin(t *testing.T) {
	prevCommit, prevDate := buildCommit, buildDate
	t.Cleanup(func() { SetBuildInfo(prevCommit, prevDate) })
	SetBuildInfo("abc123", "2026-01-02")

	out, err := executeRoot(t, newRootCmd(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-01-02")
	assert.Regexp(t, `go:\s+go1\.`, out)
}
