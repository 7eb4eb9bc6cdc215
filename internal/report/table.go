package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/judge"
	"github.com/giantswarm/parallel-prompt/internal/metrics"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// RenderSummary prints the per-task results and the averages of run.
func RenderSummary(w io.Writer, run *bench.Run) error {
	bold.Fprintf(w, "\nRun %s (%s)\n", run.ID, run.Strategy)

	table := tablewriter.NewWriter(w)
	table.Header("Task", "Serial ms", "Serial tokens", "Parallel ms", "Parallel tokens", "Calls", "Speedup", "Normalized")
	for _, rec := range run.Records {
		if rec.Error != "" {
			_ = table.Append(strconv.Itoa(rec.Index+1), "failed", "", "", "", "", "", "")
			continue
		}
		_ = table.Append(
			strconv.Itoa(rec.Index+1),
			fmt.Sprintf("%.0f", rec.SerialDurationMS),
			strconv.Itoa(rec.SerialTokens),
			fmt.Sprintf("%.0f", rec.TotalParallelDurationMS),
			strconv.Itoa(rec.TotalParallelTokens),
			callsCell(rec),
			FormatRatio(rec.Speedup),
			FormatRatio(rec.NormalizedSpeedup),
		)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render results table: %w", err)
	}

	return renderAverages(w, run.Summary)
}

func callsCell(rec bench.Record) string {
	if rec.FailedCalls == 0 {
		return strconv.Itoa(len(rec.Calls))
	}
	return fmt.Sprintf("%d (%d failed)", len(rec.Calls), rec.FailedCalls)
}

func renderAverages(w io.Writer, sum metrics.Summary) error {
	if sum.Tasks == 0 {
		red.Fprintf(w, "No tasks measured (%d failed)\n", sum.FailedTasks)
		return nil
	}

	bold.Fprintln(w, "Averages")
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Tasks", strconv.Itoa(sum.Tasks)},
		{"Failed tasks", strconv.Itoa(sum.FailedTasks)},
		{"Failed calls", strconv.Itoa(sum.FailedCalls)},
		{"Serial duration", formatMS(sum.AvgSerialDuration)},
		{"Parallel duration", formatMS(sum.AvgParallelDuration)},
		{"Serial tokens", formatFloat(sum.AvgSerialTokens)},
		{"Parallel tokens", formatFloat(sum.AvgParallelTokens)},
		{"Speedup", FormatRatio(sum.Speedup)},
		{"Normalized speedup", FormatRatio(sum.NormalizedSpeedup)},
	}
	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render averages table: %w", err)
	}

	if sum.Speedup != nil && *sum.Speedup > 1 {
		green.Fprintf(w, "Parallel was %s faster on average\n", FormatRatio(sum.Speedup))
	}
	return nil
}

// RenderSweep prints one row per N.
func RenderSweep(w io.Writer, points []bench.SweepPoint) error {
	bold.Fprintln(w, "\nSpeedup by number of parallel calls")

	table := tablewriter.NewWriter(w)
	table.Header("N", "Tasks", "Serial ms", "Parallel ms", "Serial tokens", "Parallel tokens", "Speedup", "Normalized")
	for _, p := range points {
		s := p.Summary
		_ = table.Append(
			strconv.Itoa(p.N),
			strconv.Itoa(s.Tasks),
			formatMS(s.AvgSerialDuration),
			formatMS(s.AvgParallelDuration),
			formatFloat(s.AvgSerialTokens),
			formatFloat(s.AvgParallelTokens),
			FormatRatio(s.Speedup),
			FormatRatio(s.NormalizedSpeedup),
		)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render sweep table: %w", err)
	}
	return nil
}

// RenderJudgeStats prints the winners of every judged criterion.
func RenderJudgeStats(w io.Writer, stats judge.Stats) error {
	bold.Fprintf(w, "\nJudged %d tasks (%d failed)\n", stats.Judged, stats.Failed)

	table := tablewriter.NewWriter(w)
	table.Header("Criterion", "Serial wins", "Parallel wins", "Ties")
	criteria := []struct {
		name  string
		stats judge.CriterionStats
	}{
		{"Accuracy", stats.Accuracy},
		{"Grammar", stats.Grammar},
		{"Detail", stats.Detail},
		{"Preference", stats.Preference},
	}
	for _, c := range criteria {
		_ = table.Append(c.name, strconv.Itoa(c.stats.Serial), strconv.Itoa(c.stats.Parallel), strconv.Itoa(c.stats.Tie))
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render judgement table: %w", err)
	}
	return nil
}
