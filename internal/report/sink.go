// Package report writes benchmark results to files and the console.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/parallel-prompt/internal/bench"
)

// Format is an artifact format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat resolves name to a Format. An empty name infers the format
// from the extension of path, defaulting to JSON.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		case ".txt", ".log":
			return FormatText, nil
		default:
			return FormatJSON, nil
		}
	}
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, valid options are: json, yaml, text", name)
	}
}

// Open creates the artifact at path. The returned sink must be closed.
func Open(path string, format Format) (bench.Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case FormatJSON, FormatYAML:
		marshal := marshalJSON
		if format == FormatYAML {
			marshal = yaml.Marshal
		}
		s := &DocumentSink{path: path, marshal: marshal}
		// An empty document up front surfaces an unwritable path before any
		// request is sent.
		if err := s.write(&bench.Run{Records: []bench.Record{}}); err != nil {
			return nil, err
		}
		return s, nil
	case FormatText:
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return &TextSink{file: f, w: bufio.NewWriter(f)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}

// DocumentSink keeps the whole run in one JSON or YAML document. The file is
// rewritten after every record so completed tasks survive a later failure.
type DocumentSink struct {
	path    string
	marshal func(any) ([]byte, error)
}

func (s *DocumentSink) WriteRecord(run *bench.Run, _ *bench.Record) error {
	return s.write(run)
}

func (s *DocumentSink) WriteSummary(run *bench.Run) error {
	return s.write(run)
}

func (s *DocumentSink) Close() error {
	return nil
}

func (s *DocumentSink) write(run *bench.Run) error {
	data, err := s.marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// TextSink streams a human-readable log.
type TextSink struct {
	file *os.File
	w    *bufio.Writer
}

func (s *TextSink) WriteRecord(_ *bench.Run, rec *bench.Record) error {
	fmt.Fprintf(s.w, "Prompt %d:\n%s\n", rec.Index+1, rec.Prompt)
	if rec.Schema != nil {
		fmt.Fprintf(s.w, "Schema: n=%d context=%q\n", rec.Schema.N, rec.Schema.Context)
	}
	if rec.Error != "" {
		fmt.Fprintf(s.w, "Error: %s\n\n", rec.Error)
		return s.w.Flush()
	}
	fmt.Fprintf(s.w, "Serial duration: %.0f ms\n", rec.SerialDurationMS)
	fmt.Fprintf(s.w, "Serial tokens: %d\n", rec.SerialTokens)
	fmt.Fprintf(s.w, "Parallel duration: %.0f ms\n", rec.TotalParallelDurationMS)
	fmt.Fprintf(s.w, "Parallel tokens: %d\n", rec.TotalParallelTokens)
	if rec.FailedCalls > 0 {
		fmt.Fprintf(s.w, "Failed calls: %d of %d\n", rec.FailedCalls, len(rec.Calls))
	}
	fmt.Fprintf(s.w, "Speedup: %s\n", FormatRatio(rec.Speedup))
	fmt.Fprintf(s.w, "Normalized speedup: %s\n\n", FormatRatio(rec.NormalizedSpeedup))
	return s.w.Flush()
}

func (s *TextSink) WriteSummary(run *bench.Run) error {
	sum := run.Summary
	if sum.Tasks == 0 {
		fmt.Fprintf(s.w, "No tasks measured (%d failed)\n", sum.FailedTasks)
		return s.w.Flush()
	}
	fmt.Fprintf(s.w, "Average Serial duration: %s\n", formatMS(sum.AvgSerialDuration))
	fmt.Fprintf(s.w, "Average Parallel duration: %s\n", formatMS(sum.AvgParallelDuration))
	fmt.Fprintf(s.w, "Average Serial tokens: %s\n", formatFloat(sum.AvgSerialTokens))
	fmt.Fprintf(s.w, "Average Parallel tokens: %s\n", formatFloat(sum.AvgParallelTokens))
	fmt.Fprintf(s.w, "Average Speedup: %s\n", FormatRatio(sum.Speedup))
	fmt.Fprintf(s.w, "Average Normalized speedup: %s\n", FormatRatio(sum.NormalizedSpeedup))
	fmt.Fprintf(s.w, "Failed tasks: %d\nFailed calls: %d\n", sum.FailedTasks, sum.FailedCalls)
	return s.w.Flush()
}

func (s *TextSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// FormatRatio formats a speedup, or "n/a" when it is undefined.
func FormatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", *v)
}

func formatMS(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f ms", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
