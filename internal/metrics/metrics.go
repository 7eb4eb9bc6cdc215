// Package metrics derives speedup figures from serial and parallel timings.
package metrics

import (
	"time"
)

// Speedup returns serial / parallel, or nil when parallel is zero.
func Speedup(serial, parallel time.Duration) *float64 {
	if parallel <= 0 {
		return nil
	}
	v := float64(serial) / float64(parallel)
	return &v
}

// NormalizedSpeedup compares the time spent per completion token by both
// strategies: (serialDur/serialTokens) / (parallelDur/parallelTokens).
// It returns nil when any divisor is zero.
func NormalizedSpeedup(serialDur time.Duration, serialTokens int, parallelDur time.Duration, parallelTokens int) *float64 {
	if serialTokens <= 0 || parallelTokens <= 0 || parallelDur <= 0 {
		return nil
	}
	perSerial := float64(serialDur) / float64(serialTokens)
	perParallel := float64(parallelDur) / float64(parallelTokens)
	v := perSerial / perParallel
	return &v
}

// Sample is the measurement of one task.
type Sample struct {
	SerialDuration   time.Duration
	SerialTokens     int
	ParallelDuration time.Duration
	ParallelTokens   int
	FailedCalls      int
	// Failed marks a task that produced no measurement. It is counted but
	// excluded from the averages.
	Failed bool
}

// Summary holds cross-task averages. Durations are in milliseconds. Derived
// fields are nil when no task was measured.
type Summary struct {
	Tasks       int `json:"tasks" yaml:"tasks"`
	FailedTasks int `json:"failed_tasks" yaml:"failed_tasks"`
	FailedCalls int `json:"failed_calls" yaml:"failed_calls"`

	AvgSerialDuration   *float64 `json:"avg_serial_duration_ms" yaml:"avg_serial_duration_ms"`
	AvgParallelDuration *float64 `json:"avg_parallel_duration_ms" yaml:"avg_parallel_duration_ms"`
	AvgSerialTokens     *float64 `json:"avg_serial_tokens" yaml:"avg_serial_tokens"`
	AvgParallelTokens   *float64 `json:"avg_parallel_tokens" yaml:"avg_parallel_tokens"`

	Speedup           *float64 `json:"speedup" yaml:"speedup"`
	NormalizedSpeedup *float64 `json:"normalized_speedup" yaml:"normalized_speedup"`
}

// Summarize averages the measured samples. The aggregate speedups are
// computed from the totals, which equals the ratio of the averages.
func Summarize(samples []Sample) Summary {
	var (
		s                            Summary
		serialDur, parallelDur       time.Duration
		serialTokens, parallelTokens int
	)

	for _, smp := range samples {
		s.FailedCalls += smp.FailedCalls
		if smp.Failed {
			s.FailedTasks++
			continue
		}
		s.Tasks++
		serialDur += smp.SerialDuration
		parallelDur += smp.ParallelDuration
		serialTokens += smp.SerialTokens
		parallelTokens += smp.ParallelTokens
	}

	if s.Tasks == 0 {
		return s
	}

	n := float64(s.Tasks)
	s.AvgSerialDuration = ptr(Milliseconds(serialDur) / n)
	s.AvgParallelDuration = ptr(Milliseconds(parallelDur) / n)
	s.AvgSerialTokens = ptr(float64(serialTokens) / n)
	s.AvgParallelTokens = ptr(float64(parallelTokens) / n)
	s.Speedup = Speedup(serialDur, parallelDur)
	s.NormalizedSpeedup = NormalizedSpeedup(serialDur, serialTokens, parallelDur, parallelTokens)
	return s
}

// Milliseconds returns d as fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func ptr(v float64) *float64 {
	return &v
}
