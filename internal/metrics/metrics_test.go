package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedup(t *testing.T) {
	tests := []struct {
		name     string
		serial   time.Duration
		parallel time.Duration
		want     *float64
	}{
		{"twice as fast", time.Second, 500 * time.Millisecond, ptr(2.0)},
		{"slower", time.Second, 4 * time.Second, ptr(0.25)},
		{"zero parallel", time.Second, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Speedup(tt.serial, tt.parallel)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestNormalizedSpeedup(t *testing.T) {
	got := NormalizedSpeedup(time.Second, 100, 500*time.Millisecond, 400)
	require.NotNil(t, got)
	assert.InDelta(t, 8.0, *got, 1e-9)

	assert.Nil(t, NormalizedSpeedup(time.Second, 0, time.Second, 10))
	assert.Nil(t, NormalizedSpeedup(time.Second, 10, 0, 10))
	assert.Nil(t, NormalizedSpeedup(time.Second, 10, time.Second, 0))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Sample{
		{SerialDuration: time.Second, SerialTokens: 100, ParallelDuration: 500 * time.Millisecond, ParallelTokens: 400},
		{SerialDuration: 3 * time.Second, SerialTokens: 300, ParallelDuration: 1500 * time.Millisecond, ParallelTokens: 1200, FailedCalls: 1},
		{Failed: true, FailedCalls: 2},
	})

	assert.Equal(t, 2, s.Tasks)
	assert.Equal(t, 1, s.FailedTasks)
	assert.Equal(t, 3, s.FailedCalls)

	require.NotNil(t, s.AvgSerialDuration)
	assert.InDelta(t, 2000.0, *s.AvgSerialDuration, 1e-9)
	assert.InDelta(t, 1000.0, *s.AvgParallelDuration, 1e-9)
	assert.InDelta(t, 200.0, *s.AvgSerialTokens, 1e-9)
	assert.InDelta(t, 800.0, *s.AvgParallelTokens, 1e-9)

	require.NotNil(t, s.Speedup)
	assert.InDelta(t, 2.0, *s.Speedup, 1e-9)
	require.NotNil(t, s.NormalizedSpeedup)
	assert.InDelta(t, 8.0, *s.NormalizedSpeedup, 1e-9)
}

func TestSummarizeNoTasks(t *testing.T) {
	for _, samples := range [][]Sample{nil, {{Failed: true}}} {
		s := Summarize(samples)
		assert.Equal(t, 0, s.Tasks)
		assert.Nil(t, s.AvgSerialDuration)
		assert.Nil(t, s.AvgParallelTokens)
		assert.Nil(t, s.Speedup)
		assert.Nil(t, s.NormalizedSpeedup)
	}
}
