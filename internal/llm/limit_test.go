package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowClient tracks the peak number of concurrent calls.
type slowClient struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *slowClient) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if cur <= p || s.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	time.Sleep(s.delay)
	return &ChatResponse{Content: "ok"}, nil
}

func TestLimitedClientCapsInFlight(t *testing.T) {
	inner := &slowClient{delay: 20 * time.Millisecond}
	client := NewLimitedClient(inner, WithMaxInFlight(2))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ChatCompletion(context.Background(), ChatRequest{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, inner.peak.Load(), int32(2))
	assert.GreaterOrEqual(t, inner.peak.Load(), int32(1))
}

func TestLimitedClientUnbounded(t *testing.T) {
	inner := &slowClient{}
	client := NewLimitedClient(inner, WithMaxInFlight(0), WithRateLimit(0, 0))
	assert.Nil(t, client.sem)
	assert.Nil(t, client.limiter)

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestLimitedClientHonoursContext(t *testing.T) {
	client := NewLimitedClient(&slowClient{}, WithRateLimit(0.001, 1))

	// Drain the single burst token.
	_, err := client.ChatCompletion(context.Background(), ChatRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.ChatCompletion(ctx, ChatRequest{})
	assert.Error(t, err)
}
