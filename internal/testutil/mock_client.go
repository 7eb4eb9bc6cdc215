// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/parallel-prompt/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
// It is safe for concurrent use.
type MockLLMClient struct {
	// Responses maps user messages to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Tokens is the completion token count reported for every response.
	// When zero, the number of words in the response is used.
	Tokens int

	// FailWhen makes the call fail when it returns true.
	FailWhen func(req llm.ChatRequest) bool

	// Delay is slept before answering.
	Delay time.Duration

	mu       sync.Mutex
	requests []llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	if m.FailWhen != nil && m.FailWhen(req) {
		return nil, fmt.Errorf("mock failure for %q", req.UserMessage)
	}

	content, ok := m.Responses[req.UserMessage]
	if !ok {
		content = m.DefaultResponse
	}
	if content == "" {
		content = "mock response"
	}

	tokens := m.Tokens
	if tokens == 0 {
		tokens = len(strings.Fields(content))
	}

	return &llm.ChatResponse{Content: content, CompletionTokens: tokens, Model: req.Model}, nil
}

// Calls returns the number of ChatCompletion invocations.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received so far.
func (m *MockLLMClient) Requests() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return llm.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}
