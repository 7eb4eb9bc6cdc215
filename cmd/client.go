package cmd

import (
	"github.com/giantswarm/parallel-prompt/internal/config"
	"github.com/giantswarm/parallel-prompt/internal/llm"
)

// newLLMClient builds the client stack: retries wrap the in-flight and rate
// gate, so a call waiting out its backoff holds no request slot.
func newLLMClient(cfg *config.Config) llm.Client {
	opts := []llm.Option{llm.WithBaseURL(cfg.Endpoint), llm.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, llm.WithAPIKey(cfg.APIKey))
	}

	limited := llm.NewLimitedClient(llm.NewOpenAIClient(opts...),
		llm.WithMaxInFlight(cfg.MaxInFlight),
		llm.WithRateLimit(cfg.RPS, cfg.Burst),
	)
	return llm.NewRetryClient(limited,
		llm.WithMaxAttempts(cfg.MaxAttempts),
		llm.WithInitialDelay(cfg.InitialBackoff),
	)
}
