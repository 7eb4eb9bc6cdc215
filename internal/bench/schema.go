package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/template"
)

// Schema is the parallel decomposition of a free-form request: the request
// rewritten to ask for one item, and the number of items asked for.
type Schema struct {
	Context string `json:"context" yaml:"context"`
	N       int    `json:"n" yaml:"n"`
}

var schemaDefinition = map[string]any{
	"type":     "object",
	"required": []string{"context", "n"},
	"properties": map[string]any{
		"context": map[string]any{"type": "string", "minLength": 1},
		"n":       map[string]any{"type": "integer", "minimum": 0},
	},
}

// SchemaError is returned when the schema reply cannot be used.
type SchemaError struct {
	Reply string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema reply %q: %v", e.Reply, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ExtractSchema asks model to decompose original into a Schema.
func ExtractSchema(ctx context.Context, client llm.Client, model, original string) (*Schema, error) {
	prompt, err := template.New(schemaPrompt).With("input", original).Text()
	if err != nil {
		return nil, fmt.Errorf("failed to render schema prompt: %w", err)
	}

	resp, err := client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         model,
		SystemMessage: defaultSystemPrompt,
		UserMessage:   prompt,
		MaxTokens:     SchemaMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("schema extraction failed: %w", err)
	}

	return ParseSchema(resp.Content)
}

// ParseSchema validates a schema reply.
func ParseSchema(reply string) (*Schema, error) {
	doc := TrimReply(reply)

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schemaDefinition),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return nil, &SchemaError{Reply: reply, Err: err}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &SchemaError{Reply: reply, Err: fmt.Errorf("schema validation failed: %s", strings.Join(details, "; "))}
	}

	var s Schema
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, &SchemaError{Reply: reply, Err: err}
	}
	return &s, nil
}

// TrimReply strips whitespace and a surrounding markdown code fence from a
// model reply that should hold a JSON document.
func TrimReply(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string, e.g. ```json.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
