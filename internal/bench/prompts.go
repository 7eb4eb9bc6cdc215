package bench

import (
	"github.com/giantswarm/parallel-prompt/internal/tasks"
)

const (
	// SerialMaxTokens is the completion budget of the single serial call.
	SerialMaxTokens = 4000
	// ParallelMaxTokens is the completion budget of every parallel call.
	ParallelMaxTokens = 1000
	// SchemaMaxTokens is the completion budget of the schema extraction call.
	SchemaMaxTokens = 1024

	// DefaultModel answers the benchmark prompts.
	DefaultModel = "gpt-4-0125-preview"
	// DefaultSchemaModel extracts the parallel schema in the e2e strategy.
	DefaultSchemaModel = "gpt-4o-mini"
)

const defaultSystemPrompt = "You are a helpful assistant."

// SerialSystemPrompt returns the system prompt of the serial call.
func SerialSystemPrompt(kind tasks.Kind) string {
	switch kind {
	case tasks.KindKeywordExtraction:
		return "You are a helpful assistant specializing in keyword extraction. Do not include any irrelevant information"
	case tasks.KindReadingComprehension:
		return "You are a helpful assistant specializing in reading comprehension. Provide concise and accurate answers based on the given context"
	default:
		return defaultSystemPrompt
	}
}

// ParallelSystemPrompt returns the system prompt of parallel call i.
// generate_n calls are nudged towards distinct answers by asking each one to
// start with a different letter.
func ParallelSystemPrompt(kind tasks.Kind, i int) string {
	switch kind {
	case tasks.KindKeywordExtraction:
		return "You are a helpful assistant specializing in keyword extraction. Only extract values for the given keyword and do not include any irrelevant information"
	case tasks.KindReadingComprehension:
		return "You are a helpful assistant specializing in reading comprehension. Provide extremely concise and accurate answers based on the given context"
	case tasks.KindGenerateN:
		return "You are a helpful assistant.  Provide concise and accurate answers based on the given context and do not include irrelevant information. Try to make your response start with the letter " + Letter(i)
	default:
		return "You are a helpful assistant. Provide accurate and relevant information based on the given task"
	}
}

// SweepSystemPrompt returns the system prompt of parallel call i in a sweep.
func SweepSystemPrompt(i int) string {
	return defaultSystemPrompt + " Try to make your response start with the letter " + Letter(i)
}

// Letter returns the letter hint of call i, cycling through A..Z.
func Letter(i int) string {
	if i < 0 {
		i = -i
	}
	return string(rune('A' + i%26))
}

const schemaPrompt = `Rewrite the following request into the schema below so that it can be answered by several independent calls. Do not answer the request. Reply with the schema only, as a JSON object, and nothing else.
Schema:
{
  "context": "<the request rewritten to ask for exactly one item>",
  "n": <the number of items originally requested>
}

Examples:
Input: Generate 3 ideas for social media posts for a local bakery named NAME_1
Schema:
{
  "context": "Generate 1 idea for social media posts for a local bakery named NAME_1",
  "n": 3
}
Input: generate 30 sentences with word "captivating" with upper-intermediate lexis
Schema:
{
  "context": "generate 1 sentence with word \"captivating\" with upper-intermediate lexis",
  "n": 30
}

Input: {input}`
