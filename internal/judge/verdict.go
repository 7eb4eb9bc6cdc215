package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/giantswarm/parallel-prompt/internal/bench"
)

var score = map[string]any{"type": "integer", "enum": []int{0, 1, 2}}

var verdictSchema = map[string]any{
	"type":     "object",
	"required": []string{"accuracy", "grammar", "detail", "preference", "reasoning"},
	"properties": map[string]any{
		"accuracy":   score,
		"grammar":    score,
		"detail":     score,
		"preference": score,
		"reasoning":  map[string]any{"type": "string"},
	},
}

// rawVerdict is the judge reply: 1 and 2 name the response shown first and
// second, 0 is a tie.
type rawVerdict struct {
	Accuracy   int    `json:"accuracy"`
	Grammar    int    `json:"grammar"`
	Detail     int    `json:"detail"`
	Preference int    `json:"preference"`
	Reasoning  string `json:"reasoning"`
}

func parseVerdict(reply string, serialFirst bool) (*Verdict, error) {
	doc := bench.TrimReply(reply)

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(verdictSchema), gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("judge reply is not JSON: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("judge reply failed validation: %s", strings.Join(details, "; "))
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, err
	}

	winner := func(v int) Winner {
		switch {
		case v == 0:
			return WinnerTie
		case (v == 1) == serialFirst:
			return WinnerSerial
		default:
			return WinnerParallel
		}
	}

	return &Verdict{
		Accuracy:   winner(raw.Accuracy),
		Grammar:    winner(raw.Grammar),
		Detail:     winner(raw.Detail),
		Preference: winner(raw.Preference),
		Reasoning:  raw.Reasoning,
	}, nil
}
