package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    *Schema
		wantErr bool
	}{
		{
			name:  "plain",
			reply: `{"context": "Generate 1 idea", "n": 3}`,
			want:  &Schema{Context: "Generate 1 idea", N: 3},
		},
		{
			name:  "fenced",
			reply: "```json\n{\"context\": \"Write 1 line\", \"n\": 30}\n```\n",
			want:  &Schema{Context: "Write 1 line", N: 30},
		},
		{name: "not json", reply: "Sure! Here is the schema.", wantErr: true},
		{name: "missing n", reply: `{"context": "x"}`, wantErr: true},
		{name: "fractional n", reply: `{"context": "x", "n": 2.5}`, wantErr: true},
		{name: "negative n", reply: `{"context": "x", "n": -1}`, wantErr: true},
		{name: "empty context", reply: `{"context": "", "n": 2}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchema(tt.reply)
			if tt.wantErr {
				var schemaErr *SchemaError
				require.ErrorAs(t, err, &schemaErr)
				assert.Equal(t, tt.reply, schemaErr.Reply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrimReply(t *testing.T) {
	assert.Equal(t, `{"a":1}`, TrimReply("  {\"a\":1}\n"))
	assert.Equal(t, `{"a":1}`, TrimReply("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, TrimReply("```json\n{\"a\":1}```"))
}
