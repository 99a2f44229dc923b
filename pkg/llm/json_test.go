package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"filters": []}`,
			want:  `{"filters": []}`,
		},
		{
			name:  "object with surrounding prose",
			input: "Here is the plan:\n{\"group_by\": [1]}\nLet me know if that helps.",
			want:  `{"group_by": [1]}`,
		},
		{
			name:  "object inside markdown fence",
			input: "```json\n{\"limit\": 5}\n```",
			want:  `{"limit": 5}`,
		},
		{
			name:  "nested braces",
			input: `{"table": {"file_key": "abc", "table_index": 0}}`,
			want:  `{"table": {"file_key": "abc", "table_index": 0}}`,
		},
		{
			name:  "braces inside string values",
			input: `{"value": "open { brace"}`,
			want:  `{"value": "open { brace"}`,
		},
		{
			name:  "think tags stripped",
			input: "<think>reasoning about columns</think>{\"aggregates\": []}",
			want:  `{"aggregates": []}`,
		},
		{
			name:    "no json at all",
			input:   "I cannot produce a plan for that question.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"filters": [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type plan struct {
		Limit int `json:"limit"`
	}

	got, err := ParseJSONResponse[plan]("noise before {\"limit\": 3} noise after")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Limit)

	_, err = ParseJSONResponse[plan]("no json here")
	assert.Error(t, err)
}
