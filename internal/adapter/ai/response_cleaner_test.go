package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponse(t *testing.T) {
	rc := NewResponseCleaner()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"nested object", `{"a":{"b":2}} trailing`, `{"a":{"b":2}}`},
		{"trailing comma", `{"a":1,}`, `{"a":1}`},
		{"no object at all", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rc.CleanJSONResponse(tt.in))
		})
	}
}

func TestIsValidJSON(t *testing.T) {
	rc := NewResponseCleaner()
	require.True(t, rc.IsValidJSON(`{"score":85}`))
	require.True(t, rc.IsValidJSON(`[1,2,3]`))
	require.False(t, rc.IsValidJSON(`{"score":`))
	require.False(t, rc.IsValidJSON(`not json`))
}
