package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsCompleteAndOrdered(t *testing.T) {
	all := All()
	require.Len(t, all, 10)
	seen := map[string]bool{}
	for i, id := range all {
		info := id.Info()
		assert.Equal(t, id, info.ID)
		assert.NotEmpty(t, info.Title)
		assert.NotEmpty(t, info.Formula)
		assert.False(t, seen[info.Slug], "duplicate slug %s", info.Slug)
		seen[info.Slug] = true
		assert.Equal(t, i+1, mustAtoi(t, info.Number))
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func TestParse(t *testing.T) {
	tests := map[string]ID{
		"bayes":         Bayes,
		"Ranking":       Ranking,
		"pagerank-tool": Ranking,
		"qlearning":     Bandit,
		"09":            Descent,
		" ifthen ":      Rules,
	}
	for in, want := range tests {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("astrology")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestTextRoundTrip(t *testing.T) {
	b, err := json.Marshal(map[string]ID{"tool": Markov})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool":"markov"}`, string(b))

	var back struct{ Tool ID }
	require.NoError(t, json.Unmarshal([]byte(`{"Tool":"gradient"}`), &back))
	assert.Equal(t, Descent, back.Tool)

	_, err = ID(99).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.False(t, ID(-1).Valid())
	assert.Equal(t, "unknown", ID(42).String())
}
