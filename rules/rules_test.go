package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boss() *Protocol {
	p := New("relation filter v1")
	p.Add(Rule{ID: "r1", If: "boss is shouting", Then: "say yes and tune out", Else: "note the task"})
	p.Add(Rule{ID: "r2", If: "message after hours", Then: "mute until morning", Else: "finish the day"})
	return p
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "RELATION_FILTER_V1", NormalizeName("relation filter v1"))
	assert.Equal(t, "A__B", NormalizeName("a\t b"))
	assert.Equal(t, "", NormalizeName(""))
}

func TestEditRules(t *testing.T) {
	p := boss()
	require.Len(t, p.Rules, 2)

	added := p.Add(Rule{If: "x"})
	assert.NotEmpty(t, added.ID)
	assert.Len(t, p.Complete(), 2)

	added.Then, added.Else = "y", "z"
	require.NoError(t, p.Update(added))
	assert.Len(t, p.Complete(), 3)

	require.NoError(t, p.Remove("r1"))
	assert.Equal(t, "r2", p.Rules[0].ID)
	assert.ErrorIs(t, p.Remove("r1"), ErrRuleNotFound)
	assert.ErrorIs(t, p.Update(Rule{ID: "missing"}), ErrRuleNotFound)

	p.Rename("new name")
	assert.Equal(t, "NEW_NAME", p.Name)
}

func TestEvaluate(t *testing.T) {
	p := boss()
	p.Add(Rule{ID: "empty", Then: "never", Else: "always"})

	decisions := p.Evaluate("The Boss Is Shouting again")
	require.Len(t, decisions, 3)
	assert.True(t, decisions[0].Matched)
	assert.Equal(t, "say yes and tune out", decisions[0].Action)
	assert.False(t, decisions[1].Matched)
	assert.Equal(t, "finish the day", decisions[1].Action)
	assert.False(t, decisions[2].Matched)
	assert.Equal(t, "always", decisions[2].Action)
}

func TestCloneAndScript(t *testing.T) {
	p := boss()
	c := p.Clone()
	require.NoError(t, c.Remove("r2"))
	assert.Len(t, p.Rules, 2)

	script := p.Script()
	assert.Contains(t, script, "PROTOCOL RELATION_FILTER_V1")
	assert.Contains(t, script, `02 IF "message after hours"`)
}
