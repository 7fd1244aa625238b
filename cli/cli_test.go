package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/tenlab/config"
	"github.com/TFMV/tenlab/presets"
)

// run executes the command tree and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

// runContext is run with a caller-supplied command context
func runContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// runJSON executes args with --json and decodes the report
func runJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	out, _, err := run(t, append(args, "--json")...)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type jsonReport[P, R any] struct {
	Tool    string `json:"tool"`
	Preset  string `json:"preset"`
	Params  P      `json:"params"`
	Result  R      `json:"result"`
	Verdict struct {
		Tone  string `json:"tone"`
		Title string `json:"title"`
	} `json:"verdict"`
}

func TestToolsAndPresets(t *testing.T) {
	out, _, err := run(t, "tools")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 10)
	assert.Contains(t, out, "ranking")

	out, _, err = run(t, "presets", "markov")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Does motivation last?")
	assert.Contains(t, out, "3. Waves of social media buzz")

	_, _, err = run(t, "presets", "tarot")
	assert.Error(t, err)
}

func TestBayes(t *testing.T) {
	out, _, err := run(t, "bayes", "--preset", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Is this news story fake?")
	assert.Contains(t, out, "69.2%")
	assert.Contains(t, out, "Possible")

	r := runJSON[jsonReport[map[string]float64, map[string]float64]](t, "bayes", "--preset", "2", "--prior", "50")
	assert.Equal(t, "bayes", r.Tool)
	assert.Equal(t, 50.0, r.Params["prior"], "flags override the preset")
	assert.InDelta(t, 90.0, r.Result["posterior"], 1e-9)
	assert.Equal(t, "good", r.Verdict.Tone)
}

func TestInvalidInput(t *testing.T) {
	_, _, err := run(t, "bayes", "--prior", "140")
	assert.ErrorContains(t, err, "invalid parameters")

	_, _, err = run(t, "kelly", "--preset", "9")
	assert.ErrorIs(t, err, presets.ErrUnknownPreset)

	_, _, err = run(t, "descent", "--rate", "0.9")
	assert.ErrorContains(t, err, "invalid parameters")

	_, _, err = run(t, "bayes", "--log-format", "xml")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestKelly(t *testing.T) {
	r := runJSON[jsonReport[map[string]float64, map[string]float64]](t, "kelly", "--preset", "betting on your own skill")
	assert.InDelta(t, 0.5, r.Result["expected_value"], 1e-9)
	assert.InDelta(t, 0.5, r.Result["fraction"], 1e-9)
	assert.Equal(t, 50000.0, r.Result["bet"])
	assert.Equal(t, "good", r.Verdict.Tone)
}

func TestConfidence(t *testing.T) {
	out, _, err := run(t, "confidence", "-n", "10", "-k", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "8 of 10")
	assert.Contains(t, out, "Too early to believe")
}

func TestFrenzy(t *testing.T) {
	r := runJSON[jsonReport[map[string]float64, map[string]float64]](t, "frenzy", "--preset", "2")
	assert.Equal(t, "Mania bubble", r.Preset)
	assert.InDelta(t, 100, r.Result["deviation"], 1e-9)
	assert.Equal(t, 100.0, r.Result["heat"])
	assert.Equal(t, "Sell: peak euphoria", r.Verdict.Title)
}

func TestCorrelation(t *testing.T) {
	svg := filepath.Join(t.TempDir(), "scatter.svg")
	r := runJSON[jsonReport[json.RawMessage, map[string]float64]](t, "correlation", "--preset", "2", "--svg", svg)
	assert.Less(t, r.Result["r"], -0.9)
	assert.Equal(t, "Fully synced", r.Verdict.Title)

	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestMarkov(t *testing.T) {
	type result struct {
		Stationary struct {
			A float64 `json:"a"`
			B float64 `json:"b"`
		} `json:"stationary"`
		Walk string `json:"walk"`
	}
	r := runJSON[jsonReport[json.RawMessage, result]](t, "markov", "--retention", "70", "--recovery", "30", "--seed", "7")
	assert.InDelta(t, 50, r.Result.Stationary.A, 1e-9)
	assert.Len(t, r.Result.Walk, 41)

	again := runJSON[jsonReport[json.RawMessage, result]](t, "markov", "--retention", "70", "--recovery", "30", "--seed", "7")
	assert.Equal(t, r.Result.Walk, again.Result.Walk)

	out, _, err := run(t, "markov", "--preset", "1", "--steps", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Focused")
	assert.Contains(t, out, "A life of waves")
}

func TestRank(t *testing.T) {
	out, _, err := run(t, "rank")
	require.NoError(t, err)
	assert.Contains(t, out, "Secret society chain of command")
	assert.Contains(t, out, "1. Gatekeeper")
	assert.Contains(t, out, "Gatekeeper is the hidden hub")
	assert.Contains(t, out, "Public leader, Veteran adviser")
	assert.NotContains(t, out, "Isolated")

	out, _, err = run(t, "rank", "--format", "dot", "--layout", "circle")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	_, _, err = run(t, "rank", "--format", "webgl")
	assert.Error(t, err)
}

func TestRankImportAndWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "team.csv")
	require.NoError(t, os.WriteFile(input, []byte("from,to\nann,ben\ncy,ben\nben,ann\n"), 0o644))

	out, _, err := run(t, "rank", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "ben is the hidden hub")

	svg := filepath.Join(dir, "team.svg")
	out, _, err = run(t, "rank", "-i", input, "-f", "svg", "-o", svg)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	_, _, err = run(t, "rank", "--input", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestBandit(t *testing.T) {
	type snapshot struct {
		Steps     int `json:"steps"`
		Estimates []struct {
			Pulls int `json:"pulls"`
		} `json:"estimates"`
	}
	r := runJSON[jsonReport[json.RawMessage, snapshot]](t, "bandit", "--epsilon", "20", "--trials", "30", "--seed", "3")
	assert.Equal(t, 30, r.Result.Steps)
	pulls := 0
	for _, e := range r.Result.Estimates {
		pulls += e.Pulls
	}
	assert.Equal(t, 30, pulls)
	assert.Equal(t, "good", r.Verdict.Tone)

	out, _, err := run(t, "bandit", "--preset", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Restless experimenter")
	assert.Contains(t, out, "Keep the status quo")
}

func TestDescent(t *testing.T) {
	type state struct {
		Steps  int    `json:"steps"`
		Status string `json:"status"`
	}
	r := runJSON[jsonReport[json.RawMessage, state]](t, "descent")
	assert.Equal(t, "converged", r.Result.Status)
	assert.Equal(t, 9, r.Result.Steps)

	out, _, err := run(t, "descent", "--preset", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow state")
	assert.Contains(t, out, "converged after 7 steps")
}

func TestDescentAnimate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("animation:\n  interval: 1ms\n"), 0o644))

	out, errOut, err := run(t, "descent", "--config", path, "--animate")
	require.NoError(t, err)
	assert.Contains(t, out, "converged after 9 steps")
	assert.Equal(t, 10, strings.Count(errOut, " step "))
	assert.Contains(t, errOut, "CONVERGED")

	out, _, err = run(t, "descent", "--config", path, "--animate", "--max-steps", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "idle after 3 steps")
}

func TestDescentAnimateInterrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("animation:\n  interval: 1h\n"), 0o644))

	// an interrupt cancels the command context; the report still prints
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, errOut, err := runContext(t, ctx, "descent", "--config", path, "--animate")
	require.NoError(t, err)
	assert.Contains(t, errOut, "interrupted at step 0")
	assert.Contains(t, out, "idle after 0 steps")
}

func TestRules(t *testing.T) {
	out, _, err := run(t, "rules", "--preset", "1", "--situation", "The boss is shouting emotionally again")
	require.NoError(t, err)
	assert.Contains(t, out, "PROTOCOL RELATION_FILTER_V1")
	assert.Contains(t, out, "THEN close the mental shutter")
	assert.Contains(t, out, "ELSE work at full effort")

	type result struct {
		Protocol  string `json:"protocol"`
		Decisions []struct {
			Matched bool   `json:"matched"`
			Action  string `json:"action"`
		} `json:"decisions"`
	}
	r := runJSON[jsonReport[json.RawMessage, result]](t, "rules",
		"--name", "morning plan", "--rule", "rain => gym | run", "-s", "Heavy RAIN today")
	assert.Equal(t, "MORNING_PLAN", r.Result.Protocol)
	require.Len(t, r.Result.Decisions, 1)
	assert.True(t, r.Result.Decisions[0].Matched)
	assert.Equal(t, "gym", r.Result.Decisions[0].Action)
}

func TestParseRule(t *testing.T) {
	r, err := parseRule(" late =>  leave early ")
	require.NoError(t, err)
	assert.Equal(t, "late", r.If)
	assert.Equal(t, "leave early", r.Then)
	assert.Empty(t, r.Else)

	_, err = parseRule("no arrow here")
	assert.Error(t, err)
	_, err = parseRule(" => action")
	assert.Error(t, err)
}

func TestServeRejectsBadConfig(t *testing.T) {
	_, _, err := run(t, "serve", "--addr", "")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
