package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/TFMV/tenlab/models"
)

const tolerance = 1e-6

func buildGraph(t *testing.T, ids []string, edges [][2]string) *models.Graph {
	t.Helper()
	g := models.NewGraph("test")
	for _, id := range ids {
		require.NoError(t, g.AddNode(&models.Node{ID: id, Label: "node " + id, X: 50, Y: 50}))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func totalMass(results []Result) float64 {
	s := make([]float64, len(results))
	for i, r := range results {
		s[i] = r.Score
	}
	return floats.Sum(s)
}

func TestRankEmptyGraph(t *testing.T) {
	results := Rank(models.NewGraph("empty"))
	assert.NotNil(t, results)
	assert.Empty(t, results)

	_, ok := Top(results)
	assert.False(t, ok)
}

func TestRankMassSumsToOne(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
	}{
		{"single", []string{"a"}, nil},
		{"no edges", []string{"a", "b", "c"}, nil},
		{"chain", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}},
		{"star", []string{"hub", "x", "y", "z"}, [][2]string{{"x", "hub"}, {"y", "hub"}, {"z", "hub"}}},
		{"secret society", []string{"1", "2", "3", "4"}, [][2]string{{"1", "2"}, {"3", "2"}, {"4", "3"}, {"2", "1"}}},
		{"dense", []string{"a", "b", "c", "d"}, [][2]string{
			{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "c"}, {"c", "a"}, {"d", "b"}, {"d", "c"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Rank(buildGraph(t, tt.ids, tt.edges))
			require.Len(t, results, len(tt.ids))
			assert.InDelta(t, 1.0, totalMass(results), tolerance)
			for _, r := range results {
				assert.GreaterOrEqual(t, r.Score, 0.0)
			}
		})
	}
}

func TestRankSoleTargetBeatsUntrusted(t *testing.T) {
	g := buildGraph(t, []string{"hub", "x", "y"}, [][2]string{{"x", "hub"}, {"y", "hub"}})
	scores := Scores(Rank(g))
	assert.Greater(t, scores["hub"], scores["x"])
	assert.Greater(t, scores["hub"], scores["y"])

	top, ok := Top(Rank(g))
	require.True(t, ok)
	assert.Equal(t, "hub", top.NodeID)
	assert.Equal(t, 2, top.InDegree)
}

func TestRankCycleIsUniform(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	var edges [][2]string
	for i, id := range ids {
		edges = append(edges, [2]string{id, ids[(i+1)%len(ids)]})
	}
	for _, r := range Rank(buildGraph(t, ids, edges)) {
		assert.InDelta(t, 1.0/float64(len(ids)), r.Score, tolerance)
	}
}

func TestRankTwoNodeSink(t *testing.T) {
	// values follow from running the documented 25-pass iteration
	scores := Scores(Rank(buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})))
	assert.Greater(t, scores["B"], scores["A"])
	assert.InDelta(t, 0.350877, scores["A"], tolerance)
	assert.InDelta(t, 0.649123, scores["B"], tolerance)
}

func TestRankSecretSocietyPreset(t *testing.T) {
	g := buildGraph(t, []string{"1", "2", "3", "4"}, [][2]string{{"1", "2"}, {"3", "2"}, {"4", "3"}, {"2", "1"}})
	results := Rank(g)

	order := make([]string, len(results))
	for i, r := range results {
		order[i] = r.NodeID
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"2", "1", "3", "4"}, order)
	assert.InDelta(t, 0.4625, results[0].Score, tolerance)
	assert.InDelta(t, 0.0375, results[3].Score, tolerance)
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	results := Rank(buildGraph(t, []string{"c", "a", "b"}, nil))
	require.Len(t, results, 3)
	assert.Equal(t, "c", results[0].NodeID)
	assert.Equal(t, "a", results[1].NodeID)
	assert.Equal(t, "b", results[2].NodeID)
	assert.Equal(t, []int{1, 2, 3}, []int{results[0].Rank, results[1].Rank, results[2].Rank})
}

func TestRankIsIdempotentAndPure(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}})
	before := g.Clone()

	first := Rank(g)
	second := Rank(g)
	assert.Equal(t, first, second)
	assert.Equal(t, before.Nodes, g.Nodes)
	assert.Equal(t, before.Edges, g.Edges)
}

func TestRankIgnoresDanglingReferences(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.Edges = append(g.Edges, models.Edge{Source: "a", Target: "ghost"})
	results := Rank(g)
	assert.InDelta(t, 1.0, totalMass(results), tolerance)
	assert.Equal(t, 1, results[len(results)-1].OutDegree)
}

func TestEngineDefaults(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 0.85, e.Damping())
	assert.Equal(t, 25, e.Iterations())
}

func BenchmarkRank(b *testing.B) {
	g := models.NewGraph("bench")
	for i := 0; i < 40; i++ {
		_ = g.AddNode(&models.Node{ID: fmt.Sprint(i), Label: fmt.Sprint(i)})
	}
	for i := 0; i < 40; i++ {
		_ = g.AddEdge(fmt.Sprint(i), fmt.Sprint((i*7+3)%40))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(g)
	}
}
