package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/tenlab/models"
)

func stackedGraph(t *testing.T, n int) *models.Graph {
	t.Helper()
	g := models.NewGraph("stack")
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for _, id := range ids[:n] {
		require.NoError(t, g.AddNode(&models.Node{ID: id, Label: id, X: 50, Y: 50}))
	}
	for i := 0; i+1 < n; i++ {
		require.NoError(t, g.AddEdge(ids[i], ids[i+1]))
	}
	return g
}

func inBox(t *testing.T, g *models.Graph) {
	t.Helper()
	for _, n := range g.Nodes {
		assert.GreaterOrEqual(t, n.X, models.MinCoord)
		assert.LessOrEqual(t, n.X, models.MaxCoord)
		assert.GreaterOrEqual(t, n.Y, models.MinCoord)
		assert.LessOrEqual(t, n.Y, models.MaxCoord)
	}
}

func TestForceLayoutSeparatesStackedNodes(t *testing.T) {
	g := stackedGraph(t, 5)
	Run(NewForceDirectedLayout(), g, 300)
	inBox(t, g)

	for i := range g.Nodes {
		for j := i + 1; j < len(g.Nodes); j++ {
			d := math.Hypot(g.Nodes[i].X-g.Nodes[j].X, g.Nodes[i].Y-g.Nodes[j].Y)
			assert.Greater(t, d, 1.0, "%s and %s overlap", g.Nodes[i].ID, g.Nodes[j].ID)
		}
	}
}

func TestForceLayoutDoesNotTouchEdges(t *testing.T) {
	g := stackedGraph(t, 3)
	edges := append([]models.Edge(nil), g.Edges...)
	Run(NewForceDirectedLayout(), g, 50)
	assert.Equal(t, edges, g.Edges)
}

func TestForceLayoutEmptyGraph(t *testing.T) {
	g := models.NewGraph("empty")
	assert.True(t, Run(NewForceDirectedLayout(), g, 10))
}

func TestCircleLayout(t *testing.T) {
	g := stackedGraph(t, 4)
	assert.True(t, Run(NewCircleLayout(), g, 1))
	inBox(t, g)
	assert.InDelta(t, 50, g.Nodes[0].X, 1e-9)
	assert.InDelta(t, 15, g.Nodes[0].Y, 1e-9)
	for _, n := range g.Nodes {
		assert.InDelta(t, 35, math.Hypot(n.X-50, n.Y-50), 1e-9)
	}
}

func TestJitterLayoutStaysNearBase(t *testing.T) {
	base := stackedGraph(t, 4)
	Run(NewCircleLayout(), base, 1)

	jittered := stackedGraph(t, 4)
	layout := NewJitterLayout(NewCircleLayout(), 7)
	Run(layout, jittered, 1)
	inBox(t, jittered)
	assert.Equal(t, "jitter+circle", layout.GetName())

	for i := range base.Nodes {
		assert.InDelta(t, base.Nodes[i].X, jittered.Nodes[i].X, 4.0+1e-9)
		assert.InDelta(t, base.Nodes[i].Y, jittered.Nodes[i].Y, 4.0+1e-9)
	}
}

func TestPlacerIsDeterministicAndCentered(t *testing.T) {
	a, b := NewPlacer(3), NewPlacer(3)
	for i := 0; i < 20; i++ {
		ax, ay := a.Next()
		bx, by := b.Next()
		assert.Equal(t, ax, bx)
		assert.Equal(t, ay, by)
		assert.GreaterOrEqual(t, ax, 30.0)
		assert.LessOrEqual(t, ax, 70.0)
		assert.GreaterOrEqual(t, ay, 30.0)
		assert.LessOrEqual(t, ay, 70.0)
	}
}

func TestGetLayoutAlgorithm(t *testing.T) {
	assert.Equal(t, "circle", GetLayoutAlgorithm("circle").GetName())
	assert.Equal(t, "jitter+force", GetLayoutAlgorithm("jitter").GetName())
	assert.Equal(t, "force", GetLayoutAlgorithm("anything").GetName())
}
