package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodeGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph("test")
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddNode(&Node{ID: id, Label: id, X: 50, Y: 50}))
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := threeNodeGraph(t)
	assert.Len(t, g.Nodes, 3)

	err := g.AddNode(&Node{ID: "a", Label: "again"})
	assert.True(t, errors.Is(err, ErrDuplicateNode))

	err = g.AddNode(&Node{Label: "   "})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	n := NewNode("  fresh ", 50, 50)
	require.NoError(t, g.AddNode(n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "fresh", n.Label)
}

func TestAddEdge(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.AddEdge("a", "b"))

	tests := []struct {
		name     string
		src, dst string
		want     error
	}{
		{"duplicate", "a", "b", ErrDuplicateEdge},
		{"self loop", "c", "c", ErrSelfLoop},
		{"unknown source", "x", "b", ErrNodeNotFound},
		{"unknown target", "a", "x", ErrNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, g.AddEdge(tt.src, tt.dst), tt.want)
		})
	}
	assert.Len(t, g.Edges, 1)

	// reverse direction is a different edge
	require.NoError(t, g.AddEdge("b", "a"))
	assert.Len(t, g.Edges, 2)
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "a"))

	require.NoError(t, g.RemoveNode("b"))
	assert.Len(t, g.Nodes, 2)
	assert.Equal(t, []Edge{{Source: "c", Target: "a"}}, g.Edges)
	assert.ErrorIs(t, g.RemoveNode("b"), ErrNodeNotFound)
}

func TestRemoveEdge(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.AddEdge("a", "b"))
	assert.False(t, g.RemoveEdge("b", "a"))
	assert.True(t, g.RemoveEdge("a", "b"))
	assert.Empty(t, g.Edges)
}

func TestMoveNodeClamps(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.MoveNode("a", -40, 400))
	n, err := g.FindNodeByID("a")
	require.NoError(t, err)
	assert.Equal(t, MinCoord, n.X)
	assert.Equal(t, MaxCoord, n.Y)

	require.NoError(t, g.MoveNode("b", math.NaN(), 42))
	n, _ = g.FindNodeByID("b")
	assert.Equal(t, MinCoord, n.X)
	assert.Equal(t, 42.0, n.Y)
}

func TestCloneIsIndependent(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.AddEdge("a", "b"))
	c := g.Clone()
	require.NoError(t, c.AddEdge("b", "c"))
	c.Nodes[0].Label = "changed"

	assert.Len(t, g.Edges, 1)
	assert.Equal(t, "a", g.Nodes[0].Label)
}

func TestQueries(t *testing.T) {
	g := threeNodeGraph(t)
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("c", "b"))

	assert.Len(t, g.FindIncomingEdges("b"), 2)
	assert.Len(t, g.FindOutgoingEdges("a"), 1)
	assert.Empty(t, g.FindOutgoingEdges("b"))
	assert.True(t, g.HasEdge("c", "b"))
	assert.Empty(t, g.Isolated())

	require.NoError(t, g.AddNode(&Node{ID: "d", Label: "loner"}))
	iso := g.Isolated()
	require.Len(t, iso, 1)
	assert.Equal(t, "d", iso[0].ID)
}
