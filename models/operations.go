package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNode creates a new node with a unique ID and timestamps
func NewNode(label string, x, y float64) *Node {
	now := time.Now()
	return &Node{
		ID:        uuid.New().String(),
		Label:     strings.TrimSpace(label),
		X:         clampCoord(x),
		Y:         clampCoord(y),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewGraph creates a new graph with a unique ID and timestamps
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPosition sets the position of a node, clamped to the view box
func (n *Node) SetPosition(x, y float64) {
	n.X = clampCoord(x)
	n.Y = clampCoord(y)
	n.UpdatedAt = time.Now()
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node *Node) error {
	if strings.TrimSpace(node.Label) == "" {
		return ErrEmptyLabel
	}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if _, err := g.FindNodeByID(node.ID); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	g.Nodes = append(g.Nodes, *node)
	g.UpdatedAt = time.Now()
	return nil
}

// AddEdge adds a directed edge to the graph.
// Both endpoints must exist and the (source, target) pair must be new.
func (g *Graph) AddEdge(source, target string) error {
	if source == target {
		return fmt.Errorf("%w: %s", ErrSelfLoop, source)
	}
	if _, err := g.FindNodeByID(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, err := g.FindNodeByID(target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if g.HasEdge(source, target) {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, source, target)
	}

	g.Edges = append(g.Edges, Edge{Source: source, Target: target})
	g.UpdatedAt = time.Now()
	return nil
}

// RemoveNode removes a node and all connected edges from the graph
func (g *Graph) RemoveNode(nodeID string) error {
	if _, err := g.FindNodeByID(nodeID); err != nil {
		return err
	}

	newNodes := make([]Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		if node.ID != nodeID {
			newNodes = append(newNodes, node)
		}
	}
	g.Nodes = newNodes

	newEdges := make([]Edge, 0, len(g.Edges))
	for _, edge := range g.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			newEdges = append(newEdges, edge)
		}
	}
	g.Edges = newEdges

	g.UpdatedAt = time.Now()
	return nil
}

// RemoveEdge removes the edge source -> target from the graph
func (g *Graph) RemoveEdge(source, target string) bool {
	for i, edge := range g.Edges {
		if edge.Source == source && edge.Target == target {
			g.Edges = append(g.Edges[:i:i], g.Edges[i+1:]...)
			g.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// MoveNode updates a node position (drag interaction)
func (g *Graph) MoveNode(nodeID string, x, y float64) error {
	node, err := g.FindNodeByID(nodeID)
	if err != nil {
		return err
	}
	node.SetPosition(x, y)
	g.UpdatedAt = time.Now()
	return nil
}

// Clone returns a deep copy that shares no slices with g
func (g *Graph) Clone() *Graph {
	c := *g
	c.Nodes = append([]Node(nil), g.Nodes...)
	c.Edges = append([]Edge(nil), g.Edges...)
	return &c
}

func clampCoord(v float64) float64 {
	if v != v || v < MinCoord {
		return MinCoord
	}
	if v > MaxCoord {
		return MaxCoord
	}
	return v
}
