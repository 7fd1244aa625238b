package models

import (
	"fmt"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// FindNodeByID returns a node by its ID
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for i, node := range g.Nodes {
		if node.ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// HasEdge reports whether the edge source -> target exists
func (g *Graph) HasEdge(source, target string) bool {
	for _, edge := range g.Edges {
		if edge.Source == source && edge.Target == target {
			return true
		}
	}
	return false
}

// FindOutgoingEdges returns all edges originating from a node
func (g *Graph) FindOutgoingEdges(nodeID string) []Edge {
	var result []Edge
	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			result = append(result, edge)
		}
	}
	return result
}

// FindIncomingEdges returns all edges targeting a node
func (g *Graph) FindIncomingEdges(nodeID string) []Edge {
	var result []Edge
	for _, edge := range g.Edges {
		if edge.Target == nodeID {
			result = append(result, edge)
		}
	}
	return result
}

// FilterNodes returns nodes that match the provided filter function
func (g *Graph) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i, node := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, node)
		}
	}
	return result
}

// Isolated returns the nodes that have neither incoming nor outgoing edges
func (g *Graph) Isolated() []Node {
	touched := make(map[string]bool, len(g.Nodes))
	for _, edge := range g.Edges {
		touched[edge.Source] = true
		touched[edge.Target] = true
	}
	return g.FilterNodes(func(n *Node) bool { return !touched[n.ID] })
}
