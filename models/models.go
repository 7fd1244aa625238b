// Package models provides the graph model edited by the influence-ranking tool.
// It defines the nodes, the directed trust edges, and the graph that owns them.
package models

import (
	"errors"
	"time"
)

// View box bounds that node positions are kept inside.
const (
	MinCoord = 5.0
	MaxCoord = 95.0
)

var (
	// ErrNodeNotFound is returned when an operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateNode is returned when a node id is already present.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrDuplicateEdge is returned when the (source, target) pair already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")
	// ErrSelfLoop is returned for an edge whose source and target are the same node.
	ErrSelfLoop = errors.New("self-loop edge")
	// ErrEmptyLabel is returned when a node is created without a label.
	ErrEmptyLabel = errors.New("empty node label")
)

// Node represents a person or page in the trust graph
type Node struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	X         float64   `json:"x" yaml:"x"`
	Y         float64   `json:"y" yaml:"y"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Edge represents a directed "trusts" relation from Source to Target
type Edge struct {
	Source string `json:"source" yaml:"from"`
	Target string `json:"target" yaml:"to"`
}

// Graph represents a collection of nodes and edges.
// Nodes keep insertion order; the ranking engine breaks ties with it.
type Graph struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
