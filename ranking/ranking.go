// Package ranking implements the influence-ranking engine: a PageRank-style
// power iteration over a small directed trust graph.
//
// The engine runs a fixed number of passes with no convergence check, so the
// latency is bounded and two runs over the same graph give identical scores.
// It reads the graph and never mutates it.
package ranking

import (
	"sort"

	"github.com/TFMV/tenlab/mathx"
	"github.com/TFMV/tenlab/models"
)

const (
	// DefaultDamping is the probability mass that follows edges on each pass.
	DefaultDamping = 0.85
	// DefaultIterations is the number of refinement passes.
	DefaultIterations = 25
)

// Result is the score and rank of a single node
type Result struct {
	NodeID    string  `json:"node_id"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// Engine holds the fixed parameters of the power iteration
type Engine struct {
	damping    float64
	iterations int
}

// NewEngine creates an engine with the default damping and pass count
func NewEngine() *Engine {
	return &Engine{damping: DefaultDamping, iterations: DefaultIterations}
}

// Damping returns the damping factor
func (e *Engine) Damping() float64 { return e.damping }

// Iterations returns the number of passes
func (e *Engine) Iterations() int { return e.iterations }

// Rank ranks the graph with the default engine
func Rank(g *models.Graph) []Result {
	return NewEngine().Rank(g)
}

// Rank scores every node and returns them sorted by descending score.
// Ties keep insertion order. An empty graph yields an empty, non-nil slice.
func (e *Engine) Rank(g *models.Graph) []Result {
	n := len(g.Nodes)
	if n == 0 {
		return []Result{}
	}

	index := make(map[string]int, n)
	for i, node := range g.Nodes {
		index[node.ID] = i
	}

	// adjacency by position; edges to unknown nodes are skipped
	out := make([][]int, n)
	in := make([]int, n)
	for _, edge := range g.Edges {
		src, ok := index[edge.Source]
		if !ok {
			continue
		}
		dst, ok := index[edge.Target]
		if !ok {
			continue
		}
		out[src] = append(out[src], dst)
		in[dst]++
	}

	scores := e.iterate(out)

	results := make([]Result, n)
	for i, node := range g.Nodes {
		results[i] = Result{
			NodeID:    node.ID,
			Label:     node.Label,
			Score:     scores[i],
			InDegree:  in[i],
			OutDegree: len(out[i]),
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// iterate runs the damped power iteration over an adjacency list
func (e *Engine) iterate(out [][]int) []float64 {
	n := len(out)
	size := float64(n)
	d := e.damping

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / size
	}

	next := make([]float64, n)
	for pass := 0; pass < e.iterations; pass++ {
		for i := range next {
			next[i] = (1 - d) / size
		}

		dangling := 0.0
		for i, targets := range out {
			if len(targets) == 0 {
				dangling += scores[i]
				continue
			}
			share := d * scores[i] / float64(len(targets))
			for _, t := range targets {
				next[t] += share
			}
		}

		spread := d * dangling / size
		for i := range next {
			next[i] = mathx.OrZero(next[i] + spread)
		}

		scores, next = next, scores
	}
	return scores
}

// Scores returns the score of every node keyed by node ID
func Scores(results []Result) map[string]float64 {
	m := make(map[string]float64, len(results))
	for _, r := range results {
		m[r.NodeID] = r.Score
	}
	return m
}

// Top returns the highest ranked node
func Top(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}
