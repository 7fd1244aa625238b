// Package physics positions the nodes of the trust graph inside the
// 100x100 view box used by the renderers.
package physics

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/tenlab/models"
)

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(graph *models.Graph)
	Step() bool // Returns true if stable, false if needs more steps
	Apply(graph *models.Graph)
	GetName() string
}

// Position coordinates
type position struct {
	x, y float64
}

// Force vector components
type force struct {
	fx, fy float64
}

// ForceDirectedLayout implements a Fruchterman-Reingold force-directed layout
type ForceDirectedLayout struct {
	positions       map[string]position
	order           []string
	edges           []models.Edge
	temperature     float64
	k               float64 // optimal distance
	iterations      int
	maxIterations   int
	energyThreshold float64
	gravity         float64
	stable          bool
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout() *ForceDirectedLayout {
	return &ForceDirectedLayout{
		positions:       make(map[string]position),
		temperature:     5.0,
		maxIterations:   300,
		energyThreshold: 0.01,
		gravity:         0.02,
	}
}

// GetName returns the name of the layout algorithm
func (fd *ForceDirectedLayout) GetName() string {
	return "force"
}

// Initialize seeds positions from the graph; nodes stacked on the same spot
// are spread on a circle first so that forces have a direction
func (fd *ForceDirectedLayout) Initialize(graph *models.Graph) {
	fd.positions = make(map[string]position, len(graph.Nodes))
	fd.order = fd.order[:0]
	fd.edges = append(fd.edges[:0], graph.Edges...)
	fd.iterations = 0
	fd.stable = false
	fd.temperature = 5.0

	span := models.MaxCoord - models.MinCoord
	n := math.Max(1, float64(len(graph.Nodes)))
	fd.k = 0.6 * math.Sqrt(span*span/n)

	seen := make(map[position]bool)
	for i, node := range graph.Nodes {
		p := position{node.X, node.Y}
		if seen[p] {
			p = circlePoint(i, len(graph.Nodes))
		}
		seen[p] = true
		fd.positions[node.ID] = p
		fd.order = append(fd.order, node.ID)
	}
}

// Step performs one iteration of the layout algorithm
func (fd *ForceDirectedLayout) Step() bool {
	if fd.iterations >= fd.maxIterations || fd.stable || len(fd.order) == 0 {
		return true
	}

	forces := make(map[string]force, len(fd.order))
	center := (models.MinCoord + models.MaxCoord) / 2

	for i, id1 := range fd.order {
		p1 := fd.positions[id1]
		f := forces[id1]
		f.fx += (center - p1.x) * fd.gravity
		f.fy += (center - p1.y) * fd.gravity
		forces[id1] = f

		for _, id2 := range fd.order[i+1:] {
			p2 := fd.positions[id2]
			dx, dy := p1.x-p2.x, p1.y-p2.y
			dist := math.Max(0.1, math.Hypot(dx, dy))
			// F = k^2 / distance
			rep := fd.k * fd.k / dist
			dx, dy = dx/dist, dy/dist

			a, b := forces[id1], forces[id2]
			a.fx += dx * rep
			a.fy += dy * rep
			b.fx -= dx * rep
			b.fy -= dy * rep
			forces[id1], forces[id2] = a, b
		}
	}

	for _, e := range fd.edges {
		p1, ok1 := fd.positions[e.Source]
		p2, ok2 := fd.positions[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		dx, dy := p2.x-p1.x, p2.y-p1.y
		dist := math.Max(0.1, math.Hypot(dx, dy))
		// F = distance^2 / k
		att := dist * dist / fd.k
		dx, dy = dx/dist, dy/dist

		a, b := forces[e.Source], forces[e.Target]
		a.fx += dx * att
		a.fy += dy * att
		b.fx -= dx * att
		b.fy -= dy * att
		forces[e.Source], forces[e.Target] = a, b
	}

	// Apply forces with temperature limiting (simulated annealing)
	moved := 0.0
	for _, id := range fd.order {
		f := forces[id]
		mag := math.Hypot(f.fx, f.fy)
		if mag == 0 {
			continue
		}
		step := math.Min(mag, fd.temperature)
		p := fd.positions[id]
		p.x = clamp(p.x + f.fx/mag*step)
		p.y = clamp(p.y + f.fy/mag*step)
		fd.positions[id] = p
		moved += step
	}

	fd.temperature *= 0.95
	fd.iterations++
	fd.stable = moved/float64(len(fd.order)) < fd.energyThreshold
	return fd.stable
}

// Apply updates node positions in the graph
func (fd *ForceDirectedLayout) Apply(graph *models.Graph) {
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if p, ok := fd.positions[node.ID]; ok {
			node.SetPosition(p.x, p.y)
		}
	}
}

// CircleLayout places nodes evenly on a circle in insertion order
type CircleLayout struct {
	positions map[string]position
}

// NewCircleLayout creates a new circle layout
func NewCircleLayout() *CircleLayout {
	return &CircleLayout{positions: make(map[string]position)}
}

// GetName returns the name of the layout algorithm
func (cl *CircleLayout) GetName() string {
	return "circle"
}

// Initialize computes the circle positions
func (cl *CircleLayout) Initialize(graph *models.Graph) {
	cl.positions = make(map[string]position, len(graph.Nodes))
	for i, node := range graph.Nodes {
		cl.positions[node.ID] = circlePoint(i, len(graph.Nodes))
	}
}

// Step is a no-op; the circle is final after Initialize
func (cl *CircleLayout) Step() bool {
	return true
}

// Apply updates node positions in the graph
func (cl *CircleLayout) Apply(graph *models.Graph) {
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if p, ok := cl.positions[node.ID]; ok {
			node.SetPosition(p.x, p.y)
		}
	}
}

// JitterLayout wraps another layout and nudges the final positions with
// simplex noise so that hand-drawn looking graphs do not sit on a grid
type JitterLayout struct {
	baseLayout LayoutAlgorithm
	noise      opensimplex.Noise
	scale      float64
	amount     float64
}

// NewJitterLayout creates a jitter layout over base with a fixed seed
func NewJitterLayout(base LayoutAlgorithm, seed int64) *JitterLayout {
	return &JitterLayout{
		baseLayout: base,
		noise:      opensimplex.New(seed),
		scale:      0.05,
		amount:     4.0,
	}
}

// GetName returns the name of the layout algorithm
func (jl *JitterLayout) GetName() string {
	return "jitter+" + jl.baseLayout.GetName()
}

// Initialize initializes the base layout
func (jl *JitterLayout) Initialize(graph *models.Graph) {
	jl.baseLayout.Initialize(graph)
}

// Step steps the base layout
func (jl *JitterLayout) Step() bool {
	return jl.baseLayout.Step()
}

// Apply applies the base layout and then the noise offset
func (jl *JitterLayout) Apply(graph *models.Graph) {
	jl.baseLayout.Apply(graph)
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		dx := jl.noise.Eval2(node.X*jl.scale, node.Y*jl.scale)
		dy := jl.noise.Eval2(node.X*jl.scale+100, node.Y*jl.scale+100)
		node.SetPosition(node.X+dx*jl.amount, node.Y+dy*jl.amount)
	}
}

// Run initializes layout on graph, steps it up to maxSteps times, and
// applies the result. It reports whether the layout settled.
func Run(layout LayoutAlgorithm, graph *models.Graph, maxSteps int) bool {
	layout.Initialize(graph)
	stable := false
	for i := 0; i < maxSteps && !stable; i++ {
		stable = layout.Step()
	}
	layout.Apply(graph)
	return stable
}

// Placer picks a spot for a freshly added node near the middle of the view
// box, the way a user would drop it, without using a random source
type Placer struct {
	noise opensimplex.Noise
	t     float64
}

// NewPlacer creates a placer with a fixed seed
func NewPlacer(seed int64) *Placer {
	return &Placer{noise: opensimplex.New(seed)}
}

// Next returns a position within [30,70] on both axes
func (p *Placer) Next() (float64, float64) {
	p.t += 0.7
	x := 50 + 20*p.noise.Eval2(p.t, 0)
	y := 50 + 20*p.noise.Eval2(0, p.t)
	return x, y
}

// GetLayoutAlgorithm returns a layout algorithm by name
func GetLayoutAlgorithm(name string) LayoutAlgorithm {
	switch name {
	case "circle":
		return NewCircleLayout()
	case "jitter":
		return NewJitterLayout(NewForceDirectedLayout(), 1)
	default:
		return NewForceDirectedLayout()
	}
}

func circlePoint(i, n int) position {
	if n <= 1 {
		return position{50, 50}
	}
	angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
	return position{50 + 35*math.Cos(angle), 50 + 35*math.Sin(angle)}
}

func clamp(v float64) float64 {
	return math.Max(models.MinCoord, math.Min(models.MaxCoord, v))
}
