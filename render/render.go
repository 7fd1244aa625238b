package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/physics"
	"github.com/TFMV/tenlab/ranking"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json, dot)
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Background string  // Background color
	Accent     string  // Stroke and fill color of the drawing
	FontSize   float64 // Font size for labels, in view box units
	ShowLabels bool    // Show node labels
	Layout     string  // Optional layout to run before drawing (force, circle, jitter)
	LayoutStep int     // Maximum layout iterations
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of the ranked graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      600,
		Height:     600,
		Background: "#050505",
		Accent:     "#4ade80",
		FontSize:   3,
		ShowLabels: true,
		LayoutStep: 200,
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii", "text":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate lays out a copy of the graph when a layout is requested and
// renders it. The caller's graph is never modified.
func Generate(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	if options == nil {
		options = NewDefaultOptions("svg")
	}
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}

	if options.Layout != "" {
		graph = graph.Clone()
		steps := options.LayoutStep
		if steps <= 0 {
			steps = 100
		}
		physics.Run(physics.GetLayoutAlgorithm(options.Layout), graph, steps)
	}

	output, err := renderer.Render(graph, options)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", renderer.Name(), err)
	}
	return output, nil
}

// NodeRadius is the drawn radius of a node with the given score
func NodeRadius(score float64) float64 {
	return 2.5 + score*35
}

// rankedNode pairs a node with its ranking result
type rankedNode struct {
	node   *models.Node
	result ranking.Result
}

func rankNodes(graph *models.Graph) (map[string]rankedNode, string) {
	results := ranking.Rank(graph)
	byID := make(map[string]rankedNode, len(graph.Nodes))
	for i := range graph.Nodes {
		byID[graph.Nodes[i].ID] = rankedNode{node: &graph.Nodes[i]}
	}
	for _, r := range results {
		rn := byID[r.NodeID]
		rn.result = r
		byID[r.NodeID] = rn
	}
	top := ""
	if best, ok := ranking.Top(results); ok {
		top = best.NodeID
	}
	return byID, top
}

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders the trust graph as SVG in a 100x100 view box, node size by influence"
}

// Render creates an SVG representation of the graph
func (r *SVGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	byID, top := rankNodes(graph)

	svgHeader(&buf, options)
	fmt.Fprintf(&buf, `<defs>
  <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="4" markerHeight="4" orient="auto">
    <path d="M0,0 L10,5 L0,10 z" fill="%s"/>
  </marker>
</defs>
`, options.Accent)

	// Edges stop short of the target circle so the arrow head stays visible
	for _, edge := range graph.Edges {
		from, ok1 := byID[edge.Source]
		to, ok2 := byID[edge.Target]
		if !ok1 || !ok2 {
			continue
		}
		dx, dy := to.node.X-from.node.X, to.node.Y-from.node.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			length = 1
		}
		gap := NodeRadius(to.result.Score) + 1.5
		x2 := to.node.X - dx/length*gap
		y2 := to.node.Y - dy/length*gap

		fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.4" stroke-opacity="0.35" marker-end="url(#arrow)"><title>%s → %s</title></line>
`, from.node.X, from.node.Y, x2, y2, options.Accent,
			html.EscapeString(from.node.Label), html.EscapeString(to.node.Label))
	}

	for _, node := range graph.Nodes {
		rn := byID[node.ID]
		radius := NodeRadius(rn.result.Score)

		if node.ID == top {
			fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="0.1" stroke-dasharray="1,2" opacity="0.4"/>
`, node.X, node.Y, radius+3, options.Accent)
		}
		fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="0.3"/>
`, node.X, node.Y, radius, options.Accent, 0.2+rn.result.Score, options.Accent)

		if options.ShowLabels {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="#e5e5e5" text-anchor="middle">%s %.1f%%</text>
`, node.X, node.Y+radius+options.FontSize, options.FontSize, html.EscapeString(node.Label), rn.result.Score*100)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders the trust graph as ASCII art for terminal output"
}

// Render creates an ASCII representation of the graph
func (r *ASCIIRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)
	grid := newGrid(width, height)

	byID, top := rankNodes(graph)

	for _, edge := range graph.Edges {
		from, ok1 := byID[edge.Source]
		to, ok2 := byID[edge.Target]
		if !ok1 || !ok2 {
			continue
		}
		x1, y1 := grid.cell(from.node.X, from.node.Y)
		x2, y2 := grid.cell(to.node.X, to.node.Y)
		grid.line(x1, y1, x2, y2, '·')
	}

	for _, node := range graph.Nodes {
		x, y := grid.cell(node.X, node.Y)
		symbol := 'o'
		if byID[node.ID].result.Score >= 0.25 {
			symbol = 'O'
		}
		if node.ID == top {
			symbol = '@'
		}
		grid.set(x, y, symbol)
		if options.ShowLabels {
			grid.text(x+1, y, node.Label)
		}
	}

	return []byte(grid.String()), nil
}

// JSONRenderer outputs JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders the ranked graph as JSON data for custom visualizations"
}

// Render creates a JSON representation of the graph
func (r *JSONRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsonNode struct {
		ID     string  `json:"id"`
		Label  string  `json:"label"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius float64 `json:"radius"`
		Score  float64 `json:"score"`
		Rank   int     `json:"rank"`
		Top    bool    `json:"top"`
	}

	type jsonGraph struct {
		Name  string        `json:"name"`
		Nodes []jsonNode    `json:"nodes"`
		Edges []models.Edge `json:"edges"`
	}

	byID, top := rankNodes(graph)
	out := jsonGraph{
		Name:  graph.Name,
		Nodes: make([]jsonNode, 0, len(graph.Nodes)),
		Edges: append([]models.Edge{}, graph.Edges...),
	}
	for _, node := range graph.Nodes {
		res := byID[node.ID].result
		out.Nodes = append(out.Nodes, jsonNode{
			ID:     node.ID,
			Label:  node.Label,
			X:      node.X,
			Y:      node.Y,
			Radius: NodeRadius(res.Score),
			Score:  res.Score,
			Rank:   res.Rank,
			Top:    node.ID == top,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the trust graph in Graphviz DOT format, node width by influence"
}

// Render creates a DOT representation of the graph
func (r *DOTRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	byID, top := rankNodes(graph)

	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q];\n", options.Background)
	buf.WriteString("  node [shape=circle, fontname=\"Arial\"];\n")

	for _, node := range graph.Nodes {
		res := byID[node.ID].result
		style := ""
		if node.ID == top {
			style = ", style=bold"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, color=%q, width=%.3f, pos=\"%.2f,%.2f!\"%s];\n",
			node.ID, fmt.Sprintf("%s\n%.1f%%", node.Label, res.Score*100), options.Accent,
			NodeRadius(res.Score)/10, node.X/10, (100-node.Y)/10, style)
	}
	for _, edge := range graph.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", edge.Source, edge.Target, options.Accent)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func svgHeader(buf *bytes.Buffer, options *OutputOptions) {
	fmt.Fprintf(buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%.0f" height="%.0f" viewBox="0 0 100 100" preserveAspectRatio="none" xmlns="http://www.w3.org/2000/svg">
<rect width="100" height="100" fill="%s"/>
`, options.Width, options.Height, options.Background)
}
