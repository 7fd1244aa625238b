package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/models"
)

func starGraph(t *testing.T) *models.Graph {
	t.Helper()
	g := models.NewGraph("star")
	require.NoError(t, g.AddNode(&models.Node{ID: "hub", Label: "Hub <1>", X: 50, Y: 50}))
	require.NoError(t, g.AddNode(&models.Node{ID: "a", Label: "A", X: 20, Y: 20}))
	require.NoError(t, g.AddNode(&models.Node{ID: "b", Label: "B", X: 80, Y: 80}))
	require.NoError(t, g.AddEdge("a", "hub"))
	require.NoError(t, g.AddEdge("b", "hub"))
	return g
}

func TestGetRenderer(t *testing.T) {
	for _, format := range []string{"svg", "SVG", "ascii", "json", "dot"} {
		r, err := GetRenderer(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, r.Name())
		assert.NotEmpty(t, r.Description())
	}
	_, err := GetRenderer("webgl")
	assert.Error(t, err)
}

func TestNodeRadius(t *testing.T) {
	assert.InDelta(t, 2.5, NodeRadius(0), 1e-12)
	assert.InDelta(t, 20, NodeRadius(0.5), 1e-12)
}

func TestSVGRenderer(t *testing.T) {
	out, err := Generate(starGraph(t), NewDefaultOptions("svg"))
	require.NoError(t, err)
	svg := string(out)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `viewBox="0 0 100 100"`)
	assert.Equal(t, 2, strings.Count(svg, "<line "))
	assert.Contains(t, svg, "Hub &lt;1&gt;")
	assert.Contains(t, svg, `stroke-dasharray="1,2"`, "top node ring")
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestGenerateDoesNotMoveCallerNodes(t *testing.T) {
	g := starGraph(t)
	opts := NewDefaultOptions("json")
	opts.Layout = "circle"

	out, err := Generate(g, opts)
	require.NoError(t, err)
	assert.Equal(t, 50.0, g.Nodes[0].X)

	var decoded struct {
		Nodes []struct {
			ID    string  `json:"id"`
			Y     float64 `json:"y"`
			Score float64 `json:"score"`
			Rank  int     `json:"rank"`
			Top   bool    `json:"top"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Nodes, 3)
	assert.Equal(t, "hub", decoded.Nodes[0].ID)
	assert.True(t, decoded.Nodes[0].Top)
	assert.Equal(t, 1, decoded.Nodes[0].Rank)
	assert.InDelta(t, 15, decoded.Nodes[0].Y, 1e-9)
}

func TestGenerateUnknownFormat(t *testing.T) {
	_, err := Generate(starGraph(t), NewDefaultOptions("png"))
	assert.Error(t, err)
}

func TestASCIIRenderer(t *testing.T) {
	out, err := (&ASCIIRenderer{}).Render(starGraph(t), NewDefaultOptions("ascii"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	assert.Len(t, lines, 30)
	assert.True(t, strings.HasPrefix(lines[0], "+---"))
	assert.Contains(t, string(out), "@Hub")
}

func TestDOTRenderer(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(starGraph(t), NewDefaultOptions("dot"))
	require.NoError(t, err)
	dot := string(out)
	assert.Contains(t, dot, `"a" -> "hub"`)
	assert.Contains(t, dot, "style=bold")
}

func TestDescentCharts(t *testing.T) {
	s := descent.New(descent.Params{LearningRate: 0.1, Initial: -1.8})
	s.Run(50)
	state := s.Snapshot()

	svg := string(DescentSVG(state, NewDefaultOptions("svg")))
	assert.Equal(t, 2, strings.Count(svg, "<path "))
	assert.Contains(t, svg, "converged")

	ascii := DescentASCII(state, 40, 12)
	assert.Contains(t, ascii, "@")
	assert.Len(t, strings.Split(strings.TrimSuffix(ascii, "\n"), "\n"), 12)
}

func TestDescentSVGWithoutTrail(t *testing.T) {
	state := descent.New(descent.DefaultParams()).Snapshot()
	svg := string(DescentSVG(state, NewDefaultOptions("svg")))
	assert.Equal(t, 1, strings.Count(svg, "<path "))
}

func TestMarkovCharts(t *testing.T) {
	walk := []markov.State{markov.StateA, markov.StateA, markov.StateB, markov.StateA}
	assert.Equal(t, "AABA", WalkStrip(walk))

	svg := string(MarkovSVG(walk, markov.Stationary{A: 60, B: 40}, NewDefaultOptions("svg")))
	assert.Equal(t, 4+2+1, strings.Count(svg, "<rect "))
	assert.Contains(t, svg, `width="60.00"`)
}

func TestBanditSVG(t *testing.T) {
	snap := bandit.Snapshot{
		Estimates: []bandit.Estimate{
			{Action: bandit.Actions()[0], Value: 10},
			{Action: bandit.Actions()[1], Value: 50},
		},
		Best: "growth",
	}
	svg := string(BanditSVG(snap, NewDefaultOptions("svg")))
	assert.Contains(t, svg, "<title>Sharpen a skill 50.0</title>")
	assert.Equal(t, 1, strings.Count(svg, `fill="#4ade80"><title>`))
}

func TestBars(t *testing.T) {
	out := Bars([]string{"a", "long"}, []float64{50, 100}, 100, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a    █████░░░░░   50.0", lines[0])
	assert.Equal(t, "long ██████████  100.0", lines[1])
}

func TestScatterSVG(t *testing.T) {
	p := calc.CorrelationParams{
		XLabel: "hours",
		YLabel: "score",
		Points: []calc.Point{{ID: "1", X: 1, Y: 2}, {ID: "2", X: 3, Y: 6}, {ID: "3", X: 2, Y: 4}},
	}
	svg := string(ScatterSVG(p, calc.Correlation(p), NewDefaultOptions("svg")))
	assert.Equal(t, 3, strings.Count(svg, "<circle "))
	assert.Contains(t, svg, ">hours</text>")
	assert.Equal(t, 1, strings.Count(svg, "<line "))
}
