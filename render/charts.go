package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/markov"
)

// Descent curve window: x in [-2.5,2.5], f(x) in [-2.5,4.5]
func descentX(x float64) float64 { return (x + 2.5) * 100 / 5 }
func descentY(y float64) float64 { return 100 - (y+2.5)*100/7 }

// DescentSVG draws the loss valley, the trajectory so far, and the current point
func DescentSVG(state descent.State, options *OutputOptions) []byte {
	var buf bytes.Buffer
	svgHeader(&buf, options)

	var curve strings.Builder
	for i := 0; i <= 50; i++ {
		x := -2.5 + float64(i)*0.1
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&curve, "%s %.2f %.2f ", cmd, descentX(x), descentY(descent.Loss(x)))
	}
	fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="%s" stroke-width="0.5" stroke-opacity="0.2"/>
`, strings.TrimSpace(curve.String()), options.Accent)

	if len(state.History) > 1 {
		var trail strings.Builder
		for i, h := range state.History {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&trail, "%s %.2f %.2f ", cmd, descentX(h), descentY(descent.Loss(h)))
		}
		fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="%s" stroke-width="1" stroke-dasharray="2,2"/>
`, strings.TrimSpace(trail.String()), options.Accent)
	}

	color := options.Accent
	if state.Status == descent.Diverged {
		color = "#f87171"
	}
	fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="2.5" fill="%s"><title>x=%.4f %s</title></circle>
`, descentX(state.Position), descentY(state.Loss), color, state.Position, state.Status)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// DescentASCII plots the valley with the visited positions marked
func DescentASCII(state descent.State, width, height int) string {
	g := newGrid(max(width, 20), max(height, 10))

	px, py := g.cell(descentX(-2.5), descentY(descent.Loss(-2.5)))
	for i := 1; i <= 50; i++ {
		x := -2.5 + float64(i)*0.1
		cx, cy := g.cell(descentX(x), descentY(descent.Loss(x)))
		g.line(px, py, cx, cy, '.')
		px, py = cx, cy
	}

	for _, h := range state.History {
		cx, cy := g.cell(descentX(h), descentY(descent.Loss(h)))
		g.set(cx, cy, 'o')
	}
	cx, cy := g.cell(descentX(state.Position), descentY(state.Loss))
	g.set(cx, cy, '@')

	return g.String()
}

// MarkovSVG draws the walk as a strip of cells, A on top and B below, with
// the stationary share of A as a bar underneath
func MarkovSVG(walk []markov.State, stationary markov.Stationary, options *OutputOptions) []byte {
	var buf bytes.Buffer
	svgHeader(&buf, options)

	if n := len(walk); n > 0 {
		w := 100 / float64(n)
		for i, s := range walk {
			y, color := 20.0, options.Accent
			if s == markov.StateB {
				y, color = 50.0, "#6b7280"
			}
			fmt.Fprintf(&buf, `<rect x="%.3f" y="%.0f" width="%.3f" height="25" fill="%s"/>
`, float64(i)*w, y, w*0.9, color)
		}
	}

	fmt.Fprintf(&buf, `<rect x="0" y="85" width="100" height="6" fill="#6b7280"/>
<rect x="0" y="85" width="%.2f" height="6" fill="%s"/>
`, stationary.A, options.Accent)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// WalkStrip renders a walk as a row of state letters
func WalkStrip(walk []markov.State) string {
	var b strings.Builder
	for _, s := range walk {
		b.WriteString(s.String())
	}
	return b.String()
}

// BanditSVG draws one bar per action, tallest for the highest estimate
func BanditSVG(snapshot bandit.Snapshot, options *OutputOptions) []byte {
	var buf bytes.Buffer
	svgHeader(&buf, options)

	n := len(snapshot.Estimates)
	if n > 0 {
		slot := 100 / float64(n)
		for i, e := range snapshot.Estimates {
			h := math.Max(0, math.Min(e.Value, 100)) * 0.8
			color := "#6b7280"
			if e.Action.ID == snapshot.Best {
				color = options.Accent
			}
			x := float64(i)*slot + slot*0.2
			fmt.Fprintf(&buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s %.1f</title></rect>
`, x, 90-h, slot*0.6, h, color, html.EscapeString(e.Action.Name), e.Value)
			fmt.Fprintf(&buf, `<text x="%.2f" y="97" font-family="sans-serif" font-size="%.1f" fill="#e5e5e5" text-anchor="middle">%s</text>
`, x+slot*0.3, options.FontSize, html.EscapeString(e.Action.ID))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Bars renders labelled horizontal bars scaled so that limit fills width
func Bars(labels []string, values []float64, limit float64, width int) string {
	pad := 0
	for _, l := range labels {
		pad = max(pad, len([]rune(l)))
	}
	var b strings.Builder
	for i, l := range labels {
		v := 0.0
		if i < len(values) {
			v = values[i]
		}
		n := 0
		if limit > 0 {
			n = clamp(int(math.Round(v/limit*float64(width))), 0, width)
		}
		fmt.Fprintf(&b, "%-*s %s%s %6.1f\n", pad, l, strings.Repeat("█", n), strings.Repeat("░", width-n), v)
	}
	return b.String()
}

// ScatterSVG plots the points, a dashed line through them in x order, and
// the least-squares fit
func ScatterSVG(params calc.CorrelationParams, result calc.CorrelationResult, options *OutputOptions) []byte {
	var buf bytes.Buffer
	svgHeader(&buf, options)

	xMax, yMax := 0.0, 0.0
	for _, p := range params.Points {
		xMax = math.Max(xMax, p.X)
		yMax = math.Max(yMax, p.Y)
	}
	if xMax <= 0 {
		xMax = 1
	}
	if yMax <= 0 {
		yMax = 1
	}
	xMax, yMax = xMax*1.1, yMax*1.1
	sx := func(x float64) float64 { return x / xMax * 100 }
	sy := func(y float64) float64 { return 100 - y/yMax*100 }

	sorted := calc.SortedByX(params.Points)
	if len(sorted) > 1 {
		var path strings.Builder
		for i, p := range sorted {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s %.2f %.2f ", cmd, sx(p.X), sy(p.Y))
		}
		fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="%s" stroke-width="0.5" stroke-dasharray="2,2" stroke-opacity="0.3"/>
`, strings.TrimSpace(path.String()), options.Accent)

		fmt.Fprintf(&buf, `<line x1="0" y1="%.2f" x2="100" y2="%.2f" stroke="%s" stroke-width="0.4"/>
`, sy(result.Intercept), sy(result.Intercept+result.Slope*xMax), options.Accent)
	}

	for _, p := range params.Points {
		fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="2" fill="%s"/>
`, sx(p.X), sy(p.Y), options.Accent)
	}

	if options.ShowLabels {
		fmt.Fprintf(&buf, `<text x="50" y="99" font-family="sans-serif" font-size="%.1f" fill="#e5e5e5" text-anchor="middle">%s</text>
<text x="1" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="#e5e5e5">%s</text>
`, options.FontSize, html.EscapeString(params.XLabel), options.FontSize+1, options.FontSize, html.EscapeString(params.YLabel))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
