package render

import "strings"

// grid is a bordered character canvas that maps the 100x100 view box onto
// its interior cells
type grid struct {
	cells         [][]rune
	width, height int
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, height: height, cells: make([][]rune, height)}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", width))
	}
	for i := 0; i < width; i++ {
		g.cells[0][i] = '-'
		g.cells[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		g.cells[i][0] = '|'
		g.cells[i][width-1] = '|'
	}
	g.cells[0][0], g.cells[0][width-1] = '+', '+'
	g.cells[height-1][0], g.cells[height-1][width-1] = '+', '+'
	return g
}

// cell converts view box coordinates to an interior cell
func (g *grid) cell(x, y float64) (int, int) {
	cx := int(x*float64(g.width-2)/100) + 1
	cy := int(y*float64(g.height-2)/100) + 1
	return clamp(cx, 1, g.width-2), clamp(cy, 1, g.height-2)
}

func (g *grid) set(x, y int, r rune) {
	if x > 0 && x < g.width-1 && y > 0 && y < g.height-1 {
		g.cells[y][x] = r
	}
}

func (g *grid) text(x, y int, s string) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r)
	}
}

// line draws with Bresenham's algorithm without overwriting marks
func (g *grid) line(x1, y1, x2, y2 int, r rune) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 >= x2 {
		sx = -1
	}
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if x1 > 0 && x1 < g.width-1 && y1 > 0 && y1 < g.height-1 && g.cells[y1][x1] == ' ' {
			g.cells[y1][x1] = r
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
