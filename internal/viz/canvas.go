package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/physics"
	"github.com/san-kum/bondsim/internal/scene"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width x Height grid of braille cells, addressed in dots
// (2*Width by 4*Height).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine is Bresenham between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps the world square [Min, Max]^2 onto a canvas with y up.
type Viewport struct {
	Min, Max float64
}

// DefaultViewport frames the simulation domain with the floor at y = -1.
var DefaultViewport = Viewport{Min: -1.05, Max: 1.05}

// Project returns the dot for p and whether p is finite. Aspect is kept
// by scaling on the shorter canvas side.
func (v Viewport) Project(c *Canvas, p mgl64.Vec2) (int, int, bool) {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
		return 0, 0, false
	}
	w, h := c.Dots()
	side := math.Min(float64(w), float64(h))
	scale := (side - 1) / (v.Max - v.Min)
	offX := (float64(w) - side) / 2
	x := offX + (p[0]-v.Min)*scale
	y := float64(h-1) - (p[1]-v.Min)*scale
	return int(math.Round(x)), int(math.Round(y)), true
}

// DrawScene clears c and draws the floor, every bond and the boundary
// nodes of sc.
func DrawScene(c *Canvas, v Viewport, sc *scene.Scene) {
	c.Clear()
	nodes := sc.Nodes

	w, _ := c.Dots()
	_, floor, _ := v.Project(c, mgl64.Vec2{0, physics.FloorY})
	c.DrawLine(0, floor, w-1, floor)

	for k := range sc.Connections {
		x0, y0, ok0 := v.Project(c, nodes[k.A].Position)
		x1, y1, ok1 := v.Project(c, nodes[k.B].Position)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for i := range nodes {
		if !nodes[i].IsBoundary {
			continue
		}
		if x, y, ok := v.Project(c, nodes[i].Position); ok {
			c.Set(x, y)
		}
	}
}
