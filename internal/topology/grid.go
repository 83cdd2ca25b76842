package topology

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
)

const (
	// GridMaxExtent bounds the grid box on every side; nodes beyond it are
	// clamped into the edge cells.
	GridMaxExtent = 2.0

	MaxCellsPerAxis = 2048
)

// Grid buckets boundary nodes into square cells so that every pair closer
// than the cell size lies in the same or an adjacent cell.
type Grid struct {
	Origin   mgl64.Vec2
	CellSize float64
	CountX   int
	CountY   int

	requested float64
	cells     [][]int
}

func NewGrid(nodes []scene.Node, cellSize float64) *Grid {
	g := &Grid{requested: cellSize}
	g.Rebuild(nodes)
	return g
}

// Rebuild recomputes the bounding box from the current boundary node
// positions and re-buckets them. Cell storage is reused when the
// dimensions do not change.
func (g *Grid) Rebuild(nodes []scene.Node) {
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	found := false
	for i := range nodes {
		n := &nodes[i]
		if !n.IsBoundary || !scene.Finite(n.Position) {
			continue
		}
		found = true
		for a := 0; a < 2; a++ {
			lo[a] = math.Min(lo[a], n.Position[a])
			hi[a] = math.Max(hi[a], n.Position[a])
		}
	}
	if !found {
		g.CountX, g.CountY = 0, 0
		g.CellSize = g.requested
		g.cells = g.cells[:0]
		return
	}

	for a := 0; a < 2; a++ {
		lo[a] = clampf(lo[a], -GridMaxExtent, GridMaxExtent)
		hi[a] = clampf(hi[a], -GridMaxExtent, GridMaxExtent)
	}
	width, height := hi[0]-lo[0], hi[1]-lo[1]

	size := g.requested
	if !(size > 0) || math.IsInf(size, 0) {
		size = math.Max(math.Max(width, height), 1)
	}
	if minSize := math.Max(width, height) / MaxCellsPerAxis; size < minSize {
		size = minSize
	}

	g.Origin = lo
	g.CellSize = size
	g.CountX = cellCount(width, size)
	g.CountY = cellCount(height, size)

	total := g.CountX * g.CountY
	if len(g.cells) == total {
		for i := range g.cells {
			g.cells[i] = g.cells[i][:0]
		}
	} else {
		g.cells = make([][]int, total)
	}

	for i := range nodes {
		if !nodes[i].IsBoundary {
			continue
		}
		cx, cy := g.CellIndex(nodes[i].Position)
		c := cx*g.CountY + cy
		g.cells[c] = append(g.cells[c], i)
	}
}

// CellIndex maps p to a cell, clamping out-of-range and non-finite
// coordinates into the grid.
func (g *Grid) CellIndex(p mgl64.Vec2) (int, int) {
	return axisIndex(p[0], g.Origin[0], g.CellSize, g.CountX),
		axisIndex(p[1], g.Origin[1], g.CellSize, g.CountY)
}

// AppendNeighbors appends every node stored in the 3x3 cells around p.
func (g *Grid) AppendNeighbors(dst []int, p mgl64.Vec2) []int {
	if g.CountX == 0 || g.CountY == 0 {
		return dst
	}
	cx, cy := g.CellIndex(p)
	for x := cx - 1; x <= cx+1; x++ {
		if x < 0 || x >= g.CountX {
			continue
		}
		for y := cy - 1; y <= cy+1; y++ {
			if y < 0 || y >= g.CountY {
				continue
			}
			dst = append(dst, g.cells[x*g.CountY+y]...)
		}
	}
	return dst
}

func (g *Grid) Neighbors(p mgl64.Vec2) []int {
	return g.AppendNeighbors(nil, p)
}

func (g *Grid) Cell(x, y int) []int {
	if x < 0 || y < 0 || x >= g.CountX || y >= g.CountY {
		return nil
	}
	return g.cells[x*g.CountY+y]
}

func (g *Grid) Dims() (int, int) {
	return g.CountX, g.CountY
}

func (g *Grid) Empty() bool {
	return g.CountX == 0 || g.CountY == 0
}

func (g *Grid) SetCellSize(size float64) {
	g.requested = size
}

func cellCount(extent, size float64) int {
	n := int(math.Ceil(extent / size))
	if n < 1 {
		n = 1
	}
	if n > MaxCellsPerAxis {
		n = MaxCellsPerAxis
	}
	return n
}

func axisIndex(v, origin, size float64, count int) int {
	if count == 0 || math.IsNaN(v) {
		return 0
	}
	f := math.Floor((v - origin) / size)
	if f < 0 {
		return 0
	}
	if f >= float64(count) {
		return count - 1
	}
	return int(f)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
