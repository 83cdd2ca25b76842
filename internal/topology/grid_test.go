package topology

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
)

func TestGridEmpty(t *testing.T) {
	tests := []struct {
		name  string
		nodes []scene.Node
	}{
		{"no nodes", nil},
		{"no boundary", scene.BuildRectangle(3, 3, 0.1, 0, 0, 1, 0, 1)[4:5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.nodes, 0.1)
			if !g.Empty() {
				t.Fatalf("expected empty grid, got %dx%d", g.CountX, g.CountY)
			}
			if got := g.Neighbors(mgl64.Vec2{0, 0}); len(got) != 0 {
				t.Errorf("expected no neighbours, got %v", got)
			}
		})
	}
}

func TestGridSingleNodeHasOneCell(t *testing.T) {
	nodes := []scene.Node{{Position: mgl64.Vec2{0.3, 0.3}, IsBoundary: true}}
	g := NewGrid(nodes, 0.1)
	if g.CountX != 1 || g.CountY != 1 {
		t.Fatalf("dims = %dx%d, want 1x1", g.CountX, g.CountY)
	}
	if got := g.Neighbors(mgl64.Vec2{0.3, 0.3}); len(got) != 1 || got[0] != 0 {
		t.Errorf("neighbours = %v", got)
	}
}

func TestGridCellIndexClamps(t *testing.T) {
	nodes := scene.BuildRectangle(5, 5, 0.1, 0, 0, 1, 0, 1)
	g := NewGrid(nodes, 0.1)

	points := []mgl64.Vec2{
		{-100, -100},
		{100, 100},
		{math.NaN(), 0.2},
		{math.Inf(1), math.Inf(-1)},
		{0.2, math.NaN()},
	}
	for _, p := range points {
		x, y := g.CellIndex(p)
		if x < 0 || x >= g.CountX || y < 0 || y >= g.CountY {
			t.Errorf("CellIndex(%v) = (%d,%d) out of %dx%d", p, x, y, g.CountX, g.CountY)
		}
	}
}

func TestGridExtentClamped(t *testing.T) {
	nodes := []scene.Node{
		{Position: mgl64.Vec2{-50, -50}, IsBoundary: true},
		{Position: mgl64.Vec2{50, 50}, IsBoundary: true},
	}
	g := NewGrid(nodes, 0.5)
	if g.Origin[0] != -GridMaxExtent || g.Origin[1] != -GridMaxExtent {
		t.Errorf("origin = %v", g.Origin)
	}
	if g.CountX != 8 || g.CountY != 8 {
		t.Errorf("dims = %dx%d, want 8x8", g.CountX, g.CountY)
	}
}

func TestGridCellCap(t *testing.T) {
	nodes := []scene.Node{
		{Position: mgl64.Vec2{-1, -1}, IsBoundary: true},
		{Position: mgl64.Vec2{1, 1}, IsBoundary: true},
	}
	g := NewGrid(nodes, 1e-9)
	if g.CountX > MaxCellsPerAxis || g.CountY > MaxCellsPerAxis {
		t.Errorf("dims %dx%d exceed cap", g.CountX, g.CountY)
	}
	if g.CellSize < 2.0/MaxCellsPerAxis {
		t.Errorf("cell size %v was not grown", g.CellSize)
	}
}

func TestGridNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const cell = 0.08

	nodes := make([]scene.Node, 400)
	for i := range nodes {
		nodes[i] = scene.Node{
			Position:   mgl64.Vec2{rng.Float64()*5 - 2.5, rng.Float64()*5 - 2.5},
			IsBoundary: true,
		}
	}
	g := NewGrid(nodes, cell)

	for i := range nodes {
		got := map[int]bool{}
		for _, j := range g.Neighbors(nodes[i].Position) {
			got[j] = true
		}
		for j := range nodes {
			d := nodes[j].Position.Sub(nodes[i].Position).Len()
			if d <= cell && !got[j] {
				t.Fatalf("node %d missing neighbour %d at distance %v", i, j, d)
			}
		}
	}
}

func TestGridRebuildTracksMovement(t *testing.T) {
	nodes := []scene.Node{
		{Position: mgl64.Vec2{0, 0}, IsBoundary: true},
		{Position: mgl64.Vec2{1, 1}, IsBoundary: true},
	}
	g := NewGrid(nodes, 0.1)
	if contains(g.Neighbors(nodes[0].Position), 1) {
		t.Fatal("distant nodes reported as neighbours")
	}

	nodes[1].Position = mgl64.Vec2{0.05, 0}
	g.Rebuild(nodes)
	if !contains(g.Neighbors(nodes[0].Position), 1) {
		t.Error("rebuild did not pick up moved node")
	}
}

func contains(s []int, v int) bool {
	sort.Ints(s)
	i := sort.SearchInts(s, v)
	return i < len(s) && s[i] == v
}

func BenchmarkGridRebuild(b *testing.B) {
	nodes := scene.BuildRectangle(100, 100, 0.01, -0.5, -0.5, 1, 0, 1)
	for i := range nodes {
		nodes[i].IsBoundary = true
	}
	g := NewGrid(nodes, 0.025)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Rebuild(nodes)
	}
}
