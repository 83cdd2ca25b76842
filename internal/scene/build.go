package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BuildRectangle lays out sizeX*sizeY nodes on a square lattice starting at
// (offsetX, offsetY). Nodes on the outer ring are flagged as boundary.
func BuildRectangle(sizeX, sizeY int, spacing, offsetX, offsetY, mass, drag float64, objectID uint32) []Node {
	nodes := make([]Node, 0, sizeX*sizeY)
	for y := 0; y < sizeY; y++ {
		for x := 0; x < sizeX; x++ {
			nodes = append(nodes, Node{
				Position:   mgl64.Vec2{offsetX + float64(x)*spacing, offsetY + float64(y)*spacing},
				Mass:       mass,
				Drag:       drag,
				ObjectID:   objectID,
				IsBoundary: x == 0 || y == 0 || x == sizeX-1 || y == sizeY-1,
			})
		}
	}
	return nodes
}

// BuildCircle places a center node and rings of 6k nodes at radius k*spacing.
// The outermost ring is the boundary.
func BuildCircle(rings int, spacing, centerX, centerY, mass, drag float64, objectID uint32) []Node {
	nodes := []Node{{
		Position:   mgl64.Vec2{centerX, centerY},
		Mass:       mass,
		Drag:       drag,
		ObjectID:   objectID,
		IsBoundary: rings == 0,
	}}
	for k := 1; k <= rings; k++ {
		count := 6 * k
		r := float64(k) * spacing
		for i := 0; i < count; i++ {
			a := 2 * math.Pi * float64(i) / float64(count)
			nodes = append(nodes, Node{
				Position:   mgl64.Vec2{centerX + r*math.Cos(a), centerY + r*math.Sin(a)},
				Mass:       mass,
				Drag:       drag,
				ObjectID:   objectID,
				IsBoundary: k == rings,
			})
		}
	}
	return nodes
}

// Append adds nodes to the scene and returns the index of the first one.
func (s *Scene) Append(nodes []Node) int {
	first := len(s.Nodes)
	s.Nodes = append(s.Nodes, nodes...)
	return first
}

// ConnectWithin bonds every pair of same-object nodes in [first, last) that
// are closer than searchDistance. The current separation becomes the
// equilibrium distance.
func (s *Scene) ConnectWithin(first, last int, searchDistance, strength float64) int {
	added := 0
	for i := first; i < last; i++ {
		for j := i + 1; j < last; j++ {
			a, b := &s.Nodes[i], &s.Nodes[j]
			if a.ObjectID != b.ObjectID {
				continue
			}
			d := b.Position.Sub(a.Position).Len()
			if d < searchDistance {
				s.Connect(i, j, Bond{EquilibriumDistance: d, PotentialStrength: strength})
				added++
			}
		}
	}
	return added
}
