package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/parallel"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

// pressureProbe is the offset used for the central differences.
const pressureProbe = 0.0005

// bondField evaluates the magnitude-summed bond field of node i's
// neighbours at point.
func bondField(nodes []scene.Node, neighbors []topology.Neighbor, point mgl64.Vec2) mgl64.Vec2 {
	var f mgl64.Vec2
	for _, nb := range neighbors {
		dir := nodes[nb.Index].Position.Sub(point)
		l := dir.Len()
		r := nb.EquilibriumDistance / l
		c := math.Pow(r, 7) + math.Pow(r, 13)
		f = f.Add(dir.Mul(3 * (nb.PotentialStrength / nb.EquilibriumDistance) * c / l))
	}
	return f
}

// PressurePerNode estimates the local pressure at every node as the
// negative divergence of its neighbours' bond field.
func PressurePerNode(nodes []scene.Node, conns topology.Connections) []float64 {
	out := make([]float64, len(nodes))
	parallel.For(len(nodes), 256, func(start, end int) {
		for i := start; i < end; i++ {
			p := nodes[i].Position
			nb := conns[i]
			top := bondField(nodes, nb, p.Add(mgl64.Vec2{0, pressureProbe}))[1]
			bottom := bondField(nodes, nb, p.Add(mgl64.Vec2{0, -pressureProbe}))[1]
			right := bondField(nodes, nb, p.Add(mgl64.Vec2{pressureProbe, 0}))[0]
			left := bondField(nodes, nb, p.Add(mgl64.Vec2{-pressureProbe, 0}))[0]
			out[i] = -0.25 * (-(right - left) - (top - bottom))
		}
	})
	return out
}

// MaxPressure returns -Inf for an empty scene.
func MaxPressure(nodes []scene.Node, conns topology.Connections) float64 {
	best := math.Inf(-1)
	for _, p := range PressurePerNode(nodes, conns) {
		best = math.Max(best, p)
	}
	return best
}
