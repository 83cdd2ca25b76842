package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

const (
	Gravity = -9.81
	FloorY  = -1.0

	WallRepulsionStrength = 200.0
	WallRepulsionDistance = 0.05
)

// powers returns (dx/l)^7 and (dx/l)^13.
func powers(dx, l float64) (float64, float64) {
	r := dx / l
	r2 := r * r
	r4 := r2 * r2
	p7 := r4 * r2 * r
	return p7, p7 * r4 * r2
}

// BondForce is the bonded force on the node at pi from its partner at pj,
// before division by mass. It pulls pi towards pj when the bond is
// stretched past dx and pushes it away when compressed.
func BondForce(pi, pj mgl64.Vec2, dx, v0 float64) mgl64.Vec2 {
	dir := pj.Sub(pi)
	l := dir.Len()
	p7, p13 := powers(dx, l)
	return dir.Mul(3 * (v0 / dx) * (p7 - p13) / l)
}

// RepulsionForce points from pi towards pj; callers subtract it from pi.
func RepulsionForce(pi, pj mgl64.Vec2, dx, v0 float64) mgl64.Vec2 {
	dir := pj.Sub(pi)
	l := dir.Len()
	_, p13 := powers(dx, l)
	return dir.Mul(3 * (v0 / dx) * p13 / l)
}

// WallForce is the floor repulsion evaluated against the point directly
// below p on the floor line.
func WallForce(p mgl64.Vec2) mgl64.Vec2 {
	return RepulsionForce(p, mgl64.Vec2{p[0], FloorY}, WallRepulsionDistance, WallRepulsionStrength)
}

func DragAcceleration(v mgl64.Vec2, drag float64) mgl64.Vec2 {
	return v.Mul(v.Len() * drag)
}

func ApplyGravity(nodes []scene.Node) {
	for i := range nodes {
		nodes[i].CurrentAcceleration[1] += Gravity
	}
}

// ApplyBonds walks the bond map once, adding the pair force to both
// endpoints with opposite signs.
func ApplyBonds(nodes []scene.Node, bonds map[scene.BondKey]scene.Bond) {
	for k, b := range bonds {
		a, c := &nodes[k.A], &nodes[k.B]
		f := BondForce(a.Position, c.Position, b.EquilibriumDistance, b.PotentialStrength)
		a.CurrentAcceleration = a.CurrentAcceleration.Add(f.Mul(1 / a.Mass))
		c.CurrentAcceleration = c.CurrentAcceleration.Sub(f.Mul(1 / c.Mass))
	}
}

// ApplyRepulsion pushes each node away from its collision candidates. The
// candidate lists are symmetric, so each pair is visited from both sides.
func ApplyRepulsion(nodes []scene.Node, colls topology.Collisions, dx, v0 float64) {
	for i, candidates := range colls {
		n := &nodes[i]
		var f mgl64.Vec2
		for _, j := range candidates {
			f = f.Add(RepulsionForce(n.Position, nodes[j].Position, dx, v0))
		}
		n.CurrentAcceleration = n.CurrentAcceleration.Sub(f.Mul(1 / n.Mass))
	}
}

func ApplyWall(nodes []scene.Node) {
	for i := range nodes {
		n := &nodes[i]
		n.CurrentAcceleration = n.CurrentAcceleration.Sub(WallForce(n.Position).Mul(1 / n.Mass))
	}
}

func ApplyDrag(nodes []scene.Node) {
	for i := range nodes {
		n := &nodes[i]
		n.CurrentAcceleration = n.CurrentAcceleration.Sub(DragAcceleration(n.Velocity, n.Drag))
	}
}

// ApplyAll runs every kernel over the scene in place.
func ApplyAll(sc *scene.Scene, colls topology.Collisions) {
	ApplyGravity(sc.Nodes)
	ApplyBonds(sc.Nodes, sc.Connections)
	ApplyRepulsion(sc.Nodes, colls, sc.ObjectRepulsionDistance, sc.ObjectRepulsionStrength)
	ApplyWall(sc.Nodes)
	ApplyDrag(sc.Nodes)
}

// NodeAcceleration returns the total acceleration delta of node i given
// its bond neighbours and collision candidates. It only reads nodes.
func NodeAcceleration(nodes []scene.Node, i int, neighbors []topology.Neighbor, candidates []int, dx, v0 float64) mgl64.Vec2 {
	n := &nodes[i]
	p := n.Position

	var f mgl64.Vec2
	for _, nb := range neighbors {
		f = f.Add(BondForce(p, nodes[nb.Index].Position, nb.EquilibriumDistance, nb.PotentialStrength))
	}
	for _, j := range candidates {
		f = f.Sub(RepulsionForce(p, nodes[j].Position, dx, v0))
	}
	f = f.Sub(WallForce(p))

	acc := f.Mul(1 / n.Mass).Sub(DragAcceleration(n.Velocity, n.Drag))
	acc[1] += Gravity
	return acc
}
