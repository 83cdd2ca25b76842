package topology

import "github.com/san-kum/bondsim/internal/scene"

// BreakRatio is the stretch, relative to the equilibrium distance, past
// which a bond breaks.
const BreakRatio = 1.5

// BreakOverstretched removes every bond stretched past BreakRatio times its
// equilibrium distance. Endpoints of broken bonds become boundary nodes, as
// do the partners they are still bonded to, since those now face the new
// surface. It returns the removed keys in sorted order; an empty result
// means the scene was not modified.
func BreakOverstretched(sc *scene.Scene) []scene.BondKey {
	var broken []scene.BondKey
	for _, k := range sc.SortedKeys() {
		b := sc.Connections[k]
		l := sc.Nodes[k.B].Position.Sub(sc.Nodes[k.A].Position).Len()
		if l > BreakRatio*b.EquilibriumDistance {
			broken = append(broken, k)
		}
	}
	if len(broken) == 0 {
		return nil
	}

	exposed := make(map[int]struct{}, 2*len(broken))
	for _, k := range broken {
		exposed[k.A] = struct{}{}
		exposed[k.B] = struct{}{}
	}
	for _, k := range broken {
		delete(sc.Connections, k)
	}
	for k := range sc.Connections {
		_, a := exposed[k.A]
		_, b := exposed[k.B]
		if a || b {
			sc.Nodes[k.A].IsBoundary = true
			sc.Nodes[k.B].IsBoundary = true
		}
	}
	for i := range exposed {
		sc.Nodes[i].IsBoundary = true
	}
	return broken
}
