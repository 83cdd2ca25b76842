package topology

import (
	"sort"

	"github.com/san-kum/bondsim/internal/scene"
)

// Neighbor is one bond seen from one of its endpoints.
type Neighbor struct {
	Index               int
	EquilibriumDistance float64
	PotentialStrength   float64
}

// Connections lists, per node, every bond touching it. Each bond appears
// twice, once in each endpoint's list.
type Connections [][]Neighbor

func BuildConnections(sc *scene.Scene) Connections {
	conns := make(Connections, len(sc.Nodes))
	for k, b := range sc.Connections {
		conns[k.A] = append(conns[k.A], Neighbor{Index: k.B, EquilibriumDistance: b.EquilibriumDistance, PotentialStrength: b.PotentialStrength})
		conns[k.B] = append(conns[k.B], Neighbor{Index: k.A, EquilibriumDistance: b.EquilibriumDistance, PotentialStrength: b.PotentialStrength})
	}
	for i := range conns {
		list := conns[i]
		sort.Slice(list, func(a, b int) bool { return list[a].Index < list[b].Index })
	}
	return conns
}

func (c Connections) Edges() int {
	total := 0
	for _, list := range c {
		total += len(list)
	}
	return total
}
