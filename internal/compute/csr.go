package compute

import "github.com/san-kum/bondsim/internal/topology"

// CSR is a compressed sparse row layout of per-node index lists: the
// entries of node i are Indices[Offsets[i]:Offsets[i+1]].
type CSR struct {
	Offsets []int32
	Indices []int32
}

// BondCSR carries the bond parameters alongside each neighbour entry.
type BondCSR struct {
	CSR
	Distance []float32
	Strength []float32
}

func FlattenConnections(conns topology.Connections) BondCSR {
	edges := conns.Edges()
	out := BondCSR{
		CSR: CSR{
			Offsets: make([]int32, len(conns)+1),
			Indices: make([]int32, 0, edges),
		},
		Distance: make([]float32, 0, edges),
		Strength: make([]float32, 0, edges),
	}
	for i, list := range conns {
		for _, nb := range list {
			out.Indices = append(out.Indices, int32(nb.Index))
			out.Distance = append(out.Distance, float32(nb.EquilibriumDistance))
			out.Strength = append(out.Strength, float32(nb.PotentialStrength))
		}
		out.Offsets[i+1] = int32(len(out.Indices))
	}
	return out
}

func FlattenCollisions(colls topology.Collisions) CSR {
	out := CSR{
		Offsets: make([]int32, len(colls)+1),
		Indices: make([]int32, 0, colls.Pairs()),
	}
	for i, list := range colls {
		for _, j := range list {
			out.Indices = append(out.Indices, int32(j))
		}
		out.Offsets[i+1] = int32(len(out.Indices))
	}
	return out
}
