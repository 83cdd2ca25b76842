package topology

import (
	"github.com/san-kum/bondsim/internal/parallel"
	"github.com/san-kum/bondsim/internal/scene"
)

// Collisions lists, per node, the nodes of other objects it may be
// repelled by. Non-boundary nodes have empty lists.
type Collisions [][]int

const collisionChunk = 64

// BruteForceCollisions pairs every boundary node with every boundary node
// of a different object.
func BruteForceCollisions(nodes []scene.Node) Collisions {
	boundary := boundaryIndices(nodes)
	colls := make(Collisions, len(nodes))

	parallel.For(len(boundary), collisionChunk, func(start, end int) {
		for _, i := range boundary[start:end] {
			obj := nodes[i].ObjectID
			var list []int
			for _, j := range boundary {
				if nodes[j].ObjectID != obj {
					list = append(list, j)
				}
			}
			colls[i] = list
		}
	})
	return colls
}

// GridCollisions pairs each boundary node with the boundary nodes of other
// objects found in the 3x3 cell neighbourhood around it.
func GridCollisions(nodes []scene.Node, g *Grid) Collisions {
	boundary := boundaryIndices(nodes)
	colls := make(Collisions, len(nodes))

	parallel.For(len(boundary), collisionChunk, func(start, end int) {
		var buf []int
		for _, i := range boundary[start:end] {
			obj := nodes[i].ObjectID
			buf = g.AppendNeighbors(buf[:0], nodes[i].Position)
			var list []int
			for _, j := range buf {
				if nodes[j].ObjectID != obj {
					list = append(list, j)
				}
			}
			colls[i] = list
		}
	})
	return colls
}

func (c Collisions) Pairs() int {
	total := 0
	for _, list := range c {
		total += len(list)
	}
	return total
}

func boundaryIndices(nodes []scene.Node) []int {
	var idx []int
	for i := range nodes {
		if nodes[i].IsBoundary {
			idx = append(idx, i)
		}
	}
	return idx
}
