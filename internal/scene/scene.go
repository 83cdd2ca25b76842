package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

type Node struct {
	Position            mgl64.Vec2
	Velocity            mgl64.Vec2
	LastAcceleration    mgl64.Vec2
	CurrentAcceleration mgl64.Vec2
	Mass                float64
	Drag                float64
	ObjectID            uint32
	IsBoundary          bool
}

// BondKey identifies a bond by its endpoint indices with A < B.
type BondKey struct {
	A, B int
}

func Key(i, j int) BondKey {
	if i > j {
		i, j = j, i
	}
	return BondKey{A: i, B: j}
}

type Bond struct {
	EquilibriumDistance float64
	PotentialStrength   float64
}

type Scene struct {
	Nodes       []Node
	Connections map[BondKey]Bond

	ObjectRepulsionDistance float64
	ObjectRepulsionStrength float64
}

func New(repulsionDistance, repulsionStrength float64) *Scene {
	return &Scene{
		Connections:             make(map[BondKey]Bond),
		ObjectRepulsionDistance: repulsionDistance,
		ObjectRepulsionStrength: repulsionStrength,
	}
}

// Connect stores a bond between i and j, replacing any existing one.
func (s *Scene) Connect(i, j int, b Bond) {
	if s.Connections == nil {
		s.Connections = make(map[BondKey]Bond)
	}
	s.Connections[Key(i, j)] = b
}

func (s *Scene) Clone() *Scene {
	c := &Scene{
		Nodes:                   make([]Node, len(s.Nodes)),
		Connections:             make(map[BondKey]Bond, len(s.Connections)),
		ObjectRepulsionDistance: s.ObjectRepulsionDistance,
		ObjectRepulsionStrength: s.ObjectRepulsionStrength,
	}
	copy(c.Nodes, s.Nodes)
	for k, v := range s.Connections {
		c.Connections[k] = v
	}
	return c
}

// IsBroken reports whether any node position has gone non-finite.
func (s *Scene) IsBroken() bool {
	for i := range s.Nodes {
		if !Finite(s.Nodes[i].Position) {
			return true
		}
	}
	return false
}

func (s *Scene) Equal(o *Scene) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.ObjectRepulsionDistance != o.ObjectRepulsionDistance ||
		s.ObjectRepulsionStrength != o.ObjectRepulsionStrength {
		return false
	}
	if len(s.Nodes) != len(o.Nodes) || len(s.Connections) != len(o.Connections) {
		return false
	}
	for i := range s.Nodes {
		if s.Nodes[i] != o.Nodes[i] {
			return false
		}
	}
	for k, v := range s.Connections {
		if ov, ok := o.Connections[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// SortedKeys returns the bond keys ordered by (A, B).
func (s *Scene) SortedKeys() []BondKey {
	keys := make([]BondKey, 0, len(s.Connections))
	for k := range s.Connections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	return keys
}

func (s *Scene) BoundaryCount() int {
	n := 0
	for i := range s.Nodes {
		if s.Nodes[i].IsBoundary {
			n++
		}
	}
	return n
}

func Finite(v mgl64.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) &&
		!math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}
