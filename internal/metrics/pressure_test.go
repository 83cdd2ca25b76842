package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

func pair(separation float64) *scene.Scene {
	s := scene.New(0.1, 10)
	s.Append([]scene.Node{
		{Position: mgl64.Vec2{0, 0}, Mass: 1, ObjectID: 1},
		{Position: mgl64.Vec2{separation, 0}, Mass: 1, ObjectID: 1},
	})
	s.Connect(0, 1, scene.Bond{EquilibriumDistance: 0.1, PotentialStrength: 10})
	return s
}

func TestPressureRisesUnderCompression(t *testing.T) {
	rest := pair(0.1)
	squeezed := pair(0.08)

	pRest := PressurePerNode(rest.Nodes, topology.BuildConnections(rest))
	pSqueezed := PressurePerNode(squeezed.Nodes, topology.BuildConnections(squeezed))

	for i := range pRest {
		if pRest[i] <= 0 {
			t.Errorf("node %d: expected positive pressure at rest, got %f", i, pRest[i])
		}
		if pSqueezed[i] <= pRest[i] {
			t.Errorf("node %d: compressed pressure %f not above rest %f", i, pSqueezed[i], pRest[i])
		}
	}
	if math.Abs(pRest[0]-pRest[1]) > 1e-6*pRest[0] {
		t.Errorf("symmetric pair has pressures %f and %f", pRest[0], pRest[1])
	}
}

func TestPressureIsolatedNode(t *testing.T) {
	nodes := []scene.Node{{Position: mgl64.Vec2{0, 0}}}
	p := PressurePerNode(nodes, make(topology.Connections, 1))
	if p[0] != 0 {
		t.Errorf("unbonded node should have zero pressure, got %f", p[0])
	}
}

func TestMaxPressure(t *testing.T) {
	if got := MaxPressure(nil, nil); !math.IsInf(got, -1) {
		t.Errorf("empty scene: expected -Inf, got %f", got)
	}

	s := pair(0.09)
	conns := topology.BuildConnections(s)
	per := PressurePerNode(s.Nodes, conns)
	if got := MaxPressure(s.Nodes, conns); got != math.Max(per[0], per[1]) {
		t.Errorf("MaxPressure = %f, per node %v", got, per)
	}
}
