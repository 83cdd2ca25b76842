package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

func TestTemperatureRecordInterval(t *testing.T) {
	temp := NewTemperature(4, 0.1)
	calls := 0
	sample := func() []float64 {
		calls++
		return []float64{1}
	}

	if temp.Record(0.06, sample) {
		t.Error("recorded before interval elapsed")
	}
	if !temp.Record(0.06, sample) {
		t.Error("expected a record once interval passed")
	}
	if temp.Record(0.06, sample) {
		t.Error("interval should restart after a record")
	}
	if calls != 1 {
		t.Errorf("sample called %d times, want 1", calls)
	}
}

func TestTemperatureDefaults(t *testing.T) {
	temp := NewTemperature(0, 0)
	if temp.Capacity() != DefaultTemperatureSamples {
		t.Errorf("capacity = %d", temp.Capacity())
	}
}

func TestTemperaturePerNodeWalkAverage(t *testing.T) {
	temp := NewTemperature(2, 0.1)
	temp.Record(0.2, func() []float64 { return []float64{1, 2} })

	conns := topology.Connections{
		{{Index: 1}},
		{{Index: 0}},
	}
	got := temp.PerNode(conns)

	// Own energies are -2.5 and -5. Walks of length 1..4 on a single edge
	// visit the partner twice and the node itself twice.
	want := []float64{-3.5, -4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("node %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestTemperatureRingBufferWraps(t *testing.T) {
	temp := NewTemperature(2, 0.1)
	for _, v := range []float64{100, 1, 1} {
		temp.Record(0.2, func() []float64 { return []float64{v} })
	}
	got := temp.PerNode(nil)
	if want := -0.5 * 2 / 0.2; math.Abs(got[0]-want) > 1e-12 {
		t.Errorf("expected oldest sample evicted, got %f want %f", got[0], want)
	}
}

func TestTemperatureReset(t *testing.T) {
	temp := NewTemperature(2, 0.1)
	temp.Record(0.2, func() []float64 { return []float64{1} })
	temp.Reset()
	if got := temp.PerNode(nil); len(got) != 0 {
		t.Errorf("expected empty result after reset, got %v", got)
	}
}

func TestVirialSampleWallPushesUp(t *testing.T) {
	nodes := []scene.Node{{Position: mgl64.Vec2{0, 0.5}}}
	got := VirialSample(nodes, make(topology.Connections, 1))
	if got[0] <= 0 {
		t.Errorf("expected positive virial from floor push, got %g", got[0])
	}
}
