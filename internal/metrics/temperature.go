package metrics

import (
	"github.com/san-kum/bondsim/internal/parallel"
	"github.com/san-kum/bondsim/internal/physics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

const (
	DefaultTemperatureSamples  = 500
	DefaultTemperatureInterval = 0.0005

	// temperatureHops is the bond-graph radius averaged over.
	temperatureHops = 4
)

// Temperature keeps a bounded per-node history of virial samples and turns
// it into a smoothed temperature estimate.
type Temperature struct {
	capacity int
	interval float64

	history     [][]float64
	cursor      int
	sinceRecord float64
}

func NewTemperature(capacity int, interval float64) *Temperature {
	if capacity <= 0 {
		capacity = DefaultTemperatureSamples
	}
	if interval <= 0 {
		interval = DefaultTemperatureInterval
	}
	return &Temperature{capacity: capacity, interval: interval}
}

func (t *Temperature) Capacity() int { return t.capacity }

// Record adds dt of simulated time and, once more than the record
// interval has accumulated, stores one sample per node. sample is only
// called when a record is due. It reports whether a sample was stored.
func (t *Temperature) Record(dt float64, sample func() []float64) bool {
	t.sinceRecord += dt
	if t.sinceRecord <= t.interval {
		return false
	}
	t.sinceRecord = 0

	values := sample()
	if len(values) != len(t.history) {
		t.history = make([][]float64, len(values))
		for i := range t.history {
			t.history[i] = make([]float64, t.capacity)
		}
		t.cursor = 0
	}
	t.cursor = (t.cursor + 1) % t.capacity
	for i, v := range values {
		t.history[i][t.cursor] = v
	}
	return true
}

// PerNode converts the history into a kinetic-temperature-like quantity
// per node, averaged over every walk of up to four bonds from it.
func (t *Temperature) PerNode(conns topology.Connections) []float64 {
	window := float64(t.capacity) * t.interval
	energy := make([]float64, len(t.history))
	for i, h := range t.history {
		sum := 0.0
		for _, v := range h {
			sum += v
		}
		energy[i] = -0.5 * sum / window
	}
	if len(conns) != len(energy) {
		return energy
	}

	out := make([]float64, len(energy))
	parallel.For(len(energy), 64, func(start, end int) {
		for i := start; i < end; i++ {
			sum, count := energy[i], 0
			walk(conns, i, temperatureHops, func(j int) {
				sum += energy[j]
				count++
			})
			out[i] = sum / float64(count+1)
		}
	})
	return out
}

func walk(conns topology.Connections, from, depth int, visit func(int)) {
	if depth == 0 {
		return
	}
	for _, nb := range conns[from] {
		walk(conns, nb.Index, depth-1, visit)
		visit(nb.Index)
	}
}

func (t *Temperature) Reset() {
	t.history = nil
	t.cursor = 0
	t.sinceRecord = 0
}

// VirialSample returns F·r per node, with F the bond force minus the wall
// force acting on it.
func VirialSample(nodes []scene.Node, conns topology.Connections) []float64 {
	out := make([]float64, len(nodes))
	for i := range nodes {
		p := nodes[i].Position
		var f = physics.WallForce(p).Mul(-1)
		for _, nb := range conns[i] {
			f = f.Add(physics.BondForce(p, nodes[nb.Index].Position, nb.EquilibriumDistance, nb.PotentialStrength))
		}
		out[i] = f.Dot(p)
	}
	return out
}
