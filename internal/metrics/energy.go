package metrics

import (
	"math"
	"sync"

	"github.com/san-kum/bondsim/internal/parallel"
	"github.com/san-kum/bondsim/internal/physics"
	"github.com/san-kum/bondsim/internal/scene"
)

// sigmaRatio converts a force-zero distance into the 12-6 sigma: 2^(1/6).
const sigmaRatio = 1.12246204831

// gravityDatum is the height of zero gravitational energy.
const gravityDatum = -0.5

type EnergyBreakdown struct {
	Kinetic         float64 `json:"kinetic"`
	Gravity         float64 `json:"gravity"`
	Bond            float64 `json:"bond"`
	Wall            float64 `json:"wall"`
	ObjectRepulsion float64 `json:"object_repulsion"`
}

func (e EnergyBreakdown) Total() float64 {
	return e.Kinetic + e.Gravity + e.Bond + e.Wall + e.ObjectRepulsion
}

// Energy evaluates the diagnostic energy of the scene. The potentials are
// the 12-6 family matching the force kernels, not their exact integrals.
func Energy(sc *scene.Scene) EnergyBreakdown {
	return EnergyBreakdown{
		Kinetic:         KineticEnergy(sc.Nodes),
		Gravity:         GravityEnergy(sc.Nodes),
		Bond:            BondEnergy(sc),
		Wall:            WallEnergy(sc.Nodes),
		ObjectRepulsion: ObjectRepulsionEnergy(sc),
	}
}

func KineticEnergy(nodes []scene.Node) float64 {
	total := 0.0
	for i := range nodes {
		v := nodes[i].Velocity
		total += 0.5 * nodes[i].Mass * v.Dot(v)
	}
	return total
}

func GravityEnergy(nodes []scene.Node) float64 {
	total := 0.0
	for i := range nodes {
		total += -physics.Gravity * nodes[i].Mass * (nodes[i].Position[1] - gravityDatum)
	}
	return total
}

func BondEnergy(sc *scene.Scene) float64 {
	total := 0.0
	for k, b := range sc.Connections {
		l := sc.Nodes[k.B].Position.Sub(sc.Nodes[k.A].Position).Len()
		s6 := math.Pow(b.EquilibriumDistance/sigmaRatio/l, 6)
		total += b.PotentialStrength * (s6*s6 - s6)
	}
	return total
}

func WallEnergy(nodes []scene.Node) float64 {
	sigma := physics.WallRepulsionDistance / sigmaRatio
	total := 0.0
	for i := range nodes {
		d := math.Abs(physics.FloorY - nodes[i].Position[1])
		total += physics.WallRepulsionStrength * math.Pow(sigma/d, 12)
	}
	return total
}

// ObjectRepulsionEnergy sums over every pair of nodes from different
// objects, boundary or not.
func ObjectRepulsionEnergy(sc *scene.Scene) float64 {
	nodes := sc.Nodes
	sigma := sc.ObjectRepulsionDistance / sigmaRatio
	v0 := sc.ObjectRepulsionStrength

	var (
		mu    sync.Mutex
		total float64
	)
	parallel.For(len(nodes), 64, func(start, end int) {
		partial := 0.0
		for i := start; i < end; i++ {
			for j := 0; j < i; j++ {
				if nodes[i].ObjectID == nodes[j].ObjectID {
					continue
				}
				l := nodes[j].Position.Sub(nodes[i].Position).Len()
				partial += v0 * math.Pow(sigma/l, 12)
			}
		}
		mu.Lock()
		total += partial
		mu.Unlock()
	})
	return total
}

// Drift tracks the largest relative change of total energy since the
// first observation.
type Drift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift() *Drift {
	return &Drift{}
}

func (d *Drift) Name() string { return "energy_drift" }

func (d *Drift) Observe(e EnergyBreakdown) {
	total := e.Total()
	if d.samples == 0 {
		d.initial = total
	}
	d.samples++
	if d.initial != 0 {
		d.maxDrift = math.Max(d.maxDrift, math.Abs(total-d.initial)/math.Abs(d.initial))
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
