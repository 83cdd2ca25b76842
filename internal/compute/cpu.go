package compute

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/integrators"
	"github.com/san-kum/bondsim/internal/parallel"
	"github.com/san-kum/bondsim/internal/physics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

// Sequential runs every kernel in turn on the calling goroutine. Bonds are
// read from the scene's bond map, so the connection structure is unused.
type Sequential struct{}

func NewSequential() *Sequential {
	return &Sequential{}
}

func (s *Sequential) Name() string   { return "cpu" }
func (s *Sequential) Engine() Engine { return EngineCPU }
func (s *Sequential) Close()         {}

func (s *Sequential) Step(sc *scene.Scene, conns topology.Connections, colls topology.Collisions, dt float64) error {
	if len(colls) != len(sc.Nodes) {
		return fmt.Errorf("%w: %d nodes, %d collision lists", ErrTopologyMismatch, len(sc.Nodes), len(colls))
	}
	return integrators.Step(sc.Nodes, dt, func() error {
		physics.ApplyAll(sc, colls)
		return nil
	})
}

const parallelMinChunk = 128

// Parallel computes each node's acceleration delta independently into a
// dense buffer, then applies the buffer in one sequential pass.
type Parallel struct {
	deltas []mgl64.Vec2
}

func NewParallel() *Parallel {
	return &Parallel{}
}

func (p *Parallel) Name() string {
	return fmt.Sprintf("cpu-parallel (%d workers)", parallel.Workers())
}

func (p *Parallel) Engine() Engine { return EngineParallel }
func (p *Parallel) Close()         {}

func (p *Parallel) ensureScratch(n int) {
	if cap(p.deltas) < n {
		p.deltas = make([]mgl64.Vec2, n)
	}
	p.deltas = p.deltas[:n]
}

func (p *Parallel) Step(sc *scene.Scene, conns topology.Connections, colls topology.Collisions, dt float64) error {
	if err := checkTopology(sc, conns, colls); err != nil {
		return err
	}
	return integrators.Step(sc.Nodes, dt, func() error {
		p.accumulate(sc, conns, colls)
		return nil
	})
}

func (p *Parallel) accumulate(sc *scene.Scene, conns topology.Connections, colls topology.Collisions) {
	nodes := sc.Nodes
	p.ensureScratch(len(nodes))
	dx, v0 := sc.ObjectRepulsionDistance, sc.ObjectRepulsionStrength

	parallel.For(len(nodes), parallelMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p.deltas[i] = physics.NodeAcceleration(nodes, i, conns[i], colls[i], dx, v0)
		}
	})

	for i := range nodes {
		nodes[i].CurrentAcceleration = nodes[i].CurrentAcceleration.Add(p.deltas[i])
	}
}
