package compute

import (
	"fmt"

	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

type Engine string

const (
	EngineCPU      Engine = "cpu"
	EngineParallel Engine = "cpu-parallel"
	EngineOpenCL   Engine = "opencl"
)

var Engines = []Engine{EngineCPU, EngineParallel, EngineOpenCL}

func ParseEngine(s string) (Engine, error) {
	for _, e := range Engines {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// Backend advances a scene by one Velocity Verlet step. Implementations
// differ only in how the force pass is executed.
type Backend interface {
	Name() string
	Engine() Engine
	Step(sc *scene.Scene, conns topology.Connections, colls topology.Collisions, dt float64) error
	Close()
}

// TopologySyncer is implemented by backends that keep their own copy of
// the connection and collision structures. SyncTopology must be called
// whenever either structure is rebuilt.
type TopologySyncer interface {
	SyncTopology(conns topology.Connections, colls topology.Collisions) error
}

func New(e Engine) (Backend, error) {
	switch e {
	case EngineCPU:
		return NewSequential(), nil
	case EngineParallel:
		return NewParallel(), nil
	case EngineOpenCL:
		b, err := NewOpenCL()
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, e)
	}
}

// Available probes every engine and returns those that can be constructed.
func Available() []Engine {
	var out []Engine
	for _, e := range Engines {
		b, err := New(e)
		if err != nil {
			continue
		}
		b.Close()
		out = append(out, e)
	}
	return out
}

// AutoSelect returns a backend for preferred, falling back to the parallel
// and then the sequential CPU engine. onFallback, if non-nil, is told about
// every engine that failed to construct.
func AutoSelect(preferred Engine, onFallback func(Engine, error)) Backend {
	for _, e := range []Engine{preferred, EngineParallel} {
		b, err := New(e)
		if err == nil {
			return b
		}
		if onFallback != nil {
			onFallback(e, err)
		}
	}
	return NewSequential()
}

func checkTopology(sc *scene.Scene, conns topology.Connections, colls topology.Collisions) error {
	n := len(sc.Nodes)
	if len(conns) != n || len(colls) != n {
		return fmt.Errorf("%w: %d nodes, %d connection lists, %d collision lists",
			ErrTopologyMismatch, n, len(conns), len(colls))
	}
	return nil
}
