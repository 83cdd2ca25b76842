//go:build !opencl

package compute

import (
	"fmt"

	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

type OpenCL struct{}

func NewOpenCL() (*OpenCL, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", ErrBackendUnavailable)
}

func (o *OpenCL) Name() string   { return "opencl (not available)" }
func (o *OpenCL) Engine() Engine { return EngineOpenCL }
func (o *OpenCL) Close()         {}

func (o *OpenCL) Step(*scene.Scene, topology.Connections, topology.Collisions, float64) error {
	return ErrBackendUnavailable
}

func (o *OpenCL) SyncTopology(topology.Connections, topology.Collisions) error {
	return ErrBackendUnavailable
}
