package compute

import "errors"

var (
	// ErrBackendUnavailable indicates the engine cannot run on this build or machine.
	ErrBackendUnavailable = errors.New("compute: backend unavailable")

	// ErrUnknownEngine indicates an engine name that is not registered.
	ErrUnknownEngine = errors.New("compute: unknown engine")

	// ErrTopologyMismatch indicates per-node structures sized for a different node count.
	ErrTopologyMismatch = errors.New("compute: topology does not match node count")
)
