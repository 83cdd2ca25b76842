// Package compute provides the execution engines that advance a scene by
// one integration step.
//
// Three engines share the [Backend] interface:
//
//   - cpu: every kernel applied in turn on one goroutine
//   - cpu-parallel: per-node deltas computed across GOMAXPROCS workers, then merged
//   - opencl: per-node deltas computed on an OpenCL device
//
// Use [AutoSelect] to obtain the preferred engine with a CPU fallback:
//
//	b := compute.AutoSelect(compute.EngineOpenCL, nil)
//	defer b.Close()
//	err := b.Step(sc, conns, colls, dt)
//
// Build with OpenCL support:
//
//	go build -tags opencl ./...
//
// Without the tag [NewOpenCL] always returns [ErrBackendUnavailable].
package compute
