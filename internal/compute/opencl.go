//go:build opencl

package compute

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"github.com/san-kum/bondsim/internal/integrators"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
)

type deviceBuffer struct {
	mem   *cl.MemObject
	elems int
}

// OpenCL evaluates the force pass on an OpenCL device. Topology is uploaded
// by SyncTopology; node state is uploaded every step and the per-node
// deltas are read back before the step returns.
type OpenCL struct {
	device  *cl.Device
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	pos, vel, mass, drag, out                deviceBuffer
	bondOffsets, bondIndices, bondDx, bondV0 deviceBuffer
	collOffsets, collIndices                 deviceBuffer

	syncedNodes int
	synced      bool

	hostPos, hostVel, hostMass, hostDrag, hostOut []float32
}

func NewOpenCL() (*OpenCL, error) {
	device, err := pickDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("%w: creating OpenCL context: %v", ErrBackendUnavailable, err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("%w: creating OpenCL command queue: %v", ErrBackendUnavailable, err)
	}
	program, err := context.CreateProgramWithSource([]string{nodeAccelerationSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("%w: creating OpenCL program: %v", ErrBackendUnavailable, err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("%w: building OpenCL program: %s", ErrBackendUnavailable, string(buildErr))
		}
		return nil, fmt.Errorf("%w: building OpenCL program: %v", ErrBackendUnavailable, err)
	}
	kernel, err := program.CreateKernel("node_acceleration")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("%w: creating OpenCL kernel: %v", ErrBackendUnavailable, err)
	}

	return &OpenCL{
		device:  device,
		context: context,
		queue:   queue,
		program: program,
		kernel:  kernel,
	}, nil
}

func pickDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0], nil
			}
		}
	}
	return nil, errors.New("no suitable OpenCL devices found")
}

func (o *OpenCL) Name() string   { return "opencl (" + o.device.Name() + ")" }
func (o *OpenCL) Engine() Engine { return EngineOpenCL }

// ensure reallocates b when the element count changes. OpenCL rejects
// zero-sized buffers, so at least one element is always allocated.
func (o *OpenCL) ensure(b *deviceBuffer, flags cl.MemFlag, elems, elemSize int) error {
	if b.mem != nil && b.elems == elems {
		return nil
	}
	if b.mem != nil {
		b.mem.Release()
		b.mem = nil
	}
	size := elems
	if size < 1 {
		size = 1
	}
	mem, err := o.context.CreateEmptyBuffer(flags, size*elemSize)
	if err != nil {
		return fmt.Errorf("allocating %d byte buffer: %w", size*elemSize, err)
	}
	b.mem, b.elems = mem, elems
	return nil
}

func (o *OpenCL) writeInt32(b *deviceBuffer, data []int32) error {
	if len(data) == 0 {
		return nil
	}
	byteLen := len(data) * int(unsafe.Sizeof(int32(0)))
	_, err := o.queue.EnqueueWriteBuffer(b.mem, false, 0, byteLen, unsafe.Pointer(&data[0]), nil)
	return err
}

func (o *OpenCL) writeFloat32(b *deviceBuffer, data []float32) error {
	if len(data) == 0 {
		return nil
	}
	_, err := o.queue.EnqueueWriteBufferFloat32(b.mem, false, 0, data, nil)
	return err
}

func (o *OpenCL) SyncTopology(conns topology.Connections, colls topology.Collisions) error {
	bonds := FlattenConnections(conns)
	pairs := FlattenCollisions(colls)

	const i32, f32 = 4, 4
	for _, a := range []struct {
		buf   *deviceBuffer
		elems int
		size  int
	}{
		{&o.bondOffsets, len(bonds.Offsets), i32},
		{&o.bondIndices, len(bonds.Indices), i32},
		{&o.bondDx, len(bonds.Distance), f32},
		{&o.bondV0, len(bonds.Strength), f32},
		{&o.collOffsets, len(pairs.Offsets), i32},
		{&o.collIndices, len(pairs.Indices), i32},
	} {
		if err := o.ensure(a.buf, cl.MemReadOnly, a.elems, a.size); err != nil {
			return fmt.Errorf("opencl topology: %w", err)
		}
	}

	if err := o.writeInt32(&o.bondOffsets, bonds.Offsets); err != nil {
		return fmt.Errorf("writing bond offsets: %w", err)
	}
	if err := o.writeInt32(&o.bondIndices, bonds.Indices); err != nil {
		return fmt.Errorf("writing bond indices: %w", err)
	}
	if err := o.writeFloat32(&o.bondDx, bonds.Distance); err != nil {
		return fmt.Errorf("writing bond distances: %w", err)
	}
	if err := o.writeFloat32(&o.bondV0, bonds.Strength); err != nil {
		return fmt.Errorf("writing bond strengths: %w", err)
	}
	if err := o.writeInt32(&o.collOffsets, pairs.Offsets); err != nil {
		return fmt.Errorf("writing collision offsets: %w", err)
	}
	if err := o.writeInt32(&o.collIndices, pairs.Indices); err != nil {
		return fmt.Errorf("writing collision indices: %w", err)
	}
	// Host slices above must stay alive until the non-blocking writes land.
	if err := o.queue.Finish(); err != nil {
		return fmt.Errorf("opencl topology: %w", err)
	}

	o.syncedNodes = len(conns)
	o.synced = true
	return nil
}

func (o *OpenCL) Step(sc *scene.Scene, conns topology.Connections, colls topology.Collisions, dt float64) error {
	if err := checkTopology(sc, conns, colls); err != nil {
		return err
	}
	if !o.synced || o.syncedNodes != len(sc.Nodes) {
		if err := o.SyncTopology(conns, colls); err != nil {
			return err
		}
	}
	return integrators.Step(sc.Nodes, dt, func() error {
		return o.accumulate(sc)
	})
}

func (o *OpenCL) packNodes(nodes []scene.Node) {
	n := len(nodes)
	if cap(o.hostPos) < 2*n {
		o.hostPos = make([]float32, 2*n)
		o.hostVel = make([]float32, 2*n)
		o.hostOut = make([]float32, 2*n)
		o.hostMass = make([]float32, n)
		o.hostDrag = make([]float32, n)
	}
	o.hostPos, o.hostVel, o.hostOut = o.hostPos[:2*n], o.hostVel[:2*n], o.hostOut[:2*n]
	o.hostMass, o.hostDrag = o.hostMass[:n], o.hostDrag[:n]

	for i := range nodes {
		nd := &nodes[i]
		o.hostPos[2*i] = float32(nd.Position[0])
		o.hostPos[2*i+1] = float32(nd.Position[1])
		o.hostVel[2*i] = float32(nd.Velocity[0])
		o.hostVel[2*i+1] = float32(nd.Velocity[1])
		o.hostMass[i] = float32(nd.Mass)
		o.hostDrag[i] = float32(nd.Drag)
	}
}

func (o *OpenCL) accumulate(sc *scene.Scene) error {
	nodes := sc.Nodes
	n := len(nodes)
	if n == 0 {
		return nil
	}
	o.packNodes(nodes)

	const f32 = 4
	for _, a := range []struct {
		buf   *deviceBuffer
		flags cl.MemFlag
		elems int
	}{
		{&o.pos, cl.MemReadOnly, 2 * n},
		{&o.vel, cl.MemReadOnly, 2 * n},
		{&o.mass, cl.MemReadOnly, n},
		{&o.drag, cl.MemReadOnly, n},
		{&o.out, cl.MemWriteOnly, 2 * n},
	} {
		if err := o.ensure(a.buf, a.flags, a.elems, f32); err != nil {
			return fmt.Errorf("opencl nodes: %w", err)
		}
	}

	if err := o.writeFloat32(&o.pos, o.hostPos); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	if err := o.writeFloat32(&o.vel, o.hostVel); err != nil {
		return fmt.Errorf("writing velocities: %w", err)
	}
	if err := o.writeFloat32(&o.mass, o.hostMass); err != nil {
		return fmt.Errorf("writing masses: %w", err)
	}
	if err := o.writeFloat32(&o.drag, o.hostDrag); err != nil {
		return fmt.Errorf("writing drag: %w", err)
	}

	if err := o.kernel.SetArgs(
		int32(n),
		o.pos.mem,
		o.vel.mem,
		o.mass.mem,
		o.drag.mem,
		o.bondOffsets.mem,
		o.bondIndices.mem,
		o.bondDx.mem,
		o.bondV0.mem,
		o.collOffsets.mem,
		o.collIndices.mem,
		float32(sc.ObjectRepulsionDistance),
		float32(sc.ObjectRepulsionStrength),
		o.out.mem,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if _, err := o.queue.EnqueueNDRangeKernel(o.kernel, nil, []int{n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := o.queue.EnqueueReadBufferFloat32(o.out.mem, true, 0, o.hostOut, nil); err != nil {
		return fmt.Errorf("reading accelerations: %w", err)
	}

	for i := range nodes {
		nodes[i].CurrentAcceleration[0] += float64(o.hostOut[2*i])
		nodes[i].CurrentAcceleration[1] += float64(o.hostOut[2*i+1])
	}
	return nil
}

func (o *OpenCL) Close() {
	for _, b := range []*deviceBuffer{
		&o.out, &o.drag, &o.mass, &o.vel, &o.pos,
		&o.collIndices, &o.collOffsets,
		&o.bondV0, &o.bondDx, &o.bondIndices, &o.bondOffsets,
	} {
		if b.mem != nil {
			b.mem.Release()
			b.mem = nil
		}
	}
	if o.kernel != nil {
		o.kernel.Release()
		o.kernel = nil
	}
	if o.program != nil {
		o.program.Release()
		o.program = nil
	}
	if o.queue != nil {
		o.queue.Release()
		o.queue = nil
	}
	if o.context != nil {
		o.context.Release()
		o.context = nil
	}
	o.synced = false
}
