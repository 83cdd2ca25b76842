package integrators

import "github.com/san-kum/bondsim/internal/scene"

// BeginStep advances positions with the stored acceleration, then rotates
// CurrentAcceleration into LastAcceleration and zeroes it so that force
// kernels can accumulate into it.
func BeginStep(nodes []scene.Node, dt float64) {
	halfDt2 := 0.5 * dt * dt
	for i := range nodes {
		n := &nodes[i]
		n.Position = n.Position.Add(n.Velocity.Mul(dt)).Add(n.CurrentAcceleration.Mul(halfDt2))
		n.LastAcceleration = n.CurrentAcceleration
		n.CurrentAcceleration[0] = 0
		n.CurrentAcceleration[1] = 0
	}
}

// EndStep completes the velocity update with the average of the previous
// and freshly accumulated acceleration.
func EndStep(nodes []scene.Node, dt float64) {
	halfDt := 0.5 * dt
	for i := range nodes {
		n := &nodes[i]
		n.Velocity = n.Velocity.Add(n.LastAcceleration.Add(n.CurrentAcceleration).Mul(halfDt))
	}
}

// Step runs one full Velocity Verlet step with accumulate filling
// CurrentAcceleration between the two halves.
func Step(nodes []scene.Node, dt float64, accumulate func() error) error {
	BeginStep(nodes, dt)
	if err := accumulate(); err != nil {
		return err
	}
	EndStep(nodes, dt)
	return nil
}
