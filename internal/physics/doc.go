// Package physics holds the force kernels acting on scene nodes.
//
// Every kernel accumulates acceleration, i.e. force divided by the mass of
// the node it acts on, into [scene.Node.CurrentAcceleration]:
//
//   - bonds: Lennard-Jones-like 7/13 pair potential between bonded nodes
//   - object repulsion: repulsive 13 term between boundary nodes of different objects
//   - wall: repulsive 13 term against the floor at [FloorY]
//   - gravity: constant [Gravity] on the y axis
//   - drag: quadratic in velocity, scaled by the node's drag coefficient
//
// The in-place Apply functions are used by the sequential engine.
// [NodeAcceleration] gathers the full per-node delta for engines that
// compute nodes independently.
package physics
