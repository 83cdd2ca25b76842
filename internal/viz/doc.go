// Package viz draws a running simulation in the terminal.
//
// Bonds are drawn as lines on a braille [Canvas] (2x4 dots per cell) and
// boundary nodes as single dots, with the floor along the bottom. The side
// panel shows time, dt, the active engine, bond and recovery counts and an
// energy trace. [Run] opens the view on an existing manager; [RunPicker]
// first offers the scene presets.
//
// # Key Bindings
//
//	Space  pause/resume
//	r      restart from the initial scene
//	e      cycle execution engine
//	g      toggle the spatial grid
//	b      toggle backups
//	a      toggle adaptive dt
//	+/-    grow or shrink dt
//	t      cycle theme
//	s      save a scene snapshot
//	G      toggle GIF recording
//	q      quit
package viz
