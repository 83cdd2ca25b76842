package scene

import (
	"fmt"
	"sort"
)

type Preset struct {
	Description string
	Build       func(size int) *Scene
}

var Presets = map[string]Preset{
	"two_squares": {
		Description: "two square blocks, the upper one falling onto the lower",
		Build:       twoSquares,
	},
	"three_squares": {
		Description: "two blocks side by side with a third dropped across them",
		Build:       threeSquares,
	},
	"standard": {
		Description: "soft slab on the floor hit by a heavy stiff disk (size ignored)",
		Build:       func(int) *Scene { return standard() },
	},
	"tower": {
		Description: "three blocks stacked with small gaps",
		Build:       tower,
	},
}

const DefaultSize = 10

func Generate(name string, size int) (*Scene, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene preset: %s", name)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return p.Build(size), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func twoSquares(size int) *Scene {
	spacing := 0.6 / float64(size)
	s := New(0.2, 100)
	s.Append(BuildRectangle(size, size, spacing, -0.5, -0.7, 1, 0, 1))
	s.Append(BuildRectangle(size, size, spacing, -0.4, 0.2, 1, 0, 2))
	s.ConnectWithin(0, len(s.Nodes), spacing*1.1, 100)
	return s
}

func threeSquares(size int) *Scene {
	spacing := 0.6 / float64(size)
	s := New(spacing*0.85, 10)
	s.Append(BuildRectangle(size, size, spacing, -0.5, -0.7, 1, 0, 1))
	s.Append(BuildRectangle(size, size, spacing, 0.2, -0.7, 1, 0, 2))
	s.Append(BuildRectangle(size, size, spacing, -0.3, 0.2, 1, 0, 3))
	s.ConnectWithin(0, len(s.Nodes), spacing*1.5, 20)
	return s
}

func standard() *Scene {
	const (
		slabSpacing = 0.08
		diskSpacing = 0.075
	)
	s := New(slabSpacing*0.85, 10)
	first := s.Append(BuildRectangle(24, 12, slabSpacing, -0.92, -0.925, 1, 5, 1))
	s.ConnectWithin(first, len(s.Nodes), slabSpacing*1.5, 70)
	first = s.Append(BuildCircle(4, diskSpacing, -0.12, 0.8, 8, 0, 2))
	s.ConnectWithin(first, len(s.Nodes), diskSpacing*1.5, 500)
	return s
}

func tower(size int) *Scene {
	spacing := 0.3 / float64(size)
	side := float64(size-1) * spacing
	gap := spacing * 2
	s := New(spacing*0.85, 10)
	for k := 0; k < 3; k++ {
		y := -0.95 + float64(k)*(side+gap)
		s.Append(BuildRectangle(size, size, spacing, -side/2, y, 1, 0, uint32(k+1)))
	}
	s.ConnectWithin(0, len(s.Nodes), spacing*1.5, 50)
	return s
}
