package topology

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
)

func chain() *scene.Scene {
	s := scene.New(0.1, 10)
	s.Append(scene.BuildRectangle(4, 1, 0.1, 0, 0, 1, 0, 1))
	for i := range s.Nodes {
		s.Nodes[i].IsBoundary = false
	}
	s.ConnectWithin(0, 4, 0.11, 10)
	return s
}

func TestBreakOverstretched(t *testing.T) {
	tests := []struct {
		name     string
		stretch  float64
		broken   int
		boundary []int
	}{
		{"at rest", 0, 0, nil},
		{"below threshold", 0.04, 0, nil},
		{"past threshold", 0.06, 1, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := chain()
			s.Nodes[3].Position = s.Nodes[3].Position.Add(mgl64.Vec2{tt.stretch, 0})
			before := len(s.Connections)

			got := BreakOverstretched(s)
			if len(got) != tt.broken {
				t.Fatalf("broke %d bonds, want %d", len(got), tt.broken)
			}
			if len(s.Connections) != before-tt.broken {
				t.Errorf("bond count %d, want %d", len(s.Connections), before-tt.broken)
			}
			for _, i := range tt.boundary {
				if !s.Nodes[i].IsBoundary {
					t.Errorf("node %d should be boundary", i)
				}
			}
			if tt.broken == 0 && s.BoundaryCount() != 0 {
				t.Error("no break but boundary flags changed")
			}
		})
	}
}

func TestBreakOverstretchedIdempotent(t *testing.T) {
	s := chain()
	s.Nodes[3].Position[0] += 0.2
	if len(BreakOverstretched(s)) != 1 {
		t.Fatal("expected one break")
	}
	snapshot := s.Clone()
	if got := BreakOverstretched(s); len(got) != 0 {
		t.Fatalf("second pass broke %v", got)
	}
	if !s.Equal(snapshot) {
		t.Error("second pass mutated the scene")
	}
}

func TestBreakOnlyShrinksBonds(t *testing.T) {
	s, _ := scene.Generate("two_squares", 6)
	for i := range s.Nodes {
		s.Nodes[i].Position[0] *= 1.3
	}
	before := make(map[scene.BondKey]bool, len(s.Connections))
	for k := range s.Connections {
		before[k] = true
	}
	BreakOverstretched(s)
	for k := range s.Connections {
		if !before[k] {
			t.Fatalf("bond %v appeared", k)
		}
	}
}
