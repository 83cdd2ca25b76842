package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
)

func TestKineticEnergy(t *testing.T) {
	nodes := []scene.Node{
		{Velocity: mgl64.Vec2{3, 4}, Mass: 2},
		{Velocity: mgl64.Vec2{0, 0}, Mass: 5},
	}
	if got := KineticEnergy(nodes); math.Abs(got-25) > 1e-12 {
		t.Errorf("expected 25, got %f", got)
	}
}

func TestGravityEnergyDatum(t *testing.T) {
	tests := []struct {
		y, mass, want float64
	}{
		{-0.5, 1, 0},
		{0.5, 1, 9.81},
		{0.5, 2, 19.62},
		{-1.0, 1, -4.905},
	}
	for _, tt := range tests {
		got := GravityEnergy([]scene.Node{{Position: mgl64.Vec2{0, tt.y}, Mass: tt.mass}})
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("y=%v m=%v: expected %f, got %f", tt.y, tt.mass, tt.want, got)
		}
	}
}

func TestBondEnergyMinimumAtRest(t *testing.T) {
	s := scene.New(0.1, 10)
	s.Append([]scene.Node{
		{Position: mgl64.Vec2{0, 0}, Mass: 1, ObjectID: 1},
		{Position: mgl64.Vec2{0.1, 0}, Mass: 1, ObjectID: 1},
	})
	s.Connect(0, 1, scene.Bond{EquilibriumDistance: 0.1, PotentialStrength: 40})

	rest := BondEnergy(s)
	if math.Abs(rest-(-10)) > 1e-6 {
		t.Errorf("expected well depth -10, got %f", rest)
	}

	for _, x := range []float64{0.09, 0.12} {
		s.Nodes[1].Position[0] = x
		if e := BondEnergy(s); e <= rest {
			t.Errorf("bond at %v has energy %f below rest %f", x, e, rest)
		}
	}
}

func TestObjectRepulsionEnergyIgnoresSameObject(t *testing.T) {
	s := scene.New(0.1, 10)
	s.Append([]scene.Node{
		{Position: mgl64.Vec2{0, 0}, ObjectID: 1},
		{Position: mgl64.Vec2{0.05, 0}, ObjectID: 1},
	})
	if e := ObjectRepulsionEnergy(s); e != 0 {
		t.Errorf("same-object pair contributed %f", e)
	}

	s.Nodes[1].ObjectID = 2
	if e := ObjectRepulsionEnergy(s); e <= 0 {
		t.Errorf("cross-object pair should repel, got %f", e)
	}
}

func TestEnergyTotal(t *testing.T) {
	s, err := scene.Generate("two_squares", 4)
	if err != nil {
		t.Fatal(err)
	}
	e := Energy(s)
	sum := e.Kinetic + e.Gravity + e.Bond + e.Wall + e.ObjectRepulsion
	if math.Abs(e.Total()-sum) > 1e-12 {
		t.Errorf("Total() = %f, components sum to %f", e.Total(), sum)
	}
	if e.Kinetic != 0 {
		t.Errorf("scene at rest has kinetic energy %f", e.Kinetic)
	}
}

func TestDrift(t *testing.T) {
	d := NewDrift()
	d.Observe(EnergyBreakdown{Kinetic: 10})
	d.Observe(EnergyBreakdown{Kinetic: 11})
	d.Observe(EnergyBreakdown{Kinetic: 10.5})

	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", d.Value())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", d.Value())
	}
}
