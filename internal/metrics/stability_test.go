package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/bondsim/internal/sim"
)

var _ sim.Observer = (*Stability)(nil)

func TestStability(t *testing.T) {
	s := NewStability()
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 with no frames, got %f", s.Value())
	}
	if !math.IsInf(s.MinDt(), 1) {
		t.Errorf("expected +Inf min dt, got %g", s.MinDt())
	}

	for i := 0; i < 4; i++ {
		s.OnFrame(sim.FrameStats{Frame: i + 1, Dt: 2e-5})
	}
	s.OnRecovery(1e-5)

	if s.Value() != 0.75 {
		t.Errorf("expected 0.75, got %f", s.Value())
	}
	if s.Recoveries() != 1 || s.MinDt() != 1e-5 {
		t.Errorf("recoveries=%d minDt=%g", s.Recoveries(), s.MinDt())
	}

	s.Reset()
	if s.Value() != 1.0 || s.Recoveries() != 0 {
		t.Error("reset did not clear state")
	}
}
