package metrics

import (
	"math"

	"github.com/san-kum/bondsim/internal/sim"
)

// Stability counts frames and backup restorations. Value is the fraction
// of frames that did not end in a restoration.
type Stability struct {
	frames     int
	recoveries int
	minDt      float64
}

func NewStability() *Stability {
	return &Stability{minDt: math.Inf(1)}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) OnFrame(f sim.FrameStats) {
	s.frames++
	s.minDt = math.Min(s.minDt, f.Dt)
}

func (s *Stability) OnBondsBroken(int) {}

func (s *Stability) OnRecovery(newDt float64) {
	s.recoveries++
	s.minDt = math.Min(s.minDt, newDt)
}

func (s *Stability) Value() float64 {
	if s.frames == 0 {
		return 1.0
	}
	return 1.0 - float64(s.recoveries)/float64(s.frames)
}

func (s *Stability) Recoveries() int { return s.recoveries }

// MinDt is +Inf until a frame has been observed.
func (s *Stability) MinDt() float64 { return s.minDt }

func (s *Stability) Reset() {
	s.frames = 0
	s.recoveries = 0
	s.minDt = math.Inf(1)
}
