package sim

import (
	"time"

	"github.com/san-kum/bondsim/internal/compute"
)

type FrameStats struct {
	Frame          int
	Time           float64
	Dt             float64
	Steps          int
	Engine         compute.Engine
	Nodes          int
	Bonds          int
	CollisionPairs int
	Elapsed        time.Duration
}

// Observer receives manager events. Calls happen on the goroutine running
// Update.
type Observer interface {
	OnFrame(FrameStats)
	OnBondsBroken(n int)
	OnRecovery(newDt float64)
}
