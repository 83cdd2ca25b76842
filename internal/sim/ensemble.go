package sim

import (
	"context"
	"time"

	"github.com/san-kum/bondsim/internal/scene"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs one scene under several settings variants concurrently.
type Ensemble struct {
	base     *scene.Scene
	variants []Settings
	log      *zap.Logger
}

type Summary struct {
	Settings    Settings
	Frames      int
	Time        float64
	FinalDt     float64
	Recoveries  int
	BrokenBonds int
	Diverged    bool
	Elapsed     time.Duration
}

func NewEnsemble(base *scene.Scene, variants []Settings, log *zap.Logger) *Ensemble {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ensemble{base: base, variants: variants, log: log}
}

// Run simulates every variant for duration and returns the summaries in
// variant order. The first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, duration float64) ([]Summary, error) {
	results := make([]Summary, len(e.variants))

	g, ctx := errgroup.WithContext(ctx)
	for i, settings := range e.variants {
		g.Go(func() error {
			m, err := New(e.base.Clone(), settings, WithLogger(e.log.With(zap.Int("variant", i))))
			if err != nil {
				return err
			}
			defer m.Close()

			start := time.Now()
			if err := m.Run(ctx, duration, nil); err != nil {
				return err
			}
			results[i] = Summary{
				Settings:    settings,
				Frames:      m.Frames,
				Time:        m.TotalSimulationTime,
				FinalDt:     m.Settings.Dt,
				Recoveries:  m.Recoveries,
				BrokenBonds: m.BrokenBonds,
				Diverged:    m.IsBroken(),
				Elapsed:     time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
