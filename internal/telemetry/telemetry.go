// Package telemetry exports simulation progress as Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/bondsim/internal/sim"
)

const namespace = "bondsim"

// Recorder is a sim.Observer backed by Prometheus collectors.
type Recorder struct {
	frames        *prometheus.CounterVec
	steps         prometheus.Counter
	brokenBonds   prometheus.Counter
	recoveries    prometheus.Counter
	dt            prometheus.Gauge
	simTime       prometheus.Gauge
	nodes         prometheus.Gauge
	bonds         prometheus.Gauge
	collisions    prometheus.Gauge
	frameDuration prometheus.Histogram
}

// NewRecorder registers its collectors with reg. A nil reg gets a private
// registry.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames advanced, by execution engine.",
		}, []string{"engine"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Integrator steps taken.",
		}),
		brokenBonds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broken_bonds_total",
			Help:      "Bonds removed for exceeding their break length.",
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recoveries_total",
			Help:      "Times a diverged scene was replaced by its backup.",
		}),
		dt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timestep_seconds",
			Help:      "Current integration timestep.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_seconds",
			Help:      "Total simulated time.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the scene.",
		}),
		bonds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bonds",
			Help:      "Bonds remaining in the scene.",
		}),
		collisions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collision_pairs",
			Help:      "Directed collision candidate pairs in the last frame.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall-clock time spent per frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
	}

	for _, c := range []prometheus.Collector{
		r.frames, r.steps, r.brokenBonds, r.recoveries, r.dt,
		r.simTime, r.nodes, r.bonds, r.collisions, r.frameDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) OnFrame(f sim.FrameStats) {
	r.frames.WithLabelValues(string(f.Engine)).Inc()
	r.steps.Add(float64(f.Steps))
	r.dt.Set(f.Dt)
	r.simTime.Set(f.Time)
	r.nodes.Set(float64(f.Nodes))
	r.bonds.Set(float64(f.Bonds))
	r.collisions.Set(float64(f.CollisionPairs))
	r.frameDuration.Observe(f.Elapsed.Seconds())
}

func (r *Recorder) OnBondsBroken(n int) {
	r.brokenBonds.Add(float64(n))
}

func (r *Recorder) OnRecovery(newDt float64) {
	r.recoveries.Inc()
	r.dt.Set(newDt)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
