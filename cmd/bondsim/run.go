package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/metrics"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/san-kum/bondsim/internal/storage"
	"github.com/san-kum/bondsim/internal/telemetry"
	"github.com/san-kum/bondsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	metricsAddr string
	saveScene   string
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args...)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	recorder, err := telemetry.NewRecorder(reg)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: telemetry.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	stability := metrics.NewStability()
	mgr, err := sim.New(sc, cfg.Simulation,
		sim.WithLogger(log),
		sim.WithObserver(recorder),
		sim.WithObserver(stability),
	)
	if err != nil {
		return err
	}
	defer mgr.Close()

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runLog, err := st.Create(storage.RunMetadata{
		Scene:    cfg.SceneName(),
		Nodes:    len(sc.Nodes),
		Bonds:    len(sc.Connections),
		Duration: cfg.Duration,
		Settings: mgr.Settings,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	drift := metrics.NewDrift()
	temperature := metrics.NewTemperature(metrics.DefaultTemperatureSamples, metrics.DefaultTemperatureInterval)
	sample := func(m *sim.Manager) {
		e := metrics.Energy(m.Scene)
		drift.Observe(e)
		if err := runLog.Append(m.TotalSimulationTime, m.Settings.Dt, e, metrics.MaxPressure(m.Scene.Nodes, m.Connections)); err != nil {
			log.Warn("energy log write failed", zap.Error(err))
		}
	}

	fmt.Printf("running %s: %d nodes, %d bonds, engine %s\n", cfg.SceneName(), len(sc.Nodes), len(sc.Connections), mgr.Backend().Name())
	start := time.Now()
	sample(mgr)

	var last, sinceLog float64
	runErr := mgr.Run(ctx, cfg.Duration, func(m *sim.Manager) bool {
		elapsed := m.TotalSimulationTime - last
		last = m.TotalSimulationTime
		temperature.Record(elapsed, func() []float64 {
			return metrics.VirialSample(m.Scene.Nodes, m.Connections)
		})
		if cfg.Simulation.LogToCSV {
			sinceLog += elapsed
			if sinceLog > cfg.Simulation.LogInterval {
				sinceLog = 0
				sample(m)
			}
		}
		return true
	})
	wall := time.Since(start)
	if errors.Is(runErr, context.Canceled) {
		log.Info("interrupted", zap.Float64("time", mgr.TotalSimulationTime))
		runErr = nil
	}
	if runErr == nil {
		sample(mgr)
	}

	temps := temperature.PerNode(mgr.Connections)
	runLog.Meta.Settings = mgr.Settings
	runLog.Meta.Frames = mgr.Frames
	runLog.Meta.Recoveries = mgr.Recoveries
	runLog.Meta.BrokenBonds = mgr.BrokenBonds
	runLog.Meta.Metrics = map[string]float64{
		drift.Name():       drift.Value(),
		stability.Name():   stability.Value(),
		"wall_seconds":     wall.Seconds(),
		"simulated":        mgr.TotalSimulationTime,
		"mean_temperature": mean(temps),
	}
	if err := runLog.Close(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	if saveScene != "" {
		if err := storage.SaveSceneFile(saveScene, mgr.Scene); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", wall.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runLog.Meta.ID)
	fmt.Printf("frames: %d  recoveries: %d  broken bonds: %d  final dt: %.3g\n",
		mgr.Frames, mgr.Recoveries, mgr.BrokenBonds, mgr.Settings.Dt)
	fmt.Println("\nmetrics:")
	for name, val := range runLog.Meta.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args...)
	if err != nil {
		return err
	}
	sc, err := cfg.BuildScene()
	if err != nil {
		return err
	}
	// The terminal belongs to the view, so the manager stays quiet.
	mgr, err := sim.New(sc, cfg.Simulation)
	if err != nil {
		return err
	}
	defer mgr.Close()
	return viz.Run(mgr, cfg.SceneName(), liveDuration(cmd, cfg))
}

// liveDuration runs the live view open-ended unless --time was given.
func liveDuration(cmd *cobra.Command, cfg *config.Config) float64 {
	if cmd.Flags().Changed("time") {
		return cfg.Duration
	}
	return 0
}
