package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/san-kum/bondsim/internal/compute"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const benchScene = "three_squares"

var (
	benchSizes    []int
	benchDuration float64
	benchEngine   string
	benchCSV      string

	sweepDts []float64
)

func runBench(cmd *cobra.Command, args []string) error {
	e, err := compute.ParseEngine(benchEngine)
	if err != nil {
		return err
	}
	settings := sim.DefaultSettings()
	settings.Engine = e
	settings.UseBackup = false
	settings.UseAutoDt = false
	iterations := benchDuration / settings.Dt

	var out *csv.Writer
	if benchCSV != "" {
		f, err := os.Create(benchCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		out = csv.NewWriter(f)
		defer out.Flush()
		if err := out.Write([]string{"size", "nodes", "elapsed_ms", "iterations_per_second"}); err != nil {
			return err
		}
	}

	fmt.Printf("benchmarking %s on %s, %.0f iterations per size\n\n", benchScene, e, iterations)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tNODES\tTIME\tITER/SEC")

	for _, size := range benchSizes {
		sc, err := scene.Generate(benchScene, size)
		if err != nil {
			return err
		}
		mgr, err := sim.New(sc, settings, sim.WithLogger(zap.NewNop()))
		if err != nil {
			return err
		}

		start := time.Now()
		err = mgr.Run(context.Background(), benchDuration, nil)
		elapsed := time.Since(start)
		mgr.Close()
		if err != nil {
			return err
		}

		rate := iterations / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", size, len(sc.Nodes), elapsed.Round(time.Millisecond), rate)
		if out != nil {
			if err := out.Write([]string{
				strconv.Itoa(size),
				strconv.Itoa(len(sc.Nodes)),
				strconv.FormatInt(elapsed.Milliseconds(), 10),
				strconv.FormatFloat(rate, 'f', 0, 64),
			}); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
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

	variants := make([]sim.Settings, len(sweepDts))
	for i, d := range sweepDts {
		v := cfg.Simulation
		v.Dt = d
		if v.MaxDt < d {
			v.MaxDt = d
		}
		if err := v.Validate(); err != nil {
			return err
		}
		variants[i] = v
	}

	fmt.Printf("sweeping %s over %d timesteps for %.3gs\n\n", cfg.SceneName(), len(variants), cfg.Duration)
	results, err := sim.NewEnsemble(sc, variants, log).Run(cmd.Context(), cfg.Duration)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tFRAMES\tFINAL DT\tRECOVERIES\tBROKEN\tDIVERGED\tWALL")
	for _, r := range results {
		fmt.Fprintf(w, "%.3g\t%d\t%.3g\t%d\t%d\t%t\t%v\n",
			r.Settings.Dt, r.Frames, r.FinalDt, r.Recoveries, r.BrokenBonds, r.Diverged, r.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}

func listEngines(cmd *cobra.Command, args []string) error {
	available := map[compute.Engine]bool{}
	for _, e := range compute.Available() {
		available[e] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENGINE\tSTATUS\tBACKEND")
	for _, e := range compute.Engines {
		if !available[e] {
			_, err := compute.New(e)
			fmt.Fprintf(w, "%s\tunavailable\t%v\n", e, err)
			continue
		}
		b, err := compute.New(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\tavailable\t%s\n", e, b.Name())
		b.Close()
	}
	return w.Flush()
}
