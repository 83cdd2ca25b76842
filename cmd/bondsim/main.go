package main

import (
	"fmt"
	"os"

	"github.com/san-kum/bondsim/internal/compute"
	"github.com/san-kum/bondsim/internal/config"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/san-kum/bondsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	sceneName   string
	sceneSize   int
	sceneFile   string
	dt          float64
	steps       int
	engine      string
	useGrid     bool
	useBackup   bool
	useAutoDt   bool
	logCSV      bool
	duration    float64
	logInterval float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bondsim",
		Short:         "bonded particle soft-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return viz.RunPicker(cfg.Simulation, cfg.Scene.Size, cfg.Duration)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "settings preset: "+fmt.Sprint(config.ListPresets()))

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a simulation and log energy to the data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&saveScene, "save-scene", "", "write the final scene to this file")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure iterations per second across scene sizes",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{5, 10, 15, 25, 40, 50, 60, 75, 90, 100}, "object edge lengths")
	benchCmd.Flags().Float64Var(&benchDuration, "time", 0.5, "simulated seconds per size")
	benchCmd.Flags().StringVar(&benchEngine, "engine", string(compute.EngineCPU), "execution engine")
	benchCmd.Flags().StringVar(&benchCSV, "csv", "", "also write results to this CSV file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run one scene under several timesteps concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", []float64{1e-5, 2e-5, 4e-5}, "timesteps to compare")

	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "list execution engines",
		Args:  cobra.NoArgs,
		RunE:  listEngines,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene and settings presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("scenes:")
			for _, name := range scene.ListPresets() {
				fmt.Printf("  %-14s %s\n", name, scene.Presets[name].Description)
			}
			fmt.Println("settings:")
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, sweepCmd, enginesCmd, listCmd, plotCmd, exportCmd, presetsCmd, newSceneCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := sim.DefaultSettings()
	cmd.Flags().IntVar(&sceneSize, "size", scene.DefaultSize, "scene object edge length")
	cmd.Flags().StringVar(&sceneFile, "scene-file", "", "load the scene from a file instead of a preset")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", d.StepsPerFrame, "steps per frame")
	cmd.Flags().StringVar(&engine, "engine", string(d.Engine), "execution engine")
	cmd.Flags().BoolVar(&useGrid, "grid", d.UseGrid, "use the spatial grid for collisions")
	cmd.Flags().BoolVar(&useBackup, "backup", d.UseBackup, "restore backups on divergence")
	cmd.Flags().BoolVar(&useAutoDt, "auto-dt", d.UseAutoDt, "grow dt while stable")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds")
	cmd.Flags().BoolVar(&logCSV, "log", d.LogToCSV, "sample energy every log interval")
	cmd.Flags().Float64Var(&logInterval, "log-interval", d.LogInterval, "simulated seconds between energy samples")
}

// loadConfig layers defaults, the config file, the settings preset and
// finally any flags set explicitly on cmd.
func loadConfig(cmd *cobra.Command, args ...string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		s, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		s.CellSize = cfg.Simulation.CellSize
		cfg.Simulation = s
	}

	if len(args) > 0 {
		cfg.Scene.Preset = args[0]
		cfg.Scene.File = ""
	}
	f := cmd.Flags()
	if f.Changed("size") {
		cfg.Scene.Size = sceneSize
	}
	if f.Changed("scene-file") {
		cfg.Scene.File = sceneFile
	}
	s := &cfg.Simulation
	if f.Changed("dt") {
		s.Dt = dt
	}
	if f.Changed("steps") {
		s.StepsPerFrame = steps
	}
	if f.Changed("engine") {
		e, err := compute.ParseEngine(engine)
		if err != nil {
			return nil, err
		}
		s.Engine = e
	}
	if f.Changed("grid") {
		s.UseGrid = useGrid
	}
	if f.Changed("backup") {
		s.UseBackup = useBackup
	}
	if f.Changed("auto-dt") {
		s.UseAutoDt = useAutoDt
	}
	if f.Changed("log") {
		s.LogToCSV = logCSV
	}
	if f.Changed("log-interval") {
		s.LogInterval = logInterval
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, s.Validate()
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
