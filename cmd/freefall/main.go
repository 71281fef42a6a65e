package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
)

var (
	dataDir    string
	configFile string
	presetName string
	integrator string
	logLevel   string
	logFile    string
	theme      string

	mass          float64
	friction      float64
	volume        float64
	airDensity    float64
	height        float64
	gravity       float64
	v0            float64
	frictionModel string
	dt            float64
	frameRate     int
	maxDuration   float64

	csvPath  string
	jsonPath string
	svgPath  string
	svgField string
	plot     bool
	save     bool
	label    string

	pick       bool
	phaseRun   string
	plotWidth  int
	phaseWidth int
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	fitMetric  string
	fitTarget  float64
	fitRanges  map[string]string
	trials     int
	seed       int64
	spreads    map[string]string
)

// main runs the live view when no subcommand is given. It exits with
// status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		newLogger(os.Stderr, logLevel).Error("freefall failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "freefall",
		Short:         "vertical fall through air: live simulator and analysis tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".freefall", "run archive directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&presetName, "preset", "", "named preset (see `freefall presets`)")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator: semi-implicit, euler, rk4")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "log file for the live view (default: discard)")
	pf.Float64Var(&mass, "mass", dynamo.DefaultMass, "mass (kg)")
	pf.Float64Var(&friction, "friction", dynamo.DefaultFrictionCoefficient, "drag coefficient k")
	pf.Float64Var(&volume, "volume", dynamo.DefaultVolume, "body volume (m³)")
	pf.Float64Var(&airDensity, "air-density", dynamo.DefaultAirDensity, "air density (kg/m³)")
	pf.Float64Var(&height, "height", dynamo.DefaultSimulationHeight, "drop height (m)")
	pf.Float64Var(&gravity, "gravity", dynamo.DefaultGravity, "gravitational acceleration (m/s²)")
	pf.Float64Var(&v0, "v0", 0, "initial velocity, downward positive (m/s)")
	pf.StringVar(&frictionModel, "model", string(dynamo.Quadratic), "drag law: linear (kv) or quadratic (kv2)")
	pf.Float64Var(&dt, "dt", config.DefaultDt, "fixed timestep (s)")
	pf.Float64Var(&maxDuration, "max-duration", config.DefaultMaxDuration, "simulated time limit for headless runs (s)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().BoolVar(&pick, "pick", false, "start from the preset menu")
		c.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
		c.Flags().StringVar(&theme, "theme", "", "color theme: cyberpunk, retro, minimal, sky")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless run to impact",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&csvPath, "csv", "", "export history to CSV")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "export run to JSON")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "export a chart to SVG")
	runCmd.Flags().StringVar(&svgField, "field", "position", "field charted by --svg and --plot")
	runCmd.Flags().BoolVar(&plot, "plot", false, "print ASCII charts")
	runCmd.Flags().BoolVar(&save, "save", false, "archive the run under --data")
	runCmd.Flags().StringVar(&label, "label", "", "label for the archived run")
	runCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [baseline-preset]",
		Short: "compare two presets, or linear against quadratic drag",
		Args:  cobra.RangeArgs(0, 2),
		RunE:  compareRuns,
	}
	compareCmd.Flags().StringVar(&svgPath, "svg", "", "export an overlay chart to SVG")
	compareCmd.Flags().StringVar(&svgField, "field", "position", "field charted by --svg")

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "velocity/height phase portrait",
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseRun, "run", "", "plot an archived run instead of simulating")
	phaseCmd.Flags().IntVar(&phaseWidth, "width", 60, "plot width")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "impact time and speed across a parameter range",
		RunE:  sweepParams,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "mass", "parameter to sweep (snake_case)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().BoolVar(&plot, "plot", false, "print impact speed chart")

	fitCmd := &cobra.Command{
		Use:     "fit",
		Short:   "grid-search parameters so a metric hits a target",
		Example: "  freefall fit --preset parachute --target 5 --grid friction_coefficient=5:40:36",
		RunE:    fitParams,
	}
	fitCmd.Flags().StringVar(&fitMetric, "metric", "impact_velocity", "metric to match")
	fitCmd.Flags().Float64Var(&fitTarget, "target", 0, "target metric value")
	fitCmd.Flags().StringToStringVar(&fitRanges, "grid", nil, "param=min:max:n, repeatable")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a YAML scenario of steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "impact speed dispersion under random parameter spread",
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: clock)")
	mcCmd.Flags().StringToStringVar(&spreads, "spread", map[string]string{"mass": "0.1"}, "param=relative spread, repeatable")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named presets",
		RunE:  listPresets,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "config file helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with every default spelled out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Save(args[0], config.Template()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the live view over SSH",
		RunE:  serveSSH,
	}
	serveCmd.Flags().String("address", config.DefaultSSHAddress, "listen address")
	serveCmd.Flags().String("host-key", config.DefaultHostKeyPath, "host key path (relative to home)")
	serveCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	rootCmd.AddCommand(liveCmd, runCmd, compareCmd, phaseCmd, sweepCmd, fitCmd, batchCmd, mcCmd, presetsCmd, runsCmd, configCmd, serveCmd)
	return rootCmd
}

// buildConfig layers defaults, the config file, and then every flag the
// user set explicitly. The preset sits between defaults and overrides and
// is applied by Config.Resolve.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("preset") {
		cfg.Preset = presetName
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("max-duration") {
		cfg.MaxDuration = maxDuration
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Lookup("fps") != nil && f.Changed("fps") {
		cfg.FrameRate = frameRate
	}

	var patch params.Patch
	overrides := []struct {
		flag string
		val  float64
		dst  **float64
	}{
		{"mass", mass, &patch.Mass},
		{"friction", friction, &patch.FrictionCoefficient},
		{"volume", volume, &patch.Volume},
		{"air-density", airDensity, &patch.AirDensity},
		{"height", height, &patch.SimulationHeight},
		{"gravity", gravity, &patch.Gravity},
		{"v0", v0, &patch.InitialVelocity},
	}
	for _, o := range overrides {
		if f.Changed(o.flag) {
			*o.dst = params.F(o.val)
		}
	}
	if f.Changed("model") {
		m, err := dynamo.ParseFrictionModel(frictionModel)
		if err != nil {
			return nil, err
		}
		patch.FrictionModel = params.Model(m)
	}
	cfg.Params = cfg.Params.Merge(patch)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "freefall",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}
