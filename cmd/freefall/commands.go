package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/freefall/internal/analysis"
	"github.com/san-kum/freefall/internal/automation"
	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/experiment"
	"github.com/san-kum/freefall/internal/export"
	"github.com/san-kum/freefall/internal/optim"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/serve"
	"github.com/san-kum/freefall/internal/sim"
	"github.com/san-kum/freefall/internal/storage"
	"github.com/san-kum/freefall/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file or nowhere
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w, cfg.LogLevel)

	view := viz.ModelConfig{
		FrameRate: cfg.FrameRate,
		Theme:     theme,
		Logger:    logger,
	}
	if pick {
		return viz.RunProgram(viz.NewPicker(cfg, view, sim.WithLogger(logger)))
	}

	exp, err := experiment.New(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	view.Title = cfg.Preset
	return viz.RunProgram(viz.NewModel(exp.Controller(), view))
}

// simulate runs cfg headless with every registered metric.
func simulate(ctx context.Context, cfg *config.Config, logger *log.Logger) (*experiment.Experiment, *sim.Result, error) {
	exp, err := experiment.New(cfg, sim.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	exp.Setup(experiment.NewRegistry().DefaultMetrics())

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return exp, result, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	exp, result, err := simulate(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	printSummary(exp, result)

	if plot {
		if err := printPlots(result.History, plotWidth); err != nil {
			return err
		}
	}

	if csvPath != "" {
		if err := storage.ExportCSV(csvPath, result.History); err != nil {
			return err
		}
		fmt.Printf("exported %d points to %s\n", len(result.History), csvPath)
	}
	if jsonPath != "" {
		data := storage.ExportData{
			Params:     exp.Params(),
			Integrator: cfg.Integrator,
			Dt:         cfg.Dt,
			Steps:      result.StepsTaken,
			Terminated: result.Terminated,
			Final:      result.Final,
			Metrics:    result.Metrics,
			History:    result.History,
		}
		if err := storage.ExportJSON(jsonPath, data); err != nil {
			return err
		}
		fmt.Printf("exported run to %s\n", jsonPath)
	}
	if svgPath != "" {
		if err := writeSVG(svgPath, result.History, nil); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(storage.RunMetadata{
			Label:      runLabel(cfg),
			Dt:         cfg.Dt,
			Integrator: cfg.Integrator,
			Params:     exp.Params(),
			Terminated: result.Terminated,
			Final:      result.Final,
			Metrics:    result.Metrics,
		}, result.History)
		if err != nil {
			return err
		}
		logger.Info("run archived", "id", id, "dir", dataDir)
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func runLabel(cfg *config.Config) string {
	switch {
	case label != "":
		return label
	case cfg.Preset != "":
		return cfg.Preset
	}
	return "run"
}

func printSummary(exp *experiment.Experiment, result *sim.Result) {
	p := exp.Params()
	f := result.Final
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mass\t%g kg\n", p.Mass)
	fmt.Fprintf(w, "drag\t%s, k=%g\n", p.FrictionModel, p.FrictionCoefficient)
	fmt.Fprintf(w, "height\t%g m\n", p.SimulationHeight)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	if result.Terminated {
		fmt.Fprintf(w, "impact\tt=%.4f s, v=%.4f m/s\n", f.Time, f.Velocity)
	} else {
		fmt.Fprintf(w, "airborne\tt=%.4f s, h=%.4f m, v=%.4f m/s\n", f.Time, f.Position, f.Velocity)
	}
	if vt, ok := analysis.TerminalVelocity(p); ok {
		fmt.Fprintf(w, "terminal v\t%.4f m/s\n", vt)
	}
	w.Flush()

	if len(result.Metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func printPlots(h []dynamo.HistoryPoint, width int) error {
	if len(h) < 2 {
		return errors.New("not enough data to plot")
	}
	names := []string{"position", "velocity"}
	if svgField != "position" && svgField != "velocity" {
		names = append(names, svgField)
	}
	for _, name := range names {
		field, ok := export.Fields[name]
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		data := make([]float64, len(h))
		for i, p := range h {
			data[i] = field(p)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(width),
			asciigraph.Caption(name+" vs time"),
		))
	}
	return nil
}

func writeSVG(path string, run, baseline []dynamo.HistoryPoint) error {
	svg, err := export.HistoryToSVG(run, baseline, svgField, 800, 400)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s chart to %s\n", svgField, path)
	return nil
}

func compareRuns(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	runCfg, baseCfg := *cfg, *cfg
	var runName, baseName string
	switch len(args) {
	case 2:
		runCfg.Preset, baseCfg.Preset = args[0], args[1]
		runName, baseName = args[0], args[1]
	case 1:
		runCfg.Preset = args[0]
		runName, baseName = args[0], "configured"
	default:
		// same body under the other drag law
		p, err := cfg.Resolve()
		if err != nil {
			return err
		}
		other := dynamo.Linear
		if p.FrictionModel == dynamo.Linear {
			other = dynamo.Quadratic
		}
		baseCfg.Params = cfg.Params.Merge(params.Patch{FrictionModel: params.Model(other)})
		runName, baseName = string(p.FrictionModel), string(other)
	}

	_, run, err := simulate(cmd.Context(), &runCfg, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", runName, err)
	}
	_, base, err := simulate(cmd.Context(), &baseCfg, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", baseName, err)
	}

	fmt.Printf("run: %s   baseline: %s\n\n", runName, baseName)
	fmt.Print(analysis.Compare(run.History, base.History).String())

	if svgPath != "" {
		return writeSVG(svgPath, run.History, base.History)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	var h []dynamo.HistoryPoint
	if phaseRun != "" {
		st := storage.New(dataDir)
		meta, err := st.Load(phaseRun)
		if err != nil {
			return err
		}
		h, err = st.LoadHistory(phaseRun)
		if err != nil {
			return err
		}
		fmt.Printf("run: %s (%s)\n", meta.ID, meta.Params.FrictionModel)
	} else {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		_, result, err := simulate(cmd.Context(), cfg, newLogger(os.Stderr, cfg.LogLevel))
		if err != nil {
			return err
		}
		h = result.History
	}

	portrait := analysis.PhasePortraitFromHistory(h)
	if portrait == nil {
		return errors.New("no data to plot")
	}
	fmt.Printf("%s (y) vs %s (x)\n\n", portrait.YLabel, portrait.XLabel)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, phaseWidth, 20))
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Resolve()
	if err != nil {
		return err
	}
	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	points, err := analysis.ImpactSweep(p, integ, analysis.SweepConfig{
		Param:       sweepParam,
		Min:         sweepMin,
		Max:         sweepMax,
		Steps:       sweepSteps,
		Dt:          cfg.Dt,
		MaxDuration: cfg.MaxDuration,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tIMPACT T\tIMPACT V\tLANDED\n", sweepParam)
	speeds := make([]float64, len(points))
	for i, pt := range points {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%v\n", pt.Param, pt.ImpactTime, pt.ImpactVelocity, pt.Landed)
		speeds[i] = pt.ImpactVelocity
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plot && len(speeds) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(speeds,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("impact speed vs %s (%g..%g)", sweepParam, sweepMin, sweepMax)),
		))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		preset, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, preset.Description)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tINTEG\tMODEL\tIMPACT T\tIMPACT V")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%s\t%.4f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Params.FrictionModel,
			run.Final.Time,
			run.Final.Velocity,
		)
	}
	return w.Flush()
}

func serveSSH(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if f := cmd.Flags(); f.Changed("address") {
		cfg.SSH.Address, _ = f.GetString("address")
	}
	if f := cmd.Flags(); f.Changed("host-key") {
		cfg.SSH.HostKeyPath, _ = f.GetString("host-key")
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	logger.SetPrefix("freefall-ssh")

	srv, err := serve.New(serve.ConfigFrom(cfg, theme), logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}

// parseGrid reads "min:max:n" ranges keyed by parameter name, in name order.
func parseGrid(raw map[string]string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	ranges := make([][]float64, len(names))
	for i, name := range names {
		parts := strings.Split(raw[name], ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %s: want min:max:n, got %q", name, raw[name])
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		ranges[i] = optim.Linspace(lo, hi, n)
	}
	return names, ranges, nil
}

func fitParams(cmd *cobra.Command, args []string) error {
	if len(fitRanges) == 0 {
		return errors.New("at least one --grid is required")
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(fitRanges)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	best, score, err := gs.Search(cmd.Context(), optim.ConfigBuilder(cfg, sim.WithLogger(logger)), optim.MetricTarget(fitMetric, fitTarget))
	if err != nil {
		return err
	}

	fmt.Printf("best fit for %s = %g (off by %.4g):\n", fitMetric, fitTarget, score)
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, best[name])
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	if sc.Name != "" {
		logger.Info("scenario", "name", sc.Name, "steps", len(sc.Steps))
	}

	results, err := automation.RunScenario(cmd.Context(), sc, cfg, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tMASS\tK\tIMPACT T\tIMPACT V\tLANDED\tRUN ID")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%.4f\t%.4f\t%v\t%s\n",
			r.Name,
			r.Params.FrictionModel,
			r.Params.Mass,
			r.Params.FrictionCoefficient,
			r.Result.Final.Time,
			r.Result.Final.Velocity,
			r.Result.Terminated,
			r.RunID,
		)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	spread := make(map[string]float64, len(spreads))
	for name, raw := range spreads {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("spread %s: %w", name, err)
		}
		spread[name] = v
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, automation.MonteCarloConfig{
		Spread:    spread,
		NumTrials: trials,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	s := automation.Summarize(results)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "trials\t%d\n", len(results))
	fmt.Fprintf(w, "landed\t%d\n", s.Landed)
	fmt.Fprintf(w, "invalid draws\t%d\n", s.Invalid)
	fmt.Fprintf(w, "impact speed\t%.4f ± %.4f m/s\n", s.Mean, s.StdDev)
	fmt.Fprintf(w, "range\t%.4f .. %.4f m/s\n", s.Min, s.Max)
	return w.Flush()
}
