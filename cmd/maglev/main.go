package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/maglev/internal/config"
)

var (
	dataDir     string
	logLevel    string
	configFile  string
	preset      string
	metricsAddr string

	dt         float64
	duration   float64
	seed       uint64
	kp         float64
	ki         float64
	kd         float64
	setpoint   float64
	noiseSigma float64
	integrator string
	pos        float64
	vel        float64
	hold       bool

	logger = slog.New(slog.DiscardHandler)
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "maglev",
		Short:         "PID-controlled magnetic levitation simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".maglev", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in real time with live tuning",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations and save each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render run plots to image files",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	pngCmd.Flags().StringVar(&outPath, "out", "", "output prefix (default: run id)")
	pngCmd.Flags().StringVar(&imageFormat, "format", "png", "image format (png, svg, pdf)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default: <run_id>.json)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.PresetNames() {
				fmt.Printf("  %-10s %s\n", name, config.PresetDescription(name))
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scheme...]",
		Short: "compare integration schemes on the same configuration",
		RunE:  compareSchemes,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().BoolVar(&unforced, "unforced", false, "zero the gains so energy drift is meaningful")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search PID gains",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpRange, "kp-range", nil, "kp search range lo,hi")
	tuneCmd.Flags().Float64SliceVar(&kiRange, "ki-range", nil, "ki search range lo,hi")
	tuneCmd.Flags().Float64SliceVar(&kdRange, "kd-range", nil, "kd search range lo,hi")
	tuneCmd.Flags().IntVar(&points, "points", 5, "grid points per parameter")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "iae", "metric to minimise")
	tuneCmd.Flags().IntVar(&top, "top", 5, "number of results to show")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)
	configCmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, scenarioCmd, listCmd, plotCmd, analyzeCmd, pngCmd, exportJSONCmd, exportCSVCmd, presetsCmd, compareCmd, tuneCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "duration")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "noise seed (0 picks one at random)")
	cmd.Flags().Float64Var(&kp, "kp", d.PID.Kp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", d.PID.Ki, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", d.PID.Kd, "pid kd")
	cmd.Flags().Float64Var(&setpoint, "setpoint", d.Setpoint, "target height (m)")
	cmd.Flags().Float64Var(&noiseSigma, "noise", d.Sensor.Noise, "sensor noise standard deviation (m)")
	cmd.Flags().StringVar(&integrator, "integrator", d.Physics.Integrator, "integration scheme")
	cmd.Flags().Float64Var(&pos, "pos", d.Initial.Position, "initial position (m)")
	cmd.Flags().Float64Var(&vel, "vel", d.Initial.Velocity, "initial velocity (m/s)")
	cmd.Flags().BoolVar(&hold, "hold", false, "start with the ball held")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.Preset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(config.PresetNames(), ", "))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("kp") {
		cfg.PID.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.PID.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.PID.Kd = kd
	}
	if flags.Changed("setpoint") {
		cfg.Setpoint = setpoint
	}
	if flags.Changed("noise") {
		cfg.Sensor.Noise = noiseSigma
	}
	if flags.Changed("integrator") {
		cfg.Physics.Integrator = integrator
	}
	if flags.Changed("pos") {
		cfg.Initial.Position = pos
	}
	if flags.Changed("vel") {
		cfg.Initial.Velocity = vel
	}
	if flags.Changed("hold") {
		cfg.Physics.Hold = hold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("configuration resolved", "preset", preset, "config", configFile, "integrator", cfg.Physics.Integrator)
	return cfg, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
