package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pedaltrainer/internal/config"
	"github.com/san-kum/pedaltrainer/internal/export"
	"github.com/san-kum/pedaltrainer/internal/input"
	"github.com/san-kum/pedaltrainer/internal/metrics"
	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/storage"
	"github.com/san-kum/pedaltrainer/internal/trainer"
	"github.com/san-kum/pedaltrainer/internal/viz"
	"github.com/spf13/cobra"
)

const (
	exitError        = 1
	exitNoDevice     = 2
	exitAcquireFails = 3
)

var (
	configFile string
	dataDir    string
	record     bool
	device     string
	keyboard   string
	preset     string
	theme      string
	seed       int64
	demo       bool
	debug      bool
	noGraph    bool
)

var (
	logger  = slog.Default()
	logFile string

	// loopLogger is handed to everything that logs while the trainer owns
	// the terminal. Without a log file it discards.
	loopLogger = slog.New(slog.DiscardHandler)
	logOut     io.Closer
)

// initLogger writes to stderr unless a log file is given.
func initLogger(debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFile == "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		loopLogger = slog.New(slog.DiscardHandler)
	} else {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logOut = f
		logger = slog.New(slog.NewTextHandler(f, opts))
		loopLogger = logger
	}
	slog.SetDefault(logger)
	return nil
}

func closeLog() {
	if logOut != nil {
		logOut.Close()
		logOut = nil
	}
}

// main wires the CLI and maps startup failures to exit codes: 2 when no
// pedal device is found, 3 when it cannot be opened, 1 for anything else.
func main() {
	rootCmd := &cobra.Command{
		Use:          "pedaltrainer",
		Short:        "hold your pedals on target",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(debug)
		},
		RunE: runTrainer,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging (needs --log-file while the trainer runs)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pedaltrainer", "data directory for recorded runs")
	rootCmd.Flags().BoolVar(&record, "record", false, "save the session trace to the data directory")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&device, "device", "", "pedal event node (default: discover)")
	rootCmd.Flags().StringVar(&keyboard, "keyboard", "", "keyboard event node for held-key input")
	rootCmd.Flags().StringVar(&preset, "preset", "", "difficulty preset")
	rootCmd.Flags().StringVar(&theme, "theme", "classic", "color theme")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for targets (0: from clock)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "use synthetic pedals instead of a device")
	rootCmd.Flags().BoolVar(&noGraph, "no-graph", false, "hide the pedal trace")

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "list input devices with absolute axes",
		Long:  "List event nodes that report absolute axes.\n\n" + axisRangeHelp,
		RunE:  listDevices,
	}
	devicesCmd.Flags().String("glob", config.DefaultGlob, "event node glob")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list difficulty presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBIAS\tHOLD")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d%%\t%.2fs\n", name, p.Tolerance, float64(p.HoldTime)/100)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the default configuration",
		Long:  "Print the default configuration as yaml.\n\n" + axisRangeHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.DefaultConfig().Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().String("svg", "", "also write the trace to an svg file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(devicesCmd, presetsCmd, configCmd, listCmd, plotCmd, exportCmd)

	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, input.ErrNoDevice):
		return exitNoDevice
	case errors.Is(err, input.ErrAcquire):
		return exitAcquireFails
	default:
		return exitError
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}
	// CLI flags override config
	if cmd.Flags().Changed("device") {
		cfg.Device.Path = device
	}
	if cmd.Flags().Changed("keyboard") {
		cfg.Device.Keyboard = keyboard
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if noGraph {
		cfg.Display.Graph = false
	}
	return cfg, nil
}

func axisMap(cfg *config.Config) input.AxisMap {
	conv := func(a config.AxisConfig) input.AxisConfig {
		return input.AxisConfig{Code: a.Code, Min: a.Min, Max: a.Max, ReleasedHigh: a.ReleasedHigh}
	}
	return input.AxisMap{Throttle: conv(cfg.Device.Throttle), Brake: conv(cfg.Device.Brake)}
}

func openSource(cfg *config.Config) (input.Source, error) {
	if demo {
		return input.NewDemoSource(), nil
	}
	axes := axisMap(cfg)
	path := cfg.Device.Path
	if path == "" {
		logger.Info("searching for pedals", "glob", cfg.Device.Glob)
		info, err := input.Discover(cfg.Device.Glob, axes)
		if err != nil {
			return nil, err
		}
		path = info.Path
	}
	return input.OpenEvdev(path, axes, loopLogger)
}

func runTrainer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	var kb input.KeySource
	if cfg.Device.Keyboard != "" {
		k, err := input.OpenKeyboard(cfg.Device.Keyboard, loopLogger)
		if err != nil {
			return err
		}
		defer k.Close()
		kb = k
	}

	s := cfg.Seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(s), uint64(s)>>1|1))

	active := pedal.Brake
	if cfg.Difficulty.Active == "throttle" {
		active = pedal.Throttle
	}
	session := trainer.NewSession(trainer.NewDifficulty(cfg.Difficulty.Tolerance, cfg.Difficulty.HoldTime), active, rng)

	var rec *storage.Recording
	if record {
		rec = storage.NewRecording()
	}

	logger.Info("using pedals", "device", src.Name(), "seed", s)
	if debug && logFile == "" {
		logger.Warn("debug output is dropped while the trainer runs, use --log-file to keep it")
	}
	opts := viz.Options{
		Source:   src,
		Keyboard: kb,
		Interval: cfg.Loop.Interval,
		Debounce: cfg.Loop.Debounce,
		BarWidth: cfg.Display.BarWidth,
		Graph:    cfg.Display.Graph,
		Theme:    theme,
		Logger:   loopLogger,
	}
	if rec != nil {
		opts.Recorder = rec
	}

	if err := viz.Run(viz.NewModel(session, opts, time.Now())); err != nil {
		return err
	}

	printSummary(session)
	if rec != nil {
		return saveRun(session, src.Name(), s, rec)
	}
	return nil
}

func saveRun(session *trainer.Session, device string, seed int64, rec *storage.Recording) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	runID, err := st.Save(storage.RunMetadata{
		Device:    device,
		Seed:      seed,
		Tolerance: session.Difficulty.TolerancePercent(),
		HoldTime:  session.Difficulty.HoldTime(),
		Metrics:   session.Metrics.Summary(),
	}, rec)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("saved run", "id", runID, "frames", len(rec.Frames()))
	fmt.Printf("saved run: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tBIAS\tHOLD\tHITS\tDEVICE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%d%%\t%.2fs\t%.0f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Tolerance,
			float64(run.HoldTime)/100,
			run.Metrics[metrics.NameTargetsHit],
			run.Device,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("run %s has too few frames to plot", meta.ID)
	}

	pressed := make([]float64, len(frames))
	targets := make([]float64, len(frames))
	for i, f := range frames {
		pressed[i] = f.Brake
		if f.Active == pedal.Throttle {
			pressed[i] = f.Throttle
		}
		targets[i] = f.Target
	}

	plot := asciigraph.PlotMany([][]float64{pressed, targets},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(fmt.Sprintf("%s  %.1fs  active pedal vs target", meta.ID, meta.Duration)),
	)
	fmt.Println(plot)

	svgPath, _ := cmd.Flags().GetString("svg")
	if svgPath == "" {
		return nil
	}
	f, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteTraceSVG(f, frames, export.DefaultSVGOptions()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func printSummary(s *trainer.Session) {
	summary := s.Metrics.Summary()
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("session:")
	attrs := make([]any, 0, 2*len(names))
	for _, name := range names {
		fmt.Printf("  %s: %.3f\n", name, summary[name])
		attrs = append(attrs, name, summary[name])
	}
	logger.Debug("session finished", attrs...)
}

// axisRangeHelp explains the pedal range settings. Axis ranges cannot be
// read from the device, so they come from the config file.
const axisRangeHelp = `Pedal axes are assumed to report 0..65535. For pedals with another
range (for example 0..255 or 0..1023) set min and max under
device.throttle and device.brake in a config file and pass it with --config.`

func listDevices(cmd *cobra.Command, args []string) error {
	glob, _ := cmd.Flags().GetString("glob")
	infos, err := input.ListDevices(glob)
	if err != nil {
		return err
	}
	return writeDevices(os.Stdout, infos, axisMap(config.DefaultConfig()))
}

func writeDevices(out io.Writer, infos []input.DeviceInfo, pedals input.AxisMap) error {
	if len(infos) == 0 {
		fmt.Fprintln(out, "no devices with absolute axes found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tAXES\tPEDALS")
	for _, d := range infos {
		mark := ""
		if d.HasAxes(pedals) {
			mark = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", d.Path, d.Name, d.Axes, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nthrottle range %d..%d, brake range %d..%d\n",
		pedals.Throttle.Min, pedals.Throttle.Max, pedals.Brake.Min, pedals.Brake.Max)
	fmt.Fprintln(out, axisRangeHelp)
	return nil
}
