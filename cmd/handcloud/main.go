package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/handcloud/internal/audio"
	"github.com/san-kum/handcloud/internal/automation"
	"github.com/san-kum/handcloud/internal/config"
	"github.com/san-kum/handcloud/internal/export"
	"github.com/san-kum/handcloud/internal/flat"
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/gui"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/metrics"
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
	"github.com/san-kum/handcloud/internal/sim"
	"github.com/san-kum/handcloud/internal/storage"
	"github.com/san-kum/handcloud/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	seed       int64
	template   string
	count      int
	// tracker sources
	udp      bool
	listen   string
	replay   string
	scenario string
	mute     bool
	// run / record
	realtime bool
	save     bool
	duration float64
	// snapshot
	ticks   int
	out     string
	style   string
	saveCSV bool
	// plot
	svgOut string
	// live
	theme string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "handcloud",
		Short: "hand-driven 3D particle cloud",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "default", "preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "write debug log to logs/handcloud.log")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 = time)")
	pf.StringVar(&template, "template", "", "starting template")
	pf.IntVar(&count, "particles", 0, "particle count")

	sourceFlags := func(cmd *cobra.Command) {
		cmd.Flags().BoolVar(&udp, "udp", false, "listen for landmark packets from a tracker sidecar")
		cmd.Flags().StringVar(&listen, "listen", "", "UDP listen address")
		cmd.Flags().StringVar(&replay, "replay", "", "replay a recorded session")
		cmd.Flags().BoolVar(&mute, "mute", false, "disable the switch cue")
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the 3D window (raylib)",
		RunE:  runGUI,
	}
	sourceFlags(guiCmd)
	sourceFlags(rootCmd)

	flatCmd := &cobra.Command{
		Use:   "flat",
		Short: "open the 2D sprite window (ebiten)",
		RunE:  runFlat,
	}
	sourceFlags(flatCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "render the cloud in the terminal",
		RunE:  runLive,
	}
	sourceFlags(liveCmd)
	liveCmd.Flags().StringVar(&scenario, "scenario", "", "drive the cloud from a scenario file")
	liveCmd.Flags().StringVar(&theme, "theme", "", "terminal theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "play a scripted gesture scenario headless",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "play at wall-clock pace")
	runCmd.Flags().BoolVar(&save, "save", false, "record the synthesized session")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record landmark packets from a tracker sidecar",
		RunE:  runRecord,
	}
	recordCmd.Flags().StringVar(&listen, "listen", "", "UDP listen address")
	recordCmd.Flags().Float64Var(&duration, "time", 10.0, "seconds to record")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot pointer and gesture distances of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the pointer path as SVG")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [session_id]",
		Short: "export session landmarks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sessionStore(cmd)
			if err != nil {
				return err
			}
			return st.ExportLandmarksCSV(args[0], os.Stdout)
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [session_id]",
		Short: "export session metadata and gesture trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sessionStore(cmd)
			if err != nil {
				return err
			}
			return st.ExportJSON(args[0], os.Stdout)
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "settle a template and write it as SVG",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&ticks, "ticks", 300, "ticks to run before capturing")
	snapshotCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <template>.svg)")
	snapshotCmd.Flags().StringVar(&style, "style", "cloud", "cloud or braille")
	snapshotCmd.Flags().BoolVar(&saveCSV, "csv", false, "also save the particle buffers as CSV")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "list templates in cycle order",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range shape.All() {
				fmt.Printf("  %-10s -> %s\n", t, t.Next())
			}
		},
	}

	rootCmd.AddCommand(guiCmd, flatCmd, liveCmd, runCmd, recordCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, snapshotCmd, presetsCmd, templatesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies preset, then config file, then flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("template") {
		cfg.Template = template
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = count
	}
	if flags.Changed("listen") {
		cfg.Tracker.Listen = listen
	}
	if flags.Changed("theme") {
		if !slices.Contains(viz.ThemeNames(), theme) {
			return nil, fmt.Errorf("unknown theme %q (have %s)", theme, strings.Join(viz.ThemeNames(), ", "))
		}
		cfg.Render.Theme = theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sessionStore opens the store under the resolved data directory.
func sessionStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func newRunner(cfg *config.Config) *sim.Runner {
	s := cfg.ResolvedSeed()
	rng := rand.New(rand.NewSource(s))
	n := cfg.Particles.Count

	store := particles.New(n, cfg.Particles.Size, cfg.Particles.Spread, rng)
	state := scene.New(cfg.StartTemplate())
	loop := sim.NewLoop(store, state, shape.NewGenerator(n, rng), cfg.SimParams())
	loop.AddMetric(metrics.NewRadius())
	loop.AddMetric(metrics.NewMotion())
	loop.AddMetric(metrics.NewWarmth(cfg.Colors.Warm))

	classifier := gesture.New(state, cfg.GestureConfig())
	classifier.OnSwitch(func(t shape.Template) {
		log.Printf("switch: %s", gesture.Banner(t))
	})
	log.Printf("cloud: %d particles, seed %d, template %s", n, s, state.Template)
	return sim.NewRunner(loop, classifier)
}

// openTracker returns the configured landmark source, or nil when the
// front-end's own input is the only hand.
func openTracker(cfg *config.Config) (hand.Tracker, string, error) {
	switch {
	case replay != "":
		results, err := storage.New(cfg.DataDir).LoadResults(replay)
		if err != nil {
			return nil, "", err
		}
		return hand.NewReplay(results, false), "replay " + replay, nil
	case scenario != "":
		s, err := automation.LoadScenario(scenario)
		if err != nil {
			return nil, "", err
		}
		return automation.NewScriptTracker(s), "scenario " + s.Name, nil
	case udp:
		t, err := hand.ListenUDP(cfg.Tracker.Listen, cfg.Tracker.Options)
		if err != nil {
			return nil, "", err
		}
		return t, "udp " + t.Addr().String(), nil
	}
	return nil, "", nil
}

// startAudio returns the switch cue, or nil when muted or no device opens.
func startAudio() (func(shape.Template), func()) {
	if mute {
		return nil, func() {}
	}
	p, err := audio.Start()
	if err != nil {
		log.Printf("audio disabled: %v", err)
		return nil, func() {}
	}
	return p.Cue, func() { p.Close() }
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, source, err := openTracker(cfg)
	if err != nil {
		return err
	}
	cue, stop := startAudio()
	defer stop()

	gui.Run(gui.Options{
		Runner:  newRunner(cfg),
		Tracker: tracker,
		Store:   storage.New(cfg.DataDir),
		Cue:     cue,
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		FPS:     cfg.Render.FPS,
		FOV:     cfg.Render.FOV,
		CameraZ: cfg.Render.CameraZ,
		Source:  source,
	})
	return nil
}

func runFlat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, source, err := openTracker(cfg)
	if err != nil {
		return err
	}
	cue, stop := startAudio()
	defer stop()

	return flat.Run(flat.Options{
		Runner:  newRunner(cfg),
		Tracker: tracker,
		Store:   storage.New(cfg.DataDir),
		Camera:  viz.NewCamera(cfg.Render.FOV, cfg.Render.CameraZ),
		Cue:     cue,
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		FPS:     cfg.Render.FPS,
		Source:  source,
	})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, source, err := openTracker(cfg)
	if err != nil {
		return err
	}
	if tracker != nil {
		defer tracker.Close()
	}
	cue, stop := startAudio()
	defer stop()

	runner := newRunner(cfg)
	if cue != nil {
		runner.Classifier().OnSwitch(cue)
	}
	return viz.Run(viz.Options{
		Runner:   runner,
		Tracker:  tracker,
		Camera:   viz.NewCamera(cfg.Render.FOV, cfg.Render.CameraZ),
		Theme:    viz.GetTheme(cfg.Render.Theme),
		TickRate: cfg.TickRate(),
		Cooldown: cfg.Gesture.Cooldown,
		Source:   source,
	})
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	opts := automation.RunOptions{
		Particles: cfg.Particles.Count,
		Seed:      cfg.ResolvedSeed(),
		Params:    cfg.SimParams(),
		Gesture:   cfg.GestureConfig(),
		Realtime:  realtime,
		TickRate:  cfg.TickRate(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("running scenario %s...\n", s.Name)
	report, err := automation.RunScenario(ctx, s, opts)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", report.Elapsed)
	fmt.Printf("ticks: %d  frames: %d  switches: %d  malformed: %d\n",
		report.Ticks, report.Frames, report.Switches, report.Malformed)
	fmt.Printf("final template: %s\n", report.Template)

	if len(report.Steps) > 0 {
		fmt.Println("\nsteps:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  STEP\tTEMPLATE\tGRASP\tX\tY")
		for _, st := range report.Steps {
			fmt.Fprintf(w, "  %s\t%s\t%v\t%+.2f\t%+.2f\n", st.Name, st.Template, st.Grasping, st.X, st.Y)
		}
		w.Flush()
	}

	printMetrics(report.Metrics)

	if save {
		if len(report.Results) == 0 {
			return fmt.Errorf("nothing to save: realtime runs keep no frames")
		}
		id, err := storage.New(cfg.DataDir).SaveSession(storage.SessionMetadata{
			Source:        "scenario",
			Seed:          opts.Seed,
			CaptureWidth:  cfg.Tracker.CaptureWidth,
			CaptureHeight: cfg.Tracker.CaptureHeight,
			Tracker:       cfg.Tracker.Options,
			Metrics:       report.Metrics,
		}, report.Results)
		if err != nil {
			return err
		}
		fmt.Printf("session id: %s\n", id)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, err := hand.ListenUDP(cfg.Tracker.Listen, cfg.Tracker.Options)
	if err != nil {
		return err
	}
	defer tracker.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTime := context.WithTimeout(ctx, time.Duration(duration*float64(time.Second)))
	defer cancelTime()

	fmt.Printf("recording on %s for %.1fs...\n", tracker.Addr(), duration)
	var results []hand.Result
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case res, ok := <-tracker.Results():
			if !ok {
				break loop
			}
			results = append(results, res)
		}
	}

	if len(results) == 0 {
		return fmt.Errorf("no frames received on %s", tracker.Addr())
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.SaveSession(storage.SessionMetadata{
		Source:        "udp",
		Seed:          cfg.Seed,
		CaptureWidth:  cfg.Tracker.CaptureWidth,
		CaptureHeight: cfg.Tracker.CaptureHeight,
		Tracker:       cfg.Tracker.Options,
	}, results)
	if err != nil {
		return err
	}
	log.Printf("record: saved %d frames to %s", len(results), id)
	fmt.Printf("frames: %d\n", len(results))
	fmt.Printf("session id: %s\n", id)
	return nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	st, err := sessionStore(cmd)
	if err != nil {
		return err
	}
	sessions, err := st.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tFRAMES\tDURATION")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\n",
			s.ID,
			s.Source,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Frames,
			s.Duration,
		)
	}
	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	id := args[0]
	st, err := sessionStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	results, err := st.LoadResults(id)
	if err != nil {
		return err
	}
	if len(results) < 2 {
		return fmt.Errorf("no data to plot")
	}

	tr := storage.NewTrace(results)
	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("frames: %d\n\n", tr.Len())

	series := []struct {
		data    []float64
		caption string
	}{
		{tr.IndexX, "index x (image)"},
		{tr.IndexY, "index y (image)"},
		{tr.Grasp, "grasp distance"},
		{tr.Pinch, "pinch distance"},
	}
	for _, s := range series {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}

	if meta.Duration > 0 {
		rate := float64(tr.Len()-1) / meta.Duration
		freq, share := metrics.Tremor(tr.IndexX, rate)
		fmt.Printf("pointer tremor: %.2f hz (%.0f%% of power)\n", freq, share*100)
	}

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.PointerPathSVG(tr, 640, 480, "#00ffcc")), 0644); err != nil {
			return err
		}
		fmt.Printf("pointer path: %s\n", svgOut)
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ticks < 0 {
		return fmt.Errorf("ticks must be non-negative")
	}

	runner := newRunner(cfg)
	loop := runner.Loop()
	for i := 0; i < ticks; i++ {
		loop.Tick()
	}

	name := loop.State().Template.String()
	if out == "" {
		out = name + ".svg"
	}
	cam := viz.NewCamera(cfg.Render.FOV, cfg.Render.CameraZ)

	var svg string
	switch style {
	case "cloud":
		svg = export.CloudSVG(loop.Store().Snapshot(), loop.Model(), cam, cfg.Render.Width, cfg.Render.Height)
	case "braille":
		canvas := viz.NewCanvas(120, 48)
		viz.RenderCloud(canvas, loop.Store(), loop.Model(), cam)
		svg = export.CanvasToSVG(canvas, 4, "#00ff88")
	default:
		return fmt.Errorf("unknown style: %s (cloud, braille)", style)
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("%s after %d ticks: %s\n", name, ticks, out)

	if saveCSV {
		path, err := storage.New(cfg.DataDir).SaveSnapshot(name, loop.Store().Snapshot())
		if err != nil {
			return err
		}
		fmt.Printf("buffers: %s\n", path)
	}
	return nil
}
