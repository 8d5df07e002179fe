// Command ls-orrery runs the AR solar-system players in the terminal or
// serves them to browsers over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/server"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
	"github.com/litescript/ls-orrery/internal/weather"
)

const (
	defaultWait = 15 * time.Second
	minWait     = 1 * time.Second
	maxWait     = 2 * time.Minute
)

var views = map[string]ui.ViewMode{
	"weather": ui.ViewWeather,
	"scale":   ui.ViewScale,
	"model":   ui.ViewOrrery,
	"status":  ui.ViewStatus,
}

func main() {
	defaults := server.DefaultConfig()

	serve := flag.Bool("serve", false, "Run the web backend instead of the TUI")
	addr := flag.String("addr", envOr("PORT", defaults.Addr), "Listen address (PORT env accepted)")
	site := flag.String("site", defaults.SiteDir, "Directory of static site files")
	appID := flag.String("appid", os.Getenv("OWM_APPID"), "OpenWeatherMap app id (OWM_APPID env)")
	tileHost := flag.String("tile-host", "", "Weather tile host override")
	noHTTPS := flag.Bool("no-https", false, "Serve plain HTTP without redirecting")
	autocertDomain := flag.String("autocert-domain", "", "Obtain Let's Encrypt certificates for this domain")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	summary := flag.Bool("summary", false, "Print a text summary instead of the TUI")
	wait := flag.Duration("wait", defaultWait, "How long -summary waits for layer downloads")
	view := flag.String("view", "weather", "Initial view (weather, scale, model, status)")
	lat := flag.Float64("lat", 0, "Latitude of the weather pin")
	lon := flag.Float64("lon", 0, "Longitude of the weather pin")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("ls-orrery", version.Version)
		return
	}

	if *wait < minWait {
		*wait = minWait
	} else if *wait > maxWait {
		*wait = maxWait
	}

	initial, ok := views[strings.ToLower(*view)]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown view %q\n", *view)
		os.Exit(2)
	}

	logger := logging.New(logging.ParseLevel(*logLevel))

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := *summary || (!*serve && !isTTY)

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !*serve && !headless {
		logger.SetOutput(io.Discard)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetchOpts := []weather.FetcherOption{
		weather.WithAppID(*appID),
		weather.WithLogger(logger.With("fetch")),
	}
	if *tileHost != "" {
		fetchOpts = append(fetchOpts, weather.WithHost(*tileHost))
	}
	fetcher := weather.NewFetcher(fetchOpts...)
	if *appID == "" {
		logger.Warn("no OpenWeatherMap app id set; layer downloads will fail")
	}

	stateMgr := state.NewManager(state.DefaultConfig())

	switch {
	case *serve:
		cfg := defaults
		cfg.Addr = normalizeAddr(*addr)
		cfg.SiteDir = *site
		cfg.EnforceHTTPS = !*noHTTPS
		cfg.AutocertDomain = *autocertDomain
		if err := runServer(ctx, cfg, fetcher, stateMgr, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case headless:
		if err := runSummary(ctx, os.Stdout, fetcher, stateMgr, *wait); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		reg := weather.NewRegistry()
		reg.StartAll(ctx, stateMgr.Source(fetcher))

		opts := []ui.Option{ui.WithLogger(logger.With("ui")), ui.WithView(initial)}
		if isSet("lat") || isSet("lon") {
			opts = append(opts, ui.WithLocation(*lat, *lon))
		}
		p := tea.NewProgram(ui.New(reg, stateMgr, opts...), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			os.Exit(1)
		}
	}
}

func runServer(ctx context.Context, cfg server.Config, src weather.TileSource, stateMgr *state.Manager, logger *logging.Logger) error {
	srv := server.New(cfg, src, server.WithLogger(logger.With("server")), server.WithState(stateMgr))
	srv.Start(ctx)
	logger.Info("ls-orrery %s listening on %s", version.Version, cfg.Addr)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// runSummary downloads every layer once and prints the layer and body tables.
func runSummary(ctx context.Context, w io.Writer, src weather.TileSource, stateMgr *state.Manager, wait time.Duration) error {
	reg := weather.NewRegistry()
	reg.StartAll(ctx, stateMgr.Source(src))

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	for _, l := range weather.Layers {
		// Failures are reported through the state snapshot.
		_, _ = reg.Task(l).Wait(waitCtx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := stateMgr.Snapshot()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "LAYER\tPHASE\tTOOK\tERROR\n")
	for _, l := range snap.Layers {
		took := "-"
		if l.Duration > 0 {
			took = l.Duration.Round(time.Millisecond).String()
		}
		errText := l.Error
		if errText == "" {
			errText = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Layer.Label(), l.Phase, took, errText)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write layer table: %w", err)
	}
	fmt.Fprintln(w)

	entries := bodies.All()
	diam := make([]float64, len(entries))
	visible := make([]bool, len(entries))
	for i, e := range entries {
		diam[i] = e.Scientific.DiameterKm
		visible[i] = true
	}
	scales := orbit.RelativeScales(diam, visible, nil)

	fmt.Fprintf(tw, "BODY\tDIAMETER\tORBIT\tDAY\tSCALE\tMARKER\n")
	for i, e := range entries {
		b := e.Body()
		period := "-"
		if b.Orbits() {
			period = fmt.Sprintf("%.1f d", b.OrbitalPeriodDays)
		}
		day := fmt.Sprintf("%.1f h", b.RotationPeriodHours)
		if b.Retrograde() {
			day += " (retro)"
		}
		fmt.Fprintf(tw, "%s\t%.0f km\t%s\t%s\t%.4f\t%s\n",
			b.Name, b.DiameterKm, period, day, scales[i], e.Model.Marker)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write body table: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// normalizeAddr accepts a bare port as PORT usually carries one.
func normalizeAddr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
