/*
Package main is the mission timeline tool. It loads a flight schedule from
YAML, JSON or CSV and either writes one day of it as an SVG timeline, serves
it to browser clients over HTTP, or opens it in an interactive terminal
viewer.

Every front end drives the same renderer: assignment bars on a shared time
axis, on-station bands, clustered refuel and strike markers, flight status
colors at a reference time, and the pan/zoom state that goes with them.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"missiontimeline/internal/config"
	"missiontimeline/internal/dataset"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/render"
	"missiontimeline/internal/server"
	"missiontimeline/internal/timescale"
	"missiontimeline/internal/tui"
)

// exportOptions is the view state of a one-shot SVG export.
type exportOptions struct {
	Reference time.Time
	Transform timescale.Transform
	ScrollTop float64
	// Viewport is the visible body height; zero draws every row.
	Viewport float64
}

// getOutputFilename returns the SVG path: the explicit output when given,
// otherwise the data file name with an .svg extension.
func getOutputFilename(dataFile, outputFile string) string {
	if outputFile != "" {
		return outputFile
	}

	base := filepath.Base(dataFile)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".svg"
}

// newLogger builds the process logger. The server logs JSON, everything else
// logs text.
func newLogger(w io.Writer, debug, jsonFormat bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

var referenceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseReference parses the --at flag. Times without an offset are read in
// loc.
func parseReference(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range referenceLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid reference time %q, want e.g. 2025-03-14T09:00:00Z", s)
}

// selectRows resolves the day and category flags and returns the day with its
// filtered rows.
func selectRows(ds *dataset.Dataset, dayID, category, search string) (mission.Day, []mission.Assignment, error) {
	var day mission.Day
	var err error
	if dayID == "" {
		day, err = ds.DefaultDay()
	} else {
		day, err = ds.Day(dayID)
	}
	if err != nil {
		return mission.Day{}, nil, err
	}
	categoryID, ok := ds.CategoryID(category)
	if !ok {
		return mission.Day{}, nil, fmt.Errorf("unknown category %q", category)
	}
	return day, dataset.Filter(ds.Assignments, day.DayID, categoryID, search), nil
}

// writeTimeline renders rows as a standalone SVG document to w.
func writeTimeline(w io.Writer, cfg config.Config, logger *slog.Logger, ds *dataset.Dataset, day mission.Day, rows []mission.Assignment, opts exportOptions) error {
	ro := cfg.RenderOptions()
	ro.Logger = logger
	ro.IDPrefix = "tl"
	tl := render.New(ro, render.Callbacks{})
	tl.SetData(day, rows, ds.Index)
	tl.SetReferenceTime(opts.Reference)
	tl.Controller().SetTransform(opts.Transform)

	viewport := opts.Viewport
	if viewport <= 0 {
		viewport = float64(len(rows)) * ro.RowHeight
	}
	tl.SetScroll(opts.ScrollTop, viewport)

	logger.Debug("exporting timeline",
		"day", day.DayID,
		"rows", len(rows),
		"k", tl.Controller().Transform().K,
		"x", tl.Controller().Transform().X,
		"reference", tl.ReferenceTime())
	return tl.WriteSVG(w)
}

func main() {
	// Parse command line arguments
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	dataFile := flag.String("data", "", "Schedule file: .yaml, .json or .csv (required)")
	configFile := flag.String("config", "", "YAML configuration file (optional)")
	outputFile := flag.String("output", "", "Output SVG filename (optional)")
	dayFlag := flag.String("day", "", "Day id to show (default: earliest day)")
	categoryFlag := flag.String("category", "", "Category id or name to show (default: all)")
	searchFlag := flag.String("search", "", "Only show sorties matching this text")
	atFlag := flag.String("at", "", "Reference time for flight status (default: now, clamped to the day)")
	scaleFlag := flag.Float64("scale", 1, "Zoom factor of the exported timeline")
	translateFlag := flag.Float64("translate", 0, "Horizontal offset of the exported timeline in pixels")
	scrollFlag := flag.Float64("scroll", 0, "Vertical scroll offset of the exported timeline in pixels")
	viewportFlag := flag.Float64("viewport", 0, "Visible body height of the exported timeline (default: all rows)")
	serveFlag := flag.Bool("serve", false, "Serve the schedule over HTTP instead of writing an SVG")
	tuiFlag := flag.Bool("tui", false, "Open the interactive terminal viewer")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  --data <file>       Schedule file: .yaml, .json or .csv (required)\n")
		fmt.Fprintf(os.Stderr, "  --config <file>     YAML configuration file (optional)\n")
		fmt.Fprintf(os.Stderr, "  --output <file>     Output SVG filename (optional)\n")
		fmt.Fprintf(os.Stderr, "  --day <id>          Day to show (default: earliest day)\n")
		fmt.Fprintf(os.Stderr, "  --category <name>   Category id or name to show (default: all)\n")
		fmt.Fprintf(os.Stderr, "  --search <text>     Only show sorties matching this text\n")
		fmt.Fprintf(os.Stderr, "  --at <time>         Reference time for flight status\n")
		fmt.Fprintf(os.Stderr, "  --scale <k>         Zoom factor of the exported timeline\n")
		fmt.Fprintf(os.Stderr, "  --translate <px>    Horizontal offset of the exported timeline\n")
		fmt.Fprintf(os.Stderr, "  --scroll <px>       Vertical scroll offset of the exported timeline\n")
		fmt.Fprintf(os.Stderr, "  --viewport <px>     Visible body height (default: all rows)\n")
		fmt.Fprintf(os.Stderr, "  --serve             Serve the schedule over HTTP\n")
		fmt.Fprintf(os.Stderr, "  --tui               Open the interactive terminal viewer\n")
		fmt.Fprintf(os.Stderr, "  --debug             Enable debug logging\n")
		fmt.Fprintf(os.Stderr, "\nIf no config file is specified, default settings will be used.\n")
		fmt.Fprintf(os.Stderr, "If no output file is specified, the data filename with .svg extension will be used.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --data schedule.yaml --day d1 --at 2025-03-14T09:00:00Z --output d1.svg\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --data schedule.yaml --config config.yaml --serve\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --data assignments.csv --tui\n", os.Args[0])
	}

	flag.Parse()

	if *dataFile == "" {
		fmt.Fprintf(os.Stderr, "Error: data file is required. Use --data to specify the file.\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if *serveFlag && *tuiFlag {
		fmt.Fprintf(os.Stderr, "Error: --serve and --tui are mutually exclusive.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// The terminal viewer owns the screen, so it only logs when debugging,
	// and then to a file.
	logOut := io.Writer(os.Stderr)
	if *tuiFlag {
		logOut = io.Discard
		if *debugFlag {
			f, err := os.OpenFile("missiontimeline.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			logOut = f
		}
	}
	logger := newLogger(logOut, *debugFlag, *serveFlag)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("configuration loaded", "file", *configFile, "width", cfg.Layout.Width, "zone", loc.String())

	ds, err := dataset.Load(*dataFile, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading schedule: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("schedule loaded",
		"file", *dataFile,
		"days", len(ds.Days),
		"categories", len(ds.Categories),
		"assignments", len(ds.Assignments))

	if *serveFlag {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(server.Options{Dataset: ds, Config: cfg, Logger: logger})
		if err := srv.ServeTCP(ctx, cfg.Server.BindAddress); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	day, rows, err := selectRows(ds, *dayFlag, *categoryFlag, *searchFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ref, err := parseReference(*atFlag, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *tuiFlag {
		m := tui.New(tui.Options{
			Config:      cfg,
			Day:         day,
			Assignments: rows,
			Categories:  ds.Categories,
			Index:       ds.Index,
			Reference:   ref,
			Logger:      logger,
		})
		if err := tui.Run(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error running viewer: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no assignments on %s match the filters\n", day.DayID)
	}
	fmt.Printf("Loaded %d assignments for %s from %s\n", len(rows), day.Label, *dataFile)

	outputPath := getOutputFilename(*dataFile, *outputFile)
	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing SVG file: %v\n", err)
		os.Exit(1)
	}
	err = writeTimeline(f, cfg, logger, ds, day, rows, exportOptions{
		Reference: ref,
		Transform: timescale.Transform{K: *scaleFlag, X: *translateFlag},
		ScrollTop: *scrollFlag,
		Viewport:  *viewportFlag,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing SVG file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Timeline SVG generated successfully: %s\n", outputPath)
}
