/*
Example program that tracks the objects given in an initial conditions file
through a video and writes an annotated copy of the video.

	usage: track [flags] video initial_conditions

	go run example/track/main.go -a CSRT -b 0,255,0 -t 255,255,255 \
	  -o output -v 2 ../data/input.mkv ../data/initial_conditions.json
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/logging"
	"github.com/swdee/go-cvtrack/render"
	"github.com/swdee/go-cvtrack/report"
	"github.com/swdee/go-cvtrack/store"
)

// config holds the command line settings
type config struct {
	video      string
	objects    string
	algorithm  string
	boxColor   render.Color
	textColor  render.Color
	outName    string
	outPath    string
	verbosity  int
	logFile    bool
	workers    int
	jsonFile   string
	dbFile     string
	plotFile   string
	chartFile  string
	fontFile   string
	trail      int
	lossPolicy string
}

func main() {

	cfg := config{
		boxColor:  render.Green,
		textColor: render.White,
	}

	// read in cli flags
	flag.StringVar(&cfg.algorithm, "a", "KCF", "Tracking algorithm [KCF|MOSSE|CSRT]")
	flag.Var(&cfg.boxColor, "b", "Box color, BGR separated by commas")
	flag.Var(&cfg.textColor, "t", "Text color, BGR separated by commas")
	flag.StringVar(&cfg.outName, "o", "out", "Output video file name, without extension")
	flag.StringVar(&cfg.outPath, "p", ".", "Output directory")
	flag.IntVar(&cfg.verbosity, "v", 0, "Output verbosity (0 - Error, 1 - Warning, 2 - Info, 3 - Debug)")
	flag.BoolVar(&cfg.logFile, "l", false, "Also write the log to <out path>/<out name>.log")
	flag.IntVar(&cfg.workers, "w", cvtrack.PerObject, "Tracker update workers, -1 for one per object, 0 for sequential")
	flag.StringVar(&cfg.jsonFile, "j", "", "Write the tracking histories to this JSON file")
	flag.StringVar(&cfg.dbFile, "db", "", "Record the tracking run in this SQLite database")
	flag.StringVar(&cfg.plotFile, "plot", "", "Save a trajectory plot to this PNG file")
	flag.StringVar(&cfg.chartFile, "chart", "", "Save a track status chart to this HTML file")
	flag.StringVar(&cfg.fontFile, "font", "", "TTF font used to draw labels")
	flag.IntVar(&cfg.trail, "trail", 0, "Number of center points to draw as a trail behind each object")
	flag.StringVar(&cfg.lossPolicy, "loss", "last", "Box recorded for lost objects [last|raw|predict]")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] video initial_conditions\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg.video = flag.Arg(0)
	cfg.objects = flag.Arg(1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {

	logPath := ""

	if cfg.logFile {
		logPath = filepath.Join(cfg.outPath, cfg.outName+".log")
	}

	log, closer, err := logging.New(os.Stderr, cfg.verbosity, logPath)

	if err != nil {
		return err
	}

	defer closer.Close()

	kind, err := cvtrack.ParseTrackerKind(cfg.algorithm)

	if err != nil {
		return err
	}

	policy, err := cvtrack.ParseLossPolicy(cfg.lossPolicy)

	if err != nil {
		return err
	}

	// configure the renderer before any frame is processed so formatting
	// mistakes are reported early
	renderer := render.NewBoundingBoxRenderer(log)

	if err := renderer.SetBoxFormat(cfg.boxColor, 2); err != nil {
		return err
	}

	if err := renderer.SetTextFormat(cfg.textColor, 2, 0.8); err != nil {
		return err
	}

	if cfg.fontFile != "" {
		font, err := render.LoadTTF(cfg.fontFile, 20)

		if err != nil {
			return err
		}

		defer font.Close()
		renderer.SetFont(font)
	}

	renderer.SetTrail(cfg.trail, render.DefaultTrailStyle())

	log.Info().Msg("1/3 Reading initial conditions file")

	objects, err := cvtrack.LoadObjects(cfg.objects)

	if err != nil {
		return err
	}

	log.Info().Msg("2/3 Tracking objects in video")

	tracker := cvtrack.NewObjectTracker(kind,
		cvtrack.WithLogger(log),
		cvtrack.WithWorkers(cfg.workers),
		cvtrack.WithLossPolicy(policy),
	)

	start := time.Now()

	trackings, err := tracker.TrackFile(ctx, cfg.video, objects)

	if err != nil {
		return err
	}

	log.Info().Dur("elapsed", time.Since(start)).Str("run_id", tracker.RunID().String()).
		Msg("tracking finished")

	log.Info().Msg("3/3 Rendering output video")

	if err := renderVideo(ctx, cfg, renderer, trackings, log); err != nil {
		return err
	}

	return writeOutputs(ctx, cfg, tracker, trackings, log)
}

// renderVideo reads the video again and writes the annotated copy
func renderVideo(ctx context.Context, cfg config, renderer *render.BoundingBoxRenderer,
	trackings []cvtrack.TrackedObject, log zerolog.Logger) error {

	src, err := cvtrack.OpenVideo(cfg.video)

	if err != nil {
		return err
	}

	defer src.Close()

	sink, err := cvtrack.CreateVideo(cfg.outPath, cfg.outName+".avi", src.FPS(),
		src.Width(), src.Height())

	if err != nil {
		return err
	}

	renderErr := renderer.RenderVideo(ctx, src, sink, trackings)

	if err := sink.Close(); err != nil && renderErr == nil {
		renderErr = err
	}

	if renderErr != nil {
		return renderErr
	}

	log.Info().Str("path", sink.Path()).Msg("output video written")

	return nil
}

// writeOutputs saves the optional JSON, database, plot and chart outputs
func writeOutputs(ctx context.Context, cfg config, tracker *cvtrack.ObjectTracker,
	trackings []cvtrack.TrackedObject, log zerolog.Logger) error {

	var errs []error

	if cfg.jsonFile != "" {
		errs = append(errs, cvtrack.SaveTrackings(cfg.jsonFile, trackings))
	}

	if cfg.dbFile != "" {
		errs = append(errs, saveRun(ctx, cfg, tracker, trackings, log))
	}

	if cfg.plotFile != "" {
		errs = append(errs, report.PlotTrajectories(cfg.plotFile, trackings,
			report.DefaultWidth, report.DefaultHeight))
	}

	if cfg.chartFile != "" {
		errs = append(errs, writeChart(cfg.chartFile, trackings))
	}

	return errors.Join(errs...)
}

func saveRun(ctx context.Context, cfg config, tracker *cvtrack.ObjectTracker,
	trackings []cvtrack.TrackedObject, log zerolog.Logger) error {

	db, err := store.Open(cfg.dbFile, log)

	if err != nil {
		return err
	}

	defer db.Close()

	frames := 0

	if len(trackings) > 0 {
		frames = len(trackings[0].Track)
	}

	return db.SaveRun(ctx, store.Run{
		ID:         tracker.RunID(),
		Video:      cfg.video,
		Algorithm:  tracker.Kind().String(),
		FrameCount: frames,
		CreatedAt:  time.Now(),
		Objects:    trackings,
	})
}

func writeChart(path string, trackings []cvtrack.TrackedObject) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating chart file: %w", err)
	}

	if err := report.WriteStatusChart(f, trackings); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
