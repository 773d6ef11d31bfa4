/*
Example program that buffers a video into memory and streams it to a web
browser as MJPEG, tracking the objects from an initial conditions file one
frame at a time with the streaming ObjectTracker API.  The video loops and
tracking is reset at the start of every loop.

	usage: stream [flags] video initial_conditions

Then open http://localhost:8080 in a browser.
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/logging"
	"github.com/swdee/go-cvtrack/render"
	"gocv.io/x/gocv"
)

// Demo holds the buffered video and tracking settings shared by all clients
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	fps       float64
	kind      cvtrack.TrackerKind
	workers   int
	objects   []cvtrack.ObjectSpec
	boxColor  render.Color
	textColor render.Color
	log       zerolog.Logger
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	src, err := cvtrack.OpenVideo(vidFile)

	if err != nil {
		return err
	}

	defer src.Close()

	d.fps = src.FPS()

	if d.fps <= 0 {
		d.fps = 30
	}

	for {
		img := gocv.NewMat()

		if ok := src.Next(&img); !ok {
			img.Close()
			break
		}

		d.vidBuffer = append(d.vidBuffer, img)
	}

	if len(d.vidBuffer) == 0 {
		return cvtrack.ErrEmptyVideo
	}

	d.log.Info().Int("frames", len(d.vidBuffer)).Float64("fps", d.fps).Msg("video buffered")

	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log := d.log.With().Str("client", r.RemoteAddr).Logger()
	log.Info().Msg("new client connection established")

	// every client has its own tracker as it keeps the state of the objects
	tracker := cvtrack.NewObjectTracker(d.kind, cvtrack.WithLogger(log),
		cvtrack.WithWorkers(d.workers))
	defer tracker.Close()

	tracker.SetObjectsToTrack(cvtrack.Boxes(d.objects))

	renderer := render.NewBoundingBoxRenderer(log)

	if err := renderer.SetBoxFormat(d.boxColor, 2); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := renderer.SetTextFormat(d.textColor, 2, 0.8); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	trail := render.NewTrail(trailLength(d.fps))
	style := render.DefaultTrailStyle()

	labels := make([]string, len(d.objects))

	for i, obj := range d.objects {
		labels[i] = fmt.Sprintf("%s_%d", obj.Label, obj.ID)
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	resImg := gocv.NewMat()
	defer resImg.Close()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / d.fps))
	defer ticker.Stop()

	// pointer to position in video buffer
	frameNum := -1

	for {
		select {
		case <-r.Context().Done():
			log.Info().Msg("client disconnected")
			return

		case <-ticker.C:
			frameNum++

			if frameNum > len(d.vidBuffer)-1 {
				// last frame reached so loop back to start of video
				frameNum = 0
				tracker.Reset()
				trail.Reset()
			}

			start := time.Now()
			statuses, boxes, err := tracker.Update(d.vidBuffer[frameNum])

			if err != nil {
				log.Error().Err(err).Int("frame", frameNum).Msg("tracking failed")
				return
			}

			elapsed := time.Since(start)

			// copy the source image and annotate the copy
			d.vidBuffer[frameNum].CopyTo(&resImg)

			trail.Update(boxes, statuses)
			render.DrawTrail(&resImg, trail, len(boxes), style)

			if err := renderer.RenderFrame(&resImg, boxes, statuses, labels); err != nil {
				log.Error().Err(err).Msg("error rendering frame")
				return
			}

			gocv.PutTextWithParams(&resImg,
				fmt.Sprintf("Frame: %d, Tracking: %.2fms, Algorithm: %s", frameNum,
					float64(elapsed)/float64(time.Millisecond), d.kind),
				image.Pt(4, resImg.Rows()-8), gocv.FontHersheySimplex, 0.5,
				render.Yellow.RGBA(), 1, gocv.LineAA, false)

			buf, err := gocv.IMEncode(".jpg", resImg)

			if err != nil {
				log.Error().Err(err).Msg("error encoding frame")
				return
			}

			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(buf.GetBytes())
			w.Write([]byte("\r\n"))
			buf.Close()

			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func main() {

	d := &Demo{
		boxColor:  render.Green,
		textColor: render.White,
	}

	algorithm := flag.String("a", "KCF", "Tracking algorithm [KCF|MOSSE|CSRT]")
	flag.Var(&d.boxColor, "b", "Box color, BGR separated by commas")
	flag.Var(&d.textColor, "t", "Text color, BGR separated by commas")
	verbosity := flag.Int("v", defaultVerbosity, "Output verbosity (0 - Error, 1 - Warning, 2 - Info, 3 - Debug)")
	flag.IntVar(&d.workers, "w", cvtrack.PerObject, "Tracker update workers, -1 for one per object, 0 for sequential")
	httpAddr := flag.String("addr", "localhost:8080", "HTTP Address to run server on, format address:port")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] video initial_conditions\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	log, closer, err := logging.New(os.Stderr, *verbosity, "")

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	defer closer.Close()

	d.log = log

	if d.kind, err = cvtrack.ParseTrackerKind(*algorithm); err != nil {
		log.Fatal().Err(err).Msg("invalid algorithm")
	}

	if d.objects, err = cvtrack.LoadObjects(flag.Arg(1)); err != nil {
		log.Fatal().Err(err).Msg("error reading initial conditions")
	}

	if err := d.bufferVideo(flag.Arg(0)); err != nil {
		log.Fatal().Err(err).Msg("error buffering video")
	}

	defer func() {
		for _, m := range d.vidBuffer {
			m.Close()
		}
	}()

	http.HandleFunc("/stream", d.Stream)

	// html page to show the stream
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body style="margin:0;background:#000"><img src="/stream" style="width:100%"></body></html>`)
	})

	log.Info().Str("addr", *httpAddr).Msg("open browser to view video stream")

	if err := http.ListenAndServe(*httpAddr, nil); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// defaultVerbosity logs errors only, matching the batch tracker
const defaultVerbosity = 0

// trailLength returns the number of trail points covering three seconds of
// video, at least one
func trailLength(fps float64) int {
	return max(1, int(fps*3))
}
