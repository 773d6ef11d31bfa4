package cvtrack

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/swdee/go-cvtrack/motion"
	"gocv.io/x/gocv"
)

// State of an ObjectTracker in streaming mode
type State int

const (
	// Uninitialized means the next Update builds the trackers
	Uninitialized State = iota
	// Tracking means the trackers are built and Update advances them
	Tracking
)

// String returns the state name
func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}

	return "uninitialized"
}

// unknownProgressInterval is the progress logging interval in frames when
// the video frame count is not known
const unknownProgressInterval = 100

// ObjectTracker tracks a set of objects through a video with a single
// tracker algorithm.  It runs either as a batch over a whole VideoSource or
// in streaming mode where the caller supplies one frame at a time.
type ObjectTracker struct {
	kind  TrackerKind
	opts  options
	log   zerolog.Logger
	runID uuid.UUID

	// streaming mode
	boxes []BoundingBox
	multi *MultiTracker
	state State
}

// NewObjectTracker returns an ObjectTracker using trackers of the given
// kind
func NewObjectTracker(kind TrackerKind, opts ...Option) *ObjectTracker {

	o := applyOptions(opts)

	return &ObjectTracker{
		kind: kind,
		opts: o,
		log: o.logger.With().Str("component", "object_tracker").
			Str("algorithm", kind.String()).Logger(),
	}
}

// Kind returns the tracker algorithm
func (o *ObjectTracker) Kind() TrackerKind {
	return o.kind
}

// RunID returns the identifier of the most recent tracking run
func (o *ObjectTracker) RunID() uuid.UUID {
	return o.runID
}

// TrackFile opens the video at path and tracks the objects through it
func (o *ObjectTracker) TrackFile(ctx context.Context, path string,
	objects []ObjectSpec) ([]TrackedObject, error) {

	src, err := OpenVideo(path)

	if err != nil {
		return nil, err
	}

	defer src.Close()

	return o.TrackObjects(ctx, src, objects)
}

// TrackObjects tracks the objects through every frame of the source and
// returns one history per object in input order.  Each history holds one
// record per frame, with frame 0 being the initial box.  Losing an object
// is recorded in its history and is not an error.  If the context is
// cancelled no results are returned.
func (o *ObjectTracker) TrackObjects(ctx context.Context, src VideoSource,
	objects []ObjectSpec) ([]TrackedObject, error) {

	log, opts := o.startRun()

	frame := gocv.NewMat()
	defer frame.Close()

	if !src.Next(&frame) {
		return nil, ErrEmptyVideo
	}

	multi := newMultiTracker(opts)
	defer multi.Close()

	for _, obj := range objects {
		if err := multi.Add(o.kind, frame, obj.Box); err != nil {
			return nil, err
		}
	}

	results := make([]TrackedObject, len(objects))
	last := Boxes(objects)

	var predictors []*motion.Predictor

	if o.opts.lossPolicy == LossPredicted {
		predictors = make([]*motion.Predictor, len(objects))
	}

	for i, obj := range objects {
		results[i] = TrackedObject{
			Label: obj.Label,
			ID:    obj.ID,
			Track: []TrackRecord{{Frame: 0, Success: true, Box: obj.Box}},
		}

		if predictors != nil {
			predictors[i] = motion.NewPredictor()
			_ = predictors[i].Observe(obj.Box.Rect())
		}
	}

	frameCount := src.FrameCount()
	interval := progressInterval(frameCount)

	log.Info().Int("objects", len(objects)).Int("frame_count", frameCount).
		Int("workers", multi.Workers()).Msg("tracking started")

	n := 1

	for ; src.Next(&frame); n++ {

		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("frame", n).Msg("tracking cancelled")
			return nil, err
		}

		statuses, boxes := multi.Update(frame)

		for i := range results {
			box := boxes[i]

			if statuses[i] {
				last[i] = box

				if predictors != nil {
					if err := predictors[i].Observe(box.Rect()); err != nil {
						log.Debug().Err(err).Int("object", i).Msg("motion update failed")
					}
				}

			} else {
				log.Warn().Int("frame", n).Str("object", results[i].Label).
					Int("id", results[i].ID).Msg("tracking failure detected")

				box = o.lostBox(box, last[i], predictors, i)
			}

			results[i].Track = append(results[i].Track, TrackRecord{
				Frame:   n,
				Success: statuses[i],
				Box:     box,
			})
		}

		if n%interval == 0 {
			log.Info().Int("frame", n).Int("frame_count", frameCount).
				Msg("tracking progress")
		}
	}

	if frameCount > 0 && n != frameCount {
		log.Warn().Int("frames_read", n).Int("frame_count", frameCount).
			Msg("video frame count differs from frames read")
	}

	log.Info().Int("frames", n).Msg("tracking complete")

	return results, nil
}

// lostBox selects the box recorded for a lost object according to the loss
// policy
func (o *ObjectTracker) lostBox(raw, last BoundingBox, predictors []*motion.Predictor,
	i int) BoundingBox {

	switch o.opts.lossPolicy {
	case LossRaw:
		return raw

	case LossPredicted:
		if r, ok := predictors[i].Predict(); ok {
			return BoxFromRect(r)
		}
	}

	return last
}

// startRun assigns a new run id and returns the run's logger together with
// the options for its MultiTracker, both tagged with the run id
func (o *ObjectTracker) startRun() (zerolog.Logger, options) {

	o.runID = uuid.New()

	opts := o.opts
	opts.logger = opts.logger.With().Str("run_id", o.runID.String()).Logger()

	log := o.log.With().Str("run_id", o.runID.String()).Logger()

	return log, opts
}

// SetObjectsToTrack sets the boxes to track in streaming mode.  The
// trackers are built from the next frame passed to Update, so any tracking
// in progress is discarded.
func (o *ObjectTracker) SetObjectsToTrack(boxes []BoundingBox) {
	o.Reset()
	o.boxes = append([]BoundingBox(nil), boxes...)
}

// Update advances streaming mode by one frame.  The first call after
// SetObjectsToTrack or Reset initializes the trackers on the frame and
// reports every object as tracked at its initial box.  Later calls return
// the live tracker results in the order the boxes were given.
func (o *ObjectTracker) Update(frame gocv.Mat) ([]bool, []BoundingBox, error) {

	if o.state == Tracking {
		statuses, boxes := o.multi.Update(frame)
		return statuses, boxes, nil
	}

	log, opts := o.startRun()

	multi := newMultiTracker(opts)

	for _, box := range o.boxes {
		if err := multi.Add(o.kind, frame, box); err != nil {
			_ = multi.Close()
			return nil, nil, err
		}
	}

	o.multi = multi
	o.state = Tracking

	log.Info().Int("objects", len(o.boxes)).Msg("streaming trackers initialized")

	statuses := make([]bool, len(o.boxes))

	for i := range statuses {
		statuses[i] = true
	}

	return statuses, append([]BoundingBox{}, o.boxes...), nil
}

// Reset discards the trackers so the next Update initializes again from
// the boxes last given to SetObjectsToTrack
func (o *ObjectTracker) Reset() {

	if o.state == Uninitialized {
		return
	}

	if err := o.multi.Close(); err != nil {
		o.log.Warn().Err(err).Msg("error closing trackers")
	}

	o.multi = nil
	o.state = Uninitialized

	o.log.Debug().Msg("streaming trackers reset")
}

// State returns the streaming mode state
func (o *ObjectTracker) State() State {
	return o.state
}

// Close releases any streaming mode trackers
func (o *ObjectTracker) Close() error {

	if o.multi == nil {
		return nil
	}

	err := o.multi.Close()
	o.multi = nil
	o.state = Uninitialized

	return err
}

// progressInterval returns the number of frames between progress log
// lines, a tenth of the video or a fixed interval if the length is unknown
func progressInterval(frameCount int) int {

	if frameCount <= 0 {
		return unknownProgressInterval
	}

	return max(1, frameCount/10)
}
