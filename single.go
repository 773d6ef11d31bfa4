package cvtrack

import (
	"errors"
	"fmt"
	"image"

	"github.com/swdee/go-cvtrack/mosse"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// SingleTracker is the capability of a single object tracker.  It is
// initialized once with a frame and bounding box and then advanced frame by
// frame, producing a new bounding box and a success flag.
type SingleTracker interface {
	// Init initializes the tracker with the first frame and the box of the
	// object to track
	Init(frame gocv.Mat, box BoundingBox) error
	// Update advances the tracker by one frame.  A false result means the
	// object was lost in this frame and the returned box is not
	// authoritative
	Update(frame gocv.Mat) (BoundingBox, bool)
	// Close frees the resources held by the tracker
	Close() error
}

// TrackerFactory constructs an uninitialized SingleTracker for the given
// algorithm
type TrackerFactory func(kind TrackerKind) (SingleTracker, error)

// NewSingleTracker is the default TrackerFactory which resolves each
// TrackerKind to its OpenCV implementation
func NewSingleTracker(kind TrackerKind) (SingleTracker, error) {

	switch kind {
	case KCF:
		return &cvTracker{tracker: contrib.NewTrackerKCF()}, nil
	case CSRT:
		return &cvTracker{tracker: contrib.NewTrackerCSRT()}, nil
	case MOSSE:
		return &cvTracker{tracker: mosse.New()}, nil
	}

	return nil, fmt.Errorf("unsupported tracker algorithm %s", kind)
}

// cvTracker adapts a gocv.Tracker to the SingleTracker interface
type cvTracker struct {
	tracker gocv.Tracker
	// last successfully tracked box, returned with loss on empty frames
	last BoundingBox
}

// Init checks the box geometry before handing it to the OpenCV tracker
func (c *cvTracker) Init(frame gocv.Mat, box BoundingBox) error {

	if err := checkInitBox(frame, box); err != nil {
		return err
	}

	if ok := c.tracker.Init(frame, box.Rect()); !ok {
		return errors.New("tracker rejected initial box")
	}

	c.last = box

	return nil
}

// Update runs the OpenCV tracker on the frame.  An empty frame is reported
// as a loss at the last tracked box without reaching OpenCV.
func (c *cvTracker) Update(frame gocv.Mat) (BoundingBox, bool) {

	if frame.Empty() {
		return c.last, false
	}

	rect, ok := c.tracker.Update(frame)
	box := BoxFromRect(rect)

	if ok {
		c.last = box
	}

	return box, ok
}

// Close frees the OpenCV tracker
func (c *cvTracker) Close() error {
	return c.tracker.Close()
}

// checkInitBox rejects degenerate boxes, empty frames and boxes lying
// wholly outside of the frame
func checkInitBox(frame gocv.Mat, box BoundingBox) error {

	if frame.Empty() {
		return errors.New("empty initial frame")
	}

	if !box.Valid() {
		return fmt.Errorf("degenerate box %v", box)
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())

	if !box.Rect().Overlaps(bounds) {
		return fmt.Errorf("box %v outside of %dx%d frame", box, frame.Cols(), frame.Rows())
	}

	return nil
}
