package cvtrack

import (
	"errors"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// fakeTracker moves its box by (index+1) pixels right and one pixel down
// per frame number, where the frame number is encoded in the frame's first
// pixel.  It reports loss on frame numbers listed in lost.
type fakeTracker struct {
	step   int
	lost   map[int]bool
	box    BoundingBox
	closed *atomic.Int32
}

func (f *fakeTracker) Init(frame gocv.Mat, box BoundingBox) error {

	if !box.Valid() {
		return errors.New("invalid box")
	}

	f.box = box

	return nil
}

func (f *fakeTracker) Update(frame gocv.Mat) (BoundingBox, bool) {

	n := int(frame.GetUCharAt(0, 0))
	box := NewBoundingBox(f.box.X+n*f.step, f.box.Y+n, f.box.Width, f.box.Height)

	if f.lost[n] {
		return NewBoundingBox(-1, -1, 0, 0), false
	}

	return box, true
}

func (f *fakeTracker) Close() error {
	if f.closed != nil {
		f.closed.Add(1)
	}

	return nil
}

// fakeFactory builds fakeTrackers, the nth tracker built moves n+1 pixels
// per frame
type fakeFactory struct {
	built  int
	lost   map[int]map[int]bool
	closed atomic.Int32
}

func (ff *fakeFactory) new(kind TrackerKind) (SingleTracker, error) {

	t := &fakeTracker{step: ff.built + 1, lost: ff.lost[ff.built], closed: &ff.closed}
	ff.built++

	return t, nil
}

// numberedFrames returns frames whose first pixel holds their frame number
func numberedFrames(n int) []gocv.Mat {

	frames := make([]gocv.Mat, n)

	for i := range frames {
		frames[i] = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(i), 0, 0, 0),
			48, 64, gocv.MatTypeCV8UC3)
	}

	return frames
}

func closeFrames(frames []gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
