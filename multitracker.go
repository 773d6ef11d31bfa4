package cvtrack

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// MultiTracker is a collection of independent single object trackers which
// are advanced together one frame at a time.  Results are always reported
// in the order the trackers were added, regardless of whether the updates
// run sequentially or across a pool of workers.
type MultiTracker struct {
	opts     options
	log      zerolog.Logger
	trackers []SingleTracker
	// pool is created on the first Update when running concurrently
	pool *workerPool
	// started is set on the first Update, after which no trackers may be
	// added
	started bool
}

// NewMultiTracker returns an empty MultiTracker
func NewMultiTracker(opts ...Option) *MultiTracker {
	return newMultiTracker(applyOptions(opts))
}

func newMultiTracker(o options) *MultiTracker {
	return &MultiTracker{
		opts: o,
		log:  o.logger.With().Str("component", "multi_tracker").Logger(),
	}
}

// Add constructs a tracker of the given kind, initializes it with the frame
// and box and appends it to the collection.  The order of addition defines
// the index of the tracker's results.
func (m *MultiTracker) Add(kind TrackerKind, frame gocv.Mat, box BoundingBox) error {

	if m.started {
		return ErrTrackerStarted
	}

	index := len(m.trackers)

	tracker, err := m.opts.factory(kind)

	if err != nil {
		return &InitError{Index: index, Kind: kind, Box: box,
			Err: fmt.Errorf("%w: %w", ErrInitialization, err)}
	}

	if err := tracker.Init(frame, box); err != nil {
		_ = tracker.Close()
		return &InitError{Index: index, Kind: kind, Box: box,
			Err: fmt.Errorf("%w: %w", ErrInitialization, err)}
	}

	m.trackers = append(m.trackers, tracker)

	m.log.Debug().Int("index", index).Str("algorithm", kind.String()).
		Stringer("box", box).Msg("tracker added")

	return nil
}

// Len returns the number of trackers
func (m *MultiTracker) Len() int {
	return len(m.trackers)
}

// Workers returns the number of workers the updates are spread across, zero
// when updating sequentially
func (m *MultiTracker) Workers() int {

	switch {
	case len(m.trackers) == 0, m.opts.workers == Sequential:
		return 0
	case m.opts.workers == PerObject, m.opts.workers > len(m.trackers):
		return len(m.trackers)
	}

	return m.opts.workers
}

// Update advances every tracker by one frame and returns the track status
// and bounding box of each, index aligned with the order of addition.  A
// lost object is reported with a false status, it never stops the other
// trackers from being updated.
func (m *MultiTracker) Update(frame gocv.Mat) ([]bool, []BoundingBox) {

	m.started = true

	statuses := make([]bool, len(m.trackers))
	boxes := make([]BoundingBox, len(m.trackers))

	workers := m.Workers()

	if workers == 0 {
		for i, t := range m.trackers {
			boxes[i], statuses[i] = t.Update(frame)
		}

		return statuses, boxes
	}

	if m.pool == nil {
		m.pool = newWorkerPool(m.trackers, workers)
		m.log.Debug().Int("workers", m.pool.size()).Int("trackers", len(m.trackers)).
			Msg("worker pool started")
	}

	m.pool.update(frame, statuses, boxes)

	return statuses, boxes
}

// Close stops the worker pool and frees all trackers.  The MultiTracker is
// empty afterwards and Close may be called again safely.
func (m *MultiTracker) Close() error {

	var errs []error

	if m.pool != nil {
		errs = append(errs, m.pool.Close())
		m.pool = nil
	}

	for _, t := range m.trackers {
		errs = append(errs, t.Close())
	}

	m.trackers = nil
	m.started = true

	return errors.Join(errs...)
}
