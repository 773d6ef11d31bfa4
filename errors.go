package cvtrack

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceOpen is returned when a video container can not be opened
	ErrSourceOpen = errors.New("video source could not be opened")
	// ErrEmptyVideo is returned when no frame could be read from a video
	ErrEmptyVideo = errors.New("no frame could be read from video")
	// ErrInitialization is returned when a single object tracker rejects its
	// initial bounding box
	ErrInitialization = errors.New("tracker initialization failed")
	// ErrParse is returned for a malformed initial conditions file
	ErrParse = errors.New("invalid initial conditions")
	// ErrTrackerStarted is returned when trackers are added to a MultiTracker
	// that has already been updated
	ErrTrackerStarted = errors.New("multi tracker already started")
	// ErrHistoryMismatch is returned when two tracking histories can not be
	// compared frame by frame
	ErrHistoryMismatch = errors.New("tracking histories do not match")
)

// InitError records which tracker of a MultiTracker failed to initialize
type InitError struct {
	// Index is the position the tracker would have taken in the MultiTracker
	Index int
	// Kind is the tracker algorithm requested
	Kind TrackerKind
	// Box is the rejected initial bounding box
	Box BoundingBox
	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *InitError) Error() string {
	return fmt.Sprintf("tracker %d (%s) box %v: %v", e.Index, e.Kind, e.Box, e.Err)
}

// Unwrap returns the underlying cause so errors.Is can match
// ErrInitialization
func (e *InitError) Unwrap() error {
	return e.Err
}
