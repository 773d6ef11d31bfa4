package render

import (
	"context"
	"errors"
	"fmt"

	cvtrack "github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
)

// ErrHistoryLength is returned when the tracking histories do not line up
// with the frames of the video being rendered
var ErrHistoryLength = errors.New("tracking history length does not match video")

// RenderVideo draws the tracking histories onto every frame of the source
// and writes the frames to the sink.  All histories must have the same
// length.  When the source knows its frame count it must equal that
// length.
func (r *BoundingBoxRenderer) RenderVideo(ctx context.Context, src cvtrack.VideoSource,
	sink cvtrack.VideoSink, objects []cvtrack.TrackedObject) error {

	length := -1

	for i, obj := range objects {
		if length == -1 {
			length = len(obj.Track)
			continue
		}

		if len(obj.Track) != length {
			return fmt.Errorf("%w: object %d has %d records, object 0 has %d",
				ErrHistoryLength, i, len(obj.Track), length)
		}
	}

	if fc := src.FrameCount(); fc > 0 && length >= 0 && fc != length {
		return fmt.Errorf("%w: video has %d frames, history has %d",
			ErrHistoryLength, fc, length)
	}

	labels := make([]string, len(objects))

	for i, obj := range objects {
		labels[i] = fmt.Sprintf("%s_%d", obj.Label, obj.ID)
	}

	if r.trail != nil {
		r.trail.Reset()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	boxes := make([]cvtrack.BoundingBox, len(objects))
	statuses := make([]bool, len(objects))

	n := 0

	for ; src.Next(&frame); n++ {

		if err := ctx.Err(); err != nil {
			return err
		}

		if length >= 0 && n >= length {
			return fmt.Errorf("%w: video has more than %d frames", ErrHistoryLength, length)
		}

		for i, obj := range objects {
			boxes[i] = obj.Track[n].Box
			statuses[i] = obj.Track[n].Success
		}

		if r.trail != nil {
			r.trail.Update(boxes, statuses)
			DrawTrail(&frame, r.trail, len(objects), r.style)
		}

		if err := r.RenderFrame(&frame, boxes, statuses, labels); err != nil {
			return fmt.Errorf("error rendering frame %d: %w", n, err)
		}

		if err := sink.Write(frame); err != nil {
			return fmt.Errorf("error writing frame %d: %w", n, err)
		}
	}

	if length >= 0 && n < length {
		r.log.Warn().Int("frames", n).Int("history", length).
			Msg("video ended before tracking history")
	}

	r.log.Info().Int("frames", n).Int("objects", len(objects)).Msg("video rendered")

	return nil
}
