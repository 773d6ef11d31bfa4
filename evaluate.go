package cvtrack

import "fmt"

// ObjectScore is the agreement of one object's history with a reference
type ObjectScore struct {
	Label string
	ID    int
	// Frames compared
	Frames int
	// Hits are frames where both histories report loss, or both report
	// success with boxes overlapping by at least the threshold
	Hits int
	// MeanIoU over frames where both histories report success
	MeanIoU float64
}

// Accuracy is the fraction of frames that were hits
func (s ObjectScore) Accuracy() float64 {
	if s.Frames == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Frames)
}

// Score summarises the comparison of a set of histories against reference
// histories
type Score struct {
	Objects []ObjectScore
	Frames  int
	Hits    int
	MeanIoU float64
}

// Accuracy is the fraction of all compared frames that were hits
func (s Score) Accuracy() float64 {
	if s.Frames == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Frames)
}

// Evaluate compares tracking histories against reference histories of the
// same objects, in the same order and of the same length
func Evaluate(got, reference []TrackedObject, threshold float64) (Score, error) {

	if len(got) != len(reference) {
		return Score{}, fmt.Errorf("%w: %d objects, reference has %d",
			ErrHistoryMismatch, len(got), len(reference))
	}

	var (
		score   Score
		iouSum  float64
		iouSeen int
	)

	for i := range got {
		g, r := got[i], reference[i]

		if g.Label != r.Label || g.ID != r.ID {
			return Score{}, fmt.Errorf("%w: object %d is %s/%d, reference is %s/%d",
				ErrHistoryMismatch, i, g.Label, g.ID, r.Label, r.ID)
		}

		if len(g.Track) != len(r.Track) {
			return Score{}, fmt.Errorf("%w: object %d has %d frames, reference has %d",
				ErrHistoryMismatch, i, len(g.Track), len(r.Track))
		}

		obj := ObjectScore{Label: g.Label, ID: g.ID, Frames: len(g.Track)}

		var sum float64
		var seen int

		for f := range g.Track {
			a, b := g.Track[f], r.Track[f]

			switch {
			case a.Success && b.Success:
				iou := a.Box.IoU(b.Box)
				sum += iou
				seen++

				if iou >= threshold {
					obj.Hits++
				}

			case !a.Success && !b.Success:
				obj.Hits++
			}
		}

		if seen > 0 {
			obj.MeanIoU = sum / float64(seen)
		}

		score.Objects = append(score.Objects, obj)
		score.Frames += obj.Frames
		score.Hits += obj.Hits
		iouSum += sum
		iouSeen += seen
	}

	if iouSeen > 0 {
		score.MeanIoU = iouSum / float64(iouSeen)
	}

	return score, nil
}
