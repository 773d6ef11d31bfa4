package cvtrack

import (
	"errors"
	"math"
	"testing"
)

func history(label string, id int, recs ...TrackRecord) TrackedObject {
	return TrackedObject{Label: label, ID: id, Track: recs}
}

func TestEvaluate(t *testing.T) {

	box := NewBoundingBox(0, 0, 10, 10)
	shifted := NewBoundingBox(5, 0, 10, 10)

	ref := []TrackedObject{history("car", 0,
		TrackRecord{0, true, box},
		TrackRecord{1, true, box},
		TrackRecord{2, false, box},
		TrackRecord{3, true, box},
	)}

	got := []TrackedObject{history("car", 0,
		TrackRecord{0, true, box},
		TrackRecord{1, true, shifted},
		TrackRecord{2, false, shifted},
		TrackRecord{3, false, box},
	)}

	score, err := Evaluate(got, ref, 0.5)

	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	// frame 0 matches, frame 1 IoU 1/3 misses, frame 2 both lost, frame 3
	// disagrees on status
	if score.Hits != 2 || score.Frames != 4 {
		t.Errorf("hits %d of %d, want 2 of 4", score.Hits, score.Frames)
	}

	if math.Abs(score.Accuracy()-0.5) > 1e-9 {
		t.Errorf("accuracy = %v", score.Accuracy())
	}

	wantIoU := (1 + 1.0/3) / 2

	if math.Abs(score.MeanIoU-wantIoU) > 1e-9 || math.Abs(score.Objects[0].MeanIoU-wantIoU) > 1e-9 {
		t.Errorf("mean IoU = %v, want %v", score.MeanIoU, wantIoU)
	}
}

func TestEvaluateMismatch(t *testing.T) {

	rec := TrackRecord{0, true, NewBoundingBox(0, 0, 1, 1)}

	tests := []struct {
		name     string
		got, ref []TrackedObject
	}{
		{"count", []TrackedObject{history("a", 0, rec)}, nil},
		{"label", []TrackedObject{history("a", 0, rec)}, []TrackedObject{history("b", 0, rec)}},
		{"length", []TrackedObject{history("a", 0, rec, rec)}, []TrackedObject{history("a", 0, rec)}},
	}

	for _, tc := range tests {
		if _, err := Evaluate(tc.got, tc.ref, 0.5); !errors.Is(err, ErrHistoryMismatch) {
			t.Errorf("%s: expected ErrHistoryMismatch, got %v", tc.name, err)
		}
	}
}
