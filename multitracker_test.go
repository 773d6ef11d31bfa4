package cvtrack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type frameResult struct {
	Statuses []bool
	Boxes    []BoundingBox
}

func runMultiTracker(t *testing.T, workers int, objects int) []frameResult {

	frames := numberedFrames(6)
	defer closeFrames(frames)

	ff := &fakeFactory{lost: map[int]map[int]bool{
		1: {2: true, 3: true},
		3: {5: true},
	}}

	m := NewMultiTracker(WithWorkers(workers), WithFactory(ff.new))
	defer m.Close()

	for i := 0; i < objects; i++ {
		if err := m.Add(CSRT, frames[0], NewBoundingBox(10*i, 5, 8, 8)); err != nil {
			t.Fatalf("add tracker %d failed: %v", i, err)
		}
	}

	var out []frameResult

	for _, frame := range frames[1:] {
		statuses, boxes := m.Update(frame)

		if len(statuses) != objects || len(boxes) != objects {
			t.Fatalf("got %d statuses and %d boxes, want %d", len(statuses), len(boxes), objects)
		}

		out = append(out, frameResult{statuses, boxes})
	}

	return out
}

func TestMultiTrackerStrategiesAgree(t *testing.T) {

	want := runMultiTracker(t, Sequential, 5)

	// tracker 1 moves 2px per frame and is lost on frames 2 and 3
	if want[0].Boxes[1] != NewBoundingBox(12, 6, 8, 8) || !want[0].Statuses[1] {
		t.Fatalf("unexpected sequential result %v", want[0])
	}

	if want[1].Statuses[1] || want[2].Statuses[1] || !want[3].Statuses[1] {
		t.Fatalf("unexpected loss pattern %v", want)
	}

	for _, workers := range []int{PerObject, 1, 2, 3, 10} {
		got := runMultiTracker(t, workers, 5)

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("workers=%d results differ from sequential (-want +got):\n%s", workers, diff)
		}
	}
}

func TestMultiTrackerEmpty(t *testing.T) {

	frames := numberedFrames(1)
	defer closeFrames(frames)

	for _, workers := range []int{Sequential, PerObject, 4} {
		m := NewMultiTracker(WithWorkers(workers))

		statuses, boxes := m.Update(frames[0])

		if statuses == nil || boxes == nil || len(statuses) != 0 || len(boxes) != 0 {
			t.Errorf("workers=%d expected empty non-nil results, got %v %v", workers, statuses, boxes)
		}

		if err := m.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}
}

func TestMultiTrackerWorkers(t *testing.T) {

	frames := numberedFrames(1)
	defer closeFrames(frames)

	tests := []struct {
		workers int
		objects int
		want    int
	}{
		{Sequential, 4, 0},
		{PerObject, 4, 4},
		{2, 4, 2},
		{8, 4, 4},
		{PerObject, 0, 0},
	}

	for _, tc := range tests {
		ff := &fakeFactory{}
		m := NewMultiTracker(WithWorkers(tc.workers), WithFactory(ff.new))

		for i := 0; i < tc.objects; i++ {
			if err := m.Add(KCF, frames[0], NewBoundingBox(0, 0, 4, 4)); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}

		if got := m.Workers(); got != tc.want {
			t.Errorf("workers=%d objects=%d: Workers() = %d, want %d",
				tc.workers, tc.objects, got, tc.want)
		}

		m.Close()
	}
}

func TestMultiTrackerAddAfterUpdate(t *testing.T) {

	frames := numberedFrames(2)
	defer closeFrames(frames)

	ff := &fakeFactory{}
	m := NewMultiTracker(WithFactory(ff.new))
	defer m.Close()

	if err := m.Add(MOSSE, frames[0], NewBoundingBox(1, 1, 4, 4)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	m.Update(frames[1])

	if err := m.Add(MOSSE, frames[1], NewBoundingBox(1, 1, 4, 4)); !errors.Is(err, ErrTrackerStarted) {
		t.Errorf("expected ErrTrackerStarted, got %v", err)
	}
}

func TestMultiTrackerInitFailure(t *testing.T) {

	frames := numberedFrames(1)
	defer closeFrames(frames)

	ff := &fakeFactory{}
	m := NewMultiTracker(WithFactory(ff.new))
	defer m.Close()

	if err := m.Add(KCF, frames[0], NewBoundingBox(1, 1, 4, 4)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := m.Add(KCF, frames[0], NewBoundingBox(1, 1, 0, 4))

	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}

	var initErr *InitError

	if !errors.As(err, &initErr) {
		t.Fatalf("expected *InitError, got %T", err)
	}

	if initErr.Index != 1 || initErr.Kind != KCF {
		t.Errorf("unexpected init error %+v", initErr)
	}

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	// the rejected tracker is freed
	if got := ff.closed.Load(); got != 1 {
		t.Errorf("closed %d trackers, want 1", got)
	}
}

func TestMultiTrackerClose(t *testing.T) {

	frames := numberedFrames(2)
	defer closeFrames(frames)

	ff := &fakeFactory{}
	m := NewMultiTracker(WithWorkers(2), WithFactory(ff.new))

	for i := 0; i < 3; i++ {
		if err := m.Add(CSRT, frames[0], NewBoundingBox(i, i, 4, 4)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	m.Update(frames[1])

	if err := m.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if got := ff.closed.Load(); got != 3 {
		t.Errorf("closed %d trackers, want 3", got)
	}

	if m.Len() != 0 {
		t.Errorf("Len() after close = %d", m.Len())
	}

	if err := m.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}
