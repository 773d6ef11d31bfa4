package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	cvtrack "github.com/swdee/go-cvtrack"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())

	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	t.Cleanup(func() { s.Close() })

	return s
}

func testRun(created time.Time) Run {
	return Run{
		ID:         uuid.New(),
		Video:      "input.mkv",
		Algorithm:  "CSRT",
		FrameCount: 2,
		CreatedAt:  created,
		Objects: []cvtrack.TrackedObject{
			{Label: "car", ID: 3, Track: []cvtrack.TrackRecord{
				{Frame: 0, Success: true, Box: cvtrack.NewBoundingBox(1, 2, 3, 4)},
				{Frame: 1, Success: false, Box: cvtrack.NewBoundingBox(-1, 2, 3, 4)},
			}},
			{Label: "car", ID: 1, Track: []cvtrack.TrackRecord{
				{Frame: 0, Success: true, Box: cvtrack.NewBoundingBox(10, 20, 30, 40)},
				{Frame: 1, Success: true, Box: cvtrack.NewBoundingBox(11, 21, 30, 40)},
			}},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {

	s := openTestStore(t)
	ctx := context.Background()

	run := testRun(time.Unix(0, 1700000000123456789))

	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.LoadRun(ctx, run.ID)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("created at %v, want %v", got.CreatedAt, run.CreatedAt)
	}

	got.CreatedAt = run.CreatedAt

	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("loaded run differs (-want +got):\n%s", diff)
	}
}

func TestLoadRunNotFound(t *testing.T) {

	s := openTestStore(t)

	if _, err := s.LoadRun(context.Background(), uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSaveRunDuplicate(t *testing.T) {

	s := openTestStore(t)
	ctx := context.Background()
	run := testRun(time.Now())

	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := s.SaveRun(ctx, run); err == nil {
		t.Errorf("expected error saving duplicate run")
	}

	// failed save leaves the first copy intact
	got, err := s.LoadRun(ctx, run.ID)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(got.Objects) != 2 || len(got.Objects[0].Track) != 2 {
		t.Errorf("unexpected run after failed save: %+v", got)
	}
}

func TestListRuns(t *testing.T) {

	s := openTestStore(t)
	ctx := context.Background()

	older := testRun(time.Unix(100, 0))
	newer := testRun(time.Unix(200, 0))

	for _, r := range []Run{older, newer} {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx)

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}

	if runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Errorf("runs not newest first: %v, %v", runs[0].ID, runs[1].ID)
	}

	if runs[0].Objects != nil {
		t.Errorf("listing should not load histories")
	}
}

func TestReopenKeepsSchema(t *testing.T) {

	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path, zerolog.Nop())

	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	run := testRun(time.Now())

	if err := s.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	s.Close()

	s, err = Open(path, zerolog.Nop())

	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	defer s.Close()

	version, dirty, err := s.Version()

	if err != nil || version != 1 || dirty {
		t.Errorf("version = %d dirty = %v err = %v, want 1 clean", version, dirty, err)
	}

	if _, err := s.LoadRun(context.Background(), run.ID); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}
