package cvtrack

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseObjects(t *testing.T) {

	data := []byte(`[
		{"object": "car", "id": 0, "coordinates": [10, 20, 30, 40]},
		{"object": "person", "id": 3, "coordinates": [-5, 0, 12, 24], "note": "ignored"}
	]`)

	got, err := ParseObjects(data)

	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	want := []ObjectSpec{
		{Label: "car", ID: 0, Box: NewBoundingBox(10, 20, 30, 40)},
		{Label: "person", ID: 3, Box: NewBoundingBox(-5, 0, 12, 24)},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected objects (-want +got):\n%s", diff)
	}

	empty, err := ParseObjects([]byte(`[]`))

	if err != nil || len(empty) != 0 {
		t.Errorf("empty array: got %v, %v", empty, err)
	}
}

func TestParseObjectsErrors(t *testing.T) {

	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"malformed", `[{"object": "car",`, "malformed"},
		{"not array", `{"object": "car"}`, "not an array"},
		{"entry not object", `[1]`, "entry 0"},
		{"missing object", `[{"id": 0, "coordinates": [1, 2, 3, 4]}]`, `"object"`},
		{"object not string", `[{"object": 5, "id": 0, "coordinates": [1, 2, 3, 4]}]`, `"object"`},
		{"missing id", `[{"object": "car", "coordinates": [1, 2, 3, 4]}]`, `"id"`},
		{"fractional id", `[{"object": "car", "id": 1.5, "coordinates": [1, 2, 3, 4]}]`, `"id"`},
		{"string id", `[{"object": "car", "id": "1", "coordinates": [1, 2, 3, 4]}]`, `"id"`},
		{"missing coordinates", `[{"object": "car", "id": 1}]`, `"coordinates"`},
		{"short coordinates", `[{"object": "car", "id": 1, "coordinates": [1, 2, 3]}]`, "expected 4"},
		{"float coordinate", `[{"object": "car", "id": 1, "coordinates": [1, 2.5, 3, 4]}]`, "value 1"},
		{"id out of range", `[{"object": "car", "id": 3000000000, "coordinates": [1, 2, 3, 4]}]`, `"id" is out of range`},
		{"coordinate out of range", `[{"object": "car", "id": 1, "coordinates": [1, -3000000000, 3, 4]}]`, "value 1 is out of range"},
		{"zero width", `[{"object": "car", "id": 1, "coordinates": [1, 2, 0, 4]}]`, "non-positive"},
		{"second entry", `[{"object": "car", "id": 1, "coordinates": [1, 2, 3, 4]}, {"object": "car"}]`, "entry 1"},
	}

	for _, tc := range tests {
		_, err := ParseObjects([]byte(tc.data))

		if !errors.Is(err, ErrParse) {
			t.Errorf("%s: expected ErrParse, got %v", tc.name, err)
			continue
		}

		if !strings.Contains(err.Error(), tc.msg) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.msg)
		}
	}
}

func TestLoadObjectsMissingFile(t *testing.T) {

	_, err := LoadObjects(filepath.Join(t.TempDir(), "missing.json"))

	if err == nil || errors.Is(err, ErrParse) {
		t.Errorf("expected a read error, got %v", err)
	}
}

func TestWriteTrackings(t *testing.T) {

	objects := []TrackedObject{{Label: "car", ID: 2, Track: []TrackRecord{
		{Frame: 0, Success: true, Box: NewBoundingBox(1, 2, 3, 4)},
		{Frame: 1, Success: false, Box: NewBoundingBox(1, 2, 3, 4)},
	}}}

	var buf bytes.Buffer

	if err := WriteTrackings(&buf, objects); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded []map[string]any

	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not json: %v", err)
	}

	want := []map[string]any{{
		"object": "car",
		"id":     float64(2),
		"track": []any{
			map[string]any{"frame": float64(0), "track_status": true,
				"coordinates": []any{float64(1), float64(2), float64(3), float64(4)}},
			map[string]any{"frame": float64(1), "track_status": false,
				"coordinates": []any{float64(1), float64(2), float64(3), float64(4)}},
		},
	}}

	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("unexpected json layout (-want +got):\n%s", diff)
	}
}

func TestSaveTrackings(t *testing.T) {

	path := filepath.Join(t.TempDir(), "out.json")
	objects := []TrackedObject{{Label: "dog", ID: 1, Track: []TrackRecord{}}}

	if err := SaveTrackings(path, objects); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)

	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var got []TrackedObject

	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(objects, got); diff != "" {
		t.Errorf("saved trackings (-want +got):\n%s", diff)
	}
}
