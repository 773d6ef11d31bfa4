package cvtrack

import (
	"encoding/json"
	"image"
	"math"
	"testing"
)

func TestBoundingBoxGeometry(t *testing.T) {

	b := NewBoundingBox(10, 20, 30, 40)

	if b.BRX() != 40 || b.BRY() != 60 {
		t.Errorf("bottom right = (%d, %d), want (40, 60)", b.BRX(), b.BRY())
	}

	if got := b.Center(); got != image.Pt(25, 40) {
		t.Errorf("center = %v", got)
	}

	if got := BoxFromRect(b.Rect()); got != b {
		t.Errorf("rect conversion gave %v", got)
	}

	if b.String() != "(10, 20, 30, 40)" {
		t.Errorf("string = %s", b.String())
	}

	if NewBoundingBox(0, 0, 0, 5).Valid() || NewBoundingBox(0, 0, 5, -1).Valid() {
		t.Errorf("degenerate boxes reported valid")
	}
}

func TestBoundingBoxIoU(t *testing.T) {

	tests := []struct {
		a, b BoundingBox
		want float64
	}{
		{NewBoundingBox(0, 0, 10, 10), NewBoundingBox(0, 0, 10, 10), 1},
		{NewBoundingBox(0, 0, 10, 10), NewBoundingBox(5, 0, 10, 10), 50.0 / 150.0},
		{NewBoundingBox(0, 0, 10, 10), NewBoundingBox(20, 20, 5, 5), 0},
		{NewBoundingBox(0, 0, 10, 10), NewBoundingBox(0, 0, 0, 0), 0},
	}

	for _, tc := range tests {
		if got := tc.a.IoU(tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("IoU(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestBoundingBoxJSON(t *testing.T) {

	data, err := json.Marshal(NewBoundingBox(-1, 2, 3, 4))

	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(data) != "[-1,2,3,4]" {
		t.Errorf("marshal = %s", data)
	}

	var b BoundingBox

	if err := json.Unmarshal([]byte("[5, 6, 7, 8]"), &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if b != NewBoundingBox(5, 6, 7, 8) {
		t.Errorf("unmarshal = %v", b)
	}
}

func TestParseTrackerKind(t *testing.T) {

	for _, k := range TrackerKinds {
		got, err := ParseTrackerKind(k.String())

		if err != nil || got != k {
			t.Errorf("ParseTrackerKind(%s) = %v, %v", k, got, err)
		}
	}

	if got, err := ParseTrackerKind("csrt"); err != nil || got != CSRT {
		t.Errorf("lower case name not accepted: %v, %v", got, err)
	}

	if _, err := ParseTrackerKind("BOOSTING"); err == nil {
		t.Errorf("expected error for unsupported algorithm")
	}

	if TrackerKind(9).Valid() {
		t.Errorf("unknown kind reported valid")
	}
}
