package cvtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tidwall/gjson"
)

// ObjectSpec is the initial condition of one object to track
type ObjectSpec struct {
	// Label is a free form class name such as "car"
	Label string
	// ID identifies the object within its label
	ID int
	// Box is the object location in the first frame
	Box BoundingBox
}

// TrackRecord is the tracking result of one object in one frame
type TrackRecord struct {
	Frame   int         `json:"frame"`
	Success bool        `json:"track_status"`
	Box     BoundingBox `json:"coordinates"`
}

// TrackedObject is the full tracking history of one object, with one
// record per frame of the video starting at frame 0
type TrackedObject struct {
	Label string        `json:"object"`
	ID    int           `json:"id"`
	Track []TrackRecord `json:"track"`
}

// Boxes returns the initial bounding boxes of the given objects
func Boxes(objects []ObjectSpec) []BoundingBox {

	boxes := make([]BoundingBox, len(objects))

	for i, o := range objects {
		boxes[i] = o.Box
	}

	return boxes
}

// LoadObjects reads an initial conditions JSON file
func LoadObjects(path string) ([]ObjectSpec, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading initial conditions: %w", err)
	}

	return ParseObjects(data)
}

// ParseObjects parses initial conditions in the form
//
//	[{"object": "car", "id": 0, "coordinates": [x, y, w, h]}, ...]
//
// Every entry is validated and the first problem found is returned wrapping
// ErrParse.
func ParseObjects(data []byte) ([]ObjectSpec, error) {

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrParse)
	}

	root := gjson.ParseBytes(data)

	if !root.IsArray() {
		return nil, fmt.Errorf("%w: top level value is not an array", ErrParse)
	}

	entries := root.Array()
	objects := make([]ObjectSpec, 0, len(entries))

	for i, entry := range entries {

		if !entry.IsObject() {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrParse, i)
		}

		label := entry.Get("object")

		if !label.Exists() {
			return nil, fmt.Errorf("%w: entry %d missing key \"object\"", ErrParse, i)
		}

		if label.Type != gjson.String {
			return nil, fmt.Errorf("%w: entry %d key \"object\" is not a string", ErrParse, i)
		}

		id := entry.Get("id")

		if !id.Exists() {
			return nil, fmt.Errorf("%w: entry %d missing key \"id\"", ErrParse, i)
		}

		idVal, err := integer(id)

		if err != nil {
			return nil, fmt.Errorf("%w: entry %d key \"id\" %v", ErrParse, i, err)
		}

		coords := entry.Get("coordinates")

		if !coords.Exists() {
			return nil, fmt.Errorf("%w: entry %d missing key \"coordinates\"", ErrParse, i)
		}

		box, err := parseCoordinates(coords)

		if err != nil {
			return nil, fmt.Errorf("%w: entry %d key \"coordinates\" %v", ErrParse, i, err)
		}

		objects = append(objects, ObjectSpec{
			Label: label.String(),
			ID:    idVal,
			Box:   box,
		})
	}

	return objects, nil
}

func parseCoordinates(v gjson.Result) (BoundingBox, error) {

	if !v.IsArray() {
		return BoundingBox{}, fmt.Errorf("is not an array")
	}

	vals := v.Array()

	if len(vals) != 4 {
		return BoundingBox{}, fmt.Errorf("has %d values, expected 4", len(vals))
	}

	var c [4]int

	for i, val := range vals {
		n, err := integer(val)

		if err != nil {
			return BoundingBox{}, fmt.Errorf("value %d %v", i, err)
		}

		c[i] = n
	}

	box := NewBoundingBox(c[0], c[1], c[2], c[3])

	if !box.Valid() {
		return BoundingBox{}, fmt.Errorf("has non-positive width or height")
	}

	return box, nil
}

// integer returns the value of a json number that holds a whole number
// within the 32 bit range
func integer(v gjson.Result) (int, error) {

	if v.Type != gjson.Number {
		return 0, errors.New("is not an integer")
	}

	f := v.Float()

	if f != math.Trunc(f) {
		return 0, errors.New("is not an integer")
	}

	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("is out of range, limit is +/-%d", math.MaxInt32)
	}

	return int(v.Int()), nil
}

// WriteTrackings writes tracking histories as indented JSON
func WriteTrackings(w io.Writer, objects []TrackedObject) error {

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(objects); err != nil {
		return fmt.Errorf("error encoding trackings: %w", err)
	}

	return nil
}

// SaveTrackings writes tracking histories to a JSON file
func SaveTrackings(path string, objects []TrackedObject) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating trackings file: %w", err)
	}

	if err := WriteTrackings(f, objects); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
