package cvtrack

import (
	"encoding/json"
	"fmt"
	"image"
)

// BoundingBox is an axis aligned rectangle in frame pixel coordinates with
// (x, y, width, height) format and a top-left origin.  Coordinates may be
// negative or exceed the frame bounds, no clamping is performed.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewBoundingBox creates a new BoundingBox with given coordinates
func NewBoundingBox(x, y, width, height int) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// BoxFromRect converts an image.Rectangle to a BoundingBox
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// Valid reports whether the box has a positive width and height
func (b BoundingBox) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// BRX returns the bottom-right x coordinate of the box
func (b BoundingBox) BRX() int {
	return b.X + b.Width
}

// BRY returns the bottom-right y coordinate of the box
func (b BoundingBox) BRY() int {
	return b.Y + b.Height
}

// Center returns the center point of the box
func (b BoundingBox) Center() image.Point {
	return image.Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

// Area returns the area of the box, zero for invalid boxes
func (b BoundingBox) Area() int {
	if !b.Valid() {
		return 0
	}

	return b.Width * b.Height
}

// IoU calculates the Intersection over Union (Jaccard index) with another
// box
func (b BoundingBox) IoU(other BoundingBox) float64 {

	inter := b.Rect().Intersect(other.Rect())

	if inter.Empty() {
		return 0
	}

	interArea := inter.Dx() * inter.Dy()
	union := b.Area() + other.Area() - interArea

	if union <= 0 {
		return 0
	}

	return float64(interArea) / float64(union)
}

// String returns the box as a (x, y, width, height) tuple
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.X, b.Y, b.Width, b.Height)
}

// MarshalJSON encodes the box as a [x, y, width, height] array
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X, b.Y, b.Width, b.Height})
}

// UnmarshalJSON decodes a [x, y, width, height] array
func (b *BoundingBox) UnmarshalJSON(data []byte) error {

	var coords [4]int

	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}

	*b = BoundingBox{X: coords[0], Y: coords[1], Width: coords[2], Height: coords[3]}

	return nil
}
