package render

import (
	"image"
	"image/color"
	"sync"

	cvtrack "github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the trail line uses the object's color.  If set
	// to false then LineColor is used
	LineSame      bool
	LineColor     Color
	LineThickness int
	// CircleSame defines if the current center point circle uses the
	// object's color.  If set to false then CircleColor is used
	CircleSame   bool
	CircleColor  Color
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail keeps the most recent box center points of each object, indexed by
// the object's position in the tracked set
type Trail struct {
	// size is the maximum number of most recent points to keep
	size    int
	history map[int][]image.Point
	sync.Mutex
}

// NewTrail returns a trail keeping at most size points per object
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int][]image.Point),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int][]image.Point)
}

// Update adds the center of every successfully tracked box
func (t *Trail) Update(boxes []cvtrack.BoundingBox, statuses []bool) {
	t.Lock()
	defer t.Unlock()

	for i, box := range boxes {
		if !statuses[i] {
			continue
		}

		points := append(t.history[i], box.Center())

		// drop oldest point when history is exceeded
		if len(points) > t.size {
			points = points[1:]
		}

		t.history[i] = points
	}
}

// Points returns a copy of the point history of the object at index
func (t *Trail) Points(index int) []image.Point {
	t.Lock()
	defer t.Unlock()

	return append([]image.Point(nil), t.history[index]...)
}

// DrawTrail draws the trail lines of the first n objects on the image
func DrawTrail(img *gocv.Mat, trail *Trail, n int, style TrailStyle) {

	for i := 0; i < n; i++ {

		objClr := ObjectColor(i)

		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor.RGBA()
		}

		if !style.CircleSame {
			circleClr = style.CircleColor.RGBA()
		}

		drawPoints(img, trail.Points(i), lineClr, circleClr, style)
	}
}

func drawPoints(img *gocv.Mat, points []image.Point, lineClr, circleClr color.RGBA,
	style TrailStyle) {

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		gocv.Line(img, points[i-1], points[i], lineClr, style.LineThickness)
	}

	// center point circle on current box
	gocv.Circle(img, points[len(points)-1], style.CircleRadius, circleClr, -1)
}
