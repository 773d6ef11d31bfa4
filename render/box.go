// Package render draws tracking results onto video frames and writes
// annotated videos.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"
	cvtrack "github.com/swdee/go-cvtrack"
	"gocv.io/x/gocv"
)

// ErrConfiguration is returned for invalid box or text formatting
var ErrConfiguration = errors.New("invalid render configuration")

// WarningText is overlaid on frames where any object was lost
const WarningText = "Tracking failure: one or more objects could not be tracked"

const (
	// labelBelow is the baseline offset of a label under its box
	labelBelow = 30
	// labelAbove is the baseline offset of a label over its box, used when
	// the label would fall off the bottom of the frame
	labelAbove = 20
)

// warningPosition is the baseline origin of the WarningText
var warningPosition = image.Pt(60, 50)

// label is text waiting to be drawn once all boxes are on the frame
type label struct {
	text string
	pos  image.Point
}

// BoundingBoxRenderer draws tracked boxes and their labels on frames
type BoundingBoxRenderer struct {
	log       zerolog.Logger
	boxColor  Color
	lineWidth int
	font      Font
	ttf       *TTFFont
	trail     *Trail
	style     TrailStyle
}

// NewBoundingBoxRenderer returns a renderer with yellow boxes five pixels
// wide and white labels
func NewBoundingBoxRenderer(log zerolog.Logger) *BoundingBoxRenderer {

	r := &BoundingBoxRenderer{
		log:       log.With().Str("component", "renderer").Logger(),
		boxColor:  Yellow,
		lineWidth: 5,
		font:      DefaultFont(),
		style:     DefaultTrailStyle(),
	}

	r.log.Debug().Msg("renderer initialized")

	return r
}

// SetBoxFormat sets the box color and line width.  On error the previous
// format is kept.
func (r *BoundingBoxRenderer) SetBoxFormat(c Color, lineWidth int) error {

	if lineWidth <= 0 {
		return fmt.Errorf("%w: line width %d must be positive", ErrConfiguration, lineWidth)
	}

	if !c.Valid() {
		return fmt.Errorf("%w: box color %v has a channel outside [0, 255]", ErrConfiguration, c)
	}

	r.boxColor = c
	r.lineWidth = lineWidth

	r.log.Debug().Ints("color", c[:]).Int("line_width", lineWidth).Msg("set box format")

	return nil
}

// SetTextFormat sets the label color, stroke thickness and font scale.  On
// error the previous format is kept.
func (r *BoundingBoxRenderer) SetTextFormat(c Color, thickness int, scale float64) error {

	if thickness <= 0 {
		return fmt.Errorf("%w: text thickness %d must be positive", ErrConfiguration, thickness)
	}

	if scale <= 0 {
		return fmt.Errorf("%w: text scale %v must be positive", ErrConfiguration, scale)
	}

	if !c.Valid() {
		return fmt.Errorf("%w: text color %v has a channel outside [0, 255]", ErrConfiguration, c)
	}

	r.font.Color = c
	r.font.Thickness = thickness
	r.font.Scale = scale

	r.log.Debug().Ints("color", c[:]).Int("thickness", thickness).
		Float64("scale", scale).Msg("set text format")

	return nil
}

// BoxFormat returns the box color and line width
func (r *BoundingBoxRenderer) BoxFormat() (Color, int) {
	return r.boxColor, r.lineWidth
}

// TextFormat returns the label color, thickness and scale
func (r *BoundingBoxRenderer) TextFormat() (Color, int, float64) {
	return r.font.Color, r.font.Thickness, r.font.Scale
}

// SetFont draws labels with the given OpenType face instead of the Hershey
// font, nil restores the Hershey font
func (r *BoundingBoxRenderer) SetFont(f *TTFFont) {
	r.ttf = f
}

// SetTrail enables drawing the last size center points of every object
// when rendering a video.  A size of zero disables trails.
func (r *BoundingBoxRenderer) SetTrail(size int, style TrailStyle) {

	if size <= 0 {
		r.trail = nil
		return
	}

	r.trail = NewTrail(size)
	r.style = style
}

// RenderFrame draws the boxes of successfully tracked objects with a label
// under each box.  If any object was lost the warning text is drawn.  With
// nil labels objects are named object_<index>.
func (r *BoundingBoxRenderer) RenderFrame(img *gocv.Mat, boxes []cvtrack.BoundingBox,
	statuses []bool, labels []string) error {

	if len(boxes) != len(statuses) {
		return fmt.Errorf("got %d boxes and %d statuses", len(boxes), len(statuses))
	}

	if labels != nil && len(labels) != len(boxes) {
		return fmt.Errorf("got %d boxes and %d labels", len(boxes), len(labels))
	}

	// keep a record of all box labels so they are drawn as the top most
	// layer
	pending := make([]label, 0, len(boxes))
	lost := false

	for i, box := range boxes {

		if !statuses[i] {
			lost = true
			continue
		}

		gocv.Rectangle(img, box.Rect(), r.boxColor.RGBA(), r.lineWidth)

		text := fmt.Sprintf("object_%d", i)

		if labels != nil {
			text = labels[i]
		}

		pending = append(pending, label{
			text: text,
			pos:  labelPosition(box, img.Rows()),
		})
	}

	if lost {
		pending = append(pending, label{text: WarningText, pos: warningPosition})
	}

	if r.ttf != nil {
		return r.ttf.draw(img, pending, r.font.Color)
	}

	for _, l := range pending {
		gocv.PutTextWithParams(img, l.text, l.pos, r.font.Face, r.font.Scale,
			r.font.Color.RGBA(), r.font.Thickness, r.font.LineType, false)
	}

	return nil
}

// labelPosition places the label under the box unless that is at or past
// the bottom of the frame, in which case it goes over the box
func labelPosition(box cvtrack.BoundingBox, frameHeight int) image.Point {

	under := box.BRY() + labelBelow

	if under >= frameHeight {
		return image.Pt(box.X, box.Y-labelAbove)
	}

	return image.Pt(box.X, under)
}
