package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     Color
	Thickness int
	LineType  gocv.LineType
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.75,
		Color:     White,
		Thickness: 2,
		LineType:  gocv.Line8,
	}
}

// TTFFont is an OpenType face used to draw labels with characters outside
// the Hershey font set, such as CJK object names
type TTFFont struct {
	face font.Face
}

// LoadTTF loads a TrueType or OpenType font file at the given point size
func LoadTTF(path string, size float64) (*TTFFont, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	return ParseTTF(fontBytes, size)
}

// ParseTTF creates a face from font file data
func ParseTTF(data []byte, size float64) (*TTFFont, error) {

	f, err := opentype.Parse(data)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &TTFFont{face: face}, nil
}

// Close releases the face
func (t *TTFFont) Close() error {
	return t.face.Close()
}

// draw writes the labels onto a transparent overlay which is then blended
// additively onto the image
func (t *TTFFont) draw(img *gocv.Mat, labels []label, clr Color) error {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr.RGBA()),
		Face: t.face,
	}

	for _, l := range labels {
		dr.Dot = fixed.Point26_6{
			X: fixed.Int26_6(l.pos.X * 64),
			Y: fixed.Int26_6(l.pos.Y * 64),
		}
		dr.DrawString(l.text)
	}

	overlay, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil || overlay.Empty() {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer overlay.Close()

	gocv.CvtColor(overlay, &overlay, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, overlay, 1.0, 0, img)

	return nil
}
