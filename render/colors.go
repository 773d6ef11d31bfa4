package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a blue, green, red triple with each channel in [0, 255]
type Color [3]int

// Valid reports whether every channel is within [0, 255]
func (c Color) Valid() bool {
	for _, v := range c {
		if v < 0 || v > 255 {
			return false
		}
	}

	return true
}

// ParseColor parses a "B,G,R" string such as "0,255,0"
func ParseColor(s string) (Color, error) {

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })

	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: color %q must have three channels", ErrConfiguration, s)
	}

	var c Color

	for i, p := range parts {
		v, err := strconv.Atoi(p)

		if err != nil {
			return Color{}, fmt.Errorf("%w: color channel %q is not an integer", ErrConfiguration, p)
		}

		c[i] = v
	}

	if !c.Valid() {
		return Color{}, fmt.Errorf("%w: color %v has a channel outside [0, 255]", ErrConfiguration, c)
	}

	return c, nil
}

// String formats the color as "B,G,R"
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Set implements flag.Value
func (c *Color) Set(s string) error {

	v, err := ParseColor(s)

	if err != nil {
		return err
	}

	*c = v

	return nil
}

// RGBA converts the color for use with the gocv drawing functions
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c[2]), G: uint8(c[1]), B: uint8(c[0]), A: 255}
}

var (
	Black  = Color{0, 0, 0}
	White  = Color{255, 255, 255}
	Green  = Color{0, 255, 0}
	Yellow = Color{0, 255, 255}
	Pink   = Color{255, 0, 255}

	// objectColors are the colors used to tell object trails apart
	objectColors = []color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 52, G: 69, B: 147, A: 255},   // #344593
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 0, G: 24, B: 236, A: 255},    // #0018EC
		{R: 132, G: 56, B: 255, A: 255},  // #8438FF
		{R: 82, G: 0, B: 133, A: 255},    // #520085
		{R: 255, G: 149, B: 200, A: 255}, // #FF95C8
		{R: 255, G: 55, B: 199, A: 255},  // #FF37C7
		{R: 255, G: 157, B: 151, A: 255}, // #FF9D97
		{R: 44, G: 153, B: 168, A: 255},  // #2C99A8
		{R: 61, G: 219, B: 134, A: 255},  // #3DDB86
		{R: 203, G: 56, B: 255, A: 255},  // #CB38FF
		{R: 146, G: 204, B: 23, A: 255},  // #92CC17
	}
)

// ObjectColor returns a distinct color for the object at index
func ObjectColor(index int) color.RGBA {
	return objectColors[index%len(objectColors)]
}
