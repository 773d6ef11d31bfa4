package mosse

import (
	"math"

	"gocv.io/x/gocv"
)

// Plane is a single channel grey level image with row major float pixels
type Plane struct {
	Width  int
	Height int
	Pix    []float64
}

// NewPlane returns a zero filled plane of the given size
func NewPlane(width, height int) Plane {
	return Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// Set sets the pixel value at x, y.  Out of bounds writes are ignored
func (p Plane) Set(x, y int, v float64) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}

	p.Pix[y*p.Width+x] = v
}

// At returns the pixel value at x, y replicating the border pixels for
// coordinates outside of the plane
func (p Plane) At(x, y int) float64 {

	if x < 0 {
		x = 0
	} else if x >= p.Width {
		x = p.Width - 1
	}

	if y < 0 {
		y = 0
	} else if y >= p.Height {
		y = p.Height - 1
	}

	return p.Pix[y*p.Width+x]
}

// planeFromMat converts an 8 bit grey, BGR or BGRA Mat into a Plane using
// gray as the conversion buffer
func planeFromMat(img gocv.Mat, gray *gocv.Mat) (Plane, bool) {

	if img.Empty() {
		return Plane{}, false
	}

	switch img.Channels() {
	case 1:
		img.CopyTo(gray)
	case 3:
		gocv.CvtColor(img, gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(img, gray, gocv.ColorBGRAToGray)
	default:
		return Plane{}, false
	}

	if gray.Type() != gocv.MatTypeCV8UC1 {
		return Plane{}, false
	}

	data := gray.ToBytes()
	p := NewPlane(gray.Cols(), gray.Rows())

	for i, v := range data[:len(p.Pix)] {
		p.Pix[i] = float64(v)
	}

	return p, true
}

// hanning returns a two dimensional Hanning window of the given size
func hanning(width, height int) []float64 {

	hx := hann(width)
	hy := hann(height)
	win := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			win[y*width+x] = hy[y] * hx[x]
		}
	}

	return win
}

func hann(n int) []float64 {

	v := make([]float64, n)

	if n == 1 {
		v[0] = 1
		return v
	}

	for i := range v {
		v[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	return v
}

// gaussian returns a plane with a Gaussian peak of the given sigma centered
// at (width/2, height/2)
func gaussian(width, height int, sigma float64) []complex128 {

	g := make([]complex128, width*height)
	cx := float64(width / 2)
	cy := float64(height / 2)
	denom := 2 * sigma * sigma

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			g[y*width+x] = complex(math.Exp(-(dx*dx+dy*dy)/denom), 0)
		}
	}

	return g
}
