// Package mosse implements the Minimum Output Sum of Squared Error (MOSSE)
// correlation filter tracker of Bolme et al. "Visual Object Tracking using
// Adaptive Correlation Filters" (CVPR 2010).
//
// The tracker satisfies the gocv.Tracker interface so it can be used
// interchangeably with the KCF and CSRT trackers of gocv contrib.
package mosse

import (
	"image"
	"math"
	"math/cmplx"

	"gocv.io/x/gocv"
)

const (
	// Sigma of the Gaussian target response
	Sigma = 2.0
	// LearningRate is the weight given to the newest frame when updating
	// the filter
	LearningRate = 0.2
	// PSRThreshold is the minimum peak to sidelobe ratio of the correlation
	// response for an update to be considered a successful track
	PSRThreshold = 5.7
	// MinSize is the smallest box width or height accepted by Init
	MinSize = 4

	// regularization added to the filter denominator
	eps = 1e-5
	// half width of the window around the peak excluded from the sidelobe
	sidelobeExclusion = 5
)

// perturbations are the rotations (radians) and scales of the initial patch
// used to train the first filter
var perturbations = []struct{ angle, scale float64 }{
	{0, 1},
	{-0.1, 0.95}, {-0.1, 1.05},
	{-0.05, 0.95}, {-0.05, 1.05},
	{0.05, 0.95}, {0.05, 1.05},
	{0.1, 0.95}, {0.1, 1.05},
}

// Tracker is a MOSSE single object tracker
type Tracker struct {
	// size of the tracked patch, fixed at Init
	width, height int
	// center of the tracked patch
	cx, cy int
	// window is the Hanning window applied to every patch
	window []float64
	// target is the Fourier transform of the desired Gaussian response
	target []complex128
	// a and b are the numerator and denominator of the filter
	a, b []complex128
	fft  *fft2
	// gray is the conversion buffer for incoming frames
	gray        gocv.Mat
	initialized bool
}

// New returns an uninitialized MOSSE tracker
func New() *Tracker {
	return &Tracker{
		gray: gocv.NewMat(),
	}
}

// Init initializes the tracker with the image and the bounding box of the
// object to track.  It returns false if the box is degenerate or lies
// wholly outside of the image.
func (t *Tracker) Init(img gocv.Mat, box image.Rectangle) bool {

	p, ok := planeFromMat(img, &t.gray)

	if !ok {
		return false
	}

	return t.InitPlane(p, box)
}

// Update locates the object in the next image and returns its bounding box.
// The returned bool is false when the object was lost, in which case the
// last known box is returned.
func (t *Tracker) Update(img gocv.Mat) (image.Rectangle, bool) {

	p, ok := planeFromMat(img, &t.gray)

	if !ok {
		return t.box(), false
	}

	return t.UpdatePlane(p)
}

// Close frees the conversion buffer
func (t *Tracker) Close() error {
	return t.gray.Close()
}

// InitPlane initializes the tracker from a grey level plane
func (t *Tracker) InitPlane(p Plane, box image.Rectangle) bool {

	w, h := box.Dx(), box.Dy()

	if w < MinSize || h < MinSize || p.Width < 1 || p.Height < 1 {
		return false
	}

	if !box.Overlaps(image.Rect(0, 0, p.Width, p.Height)) {
		return false
	}

	t.width, t.height = w, h
	t.cx = box.Min.X + w/2
	t.cy = box.Min.Y + h/2
	t.fft = newFFT2(w, h)
	t.window = hanning(w, h)
	t.target = t.fft.forward(gaussian(w, h, Sigma))

	n := w * h
	t.a = make([]complex128, n)
	t.b = make([]complex128, n)

	for _, pt := range perturbations {
		f := t.fft.forward(t.preprocess(t.warpedPatch(p, pt.angle, pt.scale)))

		for i := range f {
			t.a[i] += t.target[i] * cmplx.Conj(f[i])
			t.b[i] += f[i] * cmplx.Conj(f[i])
		}
	}

	t.initialized = true

	return true
}

// UpdatePlane advances the tracker with the next grey level plane
func (t *Tracker) UpdatePlane(p Plane) (image.Rectangle, bool) {

	if !t.initialized || p.Width < 1 || p.Height < 1 {
		return t.box(), false
	}

	f := t.fft.forward(t.preprocess(t.patch(p)))
	resp := make([]complex128, len(f))

	for i := range f {
		resp[i] = f[i] * t.a[i] / (t.b[i] + complex(eps, 0))
	}

	spatial := t.fft.inverse(resp)
	px, py, psr := peakToSidelobe(spatial, t.width, t.height)

	if psr < PSRThreshold {
		return t.box(), false
	}

	t.cx += px - t.width/2
	t.cy += py - t.height/2

	// train on the patch at the new location
	f = t.fft.forward(t.preprocess(t.patch(p)))

	for i := range f {
		t.a[i] = complex(LearningRate, 0)*t.target[i]*cmplx.Conj(f[i]) +
			complex(1-LearningRate, 0)*t.a[i]
		t.b[i] = complex(LearningRate, 0)*f[i]*cmplx.Conj(f[i]) +
			complex(1-LearningRate, 0)*t.b[i]
	}

	return t.box(), true
}

// box returns the current bounding box
func (t *Tracker) box() image.Rectangle {

	x := t.cx - t.width/2
	y := t.cy - t.height/2

	return image.Rect(x, y, x+t.width, y+t.height)
}

// patch extracts the tracked region centered on the current position
func (t *Tracker) patch(p Plane) []float64 {

	x0 := t.cx - t.width/2
	y0 := t.cy - t.height/2
	out := make([]float64, t.width*t.height)

	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			out[y*t.width+x] = p.At(x0+x, y0+y)
		}
	}

	return out
}

// warpedPatch extracts the tracked region rotated by angle and scaled by
// scale about the current center, sampling with bilinear interpolation
func (t *Tracker) warpedPatch(p Plane, angle, scale float64) []float64 {

	if angle == 0 && scale == 1 {
		return t.patch(p)
	}

	cos := math.Cos(angle) / scale
	sin := math.Sin(angle) / scale
	out := make([]float64, t.width*t.height)

	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			u := float64(x - t.width/2)
			v := float64(y - t.height/2)
			sx := float64(t.cx) + cos*u - sin*v
			sy := float64(t.cy) + sin*u + cos*v
			out[y*t.width+x] = bilinear(p, sx, sy)
		}
	}

	return out
}

// bilinear samples the plane at a sub pixel position
func bilinear(p Plane, x, y float64) float64 {

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	top := p.At(x0, y0)*(1-fx) + p.At(x0+1, y0)*fx
	bottom := p.At(x0, y0+1)*(1-fx) + p.At(x0+1, y0+1)*fx

	return top*(1-fy) + bottom*fy
}

// preprocess log transforms, normalizes and windows a patch
func (t *Tracker) preprocess(patch []float64) []complex128 {

	var sum, sumSq float64

	for i, v := range patch {
		lv := math.Log(v + 1)
		patch[i] = lv
		sum += lv
		sumSq += lv * lv
	}

	n := float64(len(patch))
	mean := sum / n
	variance := sumSq/n - mean*mean

	if variance < 0 {
		variance = 0
	}

	std := math.Sqrt(variance)
	out := make([]complex128, len(patch))

	for i, v := range patch {
		out[i] = complex((v-mean)/(std+eps)*t.window[i], 0)
	}

	return out
}

// peakToSidelobe finds the maximum of the real correlation response and
// returns its position and peak to sidelobe ratio
func peakToSidelobe(resp []complex128, width, height int) (int, int, float64) {

	px, py := 0, 0
	peak := math.Inf(-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if v := real(resp[y*width+x]); v > peak {
				peak = v
				px, py = x, y
			}
		}
	}

	var sum, sumSq float64
	count := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if abs(x-px) <= sidelobeExclusion && abs(y-py) <= sidelobeExclusion {
				continue
			}

			v := real(resp[y*width+x])
			sum += v
			sumSq += v * v
			count++
		}
	}

	if count == 0 {
		// patch too small to have a sidelobe
		if peak > 0 {
			return px, py, math.Inf(1)
		}

		return px, py, 0
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean

	if variance <= 0 {
		if peak > mean {
			return px, py, math.Inf(1)
		}

		return px, py, 0
	}

	return px, py, (peak - mean) / math.Sqrt(variance)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
