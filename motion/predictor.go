package motion

import (
	"image"
	"math"
)

const (
	// DefaultStdWeightPosition is the position noise relative to box height
	DefaultStdWeightPosition = 1.0 / 20
	// DefaultStdWeightVelocity is the velocity noise relative to box height
	DefaultStdWeightVelocity = 1.0 / 160
)

// Predictor follows a single object, it is fed every successfully tracked
// box and asked for a prediction on frames where the object was lost
type Predictor struct {
	filter      *Filter
	state       State
	initialized bool
}

// NewPredictor returns a Predictor using the default noise weights
func NewPredictor() *Predictor {
	return &Predictor{
		filter: NewFilter(DefaultStdWeightPosition, DefaultStdWeightVelocity),
	}
}

// Observe records a tracked box given as an image.Rectangle
func (p *Predictor) Observe(r image.Rectangle) error {

	m := toMeasurement(r)

	if !p.initialized {
		p.state = p.filter.Initiate(m)
		p.initialized = true
		return nil
	}

	p.filter.Predict(&p.state)

	return p.filter.Update(&p.state, m)
}

// Predict advances the filter one frame without a measurement and returns
// the predicted box.  It returns false if no box has been observed yet.
func (p *Predictor) Predict() (image.Rectangle, bool) {

	if !p.initialized {
		return image.Rectangle{}, false
	}

	p.filter.Predict(&p.state)

	return toRect(p.state.Measurement()), true
}

// Reset forgets all observations
func (p *Predictor) Reset() {
	p.initialized = false
	p.state = State{}
}

func toMeasurement(r image.Rectangle) Measurement {
	w := float64(r.Dx())
	h := float64(r.Dy())
	return Measurement{float64(r.Min.X) + w/2, float64(r.Min.Y) + h/2, w, h}
}

func toRect(m Measurement) image.Rectangle {

	w := math.Max(1, math.Round(m[2]))
	h := math.Max(1, math.Round(m[3]))
	x := math.Round(m[0] - w/2)
	y := math.Round(m[1] - h/2)

	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}
