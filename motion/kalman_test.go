package motion

import (
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// matricesEqual compare matrices
func matricesEqual(a, b mat.Matrix, epsilon float64) bool {
	r1, c1 := a.Dims()
	r2, c2 := b.Dims()

	if r1 != r2 || c1 != c2 {
		return false
	}

	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if diff := a.At(i, j) - b.At(i, j); diff > epsilon || diff < -epsilon {
				return false
			}
		}
	}

	return true
}

func TestFilterInitiate(t *testing.T) {

	f := NewFilter(1.0/20, 1.0/160)
	s := f.Initiate(Measurement{100, 200, 40, 50})

	want := mat.NewVecDense(8, []float64{100, 200, 40, 50, 0, 0, 0, 0})

	if !matricesEqual(s.Mean, want, 1e-9) {
		t.Errorf("unexpected mean %v", mat.Formatted(s.Mean.T()))
	}

	// 2 * 1/20 * 50 = 5 squared
	if got := s.Cov.At(0, 0); math.Abs(got-25) > 1e-9 {
		t.Errorf("position variance = %v, want 25", got)
	}

	// 10 * 1/160 * 50 = 3.125 squared
	if got := s.Cov.At(4, 4); math.Abs(got-9.765625) > 1e-9 {
		t.Errorf("velocity variance = %v, want 9.765625", got)
	}
}

func TestFilterPredictKeepsStationaryMean(t *testing.T) {

	f := NewFilter(1.0/20, 1.0/160)
	s := f.Initiate(Measurement{10, 20, 30, 40})
	before := s.Cov.At(0, 0)

	f.Predict(&s)

	if got := s.Measurement(); got != (Measurement{10, 20, 30, 40}) {
		t.Errorf("prediction moved a stationary object to %v", got)
	}

	if s.Cov.At(0, 0) <= before {
		t.Errorf("prediction should grow uncertainty")
	}
}

func TestFilterUpdateMovesTowardMeasurement(t *testing.T) {

	f := NewFilter(1.0/20, 1.0/160)
	s := f.Initiate(Measurement{100, 100, 20, 20})

	f.Predict(&s)

	if err := f.Update(&s, Measurement{110, 100, 20, 20}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	cx := s.Mean.AtVec(0)

	if cx <= 100 || cx > 110 {
		t.Errorf("corrected center x = %v, want in (100, 110]", cx)
	}

	if vx := s.Mean.AtVec(4); vx <= 0 {
		t.Errorf("velocity x = %v, want positive", vx)
	}
}

func TestPredictorFollowsConstantVelocity(t *testing.T) {

	p := NewPredictor()

	if _, ok := p.Predict(); ok {
		t.Fatalf("prediction before any observation should fail")
	}

	var last image.Rectangle

	for i := 0; i < 20; i++ {
		last = image.Rect(50+5*i, 60, 50+5*i+40, 100)

		if err := p.Observe(last); err != nil {
			t.Fatalf("observe %d failed: %v", i, err)
		}
	}

	got, ok := p.Predict()

	if !ok {
		t.Fatalf("expected a prediction")
	}

	dx := got.Min.X - last.Min.X

	if dx < 2 || dx > 8 {
		t.Errorf("predicted shift %d, want close to 5 (box %v)", dx, got)
	}

	if dy := got.Min.Y - last.Min.Y; dy < -1 || dy > 1 {
		t.Errorf("predicted vertical shift %d, want about 0", dy)
	}

	if got.Dx() < 38 || got.Dx() > 42 {
		t.Errorf("predicted width %d, want about 40", got.Dx())
	}

	p.Reset()

	if _, ok := p.Predict(); ok {
		t.Errorf("prediction after reset should fail")
	}
}
