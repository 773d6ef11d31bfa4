// Package motion provides a constant velocity Kalman filter over bounding
// boxes, used to estimate where an object is while its tracker has lost it.
package motion

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Measurement is a box in (center x, center y, width, height) format
type Measurement [4]float64

// State is the filter state, an 8 dimensional mean of the measurement and
// its velocities together with its covariance
type State struct {
	Mean *mat.VecDense
	Cov  *mat.Dense
}

// Filter is a Kalman filter with a constant velocity motion model.  Process
// and measurement noise are proportional to the box height.
type Filter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewFilter returns a Filter with the given noise weights
func NewFilter(stdWeightPosition, stdWeightVelocity float64) *Filter {

	const ndim = 4

	// identity with unit time step velocity terms
	motionMat := mat.NewDense(2*ndim, 2*ndim, nil)

	for i := 0; i < 2*ndim; i++ {
		motionMat.Set(i, i, 1)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, 1)
	}

	// observe the first four state elements
	updateMat := mat.NewDense(ndim, 2*ndim, nil)

	for i := 0; i < ndim; i++ {
		updateMat.Set(i, i, 1)
	}

	return &Filter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// Initiate creates a state from the first measurement with zero velocity
func (f *Filter) Initiate(m Measurement) State {

	mean := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		mean.SetVec(i, m[i])
	}

	h := m[3]
	std := []float64{
		2 * f.stdWeightPosition * h,
		2 * f.stdWeightPosition * h,
		2 * f.stdWeightPosition * h,
		2 * f.stdWeightPosition * h,
		10 * f.stdWeightVelocity * h,
		10 * f.stdWeightVelocity * h,
		10 * f.stdWeightVelocity * h,
		10 * f.stdWeightVelocity * h,
	}

	return State{Mean: mean, Cov: diag(std)}
}

// Predict advances the state by one time step
func (f *Filter) Predict(s *State) {

	h := s.Mean.AtVec(3)
	std := []float64{
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
		f.stdWeightVelocity * h,
		f.stdWeightVelocity * h,
		f.stdWeightVelocity * h,
		f.stdWeightVelocity * h,
	}

	var mean mat.VecDense
	mean.MulVec(f.motionMat, s.Mean)

	var fp, cov mat.Dense
	fp.Mul(f.motionMat, s.Cov)
	cov.Mul(&fp, f.motionMat.T())
	cov.Add(&cov, diag(std))

	s.Mean = &mean
	s.Cov = &cov
}

// Update corrects the state with a measurement
func (f *Filter) Update(s *State, m Measurement) error {

	h := s.Mean.AtVec(3)
	noise := []float64{
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
		f.stdWeightPosition * h,
	}

	// project the state covariance into measurement space
	var hp, hph mat.Dense
	hp.Mul(f.updateMat, s.Cov)
	hph.Mul(&hp, f.updateMat.T())

	projected := mat.NewSymDense(4, nil)

	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			v := (hph.At(i, j) + hph.At(j, i)) / 2
			if i == j {
				v += noise[i] * noise[i]
			}
			projected.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky

	if ok := chol.Factorize(projected); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// kalman gain transposed, solves projected * K^T = (P H^T)^T
	var pht, gainT mat.Dense
	pht.Mul(s.Cov, f.updateMat.T())

	if err := chol.SolveTo(&gainT, pht.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(4, nil)

	for i := 0; i < 4; i++ {
		innovation.SetVec(i, m[i]-s.Mean.AtVec(i))
	}

	var correction, mean mat.VecDense
	correction.MulVec(gainT.T(), innovation)
	mean.AddVec(s.Mean, &correction)

	var ks, ksk, cov mat.Dense
	ks.Mul(gainT.T(), projected)
	ksk.Mul(&ks, &gainT)
	cov.Sub(s.Cov, &ksk)

	s.Mean = &mean
	s.Cov = &cov

	return nil
}

// Measurement returns the measurement part of the state mean
func (s State) Measurement() Measurement {
	return Measurement{s.Mean.AtVec(0), s.Mean.AtVec(1), s.Mean.AtVec(2), s.Mean.AtVec(3)}
}

func diag(std []float64) *mat.Dense {

	d := mat.NewDense(len(std), len(std), nil)

	for i, v := range std {
		d.Set(i, i, v*v)
	}

	return d
}
