// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// NumericalParameterPartial computes the partial of f(t) with respect to a parameter
// by central differences, perturbing component j by +/-perturbation[j]. A single
// perturbation is used for all components. The parameter is restored after every
// perturbed evaluation and before returning, also when f fails or panics.
//
// Returns an m x Size() matrix, m being the length of f(t).
func NumericalParameterPartial(p Parameter, perturbation []float64, f func(t float64) ([]float64, error), t float64) (*mat.Dense, error) {
	n := p.Size()
	delta, err := expandPerturbation(perturbation, n)
	if err != nil {
		return nil, err
	}

	orig := p.Value()
	defer func() {
		_ = p.SetValue(orig)
	}()

	y0, err := f(t)
	if err != nil {
		return nil, fmt.Errorf("nominal evaluation failed, err=%w", err)
	}
	m := len(y0)
	if m == 0 {
		return nil, fmt.Errorf("%w: function of %s returns no values", ErrConsistency, p.Name())
	}

	// Differentiate in units of the perturbation
	var evalErr error
	fun := func(y, u []float64) {
		if evalErr != nil {
			return
		}
		v := make([]float64, n)
		for j := range v {
			v[j] = orig[j] + u[j]*delta[j]
		}
		if err := p.SetValue(v); err != nil {
			evalErr = err
			return
		}
		defer func() {
			_ = p.SetValue(orig)
		}()
		obs, err := f(t)
		if err != nil {
			evalErr = fmt.Errorf("perturbed evaluation failed, err=%w", err)
			return
		}
		if len(obs) != m {
			evalErr = fmt.Errorf("%w: perturbed evaluation returns %d values, expected %d", ErrConsistency, len(obs), m)
			return
		}
		copy(y, obs)
	}

	dst := mat.NewDense(m, n, nil)
	fd.Jacobian(dst, fun, make([]float64, n), &fd.JacobianSettings{
		Formula:    fd.Central,
		Step:       1,
		Concurrent: false,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			dst.Set(i, j, dst.At(i, j)/delta[j])
		}
	}
	PrintD(4, "numerical partial wrt %s:\n", p.Name())
	PrintMatD(4, dst)
	return dst, nil
}

func expandPerturbation(perturbation []float64, n int) ([]float64, error) {
	switch len(perturbation) {
	case 1:
		delta := make([]float64, n)
		for j := range delta {
			delta[j] = perturbation[0]
		}
		return checkPerturbation(delta)
	case n:
		return checkPerturbation(append([]float64(nil), perturbation...))
	default:
		return nil, fmt.Errorf("%w: %d perturbations for a parameter of size %d", ErrConsistency, len(perturbation), n)
	}
}

func checkPerturbation(delta []float64) ([]float64, error) {
	for j, d := range delta {
		if !(d > 0) {
			return nil, fmt.Errorf("%w: perturbation %d must be positive, got %g", ErrConsistency, j, d)
		}
	}
	return delta, nil
}

// Cartesian state of an ephemeris as a function for NumericalParameterPartial
func StateFunction(eph Ephemeris) func(t float64) ([]float64, error) {
	return func(t float64) ([]float64, error) {
		s, err := eph.CartesianState(t)
		if err != nil {
			return nil, err
		}
		return s[:], nil
	}
}

// Observation of a model as a function for NumericalParameterPartial
func ObservationFunction(om *ObservationModel, fixed LinkEndType) func(t float64) ([]float64, error) {
	return func(t float64) ([]float64, error) {
		return om.ComputeObservations(t, fixed)
	}
}
