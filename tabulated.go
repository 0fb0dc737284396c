// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.13
//

package gotrack

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/slices"
)

// Ephemeris sampled at discrete epochs, interpolated with cubic Hermite
// polynomials built from the tabulated positions and velocities.
type TabulatedEphemeris struct {
	epochs []float64
	states []State
	Center Ephemeris // Added to the interpolated state (nil: none)
}

// Records need not be sorted.
func NewTabulatedEphemeris(records map[float64]State) (*TabulatedEphemeris, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: tabulated ephemeris needs at least 2 records, got %d", ErrConfiguration, len(records))
	}
	eph := &TabulatedEphemeris{
		epochs: make([]float64, 0, len(records)),
		states: make([]State, 0, len(records)),
	}
	for t := range records {
		eph.epochs = append(eph.epochs, t)
	}
	sort.Float64s(eph.epochs)
	for _, t := range eph.epochs {
		eph.states = append(eph.states, records[t])
	}
	return eph, nil
}

// Time span covered by the table
func (e *TabulatedEphemeris) Span() (float64, float64) {
	return e.epochs[0], e.epochs[len(e.epochs)-1]
}

func (e *TabulatedEphemeris) CartesianState(t float64) (State, error) {
	t0, t1 := e.Span()
	if math.IsNaN(t) || t < t0 || t > t1 {
		return State{}, fmt.Errorf("time %.3f out of tabulated span [%.3f, %.3f]", t, t0, t1)
	}

	// Select the interval containing t
	i, found := slices.BinarySearch(e.epochs, t)
	var s State
	if found {
		s = e.states[i]
	} else {
		s = hermite(e.epochs[i-1], e.epochs[i], e.states[i-1], e.states[i], t)
	}

	cs, err := centerState(e.Center, t)
	if err != nil {
		return State{}, err
	}
	return s.Add(cs), nil
}

// Cubic Hermite interpolation of position with its derivative as velocity
func hermite(ta, tb float64, a, b State, t float64) State {
	h := tb - ta
	s := (t - ta) / h
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	d00 := 6*s2 - 6*s
	d10 := 3*s2 - 4*s + 1
	d01 := -6*s2 + 6*s
	d11 := 3*s2 - 2*s

	var r State
	for k := 0; k < 3; k++ {
		pa, va := a[k], a[k+3]
		pb, vb := b[k], b[k+3]
		r[k] = h00*pa + h10*h*va + h01*pb + h11*h*vb
		r[k+3] = (d00*pa+d01*pb)/h + d10*va + d11*vb
	}
	return r
}

// Tabulate another ephemeris over [t0, t1] at a fixed step
func SampleEphemeris(src Ephemeris, t0, t1, step float64) (*TabulatedEphemeris, error) {
	if !(step > 0) || !(t1 > t0) {
		return nil, fmt.Errorf("%w: invalid sampling span [%g, %g] step %g", ErrConfiguration, t0, t1, step)
	}
	records := map[float64]State{}
	n := int((t1-t0)/step + 0.5)
	for i := 0; i <= n; i++ {
		t := t0 + float64(i)*step
		if t > t1 {
			t = t1
		}
		s, err := src.CartesianState(t)
		if err != nil {
			return nil, fmt.Errorf("sampling at %.3f failed, err=%w", t, err)
		}
		records[t] = s
	}
	if _, ok := records[t1]; !ok {
		s, err := src.CartesianState(t1)
		if err != nil {
			return nil, fmt.Errorf("sampling at %.3f failed, err=%w", t1, err)
		}
		records[t1] = s
	}
	return NewTabulatedEphemeris(records)
}
