// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cubic trajectory, reproduced exactly by Hermite interpolation
func cubicState(t float64) State {
	return State{
		1 + 2*t - 0.5*t*t + 0.01*t*t*t,
		-3 + 0.2*t*t,
		4 - t + 0.003*t*t*t,
		2 - t + 0.03*t*t,
		0.4 * t,
		-1 + 0.009*t*t,
	}
}

func TestTabulatedEphemeris(t *testing.T) {
	assert := assert.New(t)
	records := map[float64]State{}
	for _, tt := range []float64{30, 0, 10} {
		records[tt] = cubicState(tt)
	}
	eph, err := NewTabulatedEphemeris(records)
	require.NoError(t, err)

	t0, t1 := eph.Span()
	assert.Equal(0.0, t0)
	assert.Equal(30.0, t1)

	s, err := eph.CartesianState(10)
	require.NoError(t, err)
	assert.Equal(cubicState(10), s)

	for _, tt := range []float64{0.5, 9.99, 17.3, 29} {
		s, err := eph.CartesianState(tt)
		require.NoError(t, err)
		want := cubicState(tt)
		assertVecClose(t, want[:], s[:], 1e-9, "t=%g", tt)
	}

	_, err = eph.CartesianState(-0.1)
	assert.Error(err)
	_, err = eph.CartesianState(30.1)
	assert.Error(err)
	_, err = eph.CartesianState(math.NaN())
	assert.Error(err)
}

func TestTabulatedEphemerisCenter(t *testing.T) {
	eph, err := NewTabulatedEphemeris(map[float64]State{0: cubicState(0), 10: cubicState(10)})
	require.NoError(t, err)
	center := State{1e3, 2e3, 3e3, 1, 2, 3}
	eph.Center = NewConstantEphemeris(center)
	s, err := eph.CartesianState(10)
	require.NoError(t, err)
	assert.Equal(t, cubicState(10).Add(center), s)
}

func TestTabulatedEphemerisTooFewRecords(t *testing.T) {
	_, err := NewTabulatedEphemeris(map[float64]State{0: {}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSampleEphemeris(t *testing.T) {
	leo := &KeplerEphemeris{SemiMajorAxis: 7.0e6, Eccentricity: 0.001, Inclination: ToRad(51.6), GM: GM_EARTH}
	eph, err := SampleEphemeris(leo, 0, 3000, 60)
	require.NoError(t, err)
	t0, t1 := eph.Span()
	assert.Equal(t, 0.0, t0)
	assert.Equal(t, 3000.0, t1)

	for _, tt := range []float64{30, 1234.5, 2990} {
		want, _ := leo.CartesianState(tt)
		got, err := eph.CartesianState(tt)
		require.NoError(t, err)
		assert.Less(t, EucDist(want.Position(), got.Position()), 2.0)
		assert.Less(t, r3.Norm(r3.Sub(want.Velocity(), got.Velocity())), 0.5)
	}

	// Last interval shorter than the step
	eph, err = SampleEphemeris(leo, 0, 100, 60)
	require.NoError(t, err)
	_, t1 = eph.Span()
	assert.Equal(t, 100.0, t1)

	_, err = SampleEphemeris(leo, 0, 100, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = SampleEphemeris(leo, 100, 100, 10)
	assert.ErrorIs(t, err, ErrConfiguration)
}
