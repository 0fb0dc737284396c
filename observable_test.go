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

func TestParseObservable(t *testing.T) {
	for _, o := range []Observable{OneWayRange{}, OneWayDoppler{}, AngularPosition{}} {
		got, err := ParseObservable(o.Name())
		require.NoError(t, err)
		assert.Equal(t, o, got)
		assert.Equal(t, []LinkEndType{Transmitter, Receiver}, o.RequiredLinkEnds())
	}
	_, err := ParseObservable("two_way_doppler")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 2, AngularPosition{}.Size())
}

func TestObservableValues(t *testing.T) {
	assert := assert.New(t)
	sol := &LightTimeSolution{
		TransmitterState: NewState(r3.Vec{X: 3e8, Y: 3e8, Z: 6e8}, r3.Vec{X: 1e3, Y: 0, Z: 0}),
		ReceiverState:    NewState(r3.Vec{}, r3.Vec{X: -2e3, Y: 5e2, Z: 1e2}),
		Correction:       1e-6,
	}
	sol.Distance = r3.Norm(sol.TransmitterState.Position())

	assert.Equal([]float64{sol.Distance + 1e-6*C}, OneWayRange{}.value(sol))

	// Unit vector from the transmitter to the receiver
	n := r3.Scale(-1/sol.Distance, sol.TransmitterState.Position())
	vr := r3.Dot(n, sol.ReceiverState.Velocity())
	vt := r3.Dot(n, sol.TransmitterState.Velocity())
	dop := OneWayDoppler{}.value(sol)
	require.Len(t, dop, 1)
	assert.InEpsilon((vr-vt)/(C-vt), dop[0], 1e-12)

	ang := AngularPosition{}.value(sol)
	require.Len(t, ang, 2)
	assert.InDelta(PI/4, ang[0], 1e-15)
	assert.InDelta(math.Asin(6/math.Sqrt(54)), ang[1], 1e-14)

	// Co-located link ends
	sol.TransmitterState = sol.ReceiverState
	assert.Equal([]float64{0, 0}, AngularPosition{}.value(sol))
}
