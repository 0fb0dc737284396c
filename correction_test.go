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

func sunBodies() Bodies {
	sun := NewBody("Sun", NewConstantEphemeris(State{}))
	sun.GM = GM_SUN
	return Bodies{"Sun": sun}
}

func TestFirstOrderRelativisticCorrection(t *testing.T) {
	assert := assert.New(t)
	xt := r3.Vec{X: AU}
	xr := r3.Vec{Y: 1.5 * AU}
	rt, rr, rtr := AU, 1.5*AU, EucDist(xt, xr)
	want := 2 * GM_SUN / (C * C * C) * math.Log((rt+rr+rtr)/(rt+rr-rtr))

	corr, err := NewFirstOrderRelativisticCorrection(sunBodies(), []string{"Sun"}, 0)
	require.NoError(t, err)
	got, err := corr.Correction(NewState(xt, r3.Vec{}), NewState(xr, r3.Vec{}), 0, 1000)
	require.NoError(t, err)
	assert.InEpsilon(want, got, 1e-14)
	assert.Greater(got, 1e-5)
	assert.Less(got, 1e-4)

	// PPN gamma scales the delay by (1+gamma)/2
	corr, err = NewFirstOrderRelativisticCorrection(sunBodies(), []string{"Sun"}, 0.5)
	require.NoError(t, err)
	got, err = corr.Correction(NewState(xt, r3.Vec{}), NewState(xr, r3.Vec{}), 0, 1000)
	require.NoError(t, err)
	assert.InEpsilon(want*0.75, got, 1e-14)

	// Through the body centre
	_, err = corr.Correction(NewState(r3.Vec{X: -AU}, r3.Vec{}), NewState(xt, r3.Vec{}), 0, 1000)
	assert.Error(err)
}

func TestRelativisticCorrectionMidTime(t *testing.T) {
	xt := r3.Vec{X: AU}
	xr := r3.Vec{Y: 1.5 * AU}
	moving := &LinearEphemeris{Pos: r3.Vec{Z: 1e9}, Vel: r3.Vec{X: 1e4, Y: 2e4}}
	bodies := Bodies{"Sun": &Body{Name: "Sun", Ephemeris: moving, GM: GM_SUN}}
	corr, err := NewFirstOrderRelativisticCorrection(bodies, []string{"Sun"}, 1)
	require.NoError(t, err)
	got, err := corr.Correction(NewState(xt, r3.Vec{}), NewState(xr, r3.Vec{}), 1000, 1800)
	require.NoError(t, err)

	mid, _ := moving.CartesianState(1400)
	bodies["Sun"].Ephemeris = NewConstantEphemeris(mid)
	ref, err := NewFirstOrderRelativisticCorrection(bodies, []string{"Sun"}, 1)
	require.NoError(t, err)
	want, err := ref.Correction(NewState(xt, r3.Vec{}), NewState(xr, r3.Vec{}), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelativisticCorrectionConfiguration(t *testing.T) {
	assert := assert.New(t)
	bodies := sunBodies()
	bodies["Moon"] = NewBody("Moon", NewConstantEphemeris(State{}))
	bodies["Rogue"] = &Body{Name: "Rogue", GM: 1e10}

	for _, names := range [][]string{nil, {"Jupiter"}, {"Sun", "Moon"}, {"Rogue"}} {
		_, err := NewFirstOrderRelativisticCorrection(bodies, names, 0)
		assert.ErrorIs(err, ErrConfiguration, "%v", names)
	}

	corrs, err := NewLightTimeCorrections([]LightTimeCorrectionSettings{
		FirstOrderRelativisticSettings{PerturbingBodies: []string{"Sun"}},
	}, nil, bodies)
	require.NoError(t, err)
	assert.Len(corrs, 1)

	_, err = NewLightTimeCorrections([]LightTimeCorrectionSettings{nil}, nil, bodies)
	assert.ErrorIs(err, ErrConfiguration)
}

func TestTropModel(t *testing.T) {
	zd := TropModel(PosLLH{Lat: ToRad(45), Hei: 0})
	assert.InDelta(t, 2.31, zd, 0.01)
	assert.Less(t, TropModel(PosLLH{Lat: ToRad(45), Hei: 2000}), zd)
	assert.Equal(t, 0.0, TropModel(PosLLH{Hei: 2e4}))

	llh := PosLLH{Lat: ToRad(45), Hei: 100}
	assert.InDelta(t, 1.0, TropMapf(3e5, llh, PI/2), 1e-12)
	m5 := TropMapf(3e5, llh, ToRad(5))
	assert.Greater(t, m5, 9.0)
	assert.Less(t, m5, 12.0)
	assert.Equal(t, 0.0, TropMapf(3e5, llh, -0.1))
}

// Earth with its pole on the base z axis and a station on the equator at longitude 0
func tropoBodies() Bodies {
	earth := NewBody("Earth", NewConstantEphemeris(State{}))
	earth.Rotation = NewSimpleRotationModel(0, PI/2, 0, 0, 0)
	earth.Shape = &WGS84
	_ = earth.AddStation(NewGroundStation("Eq", r3.Vec{X: Re}))
	sat := NewBody("Sat", NewConstantEphemeris(State{}))
	return Bodies{"Earth": earth, "Sat": sat}
}

func TestTroposphericCorrection(t *testing.T) {
	assert := assert.New(t)
	bodies := tropoBodies()
	le := LinkEnds{Transmitter: {Body: "Sat"}, Receiver: {Body: "Earth", Station: "Eq"}}
	corr, err := NewTroposphericCorrection(le, bodies)
	require.NoError(t, err)

	// The station is at base (0, Re, 0); overhead is along +y
	rx := NewState(r3.Vec{Y: Re}, r3.Vec{})
	got, err := corr.Correction(NewState(r3.Vec{Y: 2e7}, r3.Vec{}), rx, 0, 0.07)
	require.NoError(t, err)
	llh := WGS84.ToLLH(r3.Vec{X: Re})
	assert.InEpsilon(TropModel(llh)/C, got, 1e-9)

	// Below the horizon
	got, err = corr.Correction(NewState(r3.Vec{Y: -2e7}, r3.Vec{}), rx, 0, 0.07)
	require.NoError(t, err)
	assert.Equal(0.0, got)

	// The station may also transmit
	le = LinkEnds{Transmitter: {Body: "Earth", Station: "Eq"}, Receiver: {Body: "Sat"}}
	corr, err = NewTroposphericCorrection(le, bodies)
	require.NoError(t, err)
	slant, err := corr.Correction(rx, NewState(r3.Vec{X: 2e7, Y: Re + 2e6}, r3.Vec{}), 0, 0.07)
	require.NoError(t, err)
	assert.Greater(slant, TropModel(llh)/C)

	// No station link end
	_, err = NewTroposphericCorrection(LinkEnds{Transmitter: {Body: "Sat"}, Receiver: {Body: "Earth"}}, bodies)
	assert.ErrorIs(err, ErrConfiguration)
}
