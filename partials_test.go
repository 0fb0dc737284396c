// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const partialsTime = 1.1e7

// Earth and Mars at fixed positions, rotating about inclined poles, with one station each
func partialsBodies(t *testing.T) Bodies {
	t.Helper()
	earth := NewBody("Earth", NewStubEphemeris(State{1e11, 5e10, 2e10, 0, 0, 0}))
	earth.Rotation = NewSimpleRotationModel(-PI/2, ToRad(66.56), 1.0, 2*PI/86400, 1e7)
	require.NoError(t, earth.AddStation(NewGroundStation("Graz", r3.Vec{X: 1.7e6, Y: -6.2e6, Z: 1.3e5})))

	mars := NewBody("Mars", NewStubEphemeris(State{-1.2e11, 1.8e11, 3e10, 0, 0, 0}))
	mars.Rotation = NewSimpleRotationModel(ToRad(317.68), ToRad(52.89), 2.0, 2*PI/86400, 1e7)
	require.NoError(t, mars.AddStation(NewGroundStation("MSL", r3.Vec{X: -2.5e5, Y: 3.2e6, Z: -2.65e4})))

	return Bodies{"Earth": earth, "Mars": mars}
}

func linkEndState(t *testing.T, bodies Bodies, id LinkEndID) State {
	t.Helper()
	eph, err := bodies.LinkEndEphemeris(id)
	require.NoError(t, err)
	s, err := eph.CartesianState(partialsTime)
	require.NoError(t, err)
	return s
}

// Numerical partial of the position and velocity of a link end
func numericalStatePartial(t *testing.T, bodies Bodies, id LinkEndID, p Parameter, perturbation float64) (mat.Matrix, mat.Matrix) {
	t.Helper()
	eph, err := bodies.LinkEndEphemeris(id)
	require.NoError(t, err)
	m, err := NumericalParameterPartial(p, []float64{perturbation}, StateFunction(eph), partialsTime)
	require.NoError(t, err)
	return rows(m, 0, 3), rows(m, 3, 6)
}

func TestPartialsWrtBodyPosition(t *testing.T) {
	bodies := partialsBodies(t)
	id := LinkEndID{Body: "Earth", Station: "Graz"}
	le := LinkEnds{ObservedBody: id}

	partials, err := NewCartesianStatePartialsWrtBodyPosition(le, bodies, "Earth")
	require.NoError(t, err)
	require.Contains(t, partials, ObservedBody)
	sp := partials[ObservedBody]
	assert.Equal(t, 3, sp.Size())

	state := linkEndState(t, bodies, id)
	pos := sp.PartialOfPosition(state, partialsTime)
	vel := sp.PartialOfVelocity(state, partialsTime)
	assertMatrixClose(t, identity3(), pos, 0)
	assertMatrixClose(t, mat.NewDense(3, 3, nil), vel, 0)

	// Against central differences of the station ephemeris
	p, err := NewBodyPositionParameter(bodies, "Earth")
	require.NoError(t, err)
	npos, nvel := numericalStatePartial(t, bodies, id, p, 10)
	assertMatrixClose(t, npos, pos, 1e-12)
	assertMatrixClose(t, nvel, vel, 1e-12)

	// Same partial through the parameter interface
	partials, err = NewCartesianStatePartialsWrtParameter(le, bodies, p)
	require.NoError(t, err)
	assertMatrixClose(t, pos, partials[ObservedBody].PartialOfPosition(state, partialsTime), 0)
}

func TestPartialsWrtRotationRate(t *testing.T) {
	bodies := partialsBodies(t)
	id := LinkEndID{Body: "Earth", Station: "Graz"}
	p, err := NewRotationRateParameter(bodies, "Earth")
	require.NoError(t, err)
	assert.Equal(t, "Earth rotation rate", p.Name())

	partials, err := NewCartesianStatePartialsWrtParameter(LinkEnds{ObservedBody: id}, bodies, p)
	require.NoError(t, err)
	sp := partials[ObservedBody]
	assert.Equal(t, 1, sp.Size())

	state := linkEndState(t, bodies, id)
	pos := sp.PartialOfPosition(state, partialsTime)
	vel := sp.PartialOfVelocity(state, partialsTime)

	npos, nvel := numericalStatePartial(t, bodies, id, p, 1e-10)
	assertMatrixClose(t, npos, pos, 1e-5)
	assertMatrixClose(t, nvel, vel, 1e-5)
	assert.Equal(t, []float64{2 * PI / 86400}, p.Value())
}

func TestPartialsWrtPoleOrientation(t *testing.T) {
	bodies := partialsBodies(t)
	for _, id := range []LinkEndID{{Body: "Earth", Station: "Graz"}, {Body: "Mars", Station: "MSL"}} {
		p, err := NewPoleOrientationParameter(bodies, id.Body)
		require.NoError(t, err)
		partials, err := NewCartesianStatePartialsWrtParameter(LinkEnds{ObservedBody: id}, bodies, p)
		require.NoError(t, err)
		sp := partials[ObservedBody]
		assert.Equal(t, 2, sp.Size())

		state := linkEndState(t, bodies, id)
		pos := sp.PartialOfPosition(state, partialsTime)
		vel := sp.PartialOfVelocity(state, partialsTime)

		npos, nvel := numericalStatePartial(t, bodies, id, p, 1e-5)
		assertMatrixClose(t, rows(npos, 0, 1), rows(pos, 0, 1), 1e-4, id.String())
		assertMatrixClose(t, rows(npos, 1, 3), rows(pos, 1, 3), 1e-5, id.String())
		assertMatrixClose(t, nvel, vel, 1e-6, id.String())
	}
}

func TestPartialsUnaffectedLinkEnds(t *testing.T) {
	assert := assert.New(t)
	bodies := partialsBodies(t)
	graz := LinkEndID{Body: "Earth", Station: "Graz"}
	msl := LinkEndID{Body: "Mars", Station: "MSL"}

	p, err := NewRotationRateParameter(bodies, "Earth")
	require.NoError(t, err)
	_, err = NewCartesianStatePartialsWrtParameter(LinkEnds{ObservedBody: msl}, bodies, p)
	assert.ErrorIs(err, ErrConsistency)

	// Body centre does not depend on the rotation
	_, err = NewCartesianStatePartialsWrtParameter(LinkEnds{ObservedBody: {Body: "Earth"}}, bodies, p)
	assert.ErrorIs(err, ErrConsistency)

	partials, err := NewCartesianStatePartialsWrtParameter(LinkEnds{Transmitter: graz, Receiver: msl}, bodies, p)
	require.NoError(t, err)
	assert.Len(partials, 1)
	assert.Contains(partials, Transmitter)

	_, err = NewCartesianStatePartialsWrtBodyPosition(LinkEnds{ObservedBody: msl}, bodies, "Earth")
	assert.ErrorIs(err, ErrConsistency)
	_, err = NewCartesianStatePartialsWrtBodyPosition(LinkEnds{ObservedBody: msl}, bodies, "Venus")
	assert.ErrorIs(err, ErrConfiguration)
	_, err = NewCartesianStatePartialsWrtParameter(LinkEnds{ObservedBody: msl}, bodies, nil)
	assert.ErrorIs(err, ErrConsistency)
}

func TestParameterConstruction(t *testing.T) {
	assert := assert.New(t)
	bodies := partialsBodies(t)
	bodies["Moon"] = NewBody("Moon", NewConstantEphemeris(State{}))

	_, err := NewRotationRateParameter(bodies, "Moon")
	assert.ErrorIs(err, ErrConfiguration)
	_, err = NewPoleOrientationParameter(bodies, "Pluto")
	assert.ErrorIs(err, ErrConfiguration)
	_, err = NewBodyPositionParameter(bodies, "Moon")
	assert.ErrorIs(err, ErrConfiguration)

	// Values are shared with the body models
	pole, err := NewPoleOrientationParameter(bodies, "Mars")
	require.NoError(t, err)
	require.NoError(t, pole.SetValue([]float64{0.1, 0.2}))
	ra, dec := bodies["Mars"].Rotation.(*SimpleRotationModel).Pole()
	assert.Equal(0.1, ra)
	assert.Equal(0.2, dec)
	assert.ErrorIs(pole.SetValue([]float64{0.1}), ErrConsistency)

	bp, err := NewBodyPositionParameter(bodies, "Earth")
	require.NoError(t, err)
	assert.Equal([]float64{1e11, 5e10, 2e10}, bp.Value())
	require.NoError(t, bp.SetValue([]float64{1, 2, 3}))
	s, _ := bodies["Earth"].Ephemeris.CartesianState(0)
	assert.Equal(State{1, 2, 3, 0, 0, 0}, s)
	assert.Equal("Earth position", bp.Name())
	assert.Equal("Earth", bp.Body())
}
