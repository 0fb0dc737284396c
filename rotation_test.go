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
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func earthRotation() *SimpleRotationModel {
	return NewSimpleRotationModel(ToRad(-12.0), ToRad(66.56), 1.0, 2*PI/86400, 1e7)
}

func TestRotationIsOrthonormal(t *testing.T) {
	m := earthRotation()
	for _, tt := range []float64{0, 1e7, 1.1e7 + 123.4} {
		r := m.RotationToBaseFrame(tt)
		var rrt mat.Dense
		rrt.Mul(r, r.T())
		assertMatrixClose(t, identity3(), &rrt, 1e-14)
		assert.InDelta(t, 1, mat.Det(r), 1e-14)

		assertMatrixClose(t, r.T(), m.RotationToTargetFrame(tt), 0)
	}
}

func TestRotationDerivative(t *testing.T) {
	m := earthRotation()
	const h = 1.0
	tt := 1.05e7
	var fd mat.Dense
	fd.Sub(m.RotationToBaseFrame(tt+h), m.RotationToBaseFrame(tt-h))
	fd.Scale(1/(2*h), &fd)
	assertMatrixClose(t, &fd, m.RotationToBaseFrameDerivative(tt), 1e-8)
}

func TestRotationPoleDerivatives(t *testing.T) {
	const h = 1e-6
	ra, dec := ToRad(317.68), ToRad(52.89)
	tt := 3.3e6
	m := NewSimpleRotationModel(ra, dec, 2.0, 2*PI/88642, 0)

	central := func(dra, ddec float64) *mat.Dense {
		var d mat.Dense
		m.SetPole(ra+dra, dec+ddec)
		p := m.RotationToBaseFrame(tt)
		m.SetPole(ra-dra, dec-ddec)
		d.Sub(p, m.RotationToBaseFrame(tt))
		d.Scale(1/(2*h), &d)
		m.SetPole(ra, dec)
		return &d
	}
	assertMatrixClose(t, central(h, 0), m.compose(1, 0, 0, tt), 1e-8)
	assertMatrixClose(t, central(0, h), m.compose(0, 1, 0, tt), 1e-8)

	// Second derivative with respect to the meridian angle, near the epoch where
	// W is small enough for a 1e-6 rad step
	tw := 1e3
	w := m.RotationRate()
	var d2 mat.Dense
	d2.Sub(m.compose(0, 0, 1, tw+h/w), m.compose(0, 0, 1, tw-h/w))
	d2.Scale(1/(2*h), &d2)
	assertMatrixClose(t, &d2, m.compose(0, 0, 2, tw), 1e-8)
}

func TestRotationAxes(t *testing.T) {
	// Pole along the base z axis, meridian along the base y axis
	m := NewSimpleRotationModel(0, PI/2, 0, 1e-4, 0)
	x := MulVec(m.RotationToBaseFrame(0), r3.Vec{X: 1})
	assert.InDelta(t, 0, x.X, 1e-15)
	assert.InDelta(t, 1, x.Y, 1e-15)
	assert.InDelta(t, 0, x.Z, 1e-15)

	// Quarter turn later the meridian points along -x
	x = MulVec(m.RotationToBaseFrame(PI/2/1e-4), r3.Vec{X: 1})
	assert.InDelta(t, -1, x.X, 1e-12)
	assert.InDelta(t, 0, x.Y, 1e-12)

	// The body z axis is the pole
	ra, dec := ToRad(40), ToRad(-20)
	m = NewSimpleRotationModel(ra, dec, 0.3, 1e-4, 0)
	z := MulVec(m.RotationToBaseFrame(500), r3.Vec{Z: 1})
	assert.InDelta(t, math.Cos(dec)*math.Cos(ra), z.X, 1e-15)
	assert.InDelta(t, math.Cos(dec)*math.Sin(ra), z.Y, 1e-15)
	assert.InDelta(t, math.Sin(dec), z.Z, 1e-15)
}

// Quaternion of the frame rotation about z (axis 3) or x (axis 1)
func frameQuat(axis int, theta float64) quat.Number {
	s, c := math.Sincos(theta / 2)
	if axis == 1 {
		return quat.Number{Real: c, Imag: -s}
	}
	return quat.Number{Real: c, Kmag: -s}
}

func TestRotationFromQuaternion(t *testing.T) {
	ra, dec, w0 := ToRad(317.68), ToRad(52.89), 2.0
	ref := NewSimpleRotationModel(ra, dec, w0, 7e-5, 100)

	q := quat.Mul(frameQuat(3, w0), quat.Mul(frameQuat(1, PI/2-dec), frameQuat(3, PI/2+ra)))
	assertMatrixClose(t, ref.RotationToTargetFrame(100), quaternionToMatrix(q), 1e-13)

	m, err := NewSimpleRotationModelFromQuaternion(quat.Scale(3, q), 7e-5, 100)
	require.NoError(t, err)
	for _, tt := range []float64{100, 5000} {
		assertMatrixClose(t, ref.RotationToBaseFrame(tt), m.RotationToBaseFrame(tt), 1e-12)
	}
	gra, gdec := m.Pole()
	assert.InDelta(t, 0, math.Remainder(gra-ra, 2*PI), 1e-12)
	assert.InDelta(t, dec, gdec, 1e-12)
	assert.Equal(t, 100.0, m.Epoch())
}

func TestRotationFromIdentityQuaternion(t *testing.T) {
	m, err := NewSimpleRotationModelFromQuaternion(quat.Number{Real: 1}, 1e-3, 0)
	require.NoError(t, err)
	assertMatrixClose(t, identity3(), m.RotationToBaseFrame(0), 1e-14)

	_, err = NewSimpleRotationModelFromQuaternion(quat.Number{}, 1e-3, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRotationUnsupportedOrder(t *testing.T) {
	assert.Panics(t, func() { rotZT(0.1, 3) })
	assert.Panics(t, func() { rotXT(0.1, 2) })
}
