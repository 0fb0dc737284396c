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

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationModel gives the orientation of a body-fixed frame.
type RotationModel interface {
	// Rotation matrix from the body-fixed frame to the base frame
	RotationToBaseFrame(t float64) *mat.Dense
	// Time derivative of RotationToBaseFrame
	RotationToBaseFrameDerivative(t float64) *mat.Dense
}

// SimpleRotationModel rotates at a constant rate about a fixed pole.
//
// The base to body-fixed rotation is R3(W) * R1(pi/2 - dec) * R3(pi/2 + ra) with
// W = W0 + rate*(t - epoch), where R1/R3 are frame rotations about x/z.
type SimpleRotationModel struct {
	ra    float64 // Right ascension of the pole [rad]
	dec   float64 // Declination of the pole [rad]
	w0    float64 // Prime meridian angle at the epoch [rad]
	rate  float64 // Rotation rate [rad/s]
	epoch float64 // Epoch of w0 [s]
}

func NewSimpleRotationModel(ra, dec, w0, rate, epoch float64) *SimpleRotationModel {
	return &SimpleRotationModel{ra: ra, dec: dec, w0: w0, rate: rate, epoch: epoch}
}

// Build a model from the base to body-fixed orientation at the epoch, given as a quaternion
func NewSimpleRotationModelFromQuaternion(q quat.Number, rate, epoch float64) (*SimpleRotationModel, error) {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return nil, fmt.Errorf("%w: invalid orientation quaternion", ErrConfiguration)
	}
	m := quaternionToMatrix(quat.Scale(1/n, q))

	// 3-1-3 Euler angles of m = R3(W) R1(theta) R3(phi)
	theta := math.Acos(math.Max(-1, math.Min(1, m.At(2, 2))))
	var phi, w float64
	if math.Abs(math.Sin(theta)) > 1e-12 {
		phi = math.Atan2(m.At(2, 0), -m.At(2, 1))
		w = math.Atan2(m.At(0, 2), m.At(1, 2))
	} else {
		// Pole along the base z axis: only W + phi is defined
		phi = PI / 2
		w = math.Atan2(m.At(0, 1), m.At(0, 0)) - phi
		if m.At(2, 2) < 0 {
			w = math.Atan2(-m.At(0, 1), m.At(0, 0)) + phi
		}
	}
	return NewSimpleRotationModel(phi-PI/2, PI/2-theta, WrapTwoPi(w), rate, epoch), nil
}

// Rotation matrix of a unit quaternion (w, x, y, z)
func quaternionToMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

func (m *SimpleRotationModel) RotationRate() float64 {
	return m.rate
}

func (m *SimpleRotationModel) SetRotationRate(rate float64) {
	m.rate = rate
}

// Right ascension and declination of the pole
func (m *SimpleRotationModel) Pole() (float64, float64) {
	return m.ra, m.dec
}

func (m *SimpleRotationModel) SetPole(ra, dec float64) {
	m.ra = ra
	m.dec = dec
}

func (m *SimpleRotationModel) Epoch() float64 {
	return m.epoch
}

// Prime meridian angle at t
func (m *SimpleRotationModel) MeridianAngle(t float64) float64 {
	return m.w0 + m.rate*(t-m.epoch)
}

func (m *SimpleRotationModel) RotationToBaseFrame(t float64) *mat.Dense {
	return m.compose(0, 0, 0, t)
}

func (m *SimpleRotationModel) RotationToBaseFrameDerivative(t float64) *mat.Dense {
	d := m.compose(0, 0, 1, t)
	d.Scale(m.rate, d)
	return d
}

// Rotation matrix from the base frame to the body-fixed frame
func (m *SimpleRotationModel) RotationToTargetFrame(t float64) *mat.Dense {
	r := m.RotationToBaseFrame(t)
	return mat.DenseCopyOf(r.T())
}

// Partial of the body-fixed to base rotation with respect to the meridian angle W
// (order 1 or 2) and the pole right ascension/declination (order 0 or 1 each).
//
//	R = R3(pi/2+ra)^T * R1(pi/2-dec)^T * R3(W)^T
func (m *SimpleRotationModel) compose(dra, ddec, dw int, t float64) *mat.Dense {
	a := rotZT(PI/2+m.ra, dra)
	b := rotXT(PI/2-m.dec, ddec)
	if ddec == 1 {
		b.Scale(-1, b) // d(pi/2-dec)/d(dec) = -1
	}
	c := rotZT(m.MeridianAngle(t), dw)
	var ab, r mat.Dense
	ab.Mul(a, b)
	r.Mul(&ab, c)
	return &r
}

// Transpose of the frame rotation about z, or its derivative of the given order
func rotZT(theta float64, order int) *mat.Dense {
	s, c := math.Sincos(theta)
	switch order {
	case 0:
		return mat.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
	case 1:
		return mat.NewDense(3, 3, []float64{-s, -c, 0, c, -s, 0, 0, 0, 0})
	case 2:
		return mat.NewDense(3, 3, []float64{-c, s, 0, -s, -c, 0, 0, 0, 0})
	default:
		panic(fmt.Sprintf("rotZT: unsupported derivative order %d", order))
	}
}

// Transpose of the frame rotation about x, or its first derivative
func rotXT(theta float64, order int) *mat.Dense {
	s, c := math.Sincos(theta)
	switch order {
	case 0:
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, -s, 0, s, c})
	case 1:
		return mat.NewDense(3, 3, []float64{0, 0, 0, 0, -s, -c, 0, c, -s})
	default:
		panic(fmt.Sprintf("rotXT: unsupported derivative order %d", order))
	}
}
