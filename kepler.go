// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	KEPLER_MAX_ITER  = 30    // Maximum number of Newton steps for the Kepler equation
	KEPLER_THRESHOLD = 1e-14 // Convergence threshold of the eccentric anomaly [rad]
)

// Two-body orbit around a centre of attraction
type KeplerEphemeris struct {
	SemiMajorAxis float64   // [m]
	Eccentricity  float64   // 0 <= e < 1
	Inclination   float64   // [rad]
	RAAN          float64   // Right ascension of the ascending node [rad]
	ArgPeriapsis  float64   // Argument of periapsis [rad]
	MeanAnomaly   float64   // Mean anomaly at Epoch [rad]
	Epoch         float64   // Epoch of the elements [s]
	GM            float64   // Gravitational parameter of the centre [m^3/s^2]
	Center        Ephemeris // Ephemeris of the centre (nil: origin of the base frame)
}

func (e *KeplerEphemeris) validate() error {
	if !(e.SemiMajorAxis > 0) {
		return fmt.Errorf("invalid semi-major axis %g", e.SemiMajorAxis)
	}
	if e.Eccentricity < 0 || e.Eccentricity >= 1 {
		return fmt.Errorf("invalid eccentricity %g", e.Eccentricity)
	}
	if !(e.GM > 0) {
		return fmt.Errorf("invalid gravitational parameter %g", e.GM)
	}
	return nil
}

// Solve the Kepler equation E - e*sin(E) = M
func EccentricAnomaly(mk, ecc float64) (float64, error) {
	ek := mk
	if ecc > 0.8 {
		ek = math.Copysign(PI, mk)
	}
	for i := 0; i < KEPLER_MAX_ITER; i++ {
		d := (ek - ecc*math.Sin(ek) - mk) / (1 - ecc*math.Cos(ek))
		ek -= d
		if math.Abs(d) < KEPLER_THRESHOLD {
			return ek, nil
		}
	}
	return 0, fmt.Errorf("kepler equation not converged, M=%g e=%g", mk, ecc)
}

func (e *KeplerEphemeris) CartesianState(t float64) (State, error) {
	if err := e.validate(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	a := e.SemiMajorAxis
	n := math.Sqrt(e.GM / (a * a * a))
	mk := math.Remainder(e.MeanAnomaly+n*(t-e.Epoch), 2*PI)
	ek, err := EccentricAnomaly(mk, e.Eccentricity)
	if err != nil {
		return State{}, err
	}

	// Position and velocity in the orbital plane
	sq := math.Sqrt(1 - e.Eccentricity*e.Eccentricity)
	sinE, cosE := math.Sincos(ek)
	den := 1 - e.Eccentricity*cosE
	xk := a * (cosE - e.Eccentricity)
	yk := a * sq * sinE
	vxk := -a * n * sinE / den
	vyk := a * n * sq * cosE / den

	// Rotate to the base frame
	so, co := math.Sincos(e.RAAN)
	sw, cw := math.Sincos(e.ArgPeriapsis)
	si, ci := math.Sincos(e.Inclination)
	p := r3.Vec{X: co*cw - so*sw*ci, Y: so*cw + co*sw*ci, Z: sw * si}
	q := r3.Vec{X: -co*sw - so*cw*ci, Y: -so*sw + co*cw*ci, Z: cw * si}
	pos := r3.Add(r3.Scale(xk, p), r3.Scale(yk, q))
	vel := r3.Add(r3.Scale(vxk, p), r3.Scale(vyk, q))

	cs, err := centerState(e.Center, t)
	if err != nil {
		return State{}, err
	}
	return NewState(pos, vel).Add(cs), nil
}

// Orbital period [s]
func (e *KeplerEphemeris) Period() float64 {
	a := e.SemiMajorAxis
	return 2 * PI * math.Sqrt(a*a*a/e.GM)
}
