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

	"gonum.org/v1/gonum/spatial/r3"
)

// LightTimeCorrection returns a delay [s] added to the geometric light time.
// Implementations are pure functions of the link end states and times.
type LightTimeCorrection interface {
	Correction(txState, rxState State, txTime, rxTime float64) (float64, error)
}

// Settings of a light-time correction. The set of variants is closed.
type LightTimeCorrectionSettings interface {
	newCorrection(linkEnds LinkEnds, bodies Bodies) (LightTimeCorrection, error)
}

// Build the calculators of a list of settings, in order
func NewLightTimeCorrections(settings []LightTimeCorrectionSettings, linkEnds LinkEnds, bodies Bodies) ([]LightTimeCorrection, error) {
	corrs := make([]LightTimeCorrection, 0, len(settings))
	for i, s := range settings {
		if s == nil {
			return nil, fmt.Errorf("%w: light time correction %d is nil", ErrConfiguration, i)
		}
		c, err := s.newCorrection(linkEnds, bodies)
		if err != nil {
			return nil, fmt.Errorf("light time correction %d: %w", i, err)
		}
		corrs = append(corrs, c)
	}
	return corrs, nil
}

//-------------------------------------------------------------------
// First-order relativistic (Shapiro) delay
//-------------------------------------------------------------------

type FirstOrderRelativisticSettings struct {
	PerturbingBodies []string // Bodies whose gravity delays the signal
	PPNGamma         float64  // PPN parameter gamma (0: general relativity value 1)
}

func (s FirstOrderRelativisticSettings) newCorrection(linkEnds LinkEnds, bodies Bodies) (LightTimeCorrection, error) {
	return NewFirstOrderRelativisticCorrection(bodies, s.PerturbingBodies, s.PPNGamma)
}

type perturbingBody struct {
	name string
	eph  Ephemeris
	gm   float64
}

type FirstOrderRelativisticCorrection struct {
	bodies []perturbingBody
	gamma  float64
}

func NewFirstOrderRelativisticCorrection(bodies Bodies, names []string, gamma float64) (*FirstOrderRelativisticCorrection, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: relativistic correction without perturbing bodies", ErrConfiguration)
	}
	if gamma == 0 {
		gamma = 1
	}
	corr := &FirstOrderRelativisticCorrection{gamma: gamma}
	for _, n := range names {
		b, err := bodies.Get(n)
		if err != nil {
			return nil, err
		}
		if b.Ephemeris == nil {
			return nil, fmt.Errorf("%w: perturbing body %s has no ephemeris", ErrConfiguration, n)
		}
		if !(b.GM > 0) {
			return nil, fmt.Errorf("%w: perturbing body %s has no gravitational parameter", ErrConfiguration, n)
		}
		corr.bodies = append(corr.bodies, perturbingBody{name: n, eph: b.Ephemeris, gm: b.GM})
	}
	return corr, nil
}

// Perturbing body positions are taken at the mid time of the link.
func (c *FirstOrderRelativisticCorrection) Correction(txState, rxState State, txTime, rxTime float64) (float64, error) {
	xt := txState.Position()
	xr := rxState.Position()
	rtr := EucDist(xt, xr)
	tm := 0.5 * (txTime + rxTime)

	dt := 0.0
	for _, b := range c.bodies {
		bs, err := b.eph.CartesianState(tm)
		if err != nil {
			return 0, fmt.Errorf("ephemeris of %s failed, err=%w", b.name, err)
		}
		d, err := shapiroDelay(xt, xr, bs.Position(), rtr, b.gm, c.gamma)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", b.name, err)
		}
		dt += d
	}
	return dt, nil
}

func shapiroDelay(xt, xr, xb r3.Vec, rtr, gm, gamma float64) (float64, error) {
	rt := EucDist(xb, xt)
	rr := EucDist(xb, xr)
	den := rt + rr - rtr
	if !(den > 0) {
		return 0, fmt.Errorf("signal path passes through the body centre")
	}
	return (1 + gamma) * gm / (C * C * C) * math.Log((rt+rr+rtr)/den), nil
}
