// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

// Implements analytic partials of link end states with respect to parameters.

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CartesianStatePartial gives the partials of the position and velocity of a
// link end with respect to a parameter, as 3 x Size() matrices.
type CartesianStatePartial interface {
	Size() int
	PartialOfPosition(state State, t float64) *mat.Dense
	PartialOfVelocity(state State, t float64) *mat.Dense
}

// Partials for every link end affected by the position of a body
func NewCartesianStatePartialsWrtBodyPosition(linkEnds LinkEnds, bodies Bodies, body string) (map[LinkEndType]CartesianStatePartial, error) {
	if _, err := bodies.Get(body); err != nil {
		return nil, err
	}
	partials := map[LinkEndType]CartesianStatePartial{}
	for t, id := range linkEnds {
		if id.Body == body {
			partials[t] = bodyPositionPartial{}
		}
	}
	if len(partials) == 0 {
		return nil, fmt.Errorf("%w: no link end in %s depends on the position of %s", ErrConsistency, linkEnds, body)
	}
	return partials, nil
}

// Partials for every link end affected by a parameter
func NewCartesianStatePartialsWrtParameter(linkEnds LinkEnds, bodies Bodies, p Parameter) (map[LinkEndType]CartesianStatePartial, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil parameter", ErrConsistency)
	}
	partials := map[LinkEndType]CartesianStatePartial{}
	for t, id := range linkEnds {
		sp, err := p.statePartial(bodies, id)
		if err != nil {
			return nil, fmt.Errorf("%s partial of %s: %w", p.Name(), t, err)
		}
		if sp != nil {
			partials[t] = sp
		}
	}
	if len(partials) == 0 {
		return nil, fmt.Errorf("%w: no link end in %s depends on %s", ErrConsistency, linkEnds, p.Name())
	}
	return partials, nil
}

//-------------------------------------------------------------------
// Body position
//-------------------------------------------------------------------

type bodyPositionPartial struct{}

func (bodyPositionPartial) Size() int { return 3 }

func (bodyPositionPartial) PartialOfPosition(state State, t float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func (bodyPositionPartial) PartialOfVelocity(state State, t float64) *mat.Dense {
	return mat.NewDense(3, 3, nil)
}

//-------------------------------------------------------------------
// Rotation rate
//-------------------------------------------------------------------

type rotationRatePartial struct {
	model   *SimpleRotationModel
	station r3.Vec
}

func (p *rotationRatePartial) Size() int { return 1 }

// d(R r)/d(rate) = dR/dW * (t - epoch) * r
func (p *rotationRatePartial) PartialOfPosition(state State, t float64) *mat.Dense {
	dt := t - p.model.Epoch()
	d := MulVec(p.model.compose(0, 0, 1, t), p.station)
	m := mat.NewDense(3, 1, nil)
	setColVec(m, 0, r3.Scale(dt, d))
	return m
}

// d(rate * dR/dW * r)/d(rate) = dR/dW * r + rate * (t - epoch) * d2R/dW2 * r
func (p *rotationRatePartial) PartialOfVelocity(state State, t float64) *mat.Dense {
	dt := t - p.model.Epoch()
	d1 := MulVec(p.model.compose(0, 0, 1, t), p.station)
	d2 := MulVec(p.model.compose(0, 0, 2, t), p.station)
	m := mat.NewDense(3, 1, nil)
	setColVec(m, 0, r3.Add(d1, r3.Scale(p.model.RotationRate()*dt, d2)))
	return m
}

//-------------------------------------------------------------------
// Pole orientation
//-------------------------------------------------------------------

type poleOrientationPartial struct {
	model   *SimpleRotationModel
	station r3.Vec
}

func (p *poleOrientationPartial) Size() int { return 2 }

// Columns: right ascension, declination
func (p *poleOrientationPartial) PartialOfPosition(state State, t float64) *mat.Dense {
	m := mat.NewDense(3, 2, nil)
	setColVec(m, 0, MulVec(p.model.compose(1, 0, 0, t), p.station))
	setColVec(m, 1, MulVec(p.model.compose(0, 1, 0, t), p.station))
	return m
}

func (p *poleOrientationPartial) PartialOfVelocity(state State, t float64) *mat.Dense {
	w := p.model.RotationRate()
	m := mat.NewDense(3, 2, nil)
	setColVec(m, 0, r3.Scale(w, MulVec(p.model.compose(1, 0, 1, t), p.station)))
	setColVec(m, 1, r3.Scale(w, MulVec(p.model.compose(0, 1, 1, t), p.station)))
	return m
}
