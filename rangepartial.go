// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// OneWayRangePartial is the partial of a one-way range with respect to a parameter,
// built from the state partials of the transmitter and receiver. The dependence of the
// light-time corrections on the parameter is neglected.
type OneWayRangePartial struct {
	name     string
	size     int
	partials map[LinkEndType]CartesianStatePartial
}

func NewOneWayRangePartial(linkEnds LinkEnds, bodies Bodies, p Parameter) (*OneWayRangePartial, error) {
	if err := linkEnds.validate(OneWayRange{}.RequiredLinkEnds()); err != nil {
		return nil, err
	}
	partials, err := NewCartesianStatePartialsWrtParameter(linkEnds, bodies, p)
	if err != nil {
		return nil, err
	}
	return &OneWayRangePartial{name: p.Name(), size: p.Size(), partials: partials}, nil
}

func (rp *OneWayRangePartial) Size() int {
	return rp.size
}

// Partial (1 x Size()) at the link end times and states returned with the observation.
//
//	d(range)/dp = n.(dxR/dp - dxT/dp) / (1 - n.v/C)
//
// with n the unit vector from transmitter to receiver and v the velocity of the
// link end whose time is not fixed.
func (rp *OneWayRangePartial) Partial(times []float64, states []State, fixed LinkEndType) (*mat.Dense, error) {
	if len(times) != 2 || len(states) != 2 {
		return nil, fmt.Errorf("%w: one-way range needs 2 link end times and states, got %d and %d", ErrConsistency, len(times), len(states))
	}
	var free State
	switch fixed {
	case Receiver:
		free = states[0]
	case Transmitter:
		free = states[1]
	default:
		return nil, fmt.Errorf("%w: one-way range partial cannot be computed with fixed %s", ErrConsistency, fixed)
	}

	n := LineOfSight(states[0].Position(), states[1].Position())
	scale := 1 / (1 - r3.Dot(n, free.Velocity())/C)

	row := mat.NewDense(1, rp.size, nil)
	for i, t := range []LinkEndType{Transmitter, Receiver} {
		sp, ok := rp.partials[t]
		if !ok {
			continue
		}
		sign := 1.0
		if t == Transmitter {
			sign = -1.0
		}
		dp := sp.PartialOfPosition(states[i], times[i])
		for j := 0; j < rp.size; j++ {
			v := n.X*dp.At(0, j) + n.Y*dp.At(1, j) + n.Z*dp.At(2, j)
			row.Set(0, j, row.At(0, j)+sign*scale*v)
		}
	}
	PrintD(4, "range partial wrt %s:\n", rp.name)
	PrintMatD(4, row)
	return row, nil
}
