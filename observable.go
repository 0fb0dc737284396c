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
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind of observable. The set of variants is closed.
type Observable interface {
	Name() string
	Size() int
	RequiredLinkEnds() []LinkEndType
	// Unbiased value from a converged light time
	value(sol *LightTimeSolution) []float64
}

var oneWayLinkEnds = []LinkEndType{Transmitter, Receiver}

// Distance travelled by the signal [m]
type OneWayRange struct{}

func (OneWayRange) Name() string                    { return "one_way_range" }
func (OneWayRange) Size() int                       { return 1 }
func (OneWayRange) RequiredLinkEnds() []LinkEndType { return oneWayLinkEnds }

func (OneWayRange) value(sol *LightTimeSolution) []float64 {
	return []float64{sol.Distance + sol.Correction*C}
}

// Fractional frequency shift (f_T - f_R)/f_T to first order in the link end velocities
type OneWayDoppler struct{}

func (OneWayDoppler) Name() string                    { return "one_way_doppler" }
func (OneWayDoppler) Size() int                       { return 1 }
func (OneWayDoppler) RequiredLinkEnds() []LinkEndType { return oneWayLinkEnds }

func (OneWayDoppler) value(sol *LightTimeSolution) []float64 {
	n := LineOfSight(sol.TransmitterState.Position(), sol.ReceiverState.Position())
	vr := r3.Dot(n, sol.ReceiverState.Velocity())
	vt := r3.Dot(n, sol.TransmitterState.Velocity())
	return []float64{(vr - vt) / (C - vt)}
}

// Right ascension and declination [rad] of the transmitter seen from the receiver
type AngularPosition struct{}

func (AngularPosition) Name() string                    { return "angular_position" }
func (AngularPosition) Size() int                       { return 2 }
func (AngularPosition) RequiredLinkEnds() []LinkEndType { return oneWayLinkEnds }

func (AngularPosition) value(sol *LightTimeSolution) []float64 {
	d := r3.Sub(sol.TransmitterState.Position(), sol.ReceiverState.Position())
	n := r3.Norm(d)
	if n == 0 {
		return []float64{0, 0}
	}
	return []float64{math.Atan2(d.Y, d.X), math.Asin(d.Z / n)}
}

func ParseObservable(s string) (Observable, error) {
	switch strings.ToLower(s) {
	case "one_way_range":
		return OneWayRange{}, nil
	case "one_way_doppler":
		return OneWayDoppler{}, nil
	case "angular_position":
		return AngularPosition{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown observable %q", ErrConfiguration, s)
	}
}
