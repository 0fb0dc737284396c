// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ephemeris returns the Cartesian state of a point in the inertial base frame
// at a time given in seconds past J2000.
type Ephemeris interface {
	CartesianState(t float64) (State, error)
}

// Fixed state at all times
type ConstantEphemeris struct {
	state State
}

func NewConstantEphemeris(state State) *ConstantEphemeris {
	return &ConstantEphemeris{state: state}
}

func (e *ConstantEphemeris) CartesianState(t float64) (State, error) {
	return e.state, nil
}

// StubEphemeris holds a constant state that may be overwritten through SetState.
// Parameters built on it let the numerical verifier perturb a body position.
type StubEphemeris struct {
	state State
}

func NewStubEphemeris(state State) *StubEphemeris {
	return &StubEphemeris{state: state}
}

func (e *StubEphemeris) CartesianState(t float64) (State, error) {
	return e.state, nil
}

func (e *StubEphemeris) State() State {
	return e.state
}

func (e *StubEphemeris) SetState(state State) {
	e.state = state
}

// State of an optional centre ephemeris (zero state when nil)
func centerState(center Ephemeris, t float64) (State, error) {
	if center == nil {
		return State{}, nil
	}
	s, err := center.CartesianState(t)
	if err != nil {
		return State{}, fmt.Errorf("center ephemeris failed, err=%w", err)
	}
	return s, nil
}

// Linear motion from a reference state, useful for simple link end models
type LinearEphemeris struct {
	Epoch float64 // Reference time [s]
	Pos   r3.Vec  // Position at the reference time [m]
	Vel   r3.Vec  // Constant velocity [m/s]
}

func (e *LinearEphemeris) CartesianState(t float64) (State, error) {
	return NewState(r3.Add(e.Pos, r3.Scale(t-e.Epoch, e.Vel)), e.Vel), nil
}
