// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

// Implements the light-time solution between a transmitter and a receiver.

package gotrack

import (
	"fmt"
	"math"
)

// Calculation constants for the light-time iteration
const (
	LT_MAX_LOOP_COUNT        = 50    // Maximum number of light-time updates
	LT_CONVERGENCE_THRESHOLD = 1e-12 // Convergence threshold of the light time [s]
)

// LightTimeOptions controls the light-time iteration
type LightTimeOptions struct {
	Tolerance     float64 // Convergence threshold of the light time [s]
	MaxIterations int     // Maximum number of updates of the free link end time
}

// DefaultLightTimeOptions returns options with default values
func DefaultLightTimeOptions() LightTimeOptions {
	return LightTimeOptions{
		Tolerance:     LT_CONVERGENCE_THRESHOLD,
		MaxIterations: LT_MAX_LOOP_COUNT,
	}
}

// LightTimeSolution holds the link end times and states of a converged light time.
// States always belong to the times stored with them.
type LightTimeSolution struct {
	TransmissionTime float64 // [s]
	ReceptionTime    float64 // [s]
	TransmitterState State
	ReceiverState    State
	Distance         float64 // Geometric distance between the link ends [m]
	Correction       float64 // Sum of the light-time corrections [s]
	LightTime        float64 // Distance/C + Correction [s]
	Iterations       int     // Number of updates of the free link end time
}

// Link end times ordered [transmitter, receiver]
func (s *LightTimeSolution) Times() []float64 {
	return []float64{s.TransmissionTime, s.ReceptionTime}
}

// Link end states ordered [transmitter, receiver]
func (s *LightTimeSolution) States() []State {
	return []State{s.TransmitterState, s.ReceiverState}
}

// LightTimeSolver solves the light-time equation between two ephemerides
type LightTimeSolver struct {
	tx          Ephemeris
	rx          Ephemeris
	corrections []LightTimeCorrection
	opt         LightTimeOptions
}

func NewLightTimeSolver(tx, rx Ephemeris, corrections []LightTimeCorrection, opt LightTimeOptions) (*LightTimeSolver, error) {
	if tx == nil || rx == nil {
		return nil, fmt.Errorf("%w: light time solver needs transmitter and receiver ephemerides", ErrConfiguration)
	}
	if !(opt.Tolerance > 0) || opt.MaxIterations < 1 {
		return nil, fmt.Errorf("%w: invalid light time options tolerance=%g max=%d", ErrConfiguration, opt.Tolerance, opt.MaxIterations)
	}
	return &LightTimeSolver{tx: tx, rx: rx, corrections: corrections, opt: opt}, nil
}

// Solve holds the time of the fixed link end at t and iterates the time of the other one
// until the light time changes by less than the tolerance.
//
// Parameters:
//   - t: Time of the fixed link end [s]
//   - fixed: Transmitter or Receiver
//
// Returns:
//   - LightTimeSolution: times, states, distance and correction of the last evaluation
//   - error: ErrConsistency for another fixed role, ErrNotConverged past the iteration cap,
//     or an ephemeris/correction failure
func (s *LightTimeSolver) Solve(t float64, fixed LinkEndType) (*LightTimeSolution, error) {
	if fixed != Transmitter && fixed != Receiver {
		return nil, fmt.Errorf("%w: light time cannot be solved with fixed %s", ErrConsistency, fixed)
	}

	sol := &LightTimeSolution{TransmissionTime: t, ReceptionTime: t}

	// State of the fixed link end is needed only once
	var err error
	if fixed == Receiver {
		sol.ReceiverState, err = s.rx.CartesianState(t)
	} else {
		sol.TransmitterState, err = s.tx.CartesianState(t)
	}
	if err != nil {
		return nil, fmt.Errorf("ephemeris of fixed %s failed, err=%w", fixed, err)
	}

	prev := 0.0
	for {
		// State of the free link end at its current time
		if fixed == Receiver {
			sol.TransmitterState, err = s.tx.CartesianState(sol.TransmissionTime)
		} else {
			sol.ReceiverState, err = s.rx.CartesianState(sol.ReceptionTime)
		}
		if err != nil {
			return nil, fmt.Errorf("ephemeris failed at iteration %d, err=%w", sol.Iterations, err)
		}

		lt, err := s.evaluate(sol)
		if err != nil {
			return nil, err
		}
		PrintD(3, "\tlight time loop %2d: lt=%.15f dlt=%.3e\n", sol.Iterations, lt, lt-prev)

		// Check convergence
		if math.Abs(lt-prev) < s.opt.Tolerance {
			sol.LightTime = lt
			return sol, nil
		}
		if sol.Iterations >= s.opt.MaxIterations {
			return nil, fmt.Errorf("%w: number of loop reached max (%d), dlt=%.3e", ErrNotConverged, s.opt.MaxIterations, lt-prev)
		}

		// Update the free link end time
		if fixed == Receiver {
			sol.TransmissionTime = t - lt
		} else {
			sol.ReceptionTime = t + lt
		}
		sol.Iterations++
		prev = lt
	}
}

// Light time at the current link end states and times
func (s *LightTimeSolver) evaluate(sol *LightTimeSolution) (float64, error) {
	sol.Distance = EucDist(sol.TransmitterState.Position(), sol.ReceiverState.Position())
	sol.Correction = 0
	for i, c := range s.corrections {
		d, err := c.Correction(sol.TransmitterState, sol.ReceiverState, sol.TransmissionTime, sol.ReceptionTime)
		if err != nil {
			return 0, fmt.Errorf("light time correction %d failed, err=%w", i, err)
		}
		sol.Correction += d
	}
	return sol.Distance/C + sol.Correction, nil
}
