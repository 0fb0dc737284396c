// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

// Implements observation models built on the light-time solution.

package gotrack

import (
	"errors"
	"fmt"
)

// ObservationSettings describes an observation model. Settings are read once
// when the model is built and are not retained.
type ObservationSettings struct {
	Observable           Observable
	LightTimeCorrections []LightTimeCorrectionSettings // Applied in order
	Bias                 BiasSettings                  // nil: no bias
	LightTime            LightTimeOptions              // Zero value: DefaultLightTimeOptions()
}

type ModelOption func(*ObservationModel)

// Record evaluations in a metrics collector
func WithMetrics(m *Metrics) ModelOption {
	return func(om *ObservationModel) {
		om.metrics = m
	}
}

// ObservationModel computes one observable between fixed link ends
type ObservationModel struct {
	linkEnds    LinkEnds
	observable  Observable
	solver      *LightTimeSolver
	corrections []LightTimeCorrection
	bias        ObservationBias
	metrics     *Metrics
}

// NewObservationModel validates the link ends against the observable and builds the
// link end ephemerides, light-time corrections and bias. Every failure is an ErrConfiguration.
func NewObservationModel(linkEnds LinkEnds, settings ObservationSettings, bodies Bodies, opts ...ModelOption) (*ObservationModel, error) {
	if settings.Observable == nil {
		return nil, fmt.Errorf("%w: observation settings without observable", ErrConfiguration)
	}
	if err := linkEnds.validate(settings.Observable.RequiredLinkEnds()); err != nil {
		return nil, fmt.Errorf("%s: %w", settings.Observable.Name(), err)
	}

	tx, err := bodies.LinkEndEphemeris(linkEnds[Transmitter])
	if err != nil {
		return nil, fmt.Errorf("transmitter %s: %w", linkEnds[Transmitter], err)
	}
	rx, err := bodies.LinkEndEphemeris(linkEnds[Receiver])
	if err != nil {
		return nil, fmt.Errorf("receiver %s: %w", linkEnds[Receiver], err)
	}

	corrs, err := NewLightTimeCorrections(settings.LightTimeCorrections, linkEnds, bodies)
	if err != nil {
		return nil, err
	}

	opt := settings.LightTime
	if opt == (LightTimeOptions{}) {
		opt = DefaultLightTimeOptions()
	}
	solver, err := NewLightTimeSolver(tx, rx, corrs, opt)
	if err != nil {
		return nil, err
	}

	bias, err := NewObservationBias(settings.Bias, settings.Observable.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", settings.Observable.Name(), err)
	}

	om := &ObservationModel{
		linkEnds:    copyLinkEnds(linkEnds),
		observable:  settings.Observable,
		solver:      solver,
		corrections: corrs,
		bias:        bias,
	}
	for _, o := range opts {
		o(om)
	}
	PrintD(2, "observation model %s: %s, %d corrections\n", om.observable.Name(), om.linkEnds, len(corrs))
	return om, nil
}

func copyLinkEnds(le LinkEnds) LinkEnds {
	c := LinkEnds{}
	for k, v := range le {
		c[k] = v
	}
	return c
}

func (om *ObservationModel) Observable() Observable {
	return om.observable
}

func (om *ObservationModel) LinkEnds() LinkEnds {
	return copyLinkEnds(om.linkEnds)
}

func (om *ObservationModel) BiasCalculator() ObservationBias {
	return om.bias
}

func (om *ObservationModel) LightTimeCorrections() []LightTimeCorrection {
	return append([]LightTimeCorrection(nil), om.corrections...)
}

// Observable value at time t of the fixed link end
func (om *ObservationModel) ComputeObservations(t float64, fixed LinkEndType) ([]float64, error) {
	obs, _, _, err := om.ComputeObservationsWithLinkEndData(t, fixed)
	return obs, err
}

// Observable value with the link end times and states, both ordered [transmitter, receiver]
func (om *ObservationModel) ComputeObservationsWithLinkEndData(t float64, fixed LinkEndType) ([]float64, []float64, []State, error) {
	sol, err := om.solver.Solve(t, fixed)
	if err != nil {
		om.metrics.observeFailure(om.observable.Name(), err)
		return nil, nil, nil, fmt.Errorf("%s at %.3f (fixed %s) failed, err=%w", om.observable.Name(), t, fixed, err)
	}
	times := sol.Times()
	states := sol.States()

	obs := om.observable.value(sol)
	bias := om.bias.Bias(times, states, obs)
	for i := range obs {
		obs[i] += bias[i]
	}
	om.metrics.observe(om.observable.Name(), sol.Iterations)
	PrintD(3, "\t%s: t=%.6f obs=%v iter=%d\n", om.observable.Name(), t, obs, sol.Iterations)
	return obs, times, states, nil
}

// Failure class used as a metrics label
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotConverged):
		return "not_converged"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "evaluation"
	}
}
