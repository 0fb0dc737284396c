// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for observation evaluations.
// A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Observations *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Iterations   *prometheus.HistogramVec
	PartialError *prometheus.GaugeVec
}

// NewMetrics registers the collectors against reg (nil: the default registry).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	obs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrack_observations_total",
		Help: "Number of computed observations, by observable.",
	}, []string{"observable"}), "gotrack_observations_total")
	if err != nil {
		return nil, err
	}
	fails, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrack_observation_failures_total",
		Help: "Number of failed observation evaluations, by observable and reason.",
	}, []string{"observable", "reason"}), "gotrack_observation_failures_total")
	if err != nil {
		return nil, err
	}
	iters, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gotrack_light_time_iterations",
		Help:    "Number of light-time updates until convergence.",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 7, 10, 20, 50},
	}, []string{"observable"}), "gotrack_light_time_iterations")
	if err != nil {
		return nil, err
	}
	perr, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gotrack_partial_check_relative_error",
		Help: "Largest relative difference between analytic and numerical partials, by parameter.",
	}, []string{"parameter"}), "gotrack_partial_check_relative_error")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:     gatherer,
		Observations: obs,
		Failures:     fails,
		Iterations:   iters,
		PartialError: perr,
	}, nil
}

// Gatherer the collectors were registered with
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil || m.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return m.gatherer
}

// Write the current metrics in text exposition format
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

func (m *Metrics) observe(observable string, iterations int) {
	if m == nil {
		return
	}
	m.Observations.WithLabelValues(observable).Inc()
	m.Iterations.WithLabelValues(observable).Observe(float64(iterations))
}

func (m *Metrics) observeFailure(observable string, err error) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(observable, failureReason(err)).Inc()
}

// Record the outcome of an analytic vs numerical partial comparison
func (m *Metrics) SetPartialError(parameter string, relErr float64) {
	if m == nil {
		return
	}
	m.PartialError.WithLabelValues(parameter).Set(relErr)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
