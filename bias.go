// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.13
//

package gotrack

import (
	"fmt"
)

// ObservationBias computes the bias added to an observable. The link end times,
// states and the unbiased observable may be empty, in which case only the
// time-independent part of the bias is returned.
type ObservationBias interface {
	Size() int
	Bias(times []float64, states []State, observable []float64) []float64
}

// Settings of an observation bias. The set of variants is closed.
type BiasSettings interface {
	newBias(size int) (ObservationBias, error)
}

// Build the bias of an observable of the given size (nil settings: zero bias)
func NewObservationBias(settings BiasSettings, size int) (ObservationBias, error) {
	if settings == nil {
		return &constantBias{values: make([]float64, size)}, nil
	}
	return settings.newBias(size)
}

func checkBiasSize(name string, values []float64, size int) error {
	if len(values) != size {
		return fmt.Errorf("%w: %s bias has size %d, observable has size %d", ErrConfiguration, name, len(values), size)
	}
	return nil
}

//-------------------------------------------------------------------
// Constant bias
//-------------------------------------------------------------------

type ConstantBias struct {
	Values []float64
}

func (s ConstantBias) newBias(size int) (ObservationBias, error) {
	if err := checkBiasSize("constant", s.Values, size); err != nil {
		return nil, err
	}
	return &constantBias{values: append([]float64(nil), s.Values...)}, nil
}

type constantBias struct {
	values []float64
}

func (b *constantBias) Size() int {
	return len(b.values)
}

func (b *constantBias) Bias(times []float64, states []State, observable []float64) []float64 {
	return append([]float64(nil), b.values...)
}

//-------------------------------------------------------------------
// Relative bias
//-------------------------------------------------------------------

// Bias proportional to the observable
type RelativeBias struct {
	Values []float64
}

func (s RelativeBias) newBias(size int) (ObservationBias, error) {
	if err := checkBiasSize("relative", s.Values, size); err != nil {
		return nil, err
	}
	return &relativeBias{factors: append([]float64(nil), s.Values...)}, nil
}

type relativeBias struct {
	factors []float64
}

func (b *relativeBias) Size() int {
	return len(b.factors)
}

func (b *relativeBias) Bias(times []float64, states []State, observable []float64) []float64 {
	out := make([]float64, len(b.factors))
	if len(observable) != len(b.factors) {
		return out
	}
	for i, f := range b.factors {
		out[i] = f * observable[i]
	}
	return out
}

//-------------------------------------------------------------------
// Multiple bias
//-------------------------------------------------------------------

// Sum of several biases
type MultipleBias struct {
	Biases []BiasSettings
}

func (s MultipleBias) newBias(size int) (ObservationBias, error) {
	if len(s.Biases) == 0 {
		return nil, fmt.Errorf("%w: multiple bias without biases", ErrConfiguration)
	}
	mb := &multipleBias{size: size}
	for i, bs := range s.Biases {
		if bs == nil {
			return nil, fmt.Errorf("%w: bias %d is nil", ErrConfiguration, i)
		}
		b, err := bs.newBias(size)
		if err != nil {
			return nil, fmt.Errorf("bias %d: %w", i, err)
		}
		mb.biases = append(mb.biases, b)
	}
	return mb, nil
}

type multipleBias struct {
	size   int
	biases []ObservationBias
}

func (b *multipleBias) Size() int {
	return b.size
}

func (b *multipleBias) Bias(times []float64, states []State, observable []float64) []float64 {
	out := make([]float64, b.size)
	for _, bb := range b.biases {
		for i, v := range bb.Bias(times, states, observable) {
			out[i] += v
		}
	}
	return out
}
