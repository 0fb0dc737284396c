// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Parameter is a handle over an estimated quantity of a body model.
// The model is shared with the body, so SetValue changes what the body returns.
type Parameter interface {
	Name() string
	Body() string
	Size() int
	Value() []float64
	SetValue(v []float64) error
	// Partial of the state of a link end, or nil when the link end is not affected
	statePartial(bodies Bodies, id LinkEndID) (CartesianStatePartial, error)
}

func checkParameterSize(p Parameter, v []float64) error {
	if len(v) != p.Size() {
		return fmt.Errorf("%w: %s has size %d, value has size %d", ErrConsistency, p.Name(), p.Size(), len(v))
	}
	return nil
}

// Body-fixed position of a station link end on the body (nil when id is not on it)
func stationOnBody(bodies Bodies, body string, id LinkEndID) (*r3.Vec, error) {
	if id.Body != body || id.Station == "" {
		return nil, nil
	}
	b, err := bodies.Get(body)
	if err != nil {
		return nil, err
	}
	st, err := b.Station(id.Station)
	if err != nil {
		return nil, err
	}
	pos := st.Position
	return &pos, nil
}

func simpleRotationOf(bodies Bodies, body string) (*SimpleRotationModel, error) {
	b, err := bodies.Get(body)
	if err != nil {
		return nil, err
	}
	m, ok := b.Rotation.(*SimpleRotationModel)
	if !ok {
		return nil, fmt.Errorf("%w: body %s has no simple rotation model", ErrConfiguration, body)
	}
	return m, nil
}

//-------------------------------------------------------------------
// Rotation rate
//-------------------------------------------------------------------

type RotationRate struct {
	body  string
	model *SimpleRotationModel
}

func NewRotationRateParameter(bodies Bodies, body string) (*RotationRate, error) {
	m, err := simpleRotationOf(bodies, body)
	if err != nil {
		return nil, err
	}
	return &RotationRate{body: body, model: m}, nil
}

func (p *RotationRate) Name() string     { return p.body + " rotation rate" }
func (p *RotationRate) Body() string     { return p.body }
func (p *RotationRate) Size() int        { return 1 }
func (p *RotationRate) Value() []float64 { return []float64{p.model.RotationRate()} }

func (p *RotationRate) SetValue(v []float64) error {
	if err := checkParameterSize(p, v); err != nil {
		return err
	}
	p.model.SetRotationRate(v[0])
	return nil
}

func (p *RotationRate) statePartial(bodies Bodies, id LinkEndID) (CartesianStatePartial, error) {
	st, err := stationOnBody(bodies, p.body, id)
	if err != nil || st == nil {
		return nil, err
	}
	return &rotationRatePartial{model: p.model, station: *st}, nil
}

//-------------------------------------------------------------------
// Pole orientation
//-------------------------------------------------------------------

// Right ascension and declination of the rotation pole
type PoleOrientation struct {
	body  string
	model *SimpleRotationModel
}

func NewPoleOrientationParameter(bodies Bodies, body string) (*PoleOrientation, error) {
	m, err := simpleRotationOf(bodies, body)
	if err != nil {
		return nil, err
	}
	return &PoleOrientation{body: body, model: m}, nil
}

func (p *PoleOrientation) Name() string { return p.body + " pole orientation" }
func (p *PoleOrientation) Body() string { return p.body }
func (p *PoleOrientation) Size() int    { return 2 }

func (p *PoleOrientation) Value() []float64 {
	ra, dec := p.model.Pole()
	return []float64{ra, dec}
}

func (p *PoleOrientation) SetValue(v []float64) error {
	if err := checkParameterSize(p, v); err != nil {
		return err
	}
	p.model.SetPole(v[0], v[1])
	return nil
}

func (p *PoleOrientation) statePartial(bodies Bodies, id LinkEndID) (CartesianStatePartial, error) {
	st, err := stationOnBody(bodies, p.body, id)
	if err != nil || st == nil {
		return nil, err
	}
	return &poleOrientationPartial{model: p.model, station: *st}, nil
}

//-------------------------------------------------------------------
// Body position
//-------------------------------------------------------------------

// Position of a body whose ephemeris is a StubEphemeris
type BodyPosition struct {
	body string
	eph  *StubEphemeris
}

func NewBodyPositionParameter(bodies Bodies, body string) (*BodyPosition, error) {
	b, err := bodies.Get(body)
	if err != nil {
		return nil, err
	}
	eph, ok := b.Ephemeris.(*StubEphemeris)
	if !ok {
		return nil, fmt.Errorf("%w: position of body %s is not adjustable", ErrConfiguration, body)
	}
	return &BodyPosition{body: body, eph: eph}, nil
}

func (p *BodyPosition) Name() string { return p.body + " position" }
func (p *BodyPosition) Body() string { return p.body }
func (p *BodyPosition) Size() int    { return 3 }

func (p *BodyPosition) Value() []float64 {
	s := p.eph.State()
	return []float64{s[0], s[1], s[2]}
}

func (p *BodyPosition) SetValue(v []float64) error {
	if err := checkParameterSize(p, v); err != nil {
		return err
	}
	s := p.eph.State()
	copy(s[:3], v)
	p.eph.SetState(s)
	return nil
}

func (p *BodyPosition) statePartial(bodies Bodies, id LinkEndID) (CartesianStatePartial, error) {
	if id.Body != p.body {
		return nil, nil
	}
	return bodyPositionPartial{}, nil
}
