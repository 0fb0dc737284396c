// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.13
//

package gotrack

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

//-------------------------------------------------------------------
// GroundStation
//-------------------------------------------------------------------

// Point fixed on the surface of a body
type GroundStation struct {
	Name     string
	Position r3.Vec // Body-fixed position [m]
}

func NewGroundStation(name string, pos r3.Vec) *GroundStation {
	return &GroundStation{Name: name, Position: pos}
}

// Station from geodetic coordinates on a body shape
func NewGeodeticGroundStation(name string, shape *Ellipsoid, llh PosLLH) (*GroundStation, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: station %s: geodetic position needs a body shape", ErrConfiguration, name)
	}
	if err := shape.validate(); err != nil {
		return nil, fmt.Errorf("%w: station %s: %v", ErrConfiguration, name, err)
	}
	return NewGroundStation(name, shape.ToXYZ(llh)), nil
}

//-------------------------------------------------------------------
// Body
//-------------------------------------------------------------------

type Body struct {
	Name      string
	Ephemeris Ephemeris     // Translational state of the body centre
	Rotation  RotationModel // Orientation of the body-fixed frame (optional)
	GM        float64       // Gravitational parameter [m^3/s^2] (0: unknown)
	Shape     *Ellipsoid    // Shape for geodetic coordinates (optional)
	Stations  map[string]*GroundStation
}

func NewBody(name string, eph Ephemeris) *Body {
	return &Body{
		Name:      name,
		Ephemeris: eph,
		Stations:  map[string]*GroundStation{},
	}
}

func (b *Body) AddStation(st *GroundStation) error {
	if st == nil || st.Name == "" {
		return fmt.Errorf("%w: body %s: station without name", ErrConfiguration, b.Name)
	}
	if b.Stations == nil {
		b.Stations = map[string]*GroundStation{}
	}
	if _, ok := b.Stations[st.Name]; ok {
		return fmt.Errorf("%w: body %s: duplicate station %s", ErrConfiguration, b.Name, st.Name)
	}
	b.Stations[st.Name] = st
	return nil
}

func (b *Body) Station(name string) (*GroundStation, error) {
	st, ok := b.Stations[name]
	if !ok {
		return nil, fmt.Errorf("%w: body %s has no station %s", ErrConfiguration, b.Name, name)
	}
	return st, nil
}

// Names of the stations in ascending order
func (b *Body) StationNames() []string {
	names := make([]string, 0, len(b.Stations))
	for n := range b.Stations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

//-------------------------------------------------------------------
// Bodies
//-------------------------------------------------------------------

// Bodies taking part in observations, by name
type Bodies map[string]*Body

func (bs Bodies) Add(b *Body) error {
	if b == nil || b.Name == "" {
		return fmt.Errorf("%w: body without name", ErrConfiguration)
	}
	if _, ok := bs[b.Name]; ok {
		return fmt.Errorf("%w: duplicate body %s", ErrConfiguration, b.Name)
	}
	bs[b.Name] = b
	return nil
}

func (bs Bodies) Get(name string) (*Body, error) {
	b, ok := bs[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown body %s", ErrConfiguration, name)
	}
	return b, nil
}

// Ephemeris of a link end: the body centre, or a station carried by the body rotation
func (bs Bodies) LinkEndEphemeris(id LinkEndID) (Ephemeris, error) {
	b, err := bs.Get(id.Body)
	if err != nil {
		return nil, err
	}
	if b.Ephemeris == nil {
		return nil, fmt.Errorf("%w: body %s has no ephemeris", ErrConfiguration, b.Name)
	}
	if id.Station == "" {
		return b.Ephemeris, nil
	}
	st, err := b.Station(id.Station)
	if err != nil {
		return nil, err
	}
	if b.Rotation == nil {
		return nil, fmt.Errorf("%w: body %s has stations but no rotation model", ErrConfiguration, b.Name)
	}
	return &StationEphemeris{body: b.Ephemeris, rotation: b.Rotation, station: st.Position}, nil
}

//-------------------------------------------------------------------
// StationEphemeris
//-------------------------------------------------------------------

// Inertial state of a body-fixed point
type StationEphemeris struct {
	body     Ephemeris
	rotation RotationModel
	station  r3.Vec
}

func NewStationEphemeris(body Ephemeris, rotation RotationModel, station r3.Vec) *StationEphemeris {
	return &StationEphemeris{body: body, rotation: rotation, station: station}
}

func (e *StationEphemeris) CartesianState(t float64) (State, error) {
	bs, err := e.body.CartesianState(t)
	if err != nil {
		return State{}, err
	}
	pos := MulVec(e.rotation.RotationToBaseFrame(t), e.station)
	vel := MulVec(e.rotation.RotationToBaseFrameDerivative(t), e.station)
	return bs.Add(NewState(pos, vel)), nil
}
