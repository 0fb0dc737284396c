// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

// Scenario files describing bodies, link ends and observations in YAML.

package gotrack

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ------------------------------------
// Scenario file structure
// ------------------------------------

type Scenario struct {
	Bodies       []BodyConfig        `yaml:"bodies"`
	Observations []ObservationConfig `yaml:"observations"`
	Partials     []ParameterConfig   `yaml:"partials"`
	Simulation   SimulationConfig    `yaml:"simulation"`
	LightTime    LightTimeConfig     `yaml:"light_time"`
}

type BodyConfig struct {
	Name      string          `yaml:"name"`
	GM        float64         `yaml:"gm"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	Rotation  *RotationConfig `yaml:"rotation"`
	Shape     *ShapeConfig    `yaml:"shape"`
	Stations  []StationConfig `yaml:"stations"`
}

// Ephemeris types: constant, stub, kepler, tle
type EphemerisConfig struct {
	Type   string        `yaml:"type"`
	State  []float64     `yaml:"state"` // constant, stub: x y z vx vy vz [m, m/s]
	Kepler *KeplerConfig `yaml:"kepler"`
	TLE    *TLEConfig    `yaml:"tle"`
}

// Angles in degrees
type KeplerConfig struct {
	SemiMajorAxis float64 `yaml:"a"`
	Eccentricity  float64 `yaml:"e"`
	Inclination   float64 `yaml:"i"`
	RAAN          float64 `yaml:"raan"`
	ArgPeriapsis  float64 `yaml:"argp"`
	MeanAnomaly   float64 `yaml:"m0"`
	Epoch         TimeStr `yaml:"epoch"`
	GM            float64 `yaml:"gm"`     // 0: GM of the centre body
	Center        string  `yaml:"center"` // Name of a body defined earlier (empty: origin)
}

type TLEConfig struct {
	Line1  string  `yaml:"line1"`
	Line2  string  `yaml:"line2"`
	Step   int     `yaml:"step"`   // Sampling step [s] (0: 60)
	Margin float64 `yaml:"margin"` // Span added around the simulation [s] (0: 3600)
	Center string  `yaml:"center"`
}

// Angles in degrees, rate in rad/s
type RotationConfig struct {
	RA    float64 `yaml:"ra"`
	Dec   float64 `yaml:"dec"`
	W0    float64 `yaml:"w0"`
	Rate  float64 `yaml:"rate"`
	Epoch TimeStr `yaml:"epoch"`
}

type ShapeConfig struct {
	Radius     float64 `yaml:"radius"`
	Flattening float64 `yaml:"flattening"`
}

// Either a body-fixed position [m] or geodetic coordinates [deg, deg, m]
type StationConfig struct {
	Name     string    `yaml:"name"`
	Position []float64 `yaml:"position"`
	Geodetic *struct {
		Lat    float64 `yaml:"lat"`
		Lon    float64 `yaml:"lon"`
		Height float64 `yaml:"height"`
	} `yaml:"geodetic"`
}

type LinkEndConfig struct {
	Body    string `yaml:"body"`
	Station string `yaml:"station"`
}

type ObservationConfig struct {
	Name        string                   `yaml:"name"`
	Observable  string                   `yaml:"observable"`
	LinkEnds    map[string]LinkEndConfig `yaml:"link_ends"`
	Corrections []CorrectionConfig       `yaml:"corrections"`
	Bias        *BiasConfig              `yaml:"bias"`
	Fixed       string                   `yaml:"fixed"` // transmitter or receiver (empty: receiver)
}

// Correction types: first_order_relativistic, tropospheric
type CorrectionConfig struct {
	Type     string   `yaml:"type"`
	Bodies   []string `yaml:"bodies"`
	PPNGamma float64  `yaml:"ppn_gamma"`
}

// Bias types: constant, relative, multiple
type BiasConfig struct {
	Type   string       `yaml:"type"`
	Values []float64    `yaml:"values"`
	Biases []BiasConfig `yaml:"biases"`
}

// Parameter types: rotation_rate, pole_orientation, body_position
type ParameterConfig struct {
	Type         string    `yaml:"type"`
	Body         string    `yaml:"body"`
	Perturbation []float64 `yaml:"perturbation"`
}

type SimulationConfig struct {
	Start TimeStr `yaml:"start"`
	End   TimeStr `yaml:"end"`
	Step  float64 `yaml:"step"` // [s]
}

type LightTimeConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario config: %w", err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var cfg Scenario
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scenario config: %w", err)
	}
	return &cfg, nil
}

// ------------------------------------
// Built scenario
// ------------------------------------

type ScenarioObservation struct {
	Name     string
	Model    *ObservationModel
	LinkEnds LinkEnds
	Fixed    LinkEndType
}

type ScenarioParameter struct {
	Parameter    Parameter
	Perturbation []float64
}

type BuiltScenario struct {
	Bodies       Bodies
	Observations []ScenarioObservation
	Parameters   []ScenarioParameter
	Start        float64 // [s past J2000]
	End          float64
	Step         float64
}

// Epochs of the simulation span
func (b *BuiltScenario) Epochs() []float64 {
	if !(b.Step > 0) || b.End < b.Start {
		return []float64{b.Start}
	}
	n := int(math.Floor((b.End-b.Start)/b.Step + 1e-9))
	ts := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		ts = append(ts, b.Start+float64(i)*b.Step)
	}
	return ts
}

// Build the bodies, observation models and parameters of the scenario
func (s *Scenario) Build(opts ...ModelOption) (*BuiltScenario, error) {
	built := &BuiltScenario{
		Bodies: Bodies{},
		Start:  s.Simulation.Start.Epoch(),
		End:    s.Simulation.End.Epoch(),
		Step:   s.Simulation.Step,
	}
	if built.End < built.Start {
		return nil, fmt.Errorf("%w: simulation ends before it starts", ErrConfiguration)
	}

	for _, bc := range s.Bodies {
		b, err := s.buildBody(bc, built)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		if err := built.Bodies.Add(b); err != nil {
			return nil, err
		}
	}

	lt := LightTimeOptions{Tolerance: s.LightTime.Tolerance, MaxIterations: s.LightTime.MaxIterations}
	if lt.Tolerance == 0 {
		lt.Tolerance = LT_CONVERGENCE_THRESHOLD
	}
	if lt.MaxIterations == 0 {
		lt.MaxIterations = LT_MAX_LOOP_COUNT
	}

	for i, oc := range s.Observations {
		obs, err := buildObservation(oc, built.Bodies, lt, opts)
		if err != nil {
			return nil, fmt.Errorf("observation %d (%s): %w", i, oc.Name, err)
		}
		built.Observations = append(built.Observations, obs)
	}

	for i, pc := range s.Partials {
		p, err := buildParameter(pc, built.Bodies)
		if err != nil {
			return nil, fmt.Errorf("parameter %d (%s): %w", i, pc.Type, err)
		}
		built.Parameters = append(built.Parameters, ScenarioParameter{Parameter: p, Perturbation: pc.Perturbation})
	}
	return built, nil
}

func (s *Scenario) buildBody(bc BodyConfig, built *BuiltScenario) (*Body, error) {
	if bc.Name == "" {
		return nil, fmt.Errorf("%w: body without name", ErrConfiguration)
	}
	eph, err := buildEphemeris(bc.Ephemeris, built)
	if err != nil {
		return nil, err
	}
	b := NewBody(bc.Name, eph)
	b.GM = bc.GM

	if rc := bc.Rotation; rc != nil {
		b.Rotation = NewSimpleRotationModel(ToRad(rc.RA), ToRad(rc.Dec), ToRad(rc.W0), rc.Rate, rc.Epoch.Epoch())
	}
	if sc := bc.Shape; sc != nil {
		b.Shape = &Ellipsoid{Radius: sc.Radius, Flattening: sc.Flattening}
		if err := b.Shape.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	for _, stc := range bc.Stations {
		st, err := buildStation(stc, b.Shape)
		if err != nil {
			return nil, err
		}
		if err := b.AddStation(st); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildEphemeris(ec EphemerisConfig, built *BuiltScenario) (Ephemeris, error) {
	center := func(name string) (*Body, error) {
		if name == "" {
			return nil, nil
		}
		return built.Bodies.Get(name)
	}

	switch strings.ToLower(ec.Type) {
	case "constant", "stub":
		if len(ec.State) != 6 {
			return nil, fmt.Errorf("%w: %s ephemeris needs 6 state values, got %d", ErrConfiguration, ec.Type, len(ec.State))
		}
		var s State
		copy(s[:], ec.State)
		if strings.ToLower(ec.Type) == "stub" {
			return NewStubEphemeris(s), nil
		}
		return NewConstantEphemeris(s), nil

	case "kepler":
		kc := ec.Kepler
		if kc == nil {
			return nil, fmt.Errorf("%w: kepler ephemeris without elements", ErrConfiguration)
		}
		cb, err := center(kc.Center)
		if err != nil {
			return nil, err
		}
		eph := &KeplerEphemeris{
			SemiMajorAxis: kc.SemiMajorAxis,
			Eccentricity:  kc.Eccentricity,
			Inclination:   ToRad(kc.Inclination),
			RAAN:          ToRad(kc.RAAN),
			ArgPeriapsis:  ToRad(kc.ArgPeriapsis),
			MeanAnomaly:   ToRad(kc.MeanAnomaly),
			Epoch:         kc.Epoch.Epoch(),
			GM:            kc.GM,
		}
		if cb != nil {
			eph.Center = cb.Ephemeris
			if eph.GM == 0 {
				eph.GM = cb.GM
			}
		}
		if err := eph.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return eph, nil

	case "tle":
		tc := ec.TLE
		if tc == nil {
			return nil, fmt.Errorf("%w: tle ephemeris without element lines", ErrConfiguration)
		}
		cb, err := center(tc.Center)
		if err != nil {
			return nil, err
		}
		step := tc.Step
		if step == 0 {
			step = 60
		}
		margin := tc.Margin
		if margin == 0 {
			margin = 3600
		}
		var ce Ephemeris
		if cb != nil {
			ce = cb.Ephemeris
		}
		return NewTLEEphemeris(tc.Line1, tc.Line2, built.Start-margin, built.End+margin, step, ce)

	default:
		return nil, fmt.Errorf("%w: unknown ephemeris type %q", ErrConfiguration, ec.Type)
	}
}

func buildStation(sc StationConfig, shape *Ellipsoid) (*GroundStation, error) {
	switch {
	case sc.Geodetic != nil:
		llh := PosLLH{Lat: ToRad(sc.Geodetic.Lat), Lon: ToRad(sc.Geodetic.Lon), Hei: sc.Geodetic.Height}
		return NewGeodeticGroundStation(sc.Name, shape, llh)
	case len(sc.Position) == 3:
		return NewGroundStation(sc.Name, r3.Vec{X: sc.Position[0], Y: sc.Position[1], Z: sc.Position[2]}), nil
	default:
		return nil, fmt.Errorf("%w: station %q needs a position or geodetic coordinates", ErrConfiguration, sc.Name)
	}
}

func buildObservation(oc ObservationConfig, bodies Bodies, lt LightTimeOptions, opts []ModelOption) (ScenarioObservation, error) {
	obs := ScenarioObservation{Name: oc.Name, LinkEnds: LinkEnds{}, Fixed: Receiver}

	observable, err := ParseObservable(oc.Observable)
	if err != nil {
		return obs, err
	}
	for k, v := range oc.LinkEnds {
		t, err := ParseLinkEndType(k)
		if err != nil {
			return obs, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		obs.LinkEnds[t] = LinkEndID{Body: v.Body, Station: v.Station}
	}
	if oc.Fixed != "" {
		obs.Fixed, err = ParseLinkEndType(oc.Fixed)
		if err != nil {
			return obs, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		if obs.Fixed != Transmitter && obs.Fixed != Receiver {
			return obs, fmt.Errorf("%w: fixed link end must be transmitter or receiver, got %s", ErrConfiguration, obs.Fixed)
		}
	}
	if obs.Name == "" {
		obs.Name = observable.Name()
	}

	settings := ObservationSettings{Observable: observable, LightTime: lt}
	for _, cc := range oc.Corrections {
		switch strings.ToLower(cc.Type) {
		case "first_order_relativistic":
			settings.LightTimeCorrections = append(settings.LightTimeCorrections,
				FirstOrderRelativisticSettings{PerturbingBodies: cc.Bodies, PPNGamma: cc.PPNGamma})
		case "tropospheric":
			settings.LightTimeCorrections = append(settings.LightTimeCorrections, TroposphericSettings{})
		default:
			return obs, fmt.Errorf("%w: unknown light time correction %q", ErrConfiguration, cc.Type)
		}
	}
	if oc.Bias != nil {
		settings.Bias, err = buildBias(*oc.Bias)
		if err != nil {
			return obs, err
		}
	}

	obs.Model, err = NewObservationModel(obs.LinkEnds, settings, bodies, opts...)
	return obs, err
}

func buildBias(bc BiasConfig) (BiasSettings, error) {
	switch strings.ToLower(bc.Type) {
	case "constant":
		return ConstantBias{Values: bc.Values}, nil
	case "relative":
		return RelativeBias{Values: bc.Values}, nil
	case "multiple":
		mb := MultipleBias{}
		for _, c := range bc.Biases {
			b, err := buildBias(c)
			if err != nil {
				return nil, err
			}
			mb.Biases = append(mb.Biases, b)
		}
		return mb, nil
	default:
		return nil, fmt.Errorf("%w: unknown bias type %q", ErrConfiguration, bc.Type)
	}
}

func buildParameter(pc ParameterConfig, bodies Bodies) (Parameter, error) {
	switch strings.ToLower(pc.Type) {
	case "rotation_rate":
		return NewRotationRateParameter(bodies, pc.Body)
	case "pole_orientation":
		return NewPoleOrientationParameter(bodies, pc.Body)
	case "body_position":
		return NewBodyPositionParameter(bodies, pc.Body)
	default:
		return nil, fmt.Errorf("%w: unknown parameter type %q", ErrConfiguration, pc.Type)
	}
}
