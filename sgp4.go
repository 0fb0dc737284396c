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

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"
)

// NewTLEEphemeris samples the SGP4 solution of a two-line element set at whole
// seconds over [t0, t1] and returns it as a tabulated ephemeris. The TEME
// output is used as the inertial base frame, offset by the centre ephemeris (nil: geocentric).
func NewTLEEphemeris(line1, line2 string, t0, t1 float64, step int, center Ephemeris) (*TabulatedEphemeris, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("%w: invalid TLE: %v", ErrConfiguration, err)
	}
	if step < 1 {
		return nil, fmt.Errorf("%w: TLE sampling step must be at least 1 s, got %d", ErrConfiguration, step)
	}
	if !(t1 > t0) {
		return nil, fmt.Errorf("%w: invalid TLE sampling span [%g, %g]", ErrConfiguration, t0, t1)
	}

	sat := satellite.TLEToSat(strings.TrimSpace(line1), strings.TrimSpace(line2), satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: sgp4 init failed: code=%d %s", ErrConfiguration, sat.Error, sat.ErrorStr)
	}

	records := map[float64]State{}
	start := math.Floor(t0)
	end := math.Ceil(t1)
	for t := start; ; t += float64(step) {
		if t > end {
			t = end
		}
		s, err := propagateTLE(sat, t)
		if err != nil {
			return nil, err
		}
		records[t] = s
		if t == end {
			break
		}
	}
	PrintD(2, "TLE ephemeris: %d records in [%.0f, %.0f]\n", len(records), start, end)

	eph, err := NewTabulatedEphemeris(records)
	if err != nil {
		return nil, err
	}
	eph.Center = center
	return eph, nil
}

// SGP4 state at a whole second, converted to metres
func propagateTLE(sat satellite.Satellite, t float64) (State, error) {
	dt := EpochToTime(t).UTC()
	pos, vel := satellite.Propagate(sat, dt.Year(), int(dt.Month()), dt.Day(), dt.Hour(), dt.Minute(), dt.Second())
	for _, v := range []float64{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return State{}, fmt.Errorf("sgp4 propagation failed at %s: output is NaN/Inf", dt.Format("2006-01-02T15:04:05"))
		}
	}
	p := r3.Vec{X: pos.X * 1e3, Y: pos.Y * 1e3, Z: pos.Z * 1e3}
	v := r3.Vec{X: vel.X * 1e3, Y: vel.Y * 1e3, Z: vel.Z * 1e3}
	return NewState(p, v), nil
}

// Basic format check; go-satellite aborts the process on malformed lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}
