// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//-------------------------------------------------------------------
// Ellipsoid
//-------------------------------------------------------------------

// Oblate shape of a body, used for geodetic station coordinates
type Ellipsoid struct {
	Radius     float64 // Equatorial radius [m]
	Flattening float64
}

var WGS84 = Ellipsoid{Radius: Re, Flattening: Fe}

// Spherical shape
func NewSphere(radius float64) *Ellipsoid {
	return &Ellipsoid{Radius: radius}
}

func (ell *Ellipsoid) validate() error {
	if !(ell.Radius > 0) || ell.Flattening < 0 || ell.Flattening >= 1 {
		return fmt.Errorf("invalid ellipsoid radius=%g flattening=%g", ell.Radius, ell.Flattening)
	}
	return nil
}

// Body-fixed Cartesian position of a geodetic position
func (ell *Ellipsoid) ToXYZ(llh PosLLH) r3.Vec {
	f := ell.Flattening         // Flattening
	a := ell.Radius             // Semi-major axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	n := a / math.Sqrt(1-e*e*SQ(math.Sin(llh.Lat)))
	return r3.Vec{
		X: (n + llh.Hei) * math.Cos(llh.Lat) * math.Cos(llh.Lon),
		Y: (n + llh.Hei) * math.Cos(llh.Lat) * math.Sin(llh.Lon),
		Z: (n*(1-e*e) + llh.Hei) * math.Sin(llh.Lat),
	}
}

// Geodetic position of a body-fixed Cartesian position
func (ell *Ellipsoid) ToLLH(pos r3.Vec) PosLLH {
	// In case of origin
	if pos.X == 0 && pos.Y == 0 && pos.Z == 0 {
		return PosLLH{Lat: 0, Lon: 0, Hei: -ell.Radius}
	}

	f := ell.Flattening
	a := ell.Radius
	b := a * (1 - f)
	e := math.Sqrt(f * (2 - f))

	// Bowring's method
	h := a*a - b*b
	p := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)
	t := math.Atan2(pos.Z*a, p*b)
	sint := math.Sin(t)
	cost := math.Cos(t)

	lat := math.Atan2(pos.Z+h/b*sint*sint*sint, p-h/a*cost*cost*cost)
	lon := math.Atan2(pos.Y, pos.X)
	n := a / math.Sqrt(1-e*e*SQ(math.Sin(lat))) // Radius of curvature in the prime vertical
	var hei float64
	if math.Abs(math.Cos(lat)) > 1e-10 {
		hei = p/math.Cos(lat) - n
	} else {
		hei = math.Abs(pos.Z) - b // Pole
	}
	return PosLLH{Lat: lat, Lon: lon, Hei: hei}
}

// Position of pos relative to base in the local east-north-up frame at base
func (ell *Ellipsoid) ToENU(pos, base r3.Vec) PosENU {
	d := r3.Sub(pos, base)

	llh := ell.ToLLH(base)
	s1 := math.Sin(llh.Lon)
	c1 := math.Cos(llh.Lon)
	s2 := math.Sin(llh.Lat)
	c2 := math.Cos(llh.Lat)

	return PosENU{
		E: -d.X*s1 + d.Y*c1,
		N: -d.X*c1*s2 - d.Y*s1*s2 + d.Z*c2,
		U: d.X*c1*c2 + d.Y*s1*c2 + d.Z*s2,
	}
}

// Elevation of target seen from usr, both body-fixed
func (ell *Ellipsoid) Elevation(usr, target r3.Vec) float64 {
	enu := ell.ToENU(target, usr)
	return enu.Elevation()
}

func (ell *Ellipsoid) Azimuth(usr, target r3.Vec) float64 {
	enu := ell.ToENU(target, usr)
	return enu.Azimuth()
}

//-------------------------------------------------------------------
// PosLLH
//-------------------------------------------------------------------

type PosLLH struct {
	Lat float64 // [rad]
	Lon float64 // [rad]
	Hei float64 // [m]
}

func NewPosLLH(lat, lon, hei float64) *PosLLH {
	return &PosLLH{
		Lat: lat,
		Lon: lon,
		Hei: hei,
	}
}

// Convert to string
func (llh *PosLLH) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", ToDeg(llh.Lat), ToDeg(llh.Lon), llh.Hei)
}

//-------------------------------------------------------------------
// PosENU
//-------------------------------------------------------------------

type PosENU struct {
	E float64
	N float64
	U float64
}

func (enu *PosENU) Elevation() float64 {
	return math.Atan2(enu.U, math.Sqrt(enu.E*enu.E+enu.N*enu.N))
}

func (enu *PosENU) Azimuth() float64 {
	return math.Atan2(enu.E, enu.N)
}
