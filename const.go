// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

const (
	PI = 3.1415926535897932  // Pi
	C  = 2.99792458e8        // Speed of light [m/s]
	Re = 6378137.0           // Earth's radius (WGS84) [m]
	Fe = 1.0 / 298.257223563 // Earth's flattening (WGS84)
)

// Gravitational parameters [m^3/s^2]
const (
	GM_SUN   = 1.32712440018e20
	GM_EARTH = 3.986004418e14
	GM_MOON  = 4.9048695e12
	GM_MARS  = 4.282837e13
)

// Mean equatorial radii [m]
const (
	R_SUN  = 6.957e8
	R_MOON = 1737400.0
	R_MARS = 3396190.0
)

const (
	OMEGA_EARTH = 7.2921151467e-5 // Earth rotation rate [rad/s]
	AU          = 1.495978707e11  // Astronomical unit [m]
	SEC_PER_DAY = 86400.0         // Seconds per day
)
