// This code is adapted from RTKLIB.
// The author gratefully acknowledges T.Takasu for his outstanding contribution in developing RTKLIB.
//
// Last modified: 2026.10.13
//

package gotrack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Zenith tropospheric delay [m] at a station (Saastamoinen, standard atmosphere)
func TropModel(llh PosLLH) float64 {
	const TEMP0 = 15.0
	const ZELEV = 90.0 * math.Pi / 180.0
	const HUMI = 0.0
	if llh.Hei < -100.0 || 1e4 < llh.Hei {
		return 0.0
	}
	if llh.Hei < 0.0 {
		llh.Hei = 0.0
	}
	hgt := llh.Hei
	pres := 1013.25 * math.Pow(1.0-2.2557e-5*hgt, 5.2568)
	temp := TEMP0 - 6.5e-3*hgt + 273.16
	e := 6.108 * HUMI * math.Exp((17.15*temp-4684.0)/(temp-38.45))
	// saastamoinen model
	z := math.Pi/2.0 - ZELEV
	trph := 0.0022768 * pres / (1.0 - 0.00266*math.Cos(2.0*llh.Lat) - 0.00028*hgt/1e3) / math.Cos(z)
	trpw := 0.002277 * (1255.0/temp + 0.05) * e / math.Cos(z)
	return trph + trpw
}

// Niell mapping function at an epoch [s past J2000]
func TropMapf(t float64, llh PosLLH, elev float64) float64 {
	if llh.Hei < -1000.0 || llh.Hei > 20000.0 {
		return 0.0
	}
	return nmf(t, &llh, elev)
}

func nmf(t float64, pos *PosLLH, elev float64) float64 {
	coef := [9][5]float64{
		{1.2769934e-3, 1.2683230e-3, 1.2465397e-3, 1.2196049e-3, 1.2045996e-3},
		{2.9153695e-3, 2.9152299e-3, 2.9288445e-3, 2.9022565e-3, 2.9024912e-3},
		{62.610505e-3, 62.837393e-3, 63.721774e-3, 63.824265e-3, 64.258455e-3},

		{0.0000000e-0, 1.2709626e-5, 2.6523662e-5, 3.4000452e-5, 4.1202191e-5},
		{0.0000000e-0, 2.1414979e-5, 3.0160779e-5, 7.2562722e-5, 11.723375e-5},
		{0.0000000e-0, 9.0128400e-5, 4.3497037e-5, 84.795348e-5, 170.37206e-5},

		{5.8021897e-4, 5.6794847e-4, 5.8118019e-4, 5.9727542e-4, 6.1641693e-4},
		{1.4275268e-3, 1.5138625e-3, 1.4572752e-3, 1.5007428e-3, 1.7599082e-3},
		{4.3472961e-2, 4.6729510e-2, 4.3908931e-2, 4.4626982e-2, 5.4736038e-2},
	}
	aht := [3]float64{2.53e-5, 5.49e-3, 1.14e-3}
	lat := ToDeg(pos.Lat)
	hgt := pos.Hei
	if elev <= 0.0 {
		return 0.0
	}
	doy := EpochToTime(t).YearDay()
	y := (float64(doy) - 28.0) / 365.25
	if lat < 0.0 {
		y += 0.5
	}
	cosy := math.Cos(2 * math.Pi * y)
	lat = math.Abs(lat)
	ah := [3]float64{}
	for i := 0; i < 3; i++ {
		ah[i] = interpc(coef[i], lat) - interpc(coef[i+3], lat)*cosy
	}
	dm := (1.0/math.Sin(elev) - mapf(elev, aht[0], aht[1], aht[2])) * hgt / 1e3
	return mapf(elev, ah[0], ah[1], ah[2]) + dm
}

func interpc(coef [5]float64, lat float64) float64 {
	i := int(lat / 15.0)
	if i < 1 {
		return coef[0]
	} else if i > 4 {
		return coef[4]
	}
	return coef[i-1]*(1.0-lat/15.0+float64(i)) + coef[i]*(lat/15.0-float64(i))
}

func mapf(el, a, b, c float64) float64 {
	sinel := math.Sin(el)
	return (1.0 + a/(1.0+b/(1.0+c))) / (sinel + (a / (sinel + b/(sinel+c))))
}

//-------------------------------------------------------------------
// Tropospheric light-time correction
//-------------------------------------------------------------------

// Slant tropospheric delay at every ground station link end
type TroposphericSettings struct{}

func (s TroposphericSettings) newCorrection(linkEnds LinkEnds, bodies Bodies) (LightTimeCorrection, error) {
	return NewTroposphericCorrection(linkEnds, bodies)
}

type tropoStation struct {
	role     LinkEndType
	rotation RotationModel
	shape    *Ellipsoid
	position r3.Vec // Body-fixed
	llh      PosLLH
}

type TroposphericCorrection struct {
	stations []tropoStation
}

// Link ends qualify when they are stations on a body with shape and rotation model.
func NewTroposphericCorrection(linkEnds LinkEnds, bodies Bodies) (*TroposphericCorrection, error) {
	corr := &TroposphericCorrection{}
	for _, role := range []LinkEndType{Transmitter, Receiver} {
		id, ok := linkEnds[role]
		if !ok || id.Station == "" {
			continue
		}
		b, err := bodies.Get(id.Body)
		if err != nil {
			return nil, err
		}
		if b.Shape == nil || b.Rotation == nil {
			continue
		}
		st, err := b.Station(id.Station)
		if err != nil {
			return nil, err
		}
		corr.stations = append(corr.stations, tropoStation{
			role:     role,
			rotation: b.Rotation,
			shape:    b.Shape,
			position: st.Position,
			llh:      b.Shape.ToLLH(st.Position),
		})
	}
	if len(corr.stations) == 0 {
		return nil, fmt.Errorf("%w: tropospheric correction needs a ground station link end on a body with shape", ErrConfiguration)
	}
	return corr, nil
}

func (c *TroposphericCorrection) Correction(txState, rxState State, txTime, rxTime float64) (float64, error) {
	dt := 0.0
	for _, st := range c.stations {
		self, other, t := rxState, txState, rxTime
		if st.role == Transmitter {
			self, other, t = txState, rxState, txTime
		}
		// Direction to the other link end in the body-fixed frame
		rel := r3.Sub(other.Position(), self.Position())
		r := st.rotation.RotationToBaseFrame(t)
		relf := MulVec(r.T(), rel)
		elev := st.shape.Elevation(st.position, r3.Add(st.position, relf))
		dt += TropModel(st.llh) * TropMapf(t, st.llh, elev) / C
	}
	return dt, nil
}
