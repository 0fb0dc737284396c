// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import (
	"math"
	"time"
)

// Reference epoch of the continuous time scale (2000/1/1 12:00:00).
// Calendar conversions ignore leap seconds and the offset between time scales.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// Split representation of an epoch: whole days past J2000 and seconds into the day
type Epoch struct {
	Day int
	Sec float64
}

func NewEpoch(dt time.Time) *Epoch {
	d := dt.Sub(J2000)
	day := int(math.Floor(d.Hours() / 24))
	rest := d - time.Duration(day)*24*time.Hour
	return &Epoch{
		Day: day,
		Sec: rest.Seconds(),
	}
}

// Seconds past J2000
func (p *Epoch) Seconds() float64 {
	return float64(p.Day)*SEC_PER_DAY + p.Sec
}

func (p *Epoch) ToTime() time.Time {
	i := int64(math.Trunc(p.Sec))
	n := int64((p.Sec - float64(i)) * 1e9)
	return J2000.Add(time.Duration(p.Day)*24*time.Hour + time.Duration(i)*time.Second + time.Duration(n))
}

// Seconds past J2000 to calendar time
func EpochToTime(t float64) time.Time {
	day := math.Floor(t / SEC_PER_DAY)
	e := Epoch{Day: int(day), Sec: t - day*SEC_PER_DAY}
	return e.ToTime()
}

// Calendar time to seconds past J2000
func TimeToEpoch(dt time.Time) float64 {
	return NewEpoch(dt).Seconds()
}
