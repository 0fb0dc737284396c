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
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ------------------------------------
// Mini functions
// ------------------------------------

func SQ(x float64) float64 {
	return x * x
}

func EucDist(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Unit vector pointing from a to b (zero vector when a == b)
func LineOfSight(a, b r3.Vec) r3.Vec {
	d := EucDist(a, b)
	if d == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/d, r3.Sub(b, a))
}

func ToDeg(rad float64) float64 {
	return rad / PI * 180.0
}

func ToRad(deg float64) float64 {
	return deg / 180.0 * PI
}

// Wrap an angle into [0, 2pi)
func WrapTwoPi(a float64) float64 {
	a = math.Mod(a, 2*PI)
	if a < 0 {
		a += 2 * PI
	}
	return a
}

// Product of a 3x3 matrix and a vector
func MulVec(m mat.Matrix, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// Set column j of a 3xk matrix
func setColVec(m *mat.Dense, j int, v r3.Vec) {
	m.Set(0, j, v.X)
	m.Set(1, j, v.Y)
	m.Set(2, j, v.Z)
}

// ------------------------------------
// Debug print function
// ------------------------------------

func PrintMat(X mat.Matrix) {
	r, c := X.Dims()
	fmt.Fprintf(os.Stderr, "(%d x %d)\n", r, c)
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	fmt.Fprintf(os.Stderr, "%v\n", fa)
}

func PrintA(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
}

func PrintAIf(cond bool, format string, a ...any) {
	if cond {
		PrintA(format, a...)
	}
}

// Print with the calendar time of an epoch in front
func PrintB(t float64, format string, a ...any) {
	fmt.Fprintf(os.Stderr, EpochToTime(t).UTC().Format("2006-01-02T15:04:05.000000")+"\t"+format, a...)
}

// Debug display level
var DBG_ int

// Debug display
func PrintD(v int, format string, a ...any) {
	PrintAIf(DBG_ >= v, format, a...)
}

// Matrix display at a debug level
func PrintMatD(v int, X mat.Matrix) {
	if DBG_ >= v {
		PrintMat(X)
	}
}

func PrintE(err error) {
	fmt.Fprintf(os.Stderr, "err=%s\n", err.Error())
}

// ------------------------------------
// For command argument parsing
// ------------------------------------

// List of link end roles, e.g. "transmitter,receiver"
type LinkEndVar []LinkEndType

func (p *LinkEndVar) Set(s string) error {
	*p = []LinkEndType{}
	for _, a := range strings.Split(s, ",") {
		t, err := ParseLinkEndType(strings.TrimSpace(a))
		if err != nil {
			return err
		}
		*p = append(*p, t)
	}
	return nil
}

func (p *LinkEndVar) String() string {
	if p == nil {
		return ""
	}
	s := make([]string, len(*p))
	for i, t := range *p {
		s[i] = t.String()
	}
	return strings.Join(s, ",")
}

// Date and Time Parser (for command arguments)
type TimeStr time.Time

func (p *TimeStr) MarshalText() (text []byte, err error) {
	if time.Time(*p).IsZero() {
		return []byte{}, nil
	}
	return []byte(time.Time(*p).Format("2006/01/02 15:04:05")), nil
}

func (p *TimeStr) UnmarshalText(text []byte) error {
	s := string(text)
	t, err := time.Parse("2006/01/02 15:04:05", s)
	if err != nil {
		return err
	}
	*p = TimeStr(t)
	return nil
}

func NewTimeStr(t time.Time) *TimeStr {
	m := new(TimeStr)
	*m = TimeStr(t)
	return m
}

// Epoch in seconds past J2000 (unset: 0)
func (p *TimeStr) Epoch() float64 {
	if time.Time(*p).IsZero() {
		return 0
	}
	return TimeToEpoch(time.Time(*p))
}

// Time to fix while solving the light time (0: receiver, 1: transmitter)
type FixedEnd int

const (
	FIX_RECEIVER = iota
	FIX_TRANSMITTER
)

func (p *FixedEnd) Set(s string) error {
	i, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return err
	}
	if i != FIX_RECEIVER && i != FIX_TRANSMITTER {
		return fmt.Errorf("invalid fixed end %d", i)
	}
	*p = FixedEnd(i)
	return nil
}

func (p *FixedEnd) String() string {
	switch *p {
	case FIX_RECEIVER:
		return "RECEIVER"
	case FIX_TRANSMITTER:
		return "TRANSMITTER"
	default:
		return "UNKNOWN!"
	}
}

// Link end role held fixed
func (p FixedEnd) LinkEnd() LinkEndType {
	if p == FIX_TRANSMITTER {
		return Transmitter
	}
	return Receiver
}
