// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.12
//

package gotrack

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cartesian state in the inertial base frame: position [m] followed by velocity [m/s]
type State [6]float64

func NewState(pos, vel r3.Vec) State {
	return State{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

func (s State) Position() r3.Vec {
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}
}

func (s State) Velocity() r3.Vec {
	return r3.Vec{X: s[3], Y: s[4], Z: s[5]}
}

// Component-wise sum
func (s State) Add(o State) State {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Component-wise difference
func (s State) Sub(o State) State {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

func (s State) String() string {
	return fmt.Sprintf("pos=(%.4f %.4f %.4f) vel=(%.6f %.6f %.6f)", s[0], s[1], s[2], s[3], s[4], s[5])
}
