// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package gotrack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Elements of actual within tol of expected, relative to the largest element of expected
func assertMatrixClose(t *testing.T, expected, actual mat.Matrix, tol float64, msgAndArgs ...any) {
	t.Helper()
	er, ec := expected.Dims()
	ar, ac := actual.Dims()
	require.Equal(t, er, ar, msgAndArgs...)
	require.Equal(t, ec, ac, msgAndArgs...)
	scale := 0.0
	for i := 0; i < er; i++ {
		for j := 0; j < ec; j++ {
			scale = math.Max(scale, math.Abs(expected.At(i, j)))
		}
	}
	if scale == 0 {
		scale = 1
	}
	for i := 0; i < er; i++ {
		for j := 0; j < ec; j++ {
			diff := math.Abs(expected.At(i, j) - actual.At(i, j))
			assert.LessOrEqualf(t, diff, tol*scale, "element (%d,%d): expected %g, actual %g", i, j, expected.At(i, j), actual.At(i, j))
		}
	}
}

// Rows [r0, r1) of a matrix
func rows(m mat.Matrix, r0, r1 int) mat.Matrix {
	_, c := m.Dims()
	return mat.DenseCopyOf(m).Slice(r0, r1, 0, c)
}

func assertVecClose(t *testing.T, expected, actual []float64, tol float64, msgAndArgs ...any) {
	t.Helper()
	require.Equal(t, len(expected), len(actual), msgAndArgs...)
	assert.True(t, floats.EqualApprox(expected, actual, tol), "expected %v, actual %v", expected, actual)
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
