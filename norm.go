// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

// powerIterNorm2 estimates ‖M‖₂ as the square root of the top eigenvalue
// of the (implicit) operator apply, by running power iteration for krylov
// steps on a fixed starting vector. apply(x, y) must leave y the image of x
// under the symmetric positive semidefinite operator whose top eigenvalue
// is ‖M‖₂² (MᵗM for a general M, M·M for a symmetric M).
//
// This is a deliberately simple power-iteration estimator, not a tuned
// Lanczos solver.
func powerIterNorm2(krylov, n int, apply func(x, y []float64)) float64 {
	if n == 0 {
		return 0
	}
	if krylov <= 0 {
		krylov = 8
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / math.Sqrt(float64(n))
	}
	y := make([]float64, n)
	lambda := 0.0
	for k := 0; k < krylov; k++ {
		apply(x, y)
		nrm := blas64.Nrm2(blas64.Vector{N: n, Inc: 1, Data: y})
		if nrm == 0 {
			return 0
		}
		lambda = nrm
		for i := range x {
			x[i] = y[i] / nrm
		}
	}
	return math.Sqrt(lambda)
}

// nrm2 computes the Euclidean norm of v via gonum's BLAS level-1 routine.
func nrm2(v []float64) float64 {
	return blas64.Nrm2(blas64.Vector{N: len(v), Inc: 1, Data: v})
}

// dot computes the inner product of x and y via gonum's BLAS level-1 routine.
func dot(x, y []float64) float64 {
	if len(x) != len(y) {
		dimensionError("dot", len(x), len(y))
	}
	return blas64.Dot(blas64.Vector{N: len(x), Inc: 1, Data: x}, blas64.Vector{N: len(y), Inc: 1, Data: y})
}

// axpy computes y ← alpha·x + y via gonum's BLAS level-1 routine.
func axpy(alpha float64, x, y []float64) {
	if len(x) != len(y) {
		dimensionError("axpy", len(x), len(y))
	}
	blas64.Axpy(alpha, blas64.Vector{N: len(x), Inc: 1, Data: x}, blas64.Vector{N: len(y), Inc: 1, Data: y})
}
