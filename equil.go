// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// EquilState holds the stacked-Ruiz row/column scalings: ScaleA scales A's
// rows (and b; y inversely), ScaleG scales G's rows (and h and s; z
// inversely), ScaleCol scales every column of [A;G] jointly (and Q
// symmetrically, and c; x inversely).
//
// This module tracks the forward multiplicative scale factors directly
// rather than their reciprocals — the ScaleRows/ScaleCols calls below apply
// them without an extra reciprocal, and the iterate transforms in
// applyToPrimal/applyToDual/invertPrimal/invertDual are written against the
// same convention so the two can't drift out of sync.
type EquilState struct {
	ScaleA   []float64 // m
	ScaleG   []float64 // k
	ScaleCol []float64 // n
}

// identityEquil returns the no-op equilibration state (all scalings 1),
// used when ctrl.OuterEquil is false.
func identityEquil(m, n, k int) *EquilState {
	return &EquilState{ScaleA: ones(m), ScaleG: ones(k), ScaleCol: ones(n)}
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// ruizEquilibrate alternately row- and jointly column-scales [A;G] until
// the max/min ratio of the row/column ∞-norms is within tol or maxSweeps
// is reached, then applies the accumulated scaling to Q, b, c, h in place.
func ruizEquilibrate(A, G Matrix, Q SymMatrix, b, c, h []float64, m, n, k int, tol float64, maxSweeps int) *EquilState {
	st := identityEquil(m, n, k)
	if maxSweeps <= 0 {
		maxSweeps = 20
	}
	if tol <= 0 {
		tol = 1.1
	}

	rowA := make([]float64, m)
	rowG := make([]float64, k)
	colA := make([]float64, n)
	colG := make([]float64, n)
	col := make([]float64, n)

	for sweep := 0; sweep < maxSweeps; sweep++ {
		if m > 0 {
			A.RowAbsMax(rowA)
			A.ColAbsMax(colA)
		}
		if k > 0 {
			G.RowAbsMax(rowG)
			G.ColAbsMax(colG)
		}
		for j := 0; j < n; j++ {
			col[j] = math.Max(colA[j], colG[j])
		}

		if equilRatio(rowA, rowG, col) <= tol {
			break
		}

		rA := reciprocalSqrt(rowA)
		rG := reciprocalSqrt(rowG)
		cS := reciprocalSqrt(col)

		if m > 0 {
			A.ScaleRows(rA)
			A.ScaleCols(cS)
		}
		if k > 0 {
			G.ScaleRows(rG)
			G.ScaleCols(cS)
		}
		for i := range st.ScaleA {
			st.ScaleA[i] *= rA[i]
		}
		for i := range st.ScaleG {
			st.ScaleG[i] *= rG[i]
		}
		for j := range st.ScaleCol {
			st.ScaleCol[j] *= cS[j]
		}
	}

	Q.ScaleSym(st.ScaleCol)
	for i := range b {
		b[i] *= st.ScaleA[i]
	}
	for i := range h {
		h[i] *= st.ScaleG[i]
	}
	for j := range c {
		c[j] *= st.ScaleCol[j]
	}
	return st
}

func reciprocalSqrt(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if x > 0 {
			out[i] = 1 / math.Sqrt(x)
		} else {
			out[i] = 1
		}
	}
	return out
}

// equilRatio returns the max/min ratio across every positive entry of the
// combined row and column norm vectors, the stopping statistic for the
// Ruiz sweep.
func equilRatio(rowA, rowG, col []float64) float64 {
	max, min := 0.0, math.MaxFloat64
	consider := func(v []float64) {
		for _, x := range v {
			if x <= 0 {
				continue
			}
			if x > max {
				max = x
			}
			if x < min {
				min = x
			}
		}
	}
	consider(rowA)
	consider(rowG)
	consider(col)
	if min == math.MaxFloat64 {
		return 1
	}
	return max / min
}

// applyToPrimal transforms a warm-started (x, s) into the equilibrated
// space: x ← x/sCol, s ← s·sG.
func (st *EquilState) applyToPrimal(x, s []float64) {
	divide(x, st.ScaleCol)
	multiply(s, st.ScaleG)
}

// applyToDual transforms a warm-started (y, z) into the equilibrated
// space: y ← y/sA, z ← z/sG.
func (st *EquilState) applyToDual(y, z []float64) {
	divide(y, st.ScaleA)
	divide(z, st.ScaleG)
}

// invertPrimal is applyToPrimal's inverse, run once at driver exit.
func (st *EquilState) invertPrimal(x, s []float64) {
	multiply(x, st.ScaleCol)
	divide(s, st.ScaleG)
}

// invertDual is applyToDual's inverse, run once at driver exit.
func (st *EquilState) invertDual(y, z []float64) {
	multiply(y, st.ScaleA)
	multiply(z, st.ScaleG)
}

func multiply(v, scale []float64) {
	for i := range v {
		v[i] *= scale[i]
	}
}

func divide(v, scale []float64) {
	for i := range v {
		v[i] /= scale[i]
	}
}
