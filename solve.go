// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"
)

// denseLDL factors the KKT matrix once per iteration and solves it against
// two right-hand sides (the affine predictor, then the combined corrector)
// while reusing the factorization. It uses static (identity) pivoting: a
// symmetric quasi-definite matrix has a positive definite (1,1) block and
// negative definite (2,2)/(3,3) blocks, so natural-order elimination never
// hits a zero pivot once the regularizers are applied.
type denseLDL struct {
	n     int
	L     []float64 // unit lower triangular, row-major n×n (only i>j used)
	D     []float64
	jOrig []float64 // unregularized matrix, kept for refinement
}

const pivotFloor = 1e-300

func newDenseLDL() *denseLDL { return &denseLDL{} }

func (f *denseLDL) Factor(J []float64, JOrig []float64, N int) error {
	A := append([]float64(nil), J...)
	L := make([]float64, N*N)
	D := make([]float64, N)
	for k := 0; k < N; k++ {
		d := A[k*N+k]
		if math.Abs(d) < pivotFloor {
			return factorizationError(-1, errZeroPivotAt(k))
		}
		D[k] = d
		L[k*N+k] = 1
		for i := k + 1; i < N; i++ {
			L[i*N+k] = A[i*N+k] / d
		}
		for i := k + 1; i < N; i++ {
			lik := L[i*N+k]
			if lik == 0 {
				continue
			}
			for j := k + 1; j <= i; j++ {
				A[i*N+j] -= lik * d * L[j*N+k]
			}
		}
	}
	f.n, f.L, f.D = N, L, D
	if JOrig != nil {
		f.jOrig = JOrig
	} else {
		f.jOrig = J
	}
	return nil
}

func (f *denseLDL) Solve(rhs []float64) []float64 {
	n := f.n
	y := make([]float64, n)
	copy(y, rhs)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			y[i] -= f.L[i*n+j] * y[j]
		}
	}
	for i := 0; i < n; i++ {
		y[i] /= f.D[i]
	}
	x := make([]float64, n)
	copy(x, y)
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			x[i] -= f.L[j*n+i] * x[j]
		}
	}
	return x
}

// denseResidual computes J·x - rhs using the dense matrix J directly
// (used by iterative refinement, which must check against the
// *unregularized* J_orig rather than the factored J_fact).
func denseResidual(J, x, rhs []float64, N int) []float64 {
	r := make([]float64, N)
	for i := 0; i < N; i++ {
		sum := 0.0
		row := J[i*N : i*N+N]
		for j := 0; j < N; j++ {
			sum += row[j] * x[j]
		}
		r[i] = sum - rhs[i]
	}
	return r
}

func sparseResidual(J *CSRMatrix, x, rhs []float64) []float64 {
	r := make([]float64, len(rhs))
	J.MatVec(1, x, 0, r)
	for i := range r {
		r[i] -= rhs[i]
	}
	return r
}

// The two-stage regularized solve first takes the factorization's raw
// solve. In the fast mode that solve is returned as is when its relative
// residual against the unregularized matrix already meets
// solveCtrl.RelTol; otherwise (and always in the conservative mode) it is
// refined for up to solveCtrl.MaxRefineIts steps, and failure is declared
// if RelTol is still not reached. The two solve modes differ only in
// whether the initial unrefined solve is trusted without a refinement
// pass; both route through the same refinement loop here.
type solveMode int

const (
	solveFast solveMode = iota
	solveConservative
)

// denseTwoStageSolve solves the dense KKT system with the factorization f
// already computed by the driver, refining
// against the unregularized Jorig (here identical to the regularized J,
// since the dense path applies its small regularizers directly into J
// rather than layering a separate large-regularization diagonal).
func denseTwoStageSolve(f *denseLDL, J []float64, N int, rhs []float64, ctrl SolveCtrl, mode solveMode, iter int) ([]float64, float64, error) {
	x := f.Solve(rhs)
	rnorm := nrm2(rhs)
	relResid := nrm2(denseResidual(J, x, rhs, N)) / (1 + rnorm)
	if mode == solveFast && relResid <= ctrl.RelTol {
		return x, relResid, nil
	}
	prev := relResid
	for it := 0; it < ctrl.MaxRefineIts; it++ {
		res := denseResidual(J, x, rhs, N)
		corr := f.Solve(negate(res))
		for i := range x {
			x[i] += corr[i]
		}
		relResid = nrm2(denseResidual(J, x, rhs, N)) / (1 + rnorm)
		if relResid <= ctrl.RelTol {
			return x, relResid, nil
		}
		if ctrl.Progress && relResid >= prev {
			break
		}
		prev = relResid
	}
	return x, relResid, refinementError(iter, relResid, ctrl.RelTol)
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

// sparseLDL factors a sparse KKT matrix using the same static-pivoting
// elimination as denseLDL, operating on a dense scratch array derived from
// the CSR pattern. It exposes a persistent-handle call shape (initialize
// once, changeValuesAndRefactor on every later iteration against the same
// frozen sparsity pattern) without actually exploiting that sparsity in the
// factorization itself — a production solver would run symbolic analysis
// once and a supernodal numeric refactor on each call instead of
// re-densifying and re-eliminating from scratch.
type sparseLDL struct {
	dense *denseLDL
	n     int
}

func newSparseLDL() *sparseLDL { return &sparseLDL{dense: newDenseLDL()} }

// initialize performs the (conceptually symbolic) first factorization.
func (f *sparseLDL) initialize(J *CSRMatrix) error {
	f.n = J.Rows
	return f.dense.Factor(J.toDenseRowMajor(), nil, J.Rows)
}

// changeValuesAndRefactor performs a numeric-only refactor against the
// updated matrix values.
func (f *sparseLDL) changeValuesAndRefactor(J *CSRMatrix) error {
	return f.dense.Factor(J.toDenseRowMajor(), nil, J.Rows)
}

func (f *sparseLDL) solve(rhs []float64) []float64 { return f.dense.Solve(rhs) }

// sparseTwoStageSolve mirrors denseTwoStageSolve but refines against
// JOrig (the unregularized sparse matrix, before the large-regularization
// diagonal τ was added) rather than the factored matrix.
func sparseTwoStageSolve(f *sparseLDL, JOrig *CSRMatrix, rhs []float64, ctrl SolveCtrl, mode solveMode, iter int) ([]float64, float64, error) {
	x := f.solve(rhs)
	rnorm := nrm2(rhs)
	relResid := nrm2(sparseResidual(JOrig, x, rhs)) / (1 + rnorm)
	if mode == solveFast && relResid <= ctrl.RelTol {
		return x, relResid, nil
	}
	prev := relResid
	for it := 0; it < ctrl.MaxRefineIts; it++ {
		res := sparseResidual(JOrig, x, rhs)
		corr := f.solve(negate(res))
		for i := range x {
			x[i] += corr[i]
		}
		relResid = nrm2(sparseResidual(JOrig, x, rhs)) / (1 + rnorm)
		if relResid <= ctrl.RelTol {
			return x, relResid, nil
		}
		if ctrl.Progress && relResid >= prev {
			break
		}
		prev = relResid
	}
	return x, relResid, refinementError(iter, relResid, ctrl.RelTol)
}

// ntScalingInfNorm computes ‖w‖∞ for w_i = √(s_i/z_i), the Nesterov-Todd
// scaling used to pick between solve modes.
func ntScalingInfNorm(s, z []float64) float64 {
	max := 0.0
	for i := range s {
		w := math.Sqrt(s[i] / z[i])
		if w > max {
			max = w
		}
	}
	return max
}

type zeroPivotErr struct{ k int }

func (e zeroPivotErr) Error() string { return "zero pivot" }

func errZeroPivotAt(k int) error { return zeroPivotErr{k: k} }
