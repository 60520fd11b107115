// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// Matrix is the capability set the IPM driver needs from A and G,
// regardless of storage backend: matvec, transpose-matvec, and the row/col
// operations used only by equilibration and KKT assembly.
//
// Implementations: *DenseMat (dense local), *DenseGridMat (dense
// distributed), *CSRMatrix (sparse local), *SparseGridMatrix (sparse
// distributed).
type Matrix interface {
	Dims() (rows, cols int)

	// MatVec computes y ← alpha·M·x + beta·y.
	MatVec(alpha float64, x []float64, beta float64, y []float64)
	// MatVecT computes y ← alpha·Mᵗ·x + beta·y.
	MatVecT(alpha float64, x []float64, beta float64, y []float64)

	// ScaleRows computes M ← diag(d)·M in place.
	ScaleRows(d []float64)
	// ScaleCols computes M ← M·diag(d) in place.
	ScaleCols(d []float64)

	// RowAbsMax fills dst[i] with max_j |M[i,j]|.
	RowAbsMax(dst []float64)
	// ColAbsMax fills dst[j] with max_i |M[i,j]|.
	ColAbsMax(dst []float64)

	// Norm2Estimate returns a Krylov-based estimate of ‖M‖₂ using basis
	// size krylov.
	Norm2Estimate(krylov int) float64
}

// SymMatrix is the capability set the IPM driver needs from Q: a symmetric
// matrix-vector product plus the same row/col operations equilibration
// needs, applied symmetrically.
type SymMatrix interface {
	Order() int

	// SymMatVec computes y ← alpha·M·x + beta·y using only the symmetric
	// structure of M (dense: lower triangle; sparse: explicit full
	// pattern, asserted at ingestion).
	SymMatVec(alpha float64, x []float64, beta float64, y []float64)

	// ScaleSym computes M ← diag(d)·M·diag(d) in place.
	ScaleSym(d []float64)

	// RowAbsMax fills dst[i] with max_j |M[i,j]|.
	RowAbsMax(dst []float64)

	Norm2Estimate(krylov int) float64
}

func matVecDims(name string, rows, cols, xLen, yLen int, transposed bool) {
	wantX, wantY := cols, rows
	if transposed {
		wantX, wantY = rows, cols
	}
	if xLen != wantX {
		dimensionError(name+" input vector", wantX, xLen)
	}
	if yLen != wantY {
		dimensionError(name+" output vector", wantY, yLen)
	}
}
