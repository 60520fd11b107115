// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// DenseMat is the dense-local Matrix backend for A and G. It wraps a
// blas64.General so the IPM's matvecs run through gonum's BLAS level-2
// routines instead of a hand-rolled loop.
type DenseMat struct {
	raw blas64.General
}

// NewDenseMat builds a DenseMat from a row-major data slice of length
// rows*cols.
func NewDenseMat(rows, cols int, data []float64) *DenseMat {
	if len(data) != rows*cols {
		dimensionError("DenseMat data", rows*cols, len(data))
	}
	return &DenseMat{raw: blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: data}}
}

// Clone returns a deep copy of m, so scaling the copy in place leaves m
// untouched.
func (m *DenseMat) Clone() *DenseMat {
	data := append([]float64(nil), m.raw.Data...)
	return &DenseMat{raw: blas64.General{Rows: m.raw.Rows, Cols: m.raw.Cols, Stride: m.raw.Stride, Data: data}}
}

func (m *DenseMat) Dims() (rows, cols int) { return m.raw.Rows, m.raw.Cols }

func (m *DenseMat) At(i, j int) float64 { return m.raw.Data[i*m.raw.Stride+j] }

func (m *DenseMat) Set(i, j int, v float64) { m.raw.Data[i*m.raw.Stride+j] = v }

func (m *DenseMat) MatVec(alpha float64, x []float64, beta float64, y []float64) {
	matVecDims("DenseMat.MatVec", m.raw.Rows, m.raw.Cols, len(x), len(y), false)
	xv := blas64.Vector{N: len(x), Inc: 1, Data: x}
	yv := blas64.Vector{N: len(y), Inc: 1, Data: y}
	blas64.Gemv(blas.NoTrans, alpha, m.raw, xv, beta, yv)
}

func (m *DenseMat) MatVecT(alpha float64, x []float64, beta float64, y []float64) {
	matVecDims("DenseMat.MatVecT", m.raw.Rows, m.raw.Cols, len(x), len(y), true)
	xv := blas64.Vector{N: len(x), Inc: 1, Data: x}
	yv := blas64.Vector{N: len(y), Inc: 1, Data: y}
	blas64.Gemv(blas.Trans, alpha, m.raw, xv, beta, yv)
}

func (m *DenseMat) ScaleRows(d []float64) {
	if len(d) != m.raw.Rows {
		dimensionError("DenseMat.ScaleRows", m.raw.Rows, len(d))
	}
	for i := 0; i < m.raw.Rows; i++ {
		row := m.raw.Data[i*m.raw.Stride : i*m.raw.Stride+m.raw.Cols]
		blas64.Scal(d[i], blas64.Vector{N: len(row), Inc: 1, Data: row})
	}
}

func (m *DenseMat) ScaleCols(d []float64) {
	if len(d) != m.raw.Cols {
		dimensionError("DenseMat.ScaleCols", m.raw.Cols, len(d))
	}
	for i := 0; i < m.raw.Rows; i++ {
		row := m.raw.Data[i*m.raw.Stride : i*m.raw.Stride+m.raw.Cols]
		for j, dj := range d {
			row[j] *= dj
		}
	}
}

func (m *DenseMat) RowAbsMax(dst []float64) {
	if len(dst) != m.raw.Rows {
		dimensionError("DenseMat.RowAbsMax", m.raw.Rows, len(dst))
	}
	for i := 0; i < m.raw.Rows; i++ {
		row := m.raw.Data[i*m.raw.Stride : i*m.raw.Stride+m.raw.Cols]
		max := 0.0
		for _, v := range row {
			if a := math.Abs(v); a > max {
				max = a
			}
		}
		dst[i] = max
	}
}

func (m *DenseMat) ColAbsMax(dst []float64) {
	if len(dst) != m.raw.Cols {
		dimensionError("DenseMat.ColAbsMax", m.raw.Cols, len(dst))
	}
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.raw.Rows; i++ {
		row := m.raw.Data[i*m.raw.Stride : i*m.raw.Stride+m.raw.Cols]
		for j, v := range row {
			if a := math.Abs(v); a > dst[j] {
				dst[j] = a
			}
		}
	}
}

// Norm2Estimate estimates ‖M‖₂ with power iteration on MᵗM, driven through
// krylov matvec pairs.
func (m *DenseMat) Norm2Estimate(krylov int) float64 {
	return powerIterNorm2(krylov, m.raw.Cols, func(x, y []float64) {
		tmp := make([]float64, m.raw.Rows)
		m.MatVec(1, x, 0, tmp)
		m.MatVecT(1, tmp, 0, y)
	})
}

// DenseSym is the dense-local SymMatrix backend for Q. Only the lower
// triangle is populated; matvecs use it symmetrically via blas64.Symv.
type DenseSym struct {
	raw blas64.Symmetric
}

// NewDenseSym builds a DenseSym of order n from a row-major lower-triangle
// data slice of length n*n (upper triangle is ignored).
func NewDenseSym(n int, data []float64) *DenseSym {
	if len(data) != n*n {
		dimensionError("DenseSym data", n*n, len(data))
	}
	return &DenseSym{raw: blas64.Symmetric{N: n, Stride: n, Data: data, Uplo: blas.Lower}}
}

// Clone returns a deep copy of m, so scaling the copy in place leaves m
// untouched.
func (m *DenseSym) Clone() *DenseSym {
	data := append([]float64(nil), m.raw.Data...)
	return &DenseSym{raw: blas64.Symmetric{N: m.raw.N, Stride: m.raw.Stride, Data: data, Uplo: m.raw.Uplo}}
}

func (m *DenseSym) Order() int { return m.raw.N }

func (m *DenseSym) At(i, j int) float64 {
	if i < j {
		i, j = j, i
	}
	return m.raw.Data[i*m.raw.Stride+j]
}

func (m *DenseSym) Set(i, j int, v float64) {
	if i < j {
		i, j = j, i
	}
	m.raw.Data[i*m.raw.Stride+j] = v
}

func (m *DenseSym) SymMatVec(alpha float64, x []float64, beta float64, y []float64) {
	if len(x) != m.raw.N || len(y) != m.raw.N {
		dimensionError("DenseSym.SymMatVec", m.raw.N, len(x))
	}
	xv := blas64.Vector{N: len(x), Inc: 1, Data: x}
	yv := blas64.Vector{N: len(y), Inc: 1, Data: y}
	blas64.Symv(alpha, m.raw, xv, beta, yv)
}

func (m *DenseSym) ScaleSym(d []float64) {
	n := m.raw.N
	if len(d) != n {
		dimensionError("DenseSym.ScaleSym", n, len(d))
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := m.At(i, j) * d[i] * d[j]
			m.Set(i, j, v)
		}
	}
}

func (m *DenseSym) RowAbsMax(dst []float64) {
	n := m.raw.N
	if len(dst) != n {
		dimensionError("DenseSym.RowAbsMax", n, len(dst))
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			a := math.Abs(m.At(i, j))
			if a > dst[i] {
				dst[i] = a
			}
			if a > dst[j] {
				dst[j] = a
			}
		}
	}
}

// Norm2Estimate estimates ‖Q‖₂ with power iteration on Q² (Q applied
// twice), matching the MᵗM convention used for non-symmetric operators.
func (m *DenseSym) Norm2Estimate(krylov int) float64 {
	n := m.raw.N
	return powerIterNorm2(krylov, n, func(x, y []float64) {
		tmp := make([]float64, n)
		m.SymMatVec(1, x, 0, tmp)
		m.SymMatVec(1, tmp, 0, y)
	})
}
