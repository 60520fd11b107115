// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// Triplet is a single (row, col, value) nonzero entry, the construction
// format for CSRMatrix and the iteration format KKT assembly uses to copy
// blocks into the static sparse structure.
type Triplet struct {
	Row, Col int
	Val      float64
}

// CSRMatrix is the sparse-local Matrix/SymMatrix backend, compressed sparse
// row format grounded on the pack's sparse-matrix idiom
// (other_examples/asmuelle-sparsem__matrix.go's CSRMatrix, with a lazily
// cached transpose; MatVecT and ScaleCols work from the row form directly).
type CSRMatrix struct {
	Rows, Cols int
	Values     []float64
	ColIndex   []int
	RowPtr     []int // length Rows+1

	// transposed is built lazily by Transpose and invalidated by any
	// mutating method (ScaleRows, ScaleCols).
	transposed *CSRMatrix
}

// NewCSRMatrixFromTriplets builds a CSR matrix from unordered triplets,
// summing duplicate (row, col) entries.
func NewCSRMatrixFromTriplets(rows, cols int, triplets []Triplet) *CSRMatrix {
	counts := make([]int, rows+1)
	for _, t := range triplets {
		counts[t.Row]++
	}
	rowPtr := make([]int, rows+1)
	for i := 0; i < rows; i++ {
		rowPtr[i+1] = rowPtr[i] + counts[i]
	}
	nnz := rowPtr[rows]
	values := make([]float64, nnz)
	colIndex := make([]int, nnz)
	cursor := append([]int(nil), rowPtr...)
	for _, t := range triplets {
		pos := cursor[t.Row]
		values[pos] = t.Val
		colIndex[pos] = t.Col
		cursor[t.Row]++
	}
	m := &CSRMatrix{Rows: rows, Cols: cols, Values: values, ColIndex: colIndex, RowPtr: rowPtr}
	m.coalesce()
	return m
}

// Clone returns a deep copy of m, so scaling the copy in place leaves m
// untouched. The clone starts with no cached transpose.
func (m *CSRMatrix) Clone() *CSRMatrix {
	return &CSRMatrix{
		Rows:     m.Rows,
		Cols:     m.Cols,
		Values:   append([]float64(nil), m.Values...),
		ColIndex: append([]int(nil), m.ColIndex...),
		RowPtr:   append([]int(nil), m.RowPtr...),
	}
}

// coalesce sorts each row by column index and sums duplicate entries.
func (m *CSRMatrix) coalesce() {
	for i := 0; i < m.Rows; i++ {
		lo, hi := m.RowPtr[i], m.RowPtr[i+1]
		// insertion sort: rows from a typical KKT block are short.
		for a := lo + 1; a < hi; a++ {
			c, v := m.ColIndex[a], m.Values[a]
			b := a - 1
			for b >= lo && m.ColIndex[b] > c {
				m.ColIndex[b+1], m.Values[b+1] = m.ColIndex[b], m.Values[b]
				b--
			}
			m.ColIndex[b+1], m.Values[b+1] = c, v
		}
	}
	write := 0
	newRowPtr := make([]int, m.Rows+1)
	for i := 0; i < m.Rows; i++ {
		newRowPtr[i] = write
		lo, hi := m.RowPtr[i], m.RowPtr[i+1]
		for a := lo; a < hi; {
			c, v := m.ColIndex[a], m.Values[a]
			a++
			for a < hi && m.ColIndex[a] == c {
				v += m.Values[a]
				a++
			}
			m.ColIndex[write], m.Values[write] = c, v
			write++
		}
	}
	newRowPtr[m.Rows] = write
	m.ColIndex = m.ColIndex[:write]
	m.Values = m.Values[:write]
	m.RowPtr = newRowPtr
}

func (m *CSRMatrix) Dims() (rows, cols int) { return m.Rows, m.Cols }

func (m *CSRMatrix) Order() int { return m.Rows }

func (m *CSRMatrix) NNZ() int { return len(m.Values) }

// Triplets returns the nonzero entries in row-major order.
func (m *CSRMatrix) Triplets() []Triplet {
	out := make([]Triplet, 0, len(m.Values))
	for i := 0; i < m.Rows; i++ {
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			out = append(out, Triplet{Row: i, Col: m.ColIndex[a], Val: m.Values[a]})
		}
	}
	return out
}

func (m *CSRMatrix) MatVec(alpha float64, x []float64, beta float64, y []float64) {
	matVecDims("CSRMatrix.MatVec", m.Rows, m.Cols, len(x), len(y), false)
	m.scaleY(beta, y)
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			sum += m.Values[a] * x[m.ColIndex[a]]
		}
		y[i] += alpha * sum
	}
}

// SymMatVec is identical to MatVec: sparse backends require Q to carry its
// explicit full symmetric pattern, so no triangular-only shortcut is
// available.
func (m *CSRMatrix) SymMatVec(alpha float64, x []float64, beta float64, y []float64) {
	m.MatVec(alpha, x, beta, y)
}

func (m *CSRMatrix) MatVecT(alpha float64, x []float64, beta float64, y []float64) {
	matVecDims("CSRMatrix.MatVecT", m.Rows, m.Cols, len(x), len(y), true)
	m.scaleY(beta, y)
	for i := 0; i < m.Rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			y[m.ColIndex[a]] += alpha * m.Values[a] * xi
		}
	}
}

func (m *CSRMatrix) scaleY(beta float64, y []float64) {
	if beta == 0 {
		for i := range y {
			y[i] = 0
		}
		return
	}
	if beta != 1 {
		for i := range y {
			y[i] *= beta
		}
	}
}

func (m *CSRMatrix) ScaleRows(d []float64) {
	if len(d) != m.Rows {
		dimensionError("CSRMatrix.ScaleRows", m.Rows, len(d))
	}
	for i := 0; i < m.Rows; i++ {
		di := d[i]
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			m.Values[a] *= di
		}
	}
	m.transposed = nil
}

func (m *CSRMatrix) ScaleCols(d []float64) {
	if len(d) != m.Cols {
		dimensionError("CSRMatrix.ScaleCols", m.Cols, len(d))
	}
	for a := range m.Values {
		m.Values[a] *= d[m.ColIndex[a]]
	}
	m.transposed = nil
}

// ScaleSym computes M ← diag(d)·M·diag(d) in place for sparse Q.
func (m *CSRMatrix) ScaleSym(d []float64) {
	m.ScaleRows(d)
	m.ScaleCols(d)
}

func (m *CSRMatrix) RowAbsMax(dst []float64) {
	if len(dst) != m.Rows {
		dimensionError("CSRMatrix.RowAbsMax", m.Rows, len(dst))
	}
	for i := 0; i < m.Rows; i++ {
		max := 0.0
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			if v := math.Abs(m.Values[a]); v > max {
				max = v
			}
		}
		dst[i] = max
	}
}

func (m *CSRMatrix) ColAbsMax(dst []float64) {
	if len(dst) != m.Cols {
		dimensionError("CSRMatrix.ColAbsMax", m.Cols, len(dst))
	}
	for j := range dst {
		dst[j] = 0
	}
	for a := range m.Values {
		if v := math.Abs(m.Values[a]); v > dst[m.ColIndex[a]] {
			dst[m.ColIndex[a]] = v
		}
	}
}

// Transpose returns (and caches) the transpose of m in CSR form. KKT
// assembly does not use it (it swaps triplet indices instead); runSparseIPM
// uses it to check that Q is stored with its full symmetric pattern.
func (m *CSRMatrix) Transpose() *CSRMatrix {
	if m.transposed != nil {
		return m.transposed
	}
	triplets := m.Triplets()
	t := make([]Triplet, len(triplets))
	for i, tr := range triplets {
		t[i] = Triplet{Row: tr.Col, Col: tr.Row, Val: tr.Val}
	}
	m.transposed = NewCSRMatrixFromTriplets(m.Cols, m.Rows, t)
	return m.transposed
}

// toDenseRowMajor expands the matrix to a row-major N×N dense array,
// used internally by sparseLDL's dense-scratch factorization.
func (m *CSRMatrix) toDenseRowMajor() []float64 {
	n := m.Rows
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for a := m.RowPtr[i]; a < m.RowPtr[i+1]; a++ {
			out[i*n+m.ColIndex[a]] = m.Values[a]
		}
	}
	return out
}

func (m *CSRMatrix) Norm2Estimate(krylov int) float64 {
	return powerIterNorm2(krylov, m.Cols, func(x, y []float64) {
		tmp := make([]float64, m.Rows)
		m.MatVec(1, x, 0, tmp)
		m.MatVecT(1, tmp, 0, y)
	})
}
