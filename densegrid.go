// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// DenseGridMat is the dense-distributed Matrix backend. Rows are
// partitioned across the grid's process rows (a 1-D row distribution is
// the common case for affine-conic constraint blocks). Columns are not
// distributed: each process holds full-width rows. n-length vectors are
// held replicated across the grid, which avoids a scatter per matvec; the
// m- or k-length operand of MatVec/MatVecT is this process's row slice
// (see LocalRows).
type DenseGridMat struct {
	grid       *ProcessGrid
	globalRows int
	globalCols int
	local      *DenseMat // this process's row block, full column width
	rowOffset  int       // global row index of local row 0
}

// NewDenseGridMat wraps a local row block. localData is row-major with
// localRows*cols entries; rowOffset is the global row index of local row 0.
func NewDenseGridMat(grid *ProcessGrid, globalRows, cols, localRows, rowOffset int, localData []float64) *DenseGridMat {
	if grid == nil {
		grid = NewProcessGrid()
	}
	return &DenseGridMat{
		grid:       grid,
		globalRows: globalRows,
		globalCols: cols,
		local:      NewDenseMat(localRows, cols, localData),
		rowOffset:  rowOffset,
	}
}

func (m *DenseGridMat) Dims() (rows, cols int) { return m.globalRows, m.globalCols }

// MatVec computes the local row block's product; y must be sized to this
// process's local row count (see LocalRows).
func (m *DenseGridMat) MatVec(alpha float64, x []float64, beta float64, y []float64) {
	m.local.MatVec(alpha, x, beta, y)
}

// MatVecT computes the local contribution Mᵗ_local·x_local and sums it
// across the grid's row processes — the one genuine collective a
// row-distributed matvec needs.
func (m *DenseGridMat) MatVecT(alpha float64, x []float64, beta float64, y []float64) {
	partial := make([]float64, m.globalCols)
	m.local.MatVecT(alpha, x, 0, partial)
	m.grid.collectives().AllreduceSumVec(partial)
	for i := range y {
		y[i] = beta*y[i] + partial[i]
	}
}

func (m *DenseGridMat) ScaleRows(d []float64) { m.local.ScaleRows(d) }

func (m *DenseGridMat) ScaleCols(d []float64) { m.local.ScaleCols(d) }

func (m *DenseGridMat) RowAbsMax(dst []float64) { m.local.RowAbsMax(dst) }

// ColAbsMax fills dst with the local row block's column maxima. No
// cross-process reduction is performed (Collectives has no max reduction),
// so the result is the global column maximum only on a 1×1 grid.
func (m *DenseGridMat) ColAbsMax(dst []float64) {
	m.local.ColAbsMax(dst)
	_ = m.grid
}

func (m *DenseGridMat) Norm2Estimate(krylov int) float64 { return m.local.Norm2Estimate(krylov) }

// LocalRows reports this process's row block for partitioning the matching
// slice of m/k-sized vectors (r_h, s, z, ...).
func (m *DenseGridMat) LocalRows() (offset, count int) {
	r, _ := m.local.Dims()
	return m.rowOffset, r
}

// Local exposes the local row block for KKT assembly, which needs direct
// element access this module's Matrix interface doesn't carry.
func (m *DenseGridMat) Local() *DenseMat { return m.local }

// DenseGridSym is the dense-distributed SymMatrix backend for Q, replicated
// across the grid — Q is n×n and small relative to A/G's constraint
// dimension in the problems this module targets, so it is not partitioned.
type DenseGridSym struct {
	grid  *ProcessGrid
	local *DenseSym
}

func NewDenseGridSym(grid *ProcessGrid, n int, data []float64) *DenseGridSym {
	if grid == nil {
		grid = NewProcessGrid()
	}
	return &DenseGridSym{grid: grid, local: NewDenseSym(n, data)}
}

func (m *DenseGridSym) Order() int { return m.local.Order() }

func (m *DenseGridSym) SymMatVec(alpha float64, x []float64, beta float64, y []float64) {
	m.local.SymMatVec(alpha, x, beta, y)
}

func (m *DenseGridSym) ScaleSym(d []float64) { m.local.ScaleSym(d) }

func (m *DenseGridSym) RowAbsMax(dst []float64) { m.local.RowAbsMax(dst) }

func (m *DenseGridSym) Norm2Estimate(krylov int) float64 { return m.local.Norm2Estimate(krylov) }

// Local exposes the local symmetric store for KKT assembly.
func (m *DenseGridSym) Local() *DenseSym { return m.local }
