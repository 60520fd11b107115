// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// SparseGridMatrix is the sparse-distributed Matrix backend: each process
// holds a row-partitioned CSRMatrix shard and the grid supplies the
// transpose-matvec reduction, mirroring DenseGridMat's row distribution.
type SparseGridMatrix struct {
	grid       *ProcessGrid
	globalRows int
	globalCols int
	local      *CSRMatrix
	rowOffset  int
}

// NewSparseGridMatrix wraps a local row-partitioned shard. The shard's row
// indices are local (0-based); rowOffset is the global row index of local
// row 0.
func NewSparseGridMatrix(grid *ProcessGrid, globalRows, globalCols, rowOffset int, shard *CSRMatrix) *SparseGridMatrix {
	if grid == nil {
		grid = NewProcessGrid()
	}
	return &SparseGridMatrix{grid: grid, globalRows: globalRows, globalCols: globalCols, local: shard, rowOffset: rowOffset}
}

func (m *SparseGridMatrix) Dims() (rows, cols int) { return m.globalRows, m.globalCols }

func (m *SparseGridMatrix) MatVec(alpha float64, x []float64, beta float64, y []float64) {
	m.local.MatVec(alpha, x, beta, y)
}

func (m *SparseGridMatrix) MatVecT(alpha float64, x []float64, beta float64, y []float64) {
	partial := make([]float64, m.globalCols)
	m.local.MatVecT(alpha, x, 0, partial)
	m.grid.collectives().AllreduceSumVec(partial)
	for i := range y {
		y[i] = beta*y[i] + partial[i]
	}
}

func (m *SparseGridMatrix) ScaleRows(d []float64) { m.local.ScaleRows(d) }

func (m *SparseGridMatrix) ScaleCols(d []float64) { m.local.ScaleCols(d) }

func (m *SparseGridMatrix) RowAbsMax(dst []float64) { m.local.RowAbsMax(dst) }

func (m *SparseGridMatrix) ColAbsMax(dst []float64) { m.local.ColAbsMax(dst) }

func (m *SparseGridMatrix) Norm2Estimate(krylov int) float64 { return m.local.Norm2Estimate(krylov) }

func (m *SparseGridMatrix) LocalRows() (offset, count int) { return m.rowOffset, m.local.Rows }

// LocalShard exposes the local CSR shard for KKT assembly, which needs raw
// triplets to build the static sparse structure once.
func (m *SparseGridMatrix) LocalShard() *CSRMatrix { return m.local }
