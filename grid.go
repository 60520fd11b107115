// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// ProcessGrid addresses the 2-D block-cyclic process grid the distributed
// backends partition their data over. The IPM driver's control flow is
// identical on every process; the grid only matters to the collective used
// by the row-distributed backends' transpose-matvec (MatVecT).
//
// This module vendors no MPI (or other collective-transport) binding.
// ProcessGrid therefore only implements the addressing math (Owner,
// IsLocal) concretely; its Collectives are satisfied by
// LocalGrid, a single-process identity implementation. A deployment with
// Rows*Cols > 1 must supply its own Collectives implementation (e.g. backed
// by an MPI binding) — the grid-aware entrypoints reject any other shape
// with ErrUnsupportedGridShape rather than silently running a
// multi-process topology through single-process collectives.
type ProcessGrid struct {
	Rows, Cols int // grid shape
	Row, Col   int // this process's coordinate

	Collectives Collectives
}

// Collectives is the reduction/scatter capability the distributed backends
// need from the process grid. Every call here is a global synchronization
// point.
type Collectives interface {
	// AllreduceSum returns the sum of v across every process in the grid.
	AllreduceSum(v float64) float64
	// AllreduceSumVec sums dst elementwise across every process in the
	// grid, in place.
	AllreduceSumVec(dst []float64)
}

// LocalGrid is the identity Collectives implementation for a 1×1 grid: the
// local value already is the global value.
type LocalGrid struct{}

func (LocalGrid) AllreduceSum(v float64) float64 { return v }

func (LocalGrid) AllreduceSumVec(dst []float64) {}

// NewProcessGrid returns the default single-process grid. A caller with a
// real multi-process topology builds a ProcessGrid with its own shape,
// coordinate and Collectives instead.
func NewProcessGrid() *ProcessGrid {
	return &ProcessGrid{Rows: 1, Cols: 1, Row: 0, Col: 0, Collectives: LocalGrid{}}
}

func (g *ProcessGrid) collectives() Collectives {
	if g == nil || g.Collectives == nil {
		return LocalGrid{}
	}
	return g.Collectives
}

// Owner returns the grid coordinate owning global block (blockRow, blockCol)
// under block-cyclic distribution: block indices are dealt round-robin over
// the grid's rows and columns.
func (g *ProcessGrid) Owner(blockRow, blockCol int) (row, col int) {
	return blockRow % g.Rows, blockCol % g.Cols
}

// IsLocal reports whether this process owns global block (blockRow, blockCol).
func (g *ProcessGrid) IsLocal(blockRow, blockCol int) bool {
	r, c := g.Owner(blockRow, blockCol)
	return r == g.Row && c == g.Col
}
