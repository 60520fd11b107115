// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// kktRHS assembles d = (-r_c, -r_b, -r_h + r_μ⊘z), the right-hand side of
// the affine (predictor) Newton solve.
func kktRHS(n, m, k int, res *Residuals, z []float64) []float64 {
	d := make([]float64, n+m+k)
	for i := 0; i < n; i++ {
		d[i] = -res.Rc[i]
	}
	for i := 0; i < m; i++ {
		d[n+i] = -res.Rb[i]
	}
	for i := 0; i < k; i++ {
		d[n+m+i] = -res.Rh[i] + res.RMu[i]/z[i]
	}
	return d
}

// kktRHSCombined builds d for the combined (corrector) solve from the
// shifted r_μ. Only the z-block differs from kktRHS; the x/y blocks are the
// same because the affine residuals r_c, r_b do not depend on the centering
// parameter.
func kktRHSCombined(n, m, k int, res *Residuals, rMuShifted, z []float64) []float64 {
	d := make([]float64, n+m+k)
	for i := 0; i < n; i++ {
		d[i] = -res.Rc[i]
	}
	for i := 0; i < m; i++ {
		d[n+i] = -res.Rb[i]
	}
	for i := 0; i < k; i++ {
		d[n+m+i] = -res.Rh[i] + rMuShifted[i]/z[i]
	}
	return d
}

// buildDenseKKT assembles the full N×N symmetric quasi-definite matrix
//
//	[ Q+γxI    Aᵗ        Gᵗ      ]
//	[ A       -γyI       0       ]
//	[ G        0    -(S/Z+γzI)   ]
//
// for the dense backend. Only the full matrix form is produced: the
// factorization reads only the lower triangle, but the refinement residual
// in denseTwoStageSolve multiplies by the complete matrix.
func buildDenseKKT(Q *DenseSym, A, G *DenseMat, n, m, k int, gammaX, gammaY, gammaZ float64, s, z []float64) []float64 {
	N := n + m + k
	J := make([]float64, N*N)
	set := func(i, j int, v float64) { J[i*N+j] = v }

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := Q.At(i, j)
			if i == j {
				v += gammaX
			}
			set(i, j, v)
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := A.At(i, j)
			set(n+i, j, v)
			set(j, n+i, v)
		}
		set(n+i, n+i, -gammaY)
	}
	for i := 0; i < k; i++ {
		for j := 0; j < n; j++ {
			v := G.At(i, j)
			set(n+m+i, j, v)
			set(j, n+m+i, v)
		}
		set(n+m+i, n+m+i, -(s[i]/z[i] + gammaZ))
	}
	return J
}

// sparseKKTStatic holds the structural (iteration-invariant) part of the
// sparse KKT matrix: Q, A, Aᵗ, G, Gᵗ, and the small-regularization diagonal.
// It is built once and its sparsity pattern is frozen; only the dynamic
// z-block diagonal changes per iteration, and the fixed large-regularization
// diagonal is added on top of each refreshed copy.
type sparseKKTStatic struct {
	n, m, k int
	triplets []Triplet // everything except the dynamic z-block diagonal
}

func buildSparseKKTStatic(Q, A, G *CSRMatrix, n, m, k int, gammaXSmall, gammaYSmall, gammaZSmall float64) *sparseKKTStatic {
	var t []Triplet
	for _, tr := range Q.Triplets() {
		t = append(t, tr)
	}
	for _, tr := range A.Triplets() {
		t = append(t, Triplet{Row: n + tr.Row, Col: tr.Col, Val: tr.Val})
		t = append(t, Triplet{Row: tr.Col, Col: n + tr.Row, Val: tr.Val})
	}
	for _, tr := range G.Triplets() {
		t = append(t, Triplet{Row: n + m + tr.Row, Col: tr.Col, Val: tr.Val})
		t = append(t, Triplet{Row: tr.Col, Col: n + m + tr.Row, Val: tr.Val})
	}
	// The static diagonal carries √γ rather than γ for the small
	// regularizers.
	for i := 0; i < n; i++ {
		t = append(t, Triplet{Row: i, Col: i, Val: math.Sqrt(math.Max(0, gammaXSmall))})
	}
	for i := 0; i < m; i++ {
		t = append(t, Triplet{Row: n + i, Col: n + i, Val: -math.Sqrt(math.Max(0, gammaYSmall))})
	}
	for i := 0; i < k; i++ {
		t = append(t, Triplet{Row: n + m + i, Col: n + m + i, Val: -math.Sqrt(math.Max(0, gammaZSmall))})
	}
	return &sparseKKTStatic{n: n, m: m, k: k, triplets: t}
}

// refreshSparseKKT builds JOrig for the current iteration by copying
// JStatic and appending the dynamic z-block diagonal -(s_i/z_i).
func (st *sparseKKTStatic) refreshSparseKKT(s, z []float64) *CSRMatrix {
	N := st.n + st.m + st.k
	t := make([]Triplet, len(st.triplets), len(st.triplets)+st.k)
	copy(t, st.triplets)
	for i := 0; i < st.k; i++ {
		t = append(t, Triplet{Row: st.n + st.m + i, Col: st.n + st.m + i, Val: -(s[i] / z[i])})
	}
	return NewCSRMatrixFromTriplets(N, N, t)
}

// largeRegTau builds the signed large-regularization vector τ: +γ_x^L for
// x-rows, -γ_y^L for y-rows, -γ_z^L for z-rows, scaled by normScale. The
// sparse driver passes 1 + sparseNormScale, the largest of the ‖Q‖₂, ‖A‖₂,
// ‖G‖₂ estimates.
func largeRegTau(n, m, k int, gammaXLarge, gammaYLarge, gammaZLarge, normScale float64) []float64 {
	tau := make([]float64, n+m+k)
	for i := 0; i < n; i++ {
		tau[i] = gammaXLarge * normScale
	}
	for i := 0; i < m; i++ {
		tau[n+i] = -gammaYLarge * normScale
	}
	for i := 0; i < k; i++ {
		tau[n+m+i] = -gammaZLarge * normScale
	}
	return tau
}

// addDiagSparse returns JOrig + diag(tau) as a new CSRMatrix, leaving
// JOrig untouched for iterative refinement against the unregularized system.
func addDiagSparse(JOrig *CSRMatrix, tau []float64) *CSRMatrix {
	t := JOrig.Triplets()
	out := make([]Triplet, len(t), len(t)+len(tau))
	copy(out, t)
	for i, v := range tau {
		out = append(out, Triplet{Row: i, Col: i, Val: v})
	}
	return NewCSRMatrixFromTriplets(JOrig.Rows, JOrig.Cols, out)
}
