// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// Direction holds a Newton step (Δx, Δy, Δz, Δs).
type Direction struct {
	Dx, Dy, Dz, Ds []float64
}

// expandDirection splits the reduced KKT solution d into (Δx, Δy, Δz) and
// reconstructs Δs = z⁻¹ ⊙ (-r_μ - s ⊙ Δz). This formulation is used
// consistently by both the affine and combined solves so residual checks
// stay aligned.
func expandDirection(reduced []float64, n, m, k int, s, z, rMu []float64) *Direction {
	dx := append([]float64(nil), reduced[:n]...)
	dy := append([]float64(nil), reduced[n:n+m]...)
	dz := append([]float64(nil), reduced[n+m:n+m+k]...)
	ds := make([]float64, k)
	for i := 0; i < k; i++ {
		ds[i] = (-rMu[i] - s[i]*dz[i]) / z[i]
	}
	return &Direction{Dx: dx, Dy: dy, Dz: dz, Ds: ds}
}
