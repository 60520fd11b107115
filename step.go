// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// maxStepOnOrthant computes α_max(v, Δv, αHat) = min(αHat, min_{i: Δv_i<0}
// -v_i/Δv_i), the largest step that keeps v + α·Δv on the nonnegative
// orthant's boundary or inside it, capped at αHat.
func maxStepOnOrthant(v, dv []float64, alphaHat float64) float64 {
	alpha := alphaHat
	for i, d := range dv {
		if d < 0 {
			if a := -v[i] / d; a < alpha {
				alpha = a
			}
		}
	}
	return alpha
}

// affineStep computes the affine (predictor) step lengths α_aff^p, α_aff^d,
// unifying them to their minimum when forceSameStep is set.
func affineStep(s, z []float64, dir *Direction, forceSameStep bool) (alphaP, alphaD float64) {
	alphaP = maxStepOnOrthant(s, dir.Ds, 1)
	alphaD = maxStepOnOrthant(z, dir.Dz, 1)
	if forceSameStep {
		m := alphaP
		if alphaD < m {
			m = alphaD
		}
		alphaP, alphaD = m, m
	}
	return
}

// muAffine computes μ_aff = ŝ·ẑ/k for ŝ = s + α_aff^p Δs, ẑ = z + α_aff^d Δz.
func muAffine(s, z []float64, dir *Direction, alphaP, alphaD float64, k int) float64 {
	if k == 0 {
		return 0
	}
	sum := 0.0
	for i := range s {
		shat := s[i] + alphaP*dir.Ds[i]
		zhat := z[i] + alphaD*dir.Dz[i]
		sum += shat * zhat
	}
	return sum / float64(k)
}

// shiftRMuCombined builds the combined (corrector) right-hand side's
// centering term: r_μ ← r_μ - σμ·1, plus the Mehrotra corrector term
// Δs_aff⊙Δz_aff when mehrotra is set.
func shiftRMuCombined(rMu []float64, sigma, mu float64, aff *Direction, mehrotra bool) []float64 {
	out := make([]float64, len(rMu))
	for i := range rMu {
		out[i] = rMu[i] - sigma*mu
		if mehrotra {
			out[i] += aff.Ds[i] * aff.Dz[i]
		}
	}
	return out
}

// finalStep computes the post-combined-solve step lengths:
// α_p = min(η·α_max(s,Δs,1/η), 1), α_d analogously, unified to the minimum
// when forceSameStep is set.
func finalStep(s, z []float64, dir *Direction, eta float64, forceSameStep bool) (alphaP, alphaD float64) {
	alphaP = clamp01(eta * maxStepOnOrthant(s, dir.Ds, 1/eta))
	alphaD = clamp01(eta * maxStepOnOrthant(z, dir.Dz, 1/eta))
	if forceSameStep {
		m := alphaP
		if alphaD < m {
			m = alphaD
		}
		alphaP, alphaD = m, m
	}
	return
}
