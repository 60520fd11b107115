// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// CentralityRule computes the centering parameter σ from the barrier
// parameter μ, the affine-step barrier estimate μ_aff, and the affine
// primal/dual step lengths. The default is Mehrotra's (μ_aff/μ)³.
type CentralityRule func(mu, muAff, alphaAffP, alphaAffD float64) float64

// DefaultCentralityRule implements Mehrotra's heuristic σ = (μ_aff/μ)³.
func DefaultCentralityRule(mu, muAff, alphaAffP, alphaAffD float64) float64 {
	if mu <= 0 {
		return 0
	}
	r := muAff / mu
	return r * r * r
}

// SolveCtrl configures the two-stage regularized KKT solve.
type SolveCtrl struct {
	// RelTol is the relative residual tolerance ‖J·d - rhs‖₂ ≤ RelTol·‖rhs‖₂
	// that iterative refinement must reach.
	RelTol float64
	// MaxRefineIts bounds the number of refinement steps.
	MaxRefineIts int
	// Progress requires each refinement step to strictly decrease the
	// relative residual; refinement stops early otherwise.
	Progress bool
	// SelectiveInversionThreshold is the ‖w‖∞ cutoff (w_i = √(s_i/z_i))
	// above which the sparse path skips the fast first-stage solve and
	// goes straight to the conservative regularized mode.
	SelectiveInversionThreshold float64
}

func (s SolveCtrl) withDefaults() SolveCtrl {
	if s.RelTol <= 0 {
		s.RelTol = 1e-10
	}
	if s.MaxRefineIts <= 0 {
		s.MaxRefineIts = 10
	}
	if s.SelectiveInversionThreshold <= 0 {
		s.SelectiveInversionThreshold = 1e8
	}
	return s
}

// IPMCtrl configures the IPM driver.
type IPMCtrl struct {
	// PrimalInit treats the caller-supplied (x, s) as a warm start.
	PrimalInit bool
	// DualInit treats the caller-supplied (y, z) as a warm start.
	DualInit bool
	// StandardInitShift selects a Mehrotra-style positive shift of s, z
	// in the default initializer.
	StandardInitShift bool
	// OuterEquil enables stacked Ruiz equilibration of (A, G, Q, b, c, h).
	OuterEquil bool

	// MaxIts is the hard iteration cap (≥ 0).
	MaxIts int
	// InfeasibilityTol targets max(rbConv, rcConv, rhConv).
	InfeasibilityTol float64
	// RelativeObjectiveGapTol targets relObjGap.
	RelativeObjectiveGapTol float64
	// RelativeComplementarityGapTol targets relCompGap.
	RelativeComplementarityGapTol float64
	// MinDimacsDecreaseRatio is the minimum progress ratio required for
	// early stop once tolerances are met.
	MinDimacsDecreaseRatio float64

	// MaxStepRatio η ∈ (0,1) backs the step off the orthant boundary.
	MaxStepRatio float64
	// ForceSameStep forces α_p = α_d = min(α_p, α_d).
	ForceSameStep bool
	// Mehrotra includes the Δs_aff ⊙ Δz_aff corrector term in r_μ.
	Mehrotra bool
	// CentralityRule computes σ; nil selects DefaultCentralityRule.
	CentralityRule CentralityRule

	// XRegSmall, YRegSmall, ZRegSmall are the inner SQD regularizers
	// γ_x, γ_y, γ_z embedded in JStatic.
	XRegSmall, YRegSmall, ZRegSmall float64
	// XRegLarge, YRegLarge, ZRegLarge are the refinement-stage
	// regularizers, scaled by a norm estimate of [Q;A;G].
	XRegLarge, YRegLarge, ZRegLarge float64

	// TwoStage enables the fast first-stage solve before regularized
	// refinement on the sparse path.
	TwoStage bool
	// SolveCtrl configures the inner refinement solver.
	SolveCtrl SolveCtrl
	// TwoNormKrylovBasisSize sizes the Krylov basis used to estimate
	// ‖Q‖₂, ‖A‖₂, ‖G‖₂ for the large-regularization scale factor.
	TwoNormKrylovBasisSize int

	// CheckResiduals additionally computes and logs the direction residual
	// norm at LogVerbose; see Logger.
	CheckResiduals bool

	// Logger receives iteration diagnostics. A nil Logger disables output.
	Logger *Logger
}

// withDefaults returns ctrl with every unset numeric option filled to its
// standard value. An unset RelativeComplementarityGapTol takes the resolved
// RelativeObjectiveGapTol; an unset RelativeObjectiveGapTol defaults to 1e-8
// whatever the complementarity tolerance is.
func (c IPMCtrl) withDefaults() IPMCtrl {
	// MaxIts=0 means no Newton step is ever taken: it is only clamped
	// (negative becomes zero), never defaulted, so a caller can request it
	// explicitly.
	if c.MaxIts < 0 {
		c.MaxIts = 0
	}
	if c.InfeasibilityTol <= 0 {
		c.InfeasibilityTol = 1e-8
	}
	if c.RelativeObjectiveGapTol <= 0 {
		c.RelativeObjectiveGapTol = 1e-8
	}
	if c.RelativeComplementarityGapTol <= 0 {
		c.RelativeComplementarityGapTol = c.RelativeObjectiveGapTol
	}
	if c.MinDimacsDecreaseRatio <= 0 {
		c.MinDimacsDecreaseRatio = 0.9
	}
	if c.MaxStepRatio <= 0 || c.MaxStepRatio >= 1 {
		c.MaxStepRatio = 0.99
	}
	if c.CentralityRule == nil {
		c.CentralityRule = DefaultCentralityRule
	}
	if c.TwoNormKrylovBasisSize <= 0 {
		c.TwoNormKrylovBasisSize = 8
	}
	c.SolveCtrl = c.SolveCtrl.withDefaults()
	if c.Logger == nil {
		c.Logger = NewLogger(LogNoop)
	}
	return c
}

// IPMStatus reports how the driver terminated.
type IPMStatus int

const (
	// Optimal means the tolerances were met when the driver stopped: on the
	// first iteration, once the DIMACS error no longer decreases by
	// MinDimacsDecreaseRatio, at the iteration cap, or when a later
	// factorization, solve or step fails.
	Optimal IPMStatus = iota
	// IterationLimitReached means maxIts was hit without meeting tolerances.
	IterationLimitReached
)

func (s IPMStatus) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case IterationLimitReached:
		return "iteration limit reached"
	default:
		return "unknown"
	}
}

// Summary reports the outcome of an IPM solve. It is populated on both
// success and an iteration-limit exit; other failure kinds return a zero
// Summary alongside the error.
type Summary struct {
	Status   IPMStatus
	NumIters int

	// Final residual and gap diagnostics.
	RbConv, RcConv, RhConv float64
	RelObjGap, RelCompGap  float64
	DimacsError            float64
	PrimalObjective        float64
	DualObjective          float64
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
