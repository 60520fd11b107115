// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"

	"github.com/sirupsen/logrus"
)

// DenseIPM runs the Mehrotra predictor-corrector IPM against a dense local
// problem. x, y, z, s are both the initial iterate (honoring ctrl.PrimalInit
// / ctrl.DualInit) and the output: on a successful return they hold the
// optimal primal/dual point, unwound from equilibrated space if
// ctrl.OuterEquil was set.
func DenseIPM(Q *DenseSym, A, G *DenseMat, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	return runDenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
}

// SparseIPM is DenseIPM's sparse-local counterpart.
func SparseIPM(Q, A, G *CSRMatrix, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	return runSparseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
}

// DenseGridIPM runs the dense driver against a distributed problem. Q is
// replicated across the grid by construction (DenseGridSym), so this
// module's single-process dense KKT assembly and factorization only has a
// well-defined local view when A and G are likewise unpartitioned across
// rows; ErrUnsupportedGridShape is returned otherwise.
func DenseGridIPM(grid *ProcessGrid, Q *DenseGridSym, A, G *DenseGridMat, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	if grid == nil {
		grid = NewProcessGrid()
	}
	if grid.Rows != 1 || grid.Cols != 1 {
		return Summary{}, unsupportedGridShapeError(grid.Rows, grid.Cols)
	}
	return runDenseIPM(Q.Local(), A.Local(), G.Local(), b, c, h, x, y, z, s, ctrl)
}

// SparseGridIPM is DenseGridIPM's sparse-distributed counterpart.
func SparseGridIPM(grid *ProcessGrid, Q, A, G *SparseGridMatrix, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	if grid == nil {
		grid = NewProcessGrid()
	}
	if grid.Rows != 1 || grid.Cols != 1 {
		return Summary{}, unsupportedGridShapeError(grid.Rows, grid.Cols)
	}
	return runSparseIPM(Q.LocalShard(), A.LocalShard(), G.LocalShard(), b, c, h, x, y, z, s, ctrl)
}

// convergenceMet reports whether every DIMACS component is at or below its
// configured tolerance.
func convergenceMet(res *Residuals, ctrl IPMCtrl) bool {
	return res.RbConv <= ctrl.InfeasibilityTol &&
		res.RcConv <= ctrl.InfeasibilityTol &&
		res.RhConv <= ctrl.InfeasibilityTol &&
		res.RelCompGap <= ctrl.RelativeComplementarityGapTol &&
		res.RelObjGap <= ctrl.RelativeObjectiveGapTol
}

// checkTermination applies the convergence gate: terminate successfully
// once tolerances are met and either this is the first
// iteration (no prior DIMACS error to compare against), the cap is reached,
// or the DIMACS error failed to decrease by at least MinDimacsDecreaseRatio
// since the last iteration; otherwise terminate with failure once the cap is
// reached without meeting tolerances.
func checkTermination(hasPrev bool, prevDimacs float64, res *Residuals, ctrl IPMCtrl, atCap bool) (terminate, success bool) {
	met := convergenceMet(res, ctrl)
	if met {
		if !hasPrev || atCap || res.DimacsError > ctrl.MinDimacsDecreaseRatio*prevDimacs {
			return true, true
		}
		return false, false
	}
	return atCap, false
}

func summaryFromResiduals(status IPMStatus, numIters int, res *Residuals) Summary {
	return Summary{
		Status:          status,
		NumIters:        numIters,
		RbConv:          res.RbConv,
		RcConv:          res.RcConv,
		RhConv:          res.RhConv,
		RelObjGap:       res.RelObjGap,
		RelCompGap:      res.RelCompGap,
		DimacsError:     res.DimacsError,
		PrimalObjective: res.PrimalObj,
		DualObjective:   res.DualObj,
	}
}

// newtonStep carries the predictor/corrector outputs shared by the dense and
// sparse driver loops, so the step-length/update logic below is written once.
func newtonStep(s, z []float64, res *Residuals, n, m, k int, ctrl IPMCtrl, solve func(rhs []float64) ([]float64, error)) (*Direction, float64, float64, error) {
	affSol, err := solve(kktRHS(n, m, k, res, z))
	if err != nil {
		return nil, 0, 0, err
	}
	affDir := expandDirection(affSol, n, m, k, s, z, res.RMu)
	alphaAffP, alphaAffD := affineStep(s, z, affDir, ctrl.ForceSameStep)
	muAff := muAffine(s, z, affDir, alphaAffP, alphaAffD, k)
	sigma := ctrl.CentralityRule(res.Mu, muAff, alphaAffP, alphaAffD)
	rMuShift := shiftRMuCombined(res.RMu, sigma, res.Mu, affDir, ctrl.Mehrotra)

	combSol, err := solve(kktRHSCombined(n, m, k, res, rMuShift, z))
	if err != nil {
		return nil, 0, 0, err
	}
	combDir := expandDirection(combSol, n, m, k, s, z, rMuShift)
	alphaP, alphaD := finalStep(s, z, combDir, ctrl.MaxStepRatio, ctrl.ForceSameStep)
	return combDir, alphaP, alphaD, nil
}

func applyStep(x, y, z, s []float64, dir *Direction, alphaP, alphaD float64) {
	axpy(alphaP, dir.Dx, x)
	axpy(alphaP, dir.Ds, s)
	axpy(alphaD, dir.Dy, y)
	axpy(alphaD, dir.Dz, z)
}

// runDenseIPM drives the dense backend: equilibrate, initialize, then
// iterate residual evaluation, KKT assembly and factor/solve, direction
// expansion, and the centrality/step controller until the convergence gate
// fires or a failure is raised.
func runDenseIPM(Q *DenseSym, A, G *DenseMat, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	ctrl = ctrl.withDefaults()
	n, m, k := Q.Order(), len(b), len(h)
	logger := ctrl.Logger

	// The driver owns its own copy of the problem data from here on, so
	// equilibration's in-place scaling never reaches the caller's Q, A, G,
	// b, c, h.
	Q, A, G = Q.Clone(), A.Clone(), G.Clone()
	b, c, h = append([]float64(nil), b...), append([]float64(nil), c...), append([]float64(nil), h...)

	var equil *EquilState
	if ctrl.OuterEquil {
		equil = ruizEquilibrate(A, G, Q, b, c, h, m, n, k, 0, 0)
	} else {
		equil = identityEquil(m, n, k)
	}
	initializeIterate(x, y, z, s, ctrl, equil)

	pn := computeProblemNorms(b, c, h)
	N := n + m + k

	var prevDimacs float64
	hasPrev := false

	for iter := 0; ; iter++ {
		badS, badZ := checkPositivity(s, z)
		if badS > 0 || badZ > 0 {
			return Summary{}, invalidIterateError(iter, badS, badZ)
		}

		res := evaluateResiduals(Q, A, G, b, c, h, x, y, z, s, pn)
		logger.trace(iter, res.RbConv, res.RcConv, res.RhConv, "dense")

		terminate, success := checkTermination(hasPrev, prevDimacs, res, ctrl, iter >= ctrl.MaxIts)
		if terminate {
			logger.iteration(iter, res.Mu, res.DimacsError, 0, 0)
			if success {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			equil.invertPrimal(x, s)
			equil.invertDual(y, z)
			return summaryFromResiduals(IterationLimitReached, iter, res), iterationLimitError(ctrl.MaxIts, res.DimacsError)
		}

		J := buildDenseKKT(Q, A, G, n, m, k, ctrl.XRegSmall, ctrl.YRegSmall, ctrl.ZRegSmall, s, z)
		f := newDenseLDL()
		if err := f.Factor(J, J, N); err != nil {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, err
		}
		solve := func(rhs []float64) ([]float64, error) {
			sol, _, err := denseTwoStageSolve(f, J, N, rhs, ctrl.SolveCtrl, solveFast, iter)
			return sol, err
		}

		dir, alphaP, alphaD, err := newtonStep(s, z, res, n, m, k, ctrl, solve)
		if err != nil {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, err
		}
		logger.iteration(iter, res.Mu, res.DimacsError, alphaP, alphaD)

		if alphaP == 0 && alphaD == 0 {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, stagnatedStepError(iter)
		}
		applyStep(x, y, z, s, dir, alphaP, alphaD)

		if ctrl.CheckResiduals {
			dxNorm := directionResidualNorm(A.MatVec, dir.Dx, res.Rb)
			logger.verbose("direction residual", logrus.Fields{"dxNorm": dxNorm})
		}

		prevDimacs = res.DimacsError
		hasPrev = true
	}
}

// runSparseIPM drives the sparse backend: the static KKT structure and
// large-regularization scale are built once, then the persistent
// factorization handle is numerically refactored each iteration instead of
// rebuilding a full dense matrix.
func runSparseIPM(Q, A, G *CSRMatrix, b, c, h, x, y, z, s []float64, ctrl IPMCtrl) (Summary, error) {
	ctrl = ctrl.withDefaults()
	n, m, k := Q.Order(), len(b), len(h)
	logger := ctrl.Logger

	// The driver owns its own copy of the problem data from here on, so
	// equilibration's in-place scaling never reaches the caller's Q, A, G,
	// b, c, h.
	Q, A, G = Q.Clone(), A.Clone(), G.Clone()
	b, c, h = append([]float64(nil), b...), append([]float64(nil), c...), append([]float64(nil), h...)

	// Q must be stored with its explicit full symmetric pattern, since the
	// sparse SymMatVec reads every stored entry as is.
	qt := Q.Transpose()
	symmetric := Q.Rows == Q.Cols && len(qt.Values) == len(Q.Values)
	for i := 0; symmetric && i <= Q.Rows; i++ {
		symmetric = qt.RowPtr[i] == Q.RowPtr[i]
	}
	for a := 0; symmetric && a < len(Q.Values); a++ {
		symmetric = qt.ColIndex[a] == Q.ColIndex[a] && qt.Values[a] == Q.Values[a]
	}
	if !symmetric {
		panic("ipm: sparse Q must be stored with its full symmetric pattern")
	}

	var equil *EquilState
	if ctrl.OuterEquil {
		equil = ruizEquilibrate(A, G, Q, b, c, h, m, n, k, 0, 0)
	} else {
		equil = identityEquil(m, n, k)
	}
	initializeIterate(x, y, z, s, ctrl, equil)

	pn := computeProblemNorms(b, c, h)
	normScale := 1 + sparseNormScale(Q, A, G, ctrl.TwoNormKrylovBasisSize)
	tau := largeRegTau(n, m, k, ctrl.XRegLarge, ctrl.YRegLarge, ctrl.ZRegLarge, normScale)
	static := buildSparseKKTStatic(Q, A, G, n, m, k, ctrl.XRegSmall, ctrl.YRegSmall, ctrl.ZRegSmall)
	handle := newSparseLDL()
	initialized := false

	var prevDimacs float64
	hasPrev := false

	for iter := 0; ; iter++ {
		badS, badZ := checkPositivity(s, z)
		if badS > 0 || badZ > 0 {
			return Summary{}, invalidIterateError(iter, badS, badZ)
		}

		res := evaluateResiduals(Q, A, G, b, c, h, x, y, z, s, pn)
		logger.trace(iter, res.RbConv, res.RcConv, res.RhConv, "sparse")

		terminate, success := checkTermination(hasPrev, prevDimacs, res, ctrl, iter >= ctrl.MaxIts)
		if terminate {
			logger.iteration(iter, res.Mu, res.DimacsError, 0, 0)
			if success {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			equil.invertPrimal(x, s)
			equil.invertDual(y, z)
			return summaryFromResiduals(IterationLimitReached, iter, res), iterationLimitError(ctrl.MaxIts, res.DimacsError)
		}

		jOrig := static.refreshSparseKKT(s, z)
		jFact := addDiagSparse(jOrig, tau)
		var ferr error
		if !initialized {
			ferr = handle.initialize(jFact)
			initialized = true
		} else {
			ferr = handle.changeValuesAndRefactor(jFact)
		}
		if ferr != nil {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, factorizationError(iter, ferr)
		}

		mode := solveConservative
		if ctrl.TwoStage && ntScalingInfNorm(s, z) <= ctrl.SolveCtrl.SelectiveInversionThreshold {
			mode = solveFast
		}
		solve := func(rhs []float64) ([]float64, error) {
			sol, _, err := sparseTwoStageSolve(handle, jOrig, rhs, ctrl.SolveCtrl, mode, iter)
			return sol, err
		}

		dir, alphaP, alphaD, err := newtonStep(s, z, res, n, m, k, ctrl, solve)
		if err != nil {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, err
		}
		logger.iteration(iter, res.Mu, res.DimacsError, alphaP, alphaD)

		if alphaP == 0 && alphaD == 0 {
			if convergenceMet(res, ctrl) {
				equil.invertPrimal(x, s)
				equil.invertDual(y, z)
				return summaryFromResiduals(Optimal, iter, res), nil
			}
			return Summary{}, stagnatedStepError(iter)
		}
		applyStep(x, y, z, s, dir, alphaP, alphaD)

		if ctrl.CheckResiduals {
			dxNorm := directionResidualNorm(A.MatVec, dir.Dx, res.Rb)
			logger.verbose("direction residual", logrus.Fields{"dxNorm": dxNorm})
		}

		prevDimacs = res.DimacsError
		hasPrev = true
	}
}

// sparseNormScale estimates max(‖Q‖₂, ‖A‖₂, ‖G‖₂), the scale factor
// largeRegTau applies to the refinement-stage regularizers.
func sparseNormScale(Q, A, G *CSRMatrix, krylov int) float64 {
	nq := Q.Norm2Estimate(krylov)
	na := A.Norm2Estimate(krylov)
	ng := G.Norm2Estimate(krylov)
	return math.Max(nq, math.Max(na, ng))
}
