// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(got, want []float64, tol float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func denseEye(n int) []float64 {
	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		d[i*n+i] = 1
	}
	return d
}

func denseNegEye(n int) []float64 {
	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		d[i*n+i] = -1
	}
	return d
}

func denseZero(n int) []float64 { return make([]float64, n*n) }

func defaultTestCtrl() IPMCtrl {
	return IPMCtrl{
		MaxIts:                        50,
		InfeasibilityTol:              1e-8,
		RelativeObjectiveGapTol:       1e-8,
		RelativeComplementarityGapTol: 1e-8,
		MinDimacsDecreaseRatio:        0.9,
		MaxStepRatio:                  0.99,
		Mehrotra:                      true,
		StandardInitShift:             true,
		TwoStage:                      true,
		XRegSmall:                     1e-10,
		YRegSmall:                     1e-10,
		ZRegSmall:                     1e-10,
		XRegLarge:                     1e-7,
		YRegLarge:                     1e-7,
		ZRegLarge:                     1e-7,
	}
}

// Scenario 1: LP square. n=m=k=2, Q=0, A=I, b=(1,1), G=-I, h=0, c=(1,1).
// Expected x=(1,1), objective 2.0.
func TestDenseIPM_LPSquare(t *testing.T) {
	Q := NewDenseSym(2, denseZero(2))
	A := NewDenseMat(2, 2, denseEye(2))
	G := NewDenseMat(2, 2, denseNegEye(2))
	b := []float64{1, 1}
	h := []float64{0, 0}
	c := []float64{1, 1}
	x, y, z, s := make([]float64, 2), make([]float64, 2), make([]float64, 2), make([]float64, 2)

	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, defaultTestCtrl())
	if err != nil {
		t.Fatalf("LPSquare: %v", err)
	}
	if !almostEqual(x, []float64{1, 1}, 1e-5) {
		t.Fatalf("LPSquare: x = %v, want (1,1)", x)
	}
	if math.Abs(summary.PrimalObjective-2.0) > 1e-5 {
		t.Fatalf("LPSquare: objective = %v, want 2.0", summary.PrimalObjective)
	}
}

// Scenario 2: scalar QP. n=1, m=0, k=1, Q=[2], c=[-4], G=[-1], h=[0].
// Expected x=2, objective -4.
func TestDenseIPM_ScalarQP(t *testing.T) {
	Q := NewDenseSym(1, []float64{2})
	A := NewDenseMat(0, 1, []float64{})
	G := NewDenseMat(1, 1, []float64{-1})
	b := []float64{}
	h := []float64{0}
	c := []float64{-4}
	x, y, z, s := make([]float64, 1), make([]float64, 0), make([]float64, 1), make([]float64, 1)

	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, defaultTestCtrl())
	if err != nil {
		t.Fatalf("ScalarQP: %v", err)
	}
	if math.Abs(x[0]-2) > 1e-5 {
		t.Fatalf("ScalarQP: x = %v, want 2", x)
	}
	if math.Abs(summary.PrimalObjective+4) > 1e-5 {
		t.Fatalf("ScalarQP: objective = %v, want -4", summary.PrimalObjective)
	}
}

// Scenario 3: box-constrained QP. n=2, Q=I, c=0, m=0, G=[I;-I], h=(1,1,0,0).
// Expected x=0.
func TestDenseIPM_BoxQP(t *testing.T) {
	Q := NewDenseSym(2, denseEye(2))
	A := NewDenseMat(0, 2, []float64{})
	G := NewDenseMat(4, 2, append(append([]float64{}, denseEye(2)...), denseNegEye(2)...))
	b := []float64{}
	h := []float64{1, 1, 0, 0}
	c := []float64{0, 0}
	x, y, z, s := make([]float64, 2), make([]float64, 0), make([]float64, 4), make([]float64, 4)

	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, defaultTestCtrl())
	if err != nil {
		t.Fatalf("BoxQP: %v", err)
	}
	if !almostEqual(x, []float64{0, 0}, 1e-5) {
		t.Fatalf("BoxQP: x = %v, want (0,0)", x)
	}
	_ = summary
}

// Scenario 4: equality-only QP. n=3, Q=I, c=0, m=1, A=[1,1,1], b=[3], k=3,
// G=-I, h=0. Expected x=(1,1,1).
func TestDenseIPM_EqualityOnlyQP(t *testing.T) {
	Q := NewDenseSym(3, denseEye(3))
	A := NewDenseMat(1, 3, []float64{1, 1, 1})
	G := NewDenseMat(3, 3, denseNegEye(3))
	b := []float64{3}
	h := []float64{0, 0, 0}
	c := []float64{0, 0, 0}
	x, y, z, s := make([]float64, 3), make([]float64, 1), make([]float64, 3), make([]float64, 3)

	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, defaultTestCtrl())
	if err != nil {
		t.Fatalf("EqualityOnlyQP: %v", err)
	}
	if !almostEqual(x, []float64{1, 1, 1}, 1e-5) {
		t.Fatalf("EqualityOnlyQP: x = %v, want (1,1,1)", x)
	}
	_ = summary
}

// Scenario 5: warm start idempotence. Re-entering a converged box-QP
// solution with both init flags set and maxIts=0 must return unchanged
// iterates and report convergence.
func TestDenseIPM_WarmStartIdempotence(t *testing.T) {
	Q := NewDenseSym(2, denseEye(2))
	A := NewDenseMat(0, 2, []float64{})
	G := NewDenseMat(4, 2, append(append([]float64{}, denseEye(2)...), denseNegEye(2)...))
	b := []float64{}
	h := []float64{1, 1, 0, 0}
	c := []float64{0, 0}
	x, y, z, s := make([]float64, 2), make([]float64, 0), make([]float64, 4), make([]float64, 4)

	ctrl := defaultTestCtrl()
	if _, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl); err != nil {
		t.Fatalf("WarmStartIdempotence: initial solve: %v", err)
	}

	x0 := append([]float64{}, x...)
	y0 := append([]float64{}, y...)
	z0 := append([]float64{}, z...)
	s0 := append([]float64{}, s...)

	ctrl.PrimalInit, ctrl.DualInit = true, true
	ctrl.MaxIts = 0
	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
	if err != nil {
		t.Fatalf("WarmStartIdempotence: rerun: %v", err)
	}
	if summary.Status != Optimal {
		t.Fatalf("WarmStartIdempotence: status = %v, want Optimal", summary.Status)
	}
	if !almostEqual(x, x0, 1e-6) || !almostEqual(y, y0, 1e-6) ||
		!almostEqual(z, z0, 1e-6) || !almostEqual(s, s0, 1e-6) {
		t.Fatalf("WarmStartIdempotence: iterate changed on re-entry")
	}
}

// Scenario 6: equilibration invariance. The equality-only seed problem must
// converge to the same (x) with and without outerEquil.
func TestDenseIPM_EquilibrationInvariance(t *testing.T) {
	run := func(equil bool) []float64 {
		Q := NewDenseSym(3, denseEye(3))
		A := NewDenseMat(1, 3, []float64{1, 1, 1})
		G := NewDenseMat(3, 3, denseNegEye(3))
		b := []float64{3}
		h := []float64{0, 0, 0}
		c := []float64{0, 0, 0}
		x, y, z, s := make([]float64, 3), make([]float64, 1), make([]float64, 3), make([]float64, 3)

		ctrl := defaultTestCtrl()
		ctrl.OuterEquil = equil
		if _, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl); err != nil {
			t.Fatalf("EquilibrationInvariance(equil=%v): %v", equil, err)
		}
		return x
	}
	xNoEquil := run(false)
	xEquil := run(true)
	if !almostEqual(xNoEquil, xEquil, 1e-6) {
		t.Fatalf("EquilibrationInvariance: %v vs %v", xNoEquil, xEquil)
	}
}

// Scenario 7: sparse/dense agreement on the LP-square seed problem.
func TestSparseIPM_AgreesWithDense(t *testing.T) {
	denseX, denseY, denseZ, denseS := make([]float64, 2), make([]float64, 2), make([]float64, 2), make([]float64, 2)
	Qd := NewDenseSym(2, denseZero(2))
	Ad := NewDenseMat(2, 2, denseEye(2))
	Gd := NewDenseMat(2, 2, denseNegEye(2))
	b := []float64{1, 1}
	h := []float64{0, 0}
	c := []float64{1, 1}
	if _, err := DenseIPM(Qd, Ad, Gd, b, c, h, denseX, denseY, denseZ, denseS, defaultTestCtrl()); err != nil {
		t.Fatalf("dense solve: %v", err)
	}

	Qs := NewCSRMatrixFromTriplets(2, 2, nil)
	As := NewCSRMatrixFromTriplets(2, 2, []Triplet{{Row: 0, Col: 0, Val: 1}, {Row: 1, Col: 1, Val: 1}})
	Gs := NewCSRMatrixFromTriplets(2, 2, []Triplet{{Row: 0, Col: 0, Val: -1}, {Row: 1, Col: 1, Val: -1}})
	sparseX, sparseY, sparseZ, sparseS := make([]float64, 2), make([]float64, 2), make([]float64, 2), make([]float64, 2)
	if _, err := SparseIPM(Qs, As, Gs, b, c, h, sparseX, sparseY, sparseZ, sparseS, defaultTestCtrl()); err != nil {
		t.Fatalf("sparse solve: %v", err)
	}

	if !almostEqual(sparseX, denseX, 1e-6) {
		t.Fatalf("sparse/dense disagreement: dense x=%v sparse x=%v", denseX, sparseX)
	}
}

// Scenario 8: maxIts=0 boundary. A feasible warm start returns immediately
// with NumIters == 0.
func TestDenseIPM_MaxItsZeroBoundary(t *testing.T) {
	Q := NewDenseSym(2, denseZero(2))
	A := NewDenseMat(2, 2, denseEye(2))
	G := NewDenseMat(2, 2, denseNegEye(2))
	b := []float64{1, 1}
	h := []float64{0, 0}
	c := []float64{1, 1}
	x, y, z, s := make([]float64, 2), make([]float64, 2), make([]float64, 2), make([]float64, 2)

	ctrl := defaultTestCtrl()
	if _, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl); err != nil {
		t.Fatalf("warm-up solve: %v", err)
	}

	ctrl.PrimalInit, ctrl.DualInit = true, true
	ctrl.MaxIts = 0
	summary, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
	if err != nil {
		t.Fatalf("MaxItsZeroBoundary: %v", err)
	}
	if summary.NumIters != 0 {
		t.Fatalf("MaxItsZeroBoundary: NumIters = %d, want 0", summary.NumIters)
	}
}

// Scenario 9: invalid-iterate detection. A warm start with a negative s
// entry must return ErrInvalidIterate without attempting a factorization.
func TestDenseIPM_InvalidIterateDetection(t *testing.T) {
	Q := NewDenseSym(2, denseZero(2))
	A := NewDenseMat(2, 2, denseEye(2))
	G := NewDenseMat(2, 2, denseNegEye(2))
	b := []float64{1, 1}
	h := []float64{0, 0}
	c := []float64{1, 1}
	x := []float64{0, 0}
	y := []float64{0, 0}
	z := []float64{1, 1}
	s := []float64{-1, 1}

	ctrl := defaultTestCtrl()
	ctrl.PrimalInit, ctrl.DualInit = true, true
	_, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
	if err == nil {
		t.Fatal("InvalidIterateDetection: expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidIterate) {
		t.Fatalf("InvalidIterateDetection: got %v, want ErrInvalidIterate", err)
	}
}

// Scenario 10: equilibration must not mutate the caller's problem data. The
// same Q, A, G, b, c, h are solved twice with OuterEquil=true; if
// ruizEquilibrate's in-place scaling ever leaked back to the caller, the
// second solve would run against corrupted data and disagree with the
// first.
func TestDenseIPM_EquilibrationDoesNotMutateCaller(t *testing.T) {
	Q := NewDenseSym(3, denseEye(3))
	A := NewDenseMat(1, 3, []float64{1, 1, 1})
	G := NewDenseMat(3, 3, denseNegEye(3))
	b := []float64{3}
	h := []float64{0, 0, 0}
	c := []float64{0, 0, 0}

	bCopy := append([]float64{}, b...)
	cCopy := append([]float64{}, c...)
	hCopy := append([]float64{}, h...)

	ctrl := defaultTestCtrl()
	ctrl.OuterEquil = true

	x1, y1, z1, s1 := make([]float64, 3), make([]float64, 1), make([]float64, 3), make([]float64, 3)
	if _, err := DenseIPM(Q, A, G, b, c, h, x1, y1, z1, s1, ctrl); err != nil {
		t.Fatalf("first solve: %v", err)
	}
	if !almostEqual(b, bCopy, 0) || !almostEqual(c, cCopy, 0) || !almostEqual(h, hCopy, 0) {
		t.Fatalf("caller's b/c/h were mutated: b=%v c=%v h=%v", b, c, h)
	}

	x2, y2, z2, s2 := make([]float64, 3), make([]float64, 1), make([]float64, 3), make([]float64, 3)
	if _, err := DenseIPM(Q, A, G, b, c, h, x2, y2, z2, s2, ctrl); err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if !almostEqual(x1, x2, 1e-6) {
		t.Fatalf("re-solving with the same data diverged: x1=%v x2=%v", x1, x2)
	}
}

// maxIts=0 with an infeasible warm start must report ErrIterationLimit.
func TestDenseIPM_IterationLimit(t *testing.T) {
	Q := NewDenseSym(2, denseZero(2))
	A := NewDenseMat(2, 2, denseEye(2))
	G := NewDenseMat(2, 2, denseNegEye(2))
	b := []float64{1, 1}
	h := []float64{0, 0}
	c := []float64{1, 1}
	x := []float64{0, 0}
	y := []float64{0, 0}
	z := []float64{1, 1}
	s := []float64{1, 1}

	ctrl := defaultTestCtrl()
	ctrl.PrimalInit, ctrl.DualInit = true, true
	ctrl.MaxIts = 0
	_, err := DenseIPM(Q, A, G, b, c, h, x, y, z, s, ctrl)
	if !errors.Is(err, ErrIterationLimit) {
		t.Fatalf("IterationLimit: got %v, want ErrIterationLimit", err)
	}
}
