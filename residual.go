// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// Residuals holds the quantities computed once per iteration from the
// current primal/dual point: the primal/dual/conic residuals, the duality
// product and barrier parameter, the DIMACS convergence norms, and the
// primal/dual objective values.
type Residuals struct {
	Rb   []float64 // m: A x - b
	Rc   []float64 // n: Q x + Aᵗ y + Gᵗ z + c
	Rh   []float64 // k: G x + s - h
	RMu  []float64 // k: s ⊙ z

	Pi float64 // sᵗz
	Mu float64 // π / k

	PrimalObj float64
	DualObj   float64

	RbConv, RcConv, RhConv float64
	RelObjGap, RelCompGap  float64
	DimacsError            float64
}

// problemNorms snapshots ‖b‖₂, ‖c‖₂, ‖h‖₂ of the driver's (equilibrated,
// when OuterEquil is set) problem data once, before the iteration loop; the
// DIMACS convergence ratios are relative to these.
type problemNorms struct {
	nb, nc, nh float64
}

func computeProblemNorms(b, c, h []float64) problemNorms {
	return problemNorms{nb: nrm2(b), nc: nrm2(c), nh: nrm2(h)}
}

// evaluateResiduals computes q = Qx, the three affine residuals, the
// duality product/barrier parameter, both objectives, and the DIMACS error
// components, given the norms snapshot taken at entry.
func evaluateResiduals(Q SymMatrix, A, G Matrix, b, c, h, x, y, z, s []float64, pn problemNorms) *Residuals {
	n := len(x)
	m := len(b)
	k := len(h)

	q := make([]float64, n)
	Q.SymMatVec(1, x, 0, q)
	xtQx := dot(x, q)

	rb := make([]float64, m)
	if m > 0 {
		A.MatVec(1, x, 0, rb)
		axpy(-1, b, rb)
	}

	rc := make([]float64, n)
	copy(rc, q)
	if m > 0 {
		A.MatVecT(1, y, 1, rc)
	}
	if k > 0 {
		G.MatVecT(1, z, 1, rc)
	}
	axpy(1, c, rc)

	rh := make([]float64, k)
	if k > 0 {
		G.MatVec(1, x, 0, rh)
		axpy(1, s, rh)
		axpy(-1, h, rh)
	}

	rMu := make([]float64, k)
	for i := range rMu {
		rMu[i] = s[i] * z[i]
	}

	pi := dot(s, z)
	kk := math.Max(1, float64(k))
	mu := pi / kk

	by := 0.0
	if m > 0 {
		by = dot(b, y)
	}
	hz := 0.0
	if k > 0 {
		hz = dot(h, z)
	}
	primObj := xtQx/2 + dot(c, x)
	dualObj := -xtQx/2 - by - hz

	rbConv := nrm2(rb) / (1 + pn.nb)
	rcConv := nrm2(rc) / (1 + pn.nc)
	rhConv := nrm2(rh) / (1 + pn.nh)

	relObjGap := math.Abs(primObj-dualObj) / (math.Max(math.Abs(primObj), math.Abs(dualObj)) + 1)

	var relCompGap float64
	switch {
	case primObj < 0:
		relCompGap = pi / -primObj
	case dualObj > 0:
		relCompGap = pi / dualObj
	default:
		relCompGap = 2
	}

	dimacs := math.Max(rbConv, math.Max(rcConv, math.Max(rhConv, math.Max(relObjGap, relCompGap))))

	return &Residuals{
		Rb: rb, Rc: rc, Rh: rh, RMu: rMu,
		Pi: pi, Mu: mu,
		PrimalObj: primObj, DualObj: dualObj,
		RbConv: rbConv, RcConv: rcConv, RhConv: rhConv,
		RelObjGap: relObjGap, RelCompGap: relCompGap,
		DimacsError: dimacs,
	}
}

// directionResidualNorm computes ‖A·dx - rb‖₂ / (1+‖rb‖₂), an optional
// diagnostic for checking a computed direction against the linearized KKT
// conditions it was solved from.
func directionResidualNorm(Mv func(alpha float64, x []float64, beta float64, y []float64), d, base []float64) float64 {
	tmp := make([]float64, len(base))
	Mv(1, d, 0, tmp)
	axpy(-1, base, tmp)
	return nrm2(tmp) / (1 + nrm2(base))
}
