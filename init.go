// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "math"

// mehrotraShift applies the standard Mehrotra initial-point heuristic: it
// shifts s and z uniformly upward so that sᵗz is well-scaled and neither
// vector is close to the orthant boundary, before the first Newton step is
// taken.
func mehrotraShift(s, z []float64) {
	if len(s) == 0 {
		return
	}
	deltaS := math.Max(-1.5*minOf(s), 0)
	deltaZ := math.Max(-1.5*minOf(z), 0)
	sHat := make([]float64, len(s))
	zHat := make([]float64, len(z))
	for i := range s {
		sHat[i] = s[i] + deltaS
		zHat[i] = z[i] + deltaZ
	}
	sz := dot(sHat, zHat)
	sumS := sumOf(sHat)
	sumZ := sumOf(zHat)
	deltaS2 := 0.5 * sz / sumZ
	deltaZ2 := 0.5 * sz / sumS
	for i := range s {
		s[i] = sHat[i] + deltaS2
		z[i] = zHat[i] + deltaZ2
	}
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m
}

func sumOf(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum
}

// initializeIterate fills whichever of (x, s) and (y, z) the caller did not
// warm-start, and maps any caller-supplied warm start into equilibrated
// space. The joint Mehrotra shift only applies when neither side is
// warm-started — mixing a warm dual with a shifted default primal (or vice
// versa) would perturb the caller's own vector, so that corner case instead
// falls back to the unshifted (s,z)=1 default.
func initializeIterate(x, y, z, s []float64, ctrl IPMCtrl, equil *EquilState) {
	k := len(s)
	if ctrl.OuterEquil {
		if ctrl.PrimalInit {
			equil.applyToPrimal(x, s)
		}
		if ctrl.DualInit {
			equil.applyToDual(y, z)
		}
	}
	switch {
	case !ctrl.PrimalInit && !ctrl.DualInit:
		for i := range x {
			x[i] = 0
		}
		for i := range y {
			y[i] = 0
		}
		s0, z0 := ones(k), ones(k)
		if ctrl.StandardInitShift {
			mehrotraShift(s0, z0)
		}
		copy(s, s0)
		copy(z, z0)
	case !ctrl.PrimalInit:
		for i := range x {
			x[i] = 0
		}
		copy(s, ones(k))
	case !ctrl.DualInit:
		for i := range y {
			y[i] = 0
		}
		copy(z, ones(k))
	}
}

// checkPositivity counts nonpositive entries of s and z, the sanity check
// run at the top of every iteration.
func checkPositivity(s, z []float64) (badS, badZ int) {
	for _, v := range s {
		if v <= 0 {
			badS++
		}
	}
	for _, v := range z {
		if v <= 0 {
			badZ++
		}
	}
	return
}
