// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ipm implements a Mehrotra predictor-corrector primal-dual
// interior-point method for convex quadratic programs in affine conic form
//
//	minimize    ½ xᵀQx + cᵀx
//	subject to  Ax = b,  Gx + s = h,  s ≥ 0
//
// The solver factors a symmetric quasi-definite KKT system once per
// iteration and solves it twice (an affine predictor and a Mehrotra
// combined corrector), controlling the step length so that the slack s and
// the inequality multiplier z stay strictly positive. Four storage
// backends share the same driver logic: dense local, dense distributed
// over a 2-D process grid, sparse local, and sparse distributed.
package ipm
