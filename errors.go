// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Wrap with errors.Is to recover the kind after the
// driver has annotated it with iteration context.
var (
	// ErrInvalidIterate is raised when s or z has a nonpositive entry at
	// the top of an iteration.
	ErrInvalidIterate = errors.New("ipm: invalid iterate")
	// ErrFactorizationFailure is raised when the dense or sparse KKT
	// factorization breaks down.
	ErrFactorizationFailure = errors.New("ipm: factorization failure")
	// ErrRefinementFailure is raised when iterative refinement cannot
	// reach the configured relative tolerance.
	ErrRefinementFailure = errors.New("ipm: refinement failure")
	// ErrIterationLimit is raised when maxIts is reached without meeting
	// the convergence tolerances.
	ErrIterationLimit = errors.New("ipm: iteration limit exceeded")
	// ErrStagnatedStep is raised when both the primal and dual step
	// lengths collapse to zero.
	ErrStagnatedStep = errors.New("ipm: stagnated step")
	// ErrUnsupportedGridShape is raised by the distributed entrypoints
	// when the process grid is not 1×1: this module's KKT assembly and
	// factorization only have a well-defined local view for that grid.
	ErrUnsupportedGridShape = errors.New("ipm: unsupported process grid shape")
)

// invalidIterateError reports the count of nonpositive entries found in s
// and z at the top of an iteration.
func invalidIterateError(iter, badS, badZ int) error {
	return errors.Wrapf(ErrInvalidIterate, "iteration %d: %d nonpositive s entries, %d nonpositive z entries", iter, badS, badZ)
}

func factorizationError(iter int, cause error) error {
	if cause == nil {
		return errors.Wrapf(ErrFactorizationFailure, "iteration %d", iter)
	}
	return errors.Wrapf(ErrFactorizationFailure, "iteration %d: %v", iter, cause)
}

func refinementError(iter int, relResid, tol float64) error {
	return errors.Wrapf(ErrRefinementFailure, "iteration %d: relative residual %.3e exceeds tolerance %.3e", iter, relResid, tol)
}

func iterationLimitError(maxIts int, dimacs float64) error {
	return errors.Wrapf(ErrIterationLimit, "maxIts=%d reached with DIMACS error %.3e", maxIts, dimacs)
}

func stagnatedStepError(iter int) error {
	return errors.Wrapf(ErrStagnatedStep, "iteration %d: both step lengths are zero", iter)
}

func unsupportedGridShapeError(rows, cols int) error {
	return errors.Wrapf(ErrUnsupportedGridShape, "grid is %dx%d, only 1x1 is supported", rows, cols)
}

// dimensionError reports a mismatched operand shape; these are programming
// errors at the call boundary, not algorithmic failures, so they panic
// rather than propagate through the driver's error-kind machinery.
func dimensionError(what string, want, got int) {
	panic(fmt.Sprintf("ipm: %s dimension mismatch: want %d, got %d", what, want, got))
}
