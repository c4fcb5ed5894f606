// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Energy returns the quadratic energy 0.5 * x.b; at the solution of a linear
// system this equals 0.5 * x.A.x
func Energy(x, b []float64) float64 {
	return 0.5 * dot(x, b)
}

// OperatorEnergy returns 0.5 * x.A.x
func OperatorEnergy(A *la.CCMatrix, x []float64) float64 {
	return 0.5 * dot(x, matVec(A, x))
}

// ResidualNorm computes |A*x - b| with the entries of eliminated equations
// zeroed first, since those are exact by construction. A non-finite norm is
// an error, never clamped.
func ResidualNorm(A *la.CCMatrix, x, b []float64, ess []bool) (float64, error) {
	r := matVec(A, x)
	for i := range r {
		if ess != nil && ess[i] {
			r[i] = 0
		} else {
			r[i] -= b[i]
		}
	}
	nrm := la.Vector(r).Norm()
	if math.IsNaN(nrm) || math.IsInf(nrm, 0) {
		return 0, chk.Err("residual norm is not finite")
	}
	return nrm, nil
}

// CheckFinite fails when any value is NaN or infinite
func CheckFinite(what string, vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chk.Err("%s is not finite", what)
		}
	}
	return nil
}
