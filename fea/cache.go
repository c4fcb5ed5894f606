// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// dtRebuildTol is the step-size change below which a cached implicit
// operator is reused
const dtRebuildTol = 1e-15

// CachedOp owns a lazily rebuilt implicit operator keyed on the step size.
// Transient drivers that truncate the final step trigger exactly one rebuild.
type CachedOp struct {
	Build  func(dt float64) (*la.CCMatrix, []float64, error) // operator + diagonal
	Builds int                                               // rebuild count

	// cached value
	dt    float64
	valid bool
	a     *la.CCMatrix
	diag  []float64
}

// Get returns the operator for step size dt, rebuilding only when dt moved
// beyond the tolerance
func (o *CachedOp) Get(dt float64) (*la.CCMatrix, []float64, error) {
	if o.valid && math.Abs(dt-o.dt) <= dtRebuildTol {
		return o.a, o.diag, nil
	}
	a, diag, err := o.Build(dt)
	if err != nil {
		return nil, nil, err
	}
	o.a, o.diag, o.dt, o.valid = a, diag, dt, true
	o.Builds++
	return o.a, o.diag, nil
}
