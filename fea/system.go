// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"github.com/cpmech/gosl/la"
)

// System accumulates one sparse operator and its right-hand side with
// symmetric elimination of essential dofs applied during assembly: rows of
// eliminated equations are dropped, columns move their known contribution to
// the right-hand side, and Finalize places the substitution diagonal.
type System struct {
	Sp   *Space
	T    la.Triplet
	B    []float64
	Diag []float64 // accumulated diagonal, used by the Jacobi preconditioner
	ess  []bool
	essv []float64
}

// NewSystem allocates a system over the space with the given eliminated
// equations and prescribed values (parallel slices; both may be empty)
func NewSystem(sp *Space, eqs []int, vals []float64) *System {
	o := &System{
		Sp:   sp,
		B:    make([]float64, sp.Ny),
		Diag: make([]float64, sp.Ny),
		ess:  make([]bool, sp.Ny),
		essv: make([]float64, sp.Ny),
	}
	o.T.Init(sp.Ny, sp.Ny, sp.NnzMax())
	for k, eq := range eqs {
		o.ess[eq] = true
		o.essv[eq] = vals[k]
	}
	return o
}

// Put adds v to entry (i,j), honoring elimination
func (o *System) Put(i, j int, v float64) {
	if o.ess[i] {
		return
	}
	if o.ess[j] {
		o.B[i] -= v * o.essv[j]
		return
	}
	o.T.Put(i, j, v)
	if i == j {
		o.Diag[i] += v
	}
}

// AddB adds v to right-hand side entry i, honoring elimination
func (o *System) AddB(i int, v float64) {
	if o.ess[i] {
		return
	}
	o.B[i] += v
}

// Finalize places essDiag on the eliminated diagonal entries, sets their
// right-hand side so the solve reproduces the prescribed values, and returns
// the compressed matrix. essDiag is 1 for stiffness operators and a tiny
// value for mass operators in eigenproblems, so eliminated modes migrate to
// numerically irrelevant eigenvalues.
func (o *System) Finalize(essDiag float64) *la.CCMatrix {
	for i := 0; i < o.Sp.Ny; i++ {
		if o.ess[i] {
			o.T.Put(i, i, essDiag)
			o.Diag[i] = essDiag
			o.B[i] = o.essv[i] * essDiag
		} else if o.Diag[i] == 0 {
			// keep the Jacobi preconditioner well defined on untouched rows
			o.Diag[i] = 1
		}
	}
	return o.T.ToMatrix(nil)
}

// SystemPair is a finalized operator with its diagonal, the form the
// eigensolvers consume
type SystemPair struct {
	A    *la.CCMatrix
	Diag []float64
}

// BuildPair assembles one operator with homogeneous elimination on eqs and
// finalizes it with the given substitution diagonal
func BuildPair(sp *Space, eqs []int, essDiag float64, add func(*System) error) (*SystemPair, error) {
	sys := NewSystem(sp, eqs, make([]float64, len(eqs)))
	if err := add(sys); err != nil {
		return nil, err
	}
	A := sys.Finalize(essDiag)
	return &SystemPair{A: A, Diag: sys.Diag}, nil
}

// EssMask returns the elimination mask (true = eliminated equation)
func (o *System) EssMask() []bool {
	return o.ess
}

// InitGuess fills x with the prescribed essential values, zero elsewhere
func (o *System) InitGuess(x []float64) {
	for i := 0; i < o.Sp.Ny; i++ {
		if o.ess[i] {
			x[i] = o.essv[i]
		} else {
			x[i] = 0
		}
	}
}

// ApplyEssential overwrites the essential entries of x with their prescribed
// values. Transient drivers call this after every step.
func (o *System) ApplyEssential(x []float64) {
	for i := 0; i < o.Sp.Ny; i++ {
		if o.ess[i] {
			x[i] = o.essv[i]
		}
	}
}
