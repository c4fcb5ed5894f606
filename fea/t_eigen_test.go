// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// eigOperators builds the Dirichlet Laplace stiffness and mass on the star
// mesh, every outer edge eliminated, so only the centre dof is free
func eigOperators(tst *testing.T) (K, M *SystemPair, n int) {
	m := starMesh(tst)
	sp := NewSpace(m, 1)
	bv := NewBVals(m.NbdryAttrs)
	for a := 1; a <= 4; a++ {
		bv.Mark("fixed", a)
	}
	eqs, _ := sp.Essential(bv.Markers("fixed"), nil)
	var err error
	K, err = BuildPair(sp, eqs, 1, func(sys *System) error {
		return AddDiffusion(sys, Const(1), 1)
	})
	if err != nil {
		tst.Fatalf("cannot assemble stiffness:\n%v", err)
	}
	M, err = BuildPair(sp, eqs, 1e-300, func(sys *System) error {
		return AddMass(sys, Const(1), 1)
	})
	if err != nil {
		tst.Fatalf("cannot assemble mass:\n%v", err)
	}
	return K, M, sp.Ny
}

func Test_eigen01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eigen01. primary and fallback agree on the ground mode")

	K, M, _ := eigOperators(tst)

	primary, err := EigenSolve(K.A, M.A, K.Diag, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	fallback, err := FallbackEigen(K.A, M.A, K.Diag, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	if !(primary.Lambdas[0] > 0) {
		tst.Errorf("ground eigenvalue must be positive, got %g", primary.Lambdas[0])
		return
	}
	chk.Float64(tst, "lambda1", 1e-6*primary.Lambdas[0], fallback.Lambdas[0], primary.Lambdas[0])

	// the eigenpair defect vanishes on the converged mode
	defect := ModeResidual(K.A, M.A, primary.Lambdas[0], primary.Modes[0])
	chk.Float64(tst, "defect", 1e-6, defect, 0)
}

func Test_eigen02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eigen02. the fallback is deterministic")

	K, M, _ := eigOperators(tst)

	a, err := FallbackEigen(K.A, M.A, K.Diag, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	b, err := FallbackEigen(K.A, M.A, K.Diag, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "repeat lambda", 1e-17, b.Lambdas[0], a.Lambdas[0])
	chk.Array(tst, "repeat mode", 1e-17, b.Modes[0], a.Modes[0])
}

func Test_eigen03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eigen03. more modes than dofs is rejected")

	K, M, n := eigOperators(tst)
	_, err := EigenSolve(K.A, M.A, K.Diag, n+1)
	if err == nil {
		tst.Errorf("oversized mode request must fail")
	}
}
