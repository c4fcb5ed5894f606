// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"testing"

	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func verbose() {
	chk.Verbose = true
}

// squareMesh returns the unit square split into two triangles with boundary
// tags 1..4 counter-clockwise from the bottom edge
func squareMesh(tst *testing.T) *msh.Mesh {
	m, err := msh.ReadBytes([]byte(`{
  "verts": [
    {"i": 0, "c": [0, 0]},
    {"i": 1, "c": [1, 0]},
    {"i": 2, "c": [1, 1]},
    {"i": 3, "c": [0, 1]}
  ],
  "cells": [
    {"i": 0, "t": 1, "y": "tri3", "v": [0, 1, 2], "ft": [1, 2, 0]},
    {"i": 1, "t": 1, "y": "tri3", "v": [0, 2, 3], "ft": [0, 3, 4]}
  ]
}`))
	if err != nil {
		tst.Fatalf("cannot build square mesh:\n%v", err)
	}
	return m
}

// starMesh returns the unit square with a centre vertex and four triangles,
// every outer edge tagged 1..4
func starMesh(tst *testing.T) *msh.Mesh {
	m, err := msh.ReadBytes([]byte(`{
  "verts": [
    {"i": 0, "c": [0, 0]},
    {"i": 1, "c": [1, 0]},
    {"i": 2, "c": [1, 1]},
    {"i": 3, "c": [0, 1]},
    {"i": 4, "c": [0.5, 0.5]}
  ],
  "cells": [
    {"i": 0, "t": 1, "y": "tri3", "v": [0, 1, 4], "ft": [1, 0, 0]},
    {"i": 1, "t": 1, "y": "tri3", "v": [1, 2, 4], "ft": [2, 0, 0]},
    {"i": 2, "t": 1, "y": "tri3", "v": [2, 3, 4], "ft": [3, 0, 0]},
    {"i": 3, "t": 1, "y": "tri3", "v": [3, 0, 4], "ft": [4, 0, 0]}
  ]
}`))
	if err != nil {
		tst.Fatalf("cannot build star mesh:\n%v", err)
	}
	return m
}

func Test_sys01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sys01. laplace with linear data reproduces u = x")

	m := squareMesh(tst)
	sp := NewSpace(m, 1)
	bv := NewBVals(m.NbdryAttrs)
	bv.SetEss("fixed", 2, 1) // right edge: u = 1
	bv.SetEss("fixed", 4, 0) // left edge:  u = 0
	eqs, vv := sp.Essential(bv.Markers("fixed"), bv.Values("fixed"))

	sys := NewSystem(sp, eqs, vv)
	if err := AddDiffusion(sys, Const(1), 1); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	A := sys.Finalize(1)
	x := make([]float64, sp.Ny)
	sys.InitGuess(x)
	pcg := NewPCG()
	if err := pcg.Solve(A, sys.Diag, sys.B, x); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// piecewise-linear spaces are exact for linear solutions
	for i, v := range m.Verts {
		chk.Float64(tst, "u at vert", 1e-10, x[i], v.C[0])
	}
	res, err := ResidualNorm(A, x, sys.B, sys.EssMask())
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "residual", 1e-9, res, 0)
}

func Test_bvals01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bvals01. essential overwrites, natural accumulates")

	bv := NewBVals(3)
	bv.SetEss("fixed", 2, 1.5)
	bv.SetEss("fixed", 2, -4.0)
	bv.AddNat("flux", 1, 2.0)
	bv.AddNat("flux", 1, 3.0)

	chk.Float64(tst, "fixed value", 1e-17, bv.Values("fixed")[1], -4.0)
	chk.Float64(tst, "flux value", 1e-17, bv.Values("flux")[0], 5.0)
	chk.Ints(tst, "union", bv.Union("fixed", "flux"), []int{1, 1, 0})
	if bv.HasAny("missing") {
		tst.Errorf("unknown kind must not be marked")
	}
}

func Test_cache01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cache01. implicit operators rebuild only on a new dt")

	m := squareMesh(tst)
	sp := NewSpace(m, 1)
	op := &CachedOp{Build: func(dt float64) (A *la.CCMatrix, diag []float64, err error) {
		sys := NewSystem(sp, nil, nil)
		if err = AddMass(sys, Const(1), 1); err != nil {
			return
		}
		if err = AddDiffusion(sys, Const(1), dt); err != nil {
			return
		}
		return sys.Finalize(1), sys.Diag, nil
	}}

	if _, _, err := op.Get(0.3); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if _, _, err := op.Get(0.3); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(op.Builds, 1)
	if _, _, err := op.Get(0.1); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(op.Builds, 2)
}
