// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// starMesh is the unit square with a centre vertex and four triangles, the
// outer edges tagged 1..4. The centre carries the only free dofs once all
// edges are fixed.
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

// testCtx returns a context writing artifacts under /tmp
func testCtx(sub string) *Context {
	dir := filepath.Join("/tmp/autosage", sub)
	return &Context{WorkDir: dir, VtkPath: filepath.Join(dir, "solution.pvd")}
}

// allFixed builds a bcs list fixing attributes 1..4 of the star mesh
func allFixed(kind string, value float64) []interface{} {
	var bcs []interface{}
	for a := 1; a <= 4; a++ {
		bcs = append(bcs, map[string]interface{}{"attribute": a, "type": kind, "value": value})
	}
	return bcs
}

func Test_run01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run01. poisson end to end")

	m := starMesh(tst)
	solver, err := New("poisson")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	cfg := map[string]interface{}{
		"rhs":              1.0,
		"fixed_attributes": []interface{}{1, 2, 3, 4},
	}
	s, err := solver.Run(m, cfg, testCtx("run01"))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(s.Dimension, 2)
	if !(s.Energy > 0) {
		tst.Errorf("a driven membrane stores energy, got %g", s.Energy)
		return
	}
	if s.ErrorNorm > 1e-9 {
		tst.Errorf("residual too large: %g", s.ErrorNorm)
		return
	}

	// the stub names the written field
	stub := io.ReadFile("/tmp/autosage/run01/solution.pvd")
	chk.String(tst, string(stub), "# solution field written to solution.collection.json\n")
}

func Test_run02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run02. bad material data fails fast")

	m := starMesh(tst)
	solver, _ := New("LinearElasticity")
	cfg := map[string]interface{}{
		"materials": []interface{}{map[string]interface{}{"E": 10.0, "nu": 0.5}},
		"bcs":       allFixed("fixed", 0),
	}
	_, err := solver.Run(m, cfg, testCtx("run02"))
	if err == nil {
		tst.Errorf("incompressible poisson ratio must fail")
		return
	}
	chk.String(tst, err.Error(), "materials[].nu must be in (-1, 0.5)")

	solver, _ = New("Electrostatics")
	cfg = map[string]interface{}{"permittivity": 1.0}
	_, err = solver.Run(m, cfg, testCtx("run02"))
	if err == nil {
		tst.Errorf("missing essential boundary must fail")
		return
	}
	chk.String(tst, err.Error(), "at least one fixed_voltage boundary condition is required")

	solver, _ = New("DarcyFlow")
	cfg = map[string]interface{}{
		"permeability": 1.0,
		"bcs": []interface{}{
			map[string]interface{}{"attribute": 1, "type": "no_flow"},
		},
	}
	_, err = solver.Run(m, cfg, testCtx("run02"))
	if err == nil {
		tst.Errorf("missing fixed_pressure must fail")
		return
	}
	chk.String(tst, err.Error(), "config.bcs must include at least one fixed_pressure boundary condition")
}

func Test_run03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run03. transient heat truncates the final step")

	m := starMesh(tst)
	solver, _ := New("heat_transfer")
	cfg := map[string]interface{}{
		"conductivity":        1.0,
		"specific_heat":       1.0,
		"dt":                  0.3,
		"t_final":             1.0,
		"initial_temperature": 5.0,
		"bcs":                 allFixed("fixed_temp", 1.0),
	}
	s, err := solver.Run(m, cfg, testCtx("run03"))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if s.Iterations < 4 {
		tst.Errorf("four implicit steps must solve, got %d iterations", s.Iterations)
		return
	}

	// snapshots at step 0, every step, and the truncated final step
	b := io.ReadFile("/tmp/autosage/run03/solution.collection.json")
	var idx struct {
		Steps []struct {
			Cycle int     `json:"cycle"`
			Time  float64 `json:"time"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(b, &idx); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(len(idx.Steps), 5)
	chk.IntAssert(idx.Steps[4].Cycle, 4)
	chk.Float64(tst, "final time", 1e-15, idx.Steps[4].Time, 1.0)
}

func Test_run04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run04. forced eigensolver fallback is recorded")

	m := starMesh(tst)
	solver, _ := New("StructuralModal")
	cfg := map[string]interface{}{
		"density":        1.0,
		"youngs_modulus": 10.0,
		"poisson_ratio":  0.3,
		"num_modes":      1,
		"bcs":            allFixed("fixed", 0),
	}
	ctx := testCtx("run04")
	ctx.ForceFallback = true
	s, err := solver.Run(m, cfg, ctx)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if !(s.Energy > 0) {
		tst.Errorf("ground eigenvalue must be positive, got %g", s.Energy)
		return
	}

	b := io.ReadFile("/tmp/autosage/run04/structural_modes.json")
	var meta struct {
		Backend string    `json:"solver_backend"`
		Reason  string    `json:"fallback_reason"`
		Eigs    []float64 `json:"eigenvalues"`
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.String(tst, meta.Backend, "inverse_iteration_fallback")
	chk.String(tst, meta.Reason, "forced fallback via job force_fallback flag")
	chk.IntAssert(len(meta.Eigs), 1)
}

func Test_run05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run05. joule heating re-solves the potential every step")

	m := starMesh(tst)
	solver, _ := New("JouleHeating")
	cfg := map[string]interface{}{
		"electrical_conductivity": 1.0,
		"thermal_conductivity":    1.0,
		"heat_capacity":           1.0,
		"dt":                      0.3,
		"t_final":                 1.0,
		"bcs": []interface{}{
			map[string]interface{}{"attribute": 1, "type": "voltage", "value": 1.0},
			map[string]interface{}{"attribute": 3, "type": "ground"},
			map[string]interface{}{"attribute": 2, "type": "fixed_temp", "value": 0.0},
			map[string]interface{}{"attribute": 4, "type": "fixed_temp", "value": 0.0},
		},
	}
	s, err := solver.Run(m, cfg, testCtx("run05"))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	b := io.ReadFile("/tmp/autosage/run05/joule_heating.json")
	var meta struct {
		ElectricIt int `json:"electric_iterations"`
		ThermalIt  int `json:"thermal_iterations"`
		Steps      int `json:"time_steps"`
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(meta.Steps, 4)

	// the electric sub-solve runs before each thermal step, so its iteration
	// count accumulates at least once per step
	if meta.ElectricIt < meta.Steps {
		tst.Errorf("expected one electric sub-solve per step, got %d iterations over %d steps",
			meta.ElectricIt, meta.Steps)
		return
	}
	chk.IntAssert(s.Iterations, meta.ElectricIt+meta.ThermalIt)
}
