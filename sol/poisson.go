// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
)

// Poisson solves -div(grad(u)) = rhs with optional fixed boundaries.
// Its config parsing is deliberately tolerant: malformed markers and load
// entries are skipped rather than rejected.
type Poisson struct{}

func init() {
	register("Poisson", func() Solver { return &Poisson{} })
}

func (o *Poisson) Name() string { return "Poisson" }

func (o *Poisson) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	// fixed boundary markers from fixed_attributes and fixed bc entries
	marker := make([]int, m.NbdryAttrs)
	if attrs, ok := cfg["fixed_attributes"].([]interface{}); ok {
		for _, e := range attrs {
			if a, ok := asInt(e); ok && a >= 1 && a <= m.NbdryAttrs {
				marker[a-1] = 1
			}
		}
	}
	for _, key := range []string{"bcs", "boundary_conditions"} {
		entries, ok := cfg[key].([]interface{})
		if !ok {
			continue
		}
		for _, e := range entries {
			bc, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			kind, _ := bc["type"].(string)
			if inp.Canon(kind) != "fixed" {
				continue
			}
			if a, ok := asInt(bc["attribute"]); ok && a >= 1 && a <= m.NbdryAttrs {
				marker[a-1] = 1
			}
		}
	}

	// right-hand side: config.rhs, else first component of the load vector
	rhs := poissonRhs(cfg)

	// assemble
	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(marker, nil)
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(1), 1); err != nil {
		return
	}
	if err = fea.AddSource(sys, fea.Const(rhs), 0, 1); err != nil {
		return
	}

	// solve
	tol, maxit := analysisOpts(cfg, 1e-12, 1000)
	x, it, resnorm, err := solveStatic(sys, tol, maxit)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("Poisson energy", energy); err != nil {
		return
	}
	logf(ctx, "poisson: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "solution", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}

// auxiliary //////////////////////////////////////////////////////////////////

// poissonRhs resolves the source value: rhs when numeric, otherwise the
// first component accumulated from load, body_force, and load bc entries
func poissonRhs(cfg inp.Cfg) float64 {
	if v, ok := asNum(cfg["rhs"]); ok {
		return v
	}
	load := 0.0
	add := func(v interface{}) {
		if a, ok := v.([]interface{}); ok && len(a) > 0 {
			if x, ok := asNum(a[0]); ok {
				load += x
			}
		}
	}
	add(cfg["load"])
	add(cfg["body_force"])
	for _, key := range []string{"bcs", "boundary_conditions"} {
		entries, ok := cfg[key].([]interface{})
		if !ok {
			continue
		}
		for _, e := range entries {
			bc, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			kind, _ := bc["type"].(string)
			if inp.Canon(kind) == "load" {
				add(bc["value"])
			}
		}
	}
	return load
}

// analysisOpts reads the optional analysis_opts {rel_tol, max_iter} object,
// falling back to the given defaults for absent or out-of-range values
func analysisOpts(cfg inp.Cfg, defTol float64, defMaxit int) (float64, int) {
	tol, maxit := defTol, defMaxit
	opts, ok := cfg["analysis_opts"].(map[string]interface{})
	if !ok {
		return tol, maxit
	}
	if v, ok := asNum(opts["rel_tol"]); ok && v > 0 {
		tol = v
	}
	if v, ok := asInt(opts["max_iter"]); ok && v > 0 {
		maxit = v
	}
	return tol, maxit
}

func asNum(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	x, ok := asNum(v)
	if !ok || x != float64(int(x)) {
		return 0, false
	}
	return int(x), true
}
