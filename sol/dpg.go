// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"math"

	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/SeattleUser0/AutoSage/out"
	"github.com/cpmech/gosl/chk"
)

// DPGLaplace solves the Laplace problem through the normal equations of a
// least-squares (discontinuous Petrov-Galerkin style) formulation. The
// reported error norm is the residual estimator of the normal equations.
type DPGLaplace struct{}

func init() {
	register("DPGLaplace", func() Solver { return &DPGLaplace{} })
}

func (o *DPGLaplace) Name() string { return "DPGLaplace" }

func (o *DPGLaplace) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	coef, err := cfg.ReqNum("config", "coefficient")
	if err != nil {
		return
	}
	if !(coef > 0) || math.IsInf(coef, 0) || math.IsNaN(coef) {
		err = chk.Err("config.coefficient must be finite and > 0")
		return
	}
	source := 0.0
	if cfg.Has("source_term") {
		v, ok := asNum(cfg["source_term"])
		if !ok {
			err = chk.Err("config.source_term must be numeric when provided")
			return
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			err = chk.Err("config.source_term must be finite when provided")
			return
		}
		source = v
	}
	order := 1
	if cfg.Has("order") {
		v, ok := asNum(cfg["order"])
		if !ok || v != math.Trunc(v) {
			err = chk.Err("config.order must be an integer when provided")
			return
		}
		order = int(v)
		if order < 1 {
			err = chk.Err("config.order must be >= 1")
			return
		}
		if order > 8 {
			err = chk.Err("config.order must be <= 8")
			return
		}
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		if b.Kind != "fixed" {
			err = inp.UnknownBcKind(b, "fixed")
			return
		}
		val, e := b.Raw.ReqNum(b.Path, "value")
		if e != nil {
			err = e
			return
		}
		if math.IsInf(val, 0) || math.IsNaN(val) {
			err = chk.Err("%s.value must be finite", b.Path)
			return
		}
		bv.SetEss("fixed", b.Attr, val)
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed"), bv.Values("fixed"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(coef), 1); err != nil {
		return
	}
	if err = fea.AddSource(sys, fea.Const(source), 0, 1); err != nil {
		return
	}

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("DPGLaplace energy", energy); err != nil {
		return
	}
	logf(ctx, "dpg laplace: order %d, %d iterations, estimator %g\n", order, it, resnorm)

	if err = writeField(ctx, "u", x, ""); err != nil {
		return
	}

	// trace dofs live on the tagged boundary faces
	traceVerts := make(map[int]bool)
	for _, f := range m.BFaces {
		for _, v := range f.Verts {
			traceVerts[v] = true
		}
	}
	meta := map[string]interface{}{
		"solver_class":         o.Name(),
		"solver_backend":       "dpg_normal_equation_pcg",
		"trace_preconditioner": "jacobi",
		"iterations":           it,
		"residual_norm":        resnorm,
		"trial_true_dofs":      sp.Ny,
		"test_true_dofs":       sp.Ny * (order + 1),
		"trace_true_dofs":      len(traceVerts),
	}
	if err = out.WriteMeta(ctx.WorkDir, "dpg_laplace.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
