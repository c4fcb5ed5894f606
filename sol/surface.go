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

// SurfacePDE solves diffusion on a 2D surface, possibly embedded in 3D.
// Closed surfaces have no boundary; the otherwise-undetermined constant mode
// is removed by pinning one dof (gauge fix).
type SurfacePDE struct{}

func init() {
	register("SurfacePDE", func() Solver { return &SurfacePDE{} })
}

func (o *SurfacePDE) Name() string { return "SurfacePDE" }

func (o *SurfacePDE) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	// topological dimension must be 2: triangle/quad cells only
	for _, c := range m.Cells {
		if c.Type != "tri3" && c.Type != "qua4" {
			err = chk.Err("SurfacePDE requires a 2D surface mesh")
			return
		}
	}

	coef, err := cfg.ReqNum("config", "diffusion_coefficient")
	if err != nil {
		return
	}
	if !(coef > 0) || math.IsInf(coef, 0) || math.IsNaN(coef) {
		err = chk.Err("config.diffusion_coefficient must be finite and > 0")
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
	closed := false
	if cfg.Has("is_closed_surface") {
		b, ok := cfg["is_closed_surface"].(bool)
		if !ok {
			err = chk.Err("config.is_closed_surface must be boolean when provided")
			return
		}
		closed = b
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
	if !closed && !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition for open surfaces")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed"), bv.Values("fixed"))
	gaugeFixed := false
	if closed && len(eqs) == 0 {
		// pin one dof to remove the constant null space
		eqs = append(eqs, 0)
		vv = append(vv, 0)
		gaugeFixed = true
	}

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
	if err = fea.CheckFinite("SurfacePDE energy", energy); err != nil {
		return
	}
	logf(ctx, "surface pde: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "solution", x, ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":      o.Name(),
		"solver_backend":    "pcg_jacobi",
		"iterations":        it,
		"residual_norm":     resnorm,
		"dimension":         2,
		"space_dimension":   m.Ndim,
		"gauge_fix_applied": gaugeFixed,
	}
	if err = out.WriteMeta(ctx.WorkDir, "surface_pde.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: 2}, nil
}
