// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
)

// Magnetostatics solves for the scalar magnetic potential with reluctivity
// 1/mu, an impressed current density source, and fixed_potential /
// surface_current boundaries
type Magnetostatics struct{}

func init() {
	register("Magnetostatics", func() Solver { return &Magnetostatics{} })
}

func (o *Magnetostatics) Name() string { return "Magnetostatics" }

func (o *Magnetostatics) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	current := 0.0
	if cfg.Has("current_density") {
		v, ok := asNum(cfg["current_density"])
		if !ok {
			err = chk.Err("config.current_density must be numeric when provided")
			return
		}
		current = v
	}

	// fixed_potential overwrites, surface_current accumulates
	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		val, e := b.Raw.ReqNum(b.Path, "value")
		if e != nil {
			err = e
			return
		}
		switch b.Kind {
		case "fixedpotential":
			bv.SetEss("fixed_potential", b.Attr, val)
		case "surfacecurrent":
			bv.AddNat("surface_current", b.Attr, val)
		default:
			err = inp.UnknownBcKind(b, "fixed_potential", "surface_current")
			return
		}
	}
	if !bv.HasAny("fixed_potential") {
		err = chk.Err("config.bcs must include at least one fixed_potential boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed_potential"), bv.Values("fixed_potential"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(1/permeability), 1); err != nil {
		return
	}
	if err = fea.AddSource(sys, fea.Const(current), 0, 1); err != nil {
		return
	}
	fea.AddBoundaryFlux(sys, bv.Markers("surface_current"), bv.Values("surface_current"), 0, 1)

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("Magnetostatics energy", energy); err != nil {
		return
	}
	logf(ctx, "magnetostatics: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "vector_potential", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
