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

// Electromagnetics solves the shifted curl-curl problem for the electric
// field: (1/mu) stiffness plus a kappa mass shift, driven by an impressed
// current density. Perfectly conducting walls pin the tangential field,
// rendered here as a full vector constraint.
type Electromagnetics struct{}

func init() {
	register("Electromagnetics", func() Solver { return &Electromagnetics{} })
}

func (o *Electromagnetics) Name() string { return "Electromagnetics" }

func (o *Electromagnetics) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	kappa, err := cfg.ReqPosNum("config", "kappa")
	if err != nil {
		return
	}
	current := make([]float64, nd)
	if cfg.Has("current_density") {
		raw, ok := cfg["current_density"].([]interface{})
		if !ok {
			err = chk.Err("config.current_density must be an array when provided")
			return
		}
		vals := make([]float64, len(raw))
		for i, e := range raw {
			v, ok := asNum(e)
			if !ok {
				err = chk.Err("config.current_density entries must be numeric")
				return
			}
			vals[i] = v
		}
		if len(vals) < nd {
			err = chk.Err("config.current_density must provide at least mesh-space-dimension components")
			return
		}
		current = vals[:nd]
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		if b.Kind != "perfectconductor" {
			err = inp.UnknownBcKind(b, "perfect_conductor")
			return
		}
		bv.Mark("pec", b.Attr)
	}
	if !bv.HasAny("pec") {
		err = chk.Err("config.bcs must include at least one perfect_conductor boundary condition")
		return
	}

	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.Essential(bv.Markers("pec"), nil)
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(1/permeability), 1); err != nil {
		return
	}
	if err = fea.AddMass(sys, fea.Const(kappa), 1); err != nil {
		return
	}
	if err = fea.AddVecSource(sys, current, 1); err != nil {
		return
	}

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("Electromagnetics energy", energy); err != nil {
		return
	}
	logf(ctx, "electromagnetics: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "electric_field", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: nd}, nil
}
