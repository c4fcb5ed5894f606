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

// Electrostatics solves for the electric potential with fixed-voltage and
// surface-charge boundaries
type Electrostatics struct{}

func init() {
	register("Electrostatics", func() Solver { return &Electrostatics{} })
}

func (o *Electrostatics) Name() string { return "Electrostatics" }

func (o *Electrostatics) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	permittivity, err := cfg.ReqPosNum("config", "permittivity")
	if err != nil {
		return
	}
	charge := 0.0
	if cfg.Has("charge_density") {
		v, ok := asNum(cfg["charge_density"])
		if !ok {
			err = chk.Err("config.charge_density must be numeric when provided")
			return
		}
		charge = v
	}

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
		case "fixedvoltage":
			bv.SetEss("fixed_voltage", b.Attr, val)
		case "surfacecharge":
			bv.AddNat("surface_charge", b.Attr, val)
		default:
			err = inp.UnknownBcKind(b, "fixed_voltage", "surface_charge")
			return
		}
	}
	if !bv.HasAny("fixed_voltage") {
		err = chk.Err("at least one fixed_voltage boundary condition is required")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed_voltage"), bv.Values("fixed_voltage"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(permittivity), 1); err != nil {
		return
	}
	if err = fea.AddSource(sys, fea.Const(charge), 0, 1); err != nil {
		return
	}
	fea.AddBoundaryFlux(sys, bv.Markers("surface_charge"), bv.Values("surface_charge"), 0, 1)

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("Electrostatics energy", energy); err != nil {
		return
	}
	logf(ctx, "electrostatics: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "potential", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
