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

// Darcy solves the pressure equation of saturated porous flow. no_flow
// boundaries are natural (zero flux) and need no assembly.
type Darcy struct{}

func init() {
	register("DarcyFlow", func() Solver { return &Darcy{} })
}

func (o *Darcy) Name() string { return "DarcyFlow" }

func (o *Darcy) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	source := 0.0
	if cfg.Has("source_term") {
		v, ok := asNum(cfg["source_term"])
		if !ok {
			err = chk.Err("config.source_term must be numeric when provided")
			return
		}
		source = v
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		switch b.Kind {
		case "fixedpressure":
			val, e := b.Raw.ReqNum(b.Path, "value")
			if e != nil {
				err = chk.Err("%s.value is required and must be numeric for fixed_pressure", b.Path)
				return
			}
			bv.SetEss("fixed_pressure", b.Attr, val)
		case "noflow":
			bv.Mark("no_flow", b.Attr)
		default:
			err = inp.UnknownBcKind(b, "fixed_pressure", "no_flow")
			return
		}
	}
	if !bv.HasAny("fixed_pressure") {
		err = chk.Err("config.bcs must include at least one fixed_pressure boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed_pressure"), bv.Values("fixed_pressure"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(permeability), 1); err != nil {
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
	if err = fea.CheckFinite("DarcyFlow energy", energy); err != nil {
		return
	}
	logf(ctx, "darcy flow: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "pressure", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
