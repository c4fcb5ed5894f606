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

// Stokes solves the creeping-flow velocity problem. Inflow and no_slip walls
// prescribe the velocity; the pressure is determined only up to the essential
// data and is not carried as an unknown here.
type Stokes struct{}

func init() {
	register("StokesFlow", func() Solver { return &Stokes{} }, "stokes")
}

func (o *Stokes) Name() string { return "StokesFlow" }

func (o *Stokes) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	mu, err := cfg.ReqNum("config", "dynamic_viscosity")
	if err != nil {
		return
	}
	if mu <= 0 {
		err = chk.Err("config.dynamic_viscosity must be > 0")
		return
	}
	bodyForce, err := cfg.VecMin("config", "body_force", nd, false)
	if err != nil {
		return
	}

	// no_slip pins the velocity to zero, inflow to the given vector
	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		switch b.Kind {
		case "noslip":
			bv.SetEssVec("wall", b.Attr, make([]float64, nd))
		case "inflow":
			vec, e := b.Raw.VecMin(b.Path, "velocity", nd, true)
			if e != nil {
				err = e
				return
			}
			bv.SetEssVec("wall", b.Attr, vec)
		default:
			err = inp.UnknownBcKind(b, "no_slip", "inflow")
			return
		}
	}
	if !bv.HasAny("wall") {
		err = chk.Err("config.bcs must include at least one no_slip or inflow boundary condition")
		return
	}

	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.EssentialVec(bv.Markers("wall"), bv.VecValues("wall"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusion(sys, fea.Const(mu), 1); err != nil {
		return
	}
	if err = fea.AddVecSource(sys, bodyForce, 1); err != nil {
		return
	}

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("StokesFlow energy", energy); err != nil {
		return
	}
	logf(ctx, "stokes flow: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "velocity", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: nd}, nil
}
