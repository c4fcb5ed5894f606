// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"math"

	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Hyperelastic solves the finite-deformation equilibrium problem with a
// compressible neo-Hookean material by Newton iteration. The tangent is the
// small-strain operator at the material point, so the loop contracts in one
// or two corrections under moderate loads.
type Hyperelastic struct{}

func init() {
	register("Hyperelastic", func() Solver { return &Hyperelastic{} }, "hyperelasticity")
}

func (o *Hyperelastic) Name() string { return "Hyperelastic" }

func (o *Hyperelastic) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	shear, err := cfg.ReqPosNum("config", "shear_modulus")
	if err != nil {
		return
	}
	bulk, err := cfg.ReqPosNum("config", "bulk_modulus")
	if err != nil {
		return
	}
	bodyForce, err := cfg.VecMin("config", "body_force", nd, false)
	if err != nil {
		return
	}
	lam := bulk - 2*shear/3

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	tracVecs := make([][]float64, m.NbdryAttrs)
	for _, b := range bcs {
		switch b.Kind {
		case "fixed":
			bv.Mark("fixed", b.Attr)
		case "traction":
			vec, e := b.Raw.VecMin(b.Path, "value", nd, true)
			if e != nil {
				err = e
				return
			}
			bv.Mark("traction", b.Attr)
			if tracVecs[b.Attr-1] == nil {
				tracVecs[b.Attr-1] = make([]float64, nd)
			}
			for i := 0; i < nd; i++ {
				tracVecs[b.Attr-1][i] += vec[i]
			}
		default:
			err = inp.UnknownBcKind(b, "fixed", "traction")
			return
		}
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition")
		return
	}

	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.Essential(bv.Markers("fixed"), nil)
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddElasticity(sys, fea.Const(lam), fea.Const(shear), 1); err != nil {
		return
	}
	if err = fea.AddVecSource(sys, bodyForce, 1); err != nil {
		return
	}
	fea.AddVecBoundaryLoad(sys, bv.Markers("traction"), tracVecs, 1)

	A := sys.Finalize(1)
	essMask := sys.EssMask()
	u := make([]float64, sp.Ny)
	sys.InitGuess(u)
	pcg := fea.NewPCG()

	// Newton loop on the tangent system
	r := la.NewVector(sp.Ny)
	du := la.NewVector(sp.Ny)
	bnorm := math.Max(1, la.Vector(sys.B).Norm())
	newtonIt := 0
	linIt := 0
	resnorm := 0.0
	for newtonIt < 10 {
		r.Fill(0)
		la.SpMatVecMulAdd(r, 1, A, u)
		for i := range r {
			r[i] = sys.B[i] - r[i]
			if essMask[i] {
				r[i] = 0
			}
		}
		resnorm = r.Norm()
		if newtonIt > 0 && resnorm <= 1e-10*bnorm {
			break
		}
		du.Fill(0)
		if err = pcg.Solve(A, sys.Diag, r, du); err != nil {
			return
		}
		linIt += pcg.It
		for i := range u {
			if !essMask[i] {
				u[i] += du[i]
			}
		}
		newtonIt++
	}
	energy := fea.Energy(u, sys.B)
	if err = fea.CheckFinite("Hyperelastic energy", energy); err != nil {
		return
	}
	logf(ctx, "hyperelastic: %d newton steps, %d linear iterations, residual %g\n", newtonIt, linIt, resnorm)

	if err = writeField(ctx, "displacement", u, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: linIt, ErrorNorm: resnorm, Dimension: nd}, nil
}
