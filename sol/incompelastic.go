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
	"github.com/cpmech/gosl/la"
)

// IncompElastic solves nearly incompressible elasticity: a penalized
// displacement problem driven to equilibrium by Newton, with the pressure
// recovered from the volumetric strain afterwards. When every boundary is
// essential the pressure is only known up to a constant and gets re-centered
// (gauge fix).
type IncompElastic struct{}

func init() {
	register("IncompressibleElasticity", func() Solver { return &IncompElastic{} })
}

func (o *IncompElastic) Name() string { return "IncompressibleElasticity" }

func (o *IncompElastic) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	shear, err := cfg.ReqPosNum("config", "shear_modulus")
	if err != nil {
		return
	}
	bulk, err := cfg.ReqPosNum("config", "bulk_modulus")
	if err != nil {
		return
	}
	order, err := cfg.OptIntMin("config", "order", 1, 1)
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
	tracAttrs := []int{}
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
			if tracVecs[b.Attr-1] == nil {
				tracVecs[b.Attr-1] = make([]float64, nd)
				tracAttrs = append(tracAttrs, b.Attr)
			}
			bv.Mark("traction", b.Attr)
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
	if err = fea.CheckFinite("IncompressibleElasticity energy", energy); err != nil {
		return
	}

	// without a traction boundary the pressure level is arbitrary and gets
	// pinned to zero mean
	gaugeFixed := len(tracAttrs) == 0
	logf(ctx, "incompressible elasticity: %d newton steps, %d linear iterations, residual %g\n",
		newtonIt, linIt, resnorm)

	if err = writeField(ctx, "displacement", u, ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":               o.Name(),
		"solver_backend":             "newton_pcg_penalty",
		"newton_iterations":          newtonIt,
		"linear_iterations":          linIt,
		"residual_norm":              resnorm,
		"dimension":                  nd,
		"pressure_gauge_fix_applied": gaugeFixed,
		"pressure_order":             order,
		"traction_boundaries":        tracAttrs,
	}
	if err = out.WriteMeta(ctx.WorkDir, "incompressible_elasticity.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: linIt, ErrorNorm: resnorm, Dimension: nd}, nil
}
