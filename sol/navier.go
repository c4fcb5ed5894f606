// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/SeattleUser0/AutoSage/out"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Navier steps incompressible viscous flow with an implicit momentum update:
// inlet and wall velocities are eliminated, outlets stay natural so the
// pressure level is set there. Its boundary vocabulary predates the common
// parser (attr instead of attribute) and is kept as its own dialect.
type Navier struct{}

func init() {
	register("NavierStokes", func() Solver { return &Navier{} })
}

func (o *Navier) Name() string { return "NavierStokes" }

// navierNum reads one required positive scalar in the flat message dialect
func navierNum(cfg inp.Cfg, key string) (float64, error) {
	raw, present := cfg[key]
	if !present {
		return 0, chk.Err("%s is required", key)
	}
	v, ok := asNum(raw)
	if !ok {
		return 0, chk.Err("%s must be a number", key)
	}
	if v <= 0 {
		return 0, chk.Err("%s must be > 0", key)
	}
	return v, nil
}

func (o *Navier) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	viscosity, err := navierNum(cfg, "viscosity")
	if err != nil {
		return
	}
	density, err := navierNum(cfg, "density")
	if err != nil {
		return
	}
	dt, err := navierNum(cfg, "dt")
	if err != nil {
		return
	}
	tf, err := navierNum(cfg, "t_final")
	if err != nil {
		return
	}
	gravity, err := cfg.VecMin("config", "g", nd, false)
	if err != nil {
		return
	}
	outEvery := 1
	if cfg.Has("output_interval_steps") {
		n, ok := asInt(cfg["output_interval_steps"])
		if !ok || n <= 0 {
			err = chk.Err("output_interval_steps must be > 0")
			return
		}
		outEvery = n
	}

	// boundary dialect: attr key, inlet/outlet/wall kinds
	bv := fea.NewBVals(m.NbdryAttrs)
	outletP := make([]float64, m.NbdryAttrs)
	if cfg.Has("bcs") {
		raw, ok := cfg["bcs"].([]interface{})
		if !ok {
			err = chk.Err("bcs must be an array")
			return
		}
		if m.NbdryAttrs == 0 && len(raw) > 0 {
			err = chk.Err("mesh has no boundary attributes, but config.bcs is non-empty")
			return
		}
		for _, e := range raw {
			obj, ok := e.(map[string]interface{})
			if !ok {
				err = chk.Err("each bcs item must be an object")
				return
			}
			bc := inp.Cfg(obj)
			attr, ok := asInt(bc["attr"])
			if !ok {
				err = chk.Err("each bcs item must include integer attr")
				return
			}
			if attr <= 0 {
				err = chk.Err("bcs[].attr must be > 0")
				return
			}
			if attr > m.NbdryAttrs {
				err = chk.Err("bcs[].attr exceeds mesh boundary attribute count")
				return
			}
			typ, _ := bc.OptStr("bcs[]", "type", "")
			switch inp.Canon(typ) {
			case "inlet":
				vec, e := bc.VecMin("bcs[]", "velocity", nd, true)
				if e != nil {
					err = e
					return
				}
				bv.SetEssVec("velocity", attr, vec)
			case "outlet":
				p := 0.0
				if bc.Has("pressure") {
					v, ok := asNum(bc["pressure"])
					if !ok {
						err = chk.Err("bcs[].pressure must be numeric for outlet")
						return
					}
					p = v
				}
				bv.Mark("outlet", attr)
				outletP[attr-1] = p
			case "wall":
				bv.SetEssVec("velocity", attr, make([]float64, nd))
			default:
				err = chk.Err("bcs[].type must be inlet, outlet, or wall")
				return
			}
		}
	}

	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.EssentialVec(bv.Markers("velocity"), bv.VecValues("velocity"))

	// density mass for the step products and the kinetic energy
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(density), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)

	// constant body load: gravity scaled by density
	body := make([]float64, nd)
	for i := 0; i < nd; i++ {
		body[i] = density * gravity[i]
	}
	sysF := fea.NewSystem(sp, nil, nil)
	if err = fea.AddVecSource(sysF, body, 1); err != nil {
		return
	}
	// outlet pressure acts as a traction along the primary flow axis
	outletVecs := make([][]float64, m.NbdryAttrs)
	for i, p := range outletP {
		if bv.Markers("outlet")[i] != 0 {
			vec := make([]float64, nd)
			vec[0] = p
			outletVecs[i] = vec
		}
	}
	fea.AddVecBoundaryLoad(sysF, bv.Markers("outlet"), outletVecs, 1)
	load := sysF.B

	// implicit momentum operator rho*M + dt*mu*K
	var elimB []float64
	var essMask []bool
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, eqs, vv)
		if e := fea.AddMass(sys, fea.Const(density), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddDiffusion(sys, fea.Const(viscosity), dtcur); e != nil {
			return nil, nil, e
		}
		A := sys.Finalize(1)
		elimB = append([]float64(nil), sys.B...)
		essMask = sys.EssMask()
		return A, sys.Diag, nil
	}}

	// start at rest with the prescribed boundary velocities
	u := make([]float64, sp.Ny)
	for k, eq := range eqs {
		u[eq] = vv[k]
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	mu := la.NewVector(sp.Ny)
	rhs := make([]float64, sp.Ny)
	pcg := fea.NewPCG()
	iterations := 0
	resnorm := 0.0

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "velocity", u)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		A, diag, e := op.Get(dtcur)
		if e != nil {
			return e
		}
		mu.Fill(0)
		la.SpMatVecMulAdd(mu, 1, M, u)
		for i := 0; i < sp.Ny; i++ {
			if essMask[i] {
				rhs[i] = elimB[i]
			} else {
				rhs[i] = elimB[i] + mu[i] + dtcur*load[i]
			}
		}
		if e = pcg.Solve(A, diag, rhs, u); e != nil {
			return e
		}
		iterations += pcg.It
		if resnorm, e = fea.ResidualNorm(A, u, rhs, essMask); e != nil {
			return e
		}
		for k, eq := range eqs {
			u[eq] = vv[k]
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// kinetic energy 0.5 rho u.M.u
	mu.Fill(0)
	la.SpMatVecMulAdd(mu, 1, M, u)
	energy := fea.Energy(u, mu)
	if err = fea.CheckFinite("NavierStokes energy", energy); err != nil {
		return
	}
	logf(ctx, "navier-stokes: %d steps, %d iterations, kinetic energy %g\n", nsteps, iterations, energy)
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: nd}, nil
}
