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

// Elastodyn steps the elastic wave equation implicitly in the velocity, with
// fixed boundaries eliminated and sinusoidal surface loads re-evaluated at
// every step
type Elastodyn struct{}

func init() {
	register("Elastodynamics", func() Solver { return &Elastodyn{} })
}

func (o *Elastodyn) Name() string { return "Elastodynamics" }

// icVec reads a required initial-condition vector, tolerantly resized to nd
func icVec(ic inp.Cfg, key string, nd int) ([]float64, error) {
	raw, ok := ic[key].([]interface{})
	if !ok {
		return nil, chk.Err("config.initial_condition.%s is required and must be an array", key)
	}
	if len(raw) == 0 {
		return nil, chk.Err("config.initial_condition.%s must not be empty", key)
	}
	v := make([]float64, len(raw))
	for i, e := range raw {
		x, ok := asNum(e)
		if !ok {
			return nil, chk.Err("config.initial_condition.%s entries must be numeric", key)
		}
		v[i] = x
	}
	return inp.ResizeVec(v, nd), nil
}

func (o *Elastodyn) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	density, err := cfg.ReqPosNum("config", "density")
	if err != nil {
		return
	}
	E, err := cfg.ReqPosNum("config", "youngs_modulus")
	if err != nil {
		return
	}
	nu, err := cfg.ReqNum("config", "poisson_ratio")
	if err != nil {
		return
	}
	if nu <= -1 || nu >= 0.5 {
		err = chk.Err("config.poisson_ratio must be in (-1, 0.5)")
		return
	}
	dt, err := cfg.ReqPosNum("config", "dt")
	if err != nil {
		return
	}
	tf, err := cfg.ReqPosNum("config", "t_final")
	if err != nil {
		return
	}
	if _, err = cfg.OptIntMin("config", "order", 1, 1); err != nil {
		return
	}
	outEvery, err := cfg.OptEvery("config", "output_interval_steps", 1)
	if err != nil {
		return
	}
	lam := E * nu / ((1 + nu) * (1 - 2*nu))
	mu := E / (2 * (1 + nu))

	obj, ok := cfg["initial_condition"].(map[string]interface{})
	if !ok {
		err = chk.Err("config.initial_condition is required and must be an object")
		return
	}
	ic := inp.Cfg(obj)
	u0, err := icVec(ic, "displacement", nd)
	if err != nil {
		return
	}
	v0, err := icVec(ic, "velocity", nd)
	if err != nil {
		return
	}

	if !cfg.Has("bcs") {
		err = chk.Err("config.bcs is required and must be an array")
		return
	}
	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	type harmonicLoad struct {
		attr  int
		freq  float64
		value []float64
	}
	var loads []harmonicLoad
	for _, b := range bcs {
		switch b.Kind {
		case "fixed":
			bv.Mark("fixed", b.Attr)
		case "timevaryingload":
			freq, ok := asNum(b.Raw["frequency"])
			if !ok {
				err = chk.Err("%s.frequency is required for time_varying_load", b.Path)
				return
			}
			if freq <= 0 {
				err = chk.Err("%s.frequency must be > 0", b.Path)
				return
			}
			vec, e := b.Raw.VecMin(b.Path, "value", nd, true)
			if e != nil {
				err = e
				return
			}
			loads = append(loads, harmonicLoad{attr: b.Attr, freq: freq, value: vec})
		default:
			err = inp.UnknownBcKind(b, "fixed", "time_varying_load")
			return
		}
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary")
		return
	}

	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.Essential(bv.Markers("fixed"), nil)

	// one pre-assembled load vector per harmonic boundary
	loadVecs := make([][]float64, len(loads))
	for j, ld := range loads {
		sysL := fea.NewSystem(sp, nil, nil)
		marker := make([]int, m.NbdryAttrs)
		marker[ld.attr-1] = 1
		vecs := make([][]float64, m.NbdryAttrs)
		vecs[ld.attr-1] = ld.value
		fea.AddVecBoundaryLoad(sysL, marker, vecs, 1)
		loadVecs[j] = sysL.B
	}

	// stationary operators
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(density), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)
	sysK := fea.NewSystem(sp, nil, nil)
	if err = fea.AddElasticity(sysK, fea.Const(lam), fea.Const(mu), 1); err != nil {
		return
	}
	K := sysK.Finalize(1)

	// implicit velocity operator rho*M + dt^2*K
	var essMask []bool
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, eqs, vv)
		if e := fea.AddMass(sys, fea.Const(density), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddElasticity(sys, fea.Const(lam), fea.Const(mu), dtcur*dtcur); e != nil {
			return nil, nil, e
		}
		A := sys.Finalize(1)
		essMask = sys.EssMask()
		return A, sys.Diag, nil
	}}

	// uniform initial state with fixed boundaries grounded
	u := make([]float64, sp.Ny)
	v := make([]float64, sp.Ny)
	for i := range m.Verts {
		for d := 0; d < nd; d++ {
			u[sp.Eq(i, d)] = u0[d]
			v[sp.Eq(i, d)] = v0[d]
		}
	}
	for _, eq := range eqs {
		u[eq] = 0
		v[eq] = 0
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	rhs := la.NewVector(sp.Ny)
	tmp := la.NewVector(sp.Ny)
	pcg := fea.NewPCG()
	iterations := 0
	resnorm := 0.0

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "displacement", u)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		A, diag, e := op.Get(dtcur)
		if e != nil {
			return e
		}
		// rhs = rho*M*v - dt*K*u + dt*F(t+dt)
		rhs.Fill(0)
		la.SpMatVecMulAdd(rhs, 1, M, v)
		la.SpMatVecMulAdd(rhs, -dtcur, K, u)
		tnew := t + dtcur
		for j, ld := range loads {
			f := math.Sin(2 * math.Pi * ld.freq * tnew)
			for i := range rhs {
				rhs[i] += dtcur * f * loadVecs[j][i]
			}
		}
		for i := range rhs {
			if essMask[i] {
				rhs[i] = 0
			}
		}
		if e = pcg.Solve(A, diag, rhs, v); e != nil {
			return e
		}
		iterations += pcg.It
		if resnorm, e = fea.ResidualNorm(A, v, rhs, essMask); e != nil {
			return e
		}
		for i := range u {
			u[i] += dtcur * v[i]
		}
		for _, eq := range eqs {
			u[eq] = 0
			v[eq] = 0
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// kinetic plus strain energy
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, M, v)
	energy := fea.Energy(v, tmp)
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, K, u)
	energy += fea.Energy(u, tmp)
	if err = fea.CheckFinite("Elastodynamics energy", energy); err != nil {
		return
	}
	logf(ctx, "elastodynamics: %d steps, %d iterations, energy %g\n", nsteps, iterations, energy)
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: nd}, nil
}
