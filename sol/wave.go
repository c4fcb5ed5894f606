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

// Wave steps the second-order acoustic wave equation as a first-order
// system in (potential, rate) with an implicit velocity update. Rigid walls
// are natural, so no dofs are eliminated and the implicit operator stays
// positive definite through its mass part.
type Wave struct{}

func init() {
	register("AcousticWave", func() Solver { return &Wave{} })
}

func (o *Wave) Name() string { return "AcousticWave" }

// gaussianPulse reads the gaussian_pulse initial condition block
func gaussianPulse(cfg inp.Cfg, nd int) (amp float64, center []float64, width float64, err error) {
	obj, ok := cfg["initial_condition"].(map[string]interface{})
	if !ok {
		err = chk.Err("config.initial_condition is required and must be an object")
		return
	}
	ic := inp.Cfg(obj)
	typ, err := ic.OptStr("config.initial_condition", "type", "")
	if err != nil {
		return
	}
	if inp.Canon(typ) != "gaussianpulse" {
		err = chk.Err("config.initial_condition.type must be gaussian_pulse")
		return
	}
	if amp, err = ic.ReqNum("config.initial_condition", "amplitude"); err != nil {
		return
	}
	raw, ok := ic["center"].([]interface{})
	if !ok {
		err = chk.Err("config.initial_condition.center is required and must be an array")
		return
	}
	if len(raw) == 0 {
		err = chk.Err("config.initial_condition.center must not be empty")
		return
	}
	if len(raw) > 3 {
		err = chk.Err("config.initial_condition.center must contain at most 3 values")
		return
	}
	c := make([]float64, len(raw))
	for i, e := range raw {
		v, ok := asNum(e)
		if !ok {
			err = chk.Err("config.initial_condition.center entries must be numeric")
			return
		}
		c[i] = v
	}
	center = inp.ResizeVec(c, nd)
	if width, err = ic.OptPosNum("config.initial_condition", "width", 0.1); err != nil {
		return
	}
	return
}

func (o *Wave) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	speed, err := cfg.ReqPosNum("config", "wave_speed")
	if err != nil {
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
	outEvery, err := cfg.OptEvery("config", "output_interval_steps", 1)
	if err != nil {
		return
	}
	amp, center, width, err := gaussianPulse(cfg, m.Ndim)
	if err != nil {
		return
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	for _, b := range bcs {
		if b.Kind != "rigidwall" {
			err = inp.UnknownBcKind(b, "rigid_wall")
			return
		}
		// rigid walls are the natural boundary of the potential formulation
	}

	sp := fea.NewSpace(m, 1)
	c2 := speed * speed

	// stationary operators reused across steps
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(1), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)
	sysK := fea.NewSystem(sp, nil, nil)
	if err = fea.AddDiffusion(sysK, fea.Const(c2), 1); err != nil {
		return
	}
	K := sysK.Finalize(1)

	// implicit rate operator M + dt^2*c^2*K
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, nil, nil)
		if e := fea.AddMass(sys, fea.Const(1), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddDiffusion(sys, fea.Const(c2), dtcur*dtcur); e != nil {
			return nil, nil, e
		}
		return sys.Finalize(1), sys.Diag, nil
	}}

	// gaussian initial potential, zero initial rate
	u := make([]float64, sp.Ny)
	v := make([]float64, sp.Ny)
	for i, vert := range m.Verts {
		var r2 float64
		for d := 0; d < m.Ndim; d++ {
			dx := vert.C[d] - center[d]
			r2 += dx * dx
		}
		u[i] = amp * math.Exp(-r2/(2*width*width))
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	rhs := la.NewVector(sp.Ny)
	tmp := la.NewVector(sp.Ny)
	pcg := fea.NewPCG()
	iterations := 0
	resnorm := 0.0
	noEss := make([]bool, sp.Ny)

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "acoustic_potential", u)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		A, diag, e := op.Get(dtcur)
		if e != nil {
			return e
		}
		// rhs = M*v - dt*K*u
		rhs.Fill(0)
		la.SpMatVecMulAdd(rhs, 1, M, v)
		la.SpMatVecMulAdd(rhs, -dtcur, K, u)
		if e = pcg.Solve(A, diag, rhs, v); e != nil {
			return e
		}
		iterations += pcg.It
		if resnorm, e = fea.ResidualNorm(A, v, rhs, noEss); e != nil {
			return e
		}
		for i := range u {
			u[i] += dtcur * v[i]
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// energy = kinetic + potential
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, M, v)
	energy := fea.Energy(v, tmp)
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, K, u)
	energy += fea.Energy(u, tmp)
	if err = fea.CheckFinite("AcousticWave energy", energy); err != nil {
		return
	}
	logf(ctx, "acoustic wave: %d steps, %d iterations, energy %g\n", nsteps, iterations, energy)
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
