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

// Maxwell steps the damped electric wave equation
// eps*E'' + sigma*E' + (1/mu)*curlcurl(E) = 0 implicitly in the field rate,
// from a dipole pulse, with perfectly conducting walls eliminated
type Maxwell struct{}

func init() {
	register("TransientMaxwell", func() Solver { return &Maxwell{} }, "transientem")
}

func (o *Maxwell) Name() string { return "TransientMaxwell" }

func (o *Maxwell) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	permittivity, err := cfg.ReqPosNum("config", "permittivity")
	if err != nil {
		return
	}
	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	conductivity := 0.0
	if cfg.Has("conductivity") {
		v, ok := asNum(cfg["conductivity"])
		if !ok || v < 0 {
			err = chk.Err("config.conductivity must be >= 0")
			return
		}
		conductivity = v
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

	// dipole pulse: polarization direction, gaussian envelope around center
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
	if inp.Canon(typ) != "dipolepulse" {
		err = chk.Err("config.initial_condition.type must be dipole_pulse")
		return
	}
	pol, err := ic.VecMin("config.initial_condition", "polarization", nd, true)
	if err != nil {
		return
	}
	var polMag float64
	for _, p := range pol {
		polMag += p * p
	}
	if !(polMag > 0) {
		err = chk.Err("config.initial_condition.polarization must have non-zero magnitude")
		return
	}
	center, err := ic.VecMin("config.initial_condition", "center", nd, false)
	if err != nil {
		return
	}
	width, err := ic.OptPosNum("config.initial_condition", "width", 0.1)
	if err != nil {
		return
	}
	amp, err := ic.OptNum("config.initial_condition", "amplitude", 1)
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
	reluct := 1 / permeability

	// stationary operators for the step products and the energy
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(permittivity), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)
	sysK := fea.NewSystem(sp, nil, nil)
	if err = fea.AddDiffusion(sysK, fea.Const(reluct), 1); err != nil {
		return
	}
	K := sysK.Finalize(1)

	// implicit rate operator (eps + dt*sigma)*M + dt^2*(1/mu)*K
	var essMask []bool
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, eqs, vv)
		if e := fea.AddMass(sys, fea.Const(permittivity+dtcur*conductivity), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddDiffusion(sys, fea.Const(reluct), dtcur*dtcur); e != nil {
			return nil, nil, e
		}
		A := sys.Finalize(1)
		essMask = sys.EssMask()
		return A, sys.Diag, nil
	}}

	// initial field: polarized gaussian, zero rate, walls grounded
	E := make([]float64, sp.Ny)
	F := make([]float64, sp.Ny)
	for i, vert := range m.Verts {
		var r2 float64
		for d := 0; d < nd; d++ {
			dx := vert.C[d] - center[d]
			r2 += dx * dx
		}
		env := amp * math.Exp(-r2/(2*width*width))
		for d := 0; d < nd; d++ {
			E[sp.Eq(i, d)] = env * pol[d]
		}
	}
	for _, eq := range eqs {
		E[eq] = 0
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	rhs := la.NewVector(sp.Ny)
	tmp := la.NewVector(sp.Ny)
	pcg := fea.NewPCG()
	iterations := 0
	resnorm := 0.0

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "electric_field", E)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		A, diag, e := op.Get(dtcur)
		if e != nil {
			return e
		}
		// rhs = eps*M*F - dt*(1/mu)*K*E, zero on eliminated rows
		rhs.Fill(0)
		la.SpMatVecMulAdd(rhs, 1, M, F)
		la.SpMatVecMulAdd(rhs, -dtcur, K, E)
		for i := range rhs {
			if essMask[i] {
				rhs[i] = 0
			}
		}
		if e = pcg.Solve(A, diag, rhs, F); e != nil {
			return e
		}
		iterations += pcg.It
		if resnorm, e = fea.ResidualNorm(A, F, rhs, essMask); e != nil {
			return e
		}
		for i := range E {
			E[i] += dtcur * F[i]
		}
		for _, eq := range eqs {
			E[eq] = 0
			F[eq] = 0
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// electromagnetic energy: kinetic part of the rate plus field energy
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, M, F)
	energy := fea.Energy(F, tmp)
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, K, E)
	energy += fea.Energy(E, tmp)
	if err = fea.CheckFinite("TransientMaxwell energy", energy); err != nil {
		return
	}
	logf(ctx, "transient maxwell: %d steps, %d iterations, energy %g\n", nsteps, iterations, energy)
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: nd}, nil
}
