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

// Heat solves transient conduction with backward Euler. The implicit
// operator (rho*c*M + dt*K) is rebuilt lazily, keyed on the step size, so a
// truncated final step triggers exactly one rebuild.
type Heat struct{}

func init() {
	register("HeatTransfer", func() Solver { return &Heat{} })
}

func (o *Heat) Name() string { return "HeatTransfer" }

func (o *Heat) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	// physics and stepping parameters
	conductivity, err := cfg.ReqPosNum("config", "conductivity")
	if err != nil {
		return
	}
	specificHeat, err := cfg.ReqPosNum("config", "specific_heat")
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
	initTemp, err := cfg.OptNum("config", "initial_temperature", 0)
	if err != nil {
		return
	}
	source := 0.0
	if cfg.Has("source") {
		v, ok := asNum(cfg["source"])
		if !ok {
			err = chk.Err("config.source must be numeric when provided")
			return
		}
		source = v
	}
	outEvery, err := cfg.OptEvery("config", "output_interval_steps", 1)
	if err != nil {
		return
	}

	// boundary conditions: fixed_temp overwrites, heat_flux accumulates
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
		case "fixedtemp":
			bv.SetEss("fixed_temp", b.Attr, val)
		case "heatflux":
			bv.AddNat("heat_flux", b.Attr, val)
		default:
			err = inp.UnknownBcKind(b, "fixed_temp", "heat_flux")
			return
		}
	}

	// space and eliminated dofs
	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed_temp"), bv.Values("fixed_temp"))

	// heat-capacity mass operator, kept full for step products and energy
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(specificHeat), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)

	// constant thermal load: volumetric source plus boundary fluxes
	sysF := fea.NewSystem(sp, nil, nil)
	if err = fea.AddSource(sysF, fea.Const(source), 0, 1); err != nil {
		return
	}
	fea.AddBoundaryFlux(sysF, bv.Markers("heat_flux"), bv.Values("heat_flux"), 0, 1)
	load := sysF.B

	// lazily rebuilt implicit operator rho*c*M + dt*K
	var elimB []float64
	var essMask []bool
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, eqs, vv)
		if e := fea.AddMass(sys, fea.Const(specificHeat), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddDiffusion(sys, fea.Const(conductivity), dtcur); e != nil {
			return nil, nil, e
		}
		A := sys.Finalize(1)
		elimB = append([]float64(nil), sys.B...)
		essMask = sys.EssMask()
		return A, sys.Diag, nil
	}}

	// initial temperature with prescribed boundary values applied
	T := la.NewVector(sp.Ny)
	T.Fill(initTemp)
	for k, eq := range eqs {
		T[eq] = vv[k]
	}

	// snapshots
	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	mT := la.NewVector(sp.Ny)
	rhs := make([]float64, sp.Ny)
	iterations := 0
	resnorm := 0.0
	pcg := fea.NewPCG()

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "temperature", T)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		A, diag, e := op.Get(dtcur)
		if e != nil {
			return e
		}
		mT.Fill(0)
		la.SpMatVecMulAdd(mT, 1, M, T)
		for i := 0; i < sp.Ny; i++ {
			if essMask[i] {
				rhs[i] = elimB[i]
			} else {
				rhs[i] = elimB[i] + mT[i] + dtcur*load[i]
			}
		}
		if e = pcg.Solve(A, diag, rhs, T); e != nil {
			return e
		}
		iterations += pcg.It
		if resnorm, e = fea.ResidualNorm(A, T, rhs, essMask); e != nil {
			return e
		}
		// re-apply prescribed temperatures after the step
		for k, eq := range eqs {
			T[eq] = vv[k]
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// thermal energy 0.5 T.M.T
	mT.Fill(0)
	la.SpMatVecMulAdd(mT, 1, M, T)
	energy := fea.Energy(T, mT)
	if err = fea.CheckFinite("HeatTransfer energy", energy); err != nil {
		return
	}
	logf(ctx, "heat transfer: %d steps, %d iterations, residual %g\n", nsteps, iterations, resnorm)
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
