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

// Joule couples conduction of current and heat in a staggered scheme: the
// stationary electric potential is re-solved at the top of every step, its
// resistive dissipation becomes the thermal load, then the temperature is
// stepped with backward Euler
type Joule struct{}

func init() {
	register("JouleHeating", func() Solver { return &Joule{} })
}

func (o *Joule) Name() string { return "JouleHeating" }

func (o *Joule) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	sigma, err := cfg.ReqPosNum("config", "electrical_conductivity")
	if err != nil {
		return
	}
	kappa, err := cfg.ReqPosNum("config", "thermal_conductivity")
	if err != nil {
		return
	}
	capacity, err := cfg.ReqPosNum("config", "heat_capacity")
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
	outEvery, err := cfg.OptEvery("config", "output_interval_steps", 1)
	if err != nil {
		return
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		switch b.Kind {
		case "voltage":
			val, e := b.Raw.ReqNum(b.Path, "value")
			if e != nil {
				err = e
				return
			}
			bv.SetEss("potential", b.Attr, val)
		case "ground":
			bv.SetEss("potential", b.Attr, 0)
		case "fixedtemp":
			val, e := b.Raw.ReqNum(b.Path, "value")
			if e != nil {
				err = e
				return
			}
			bv.SetEss("fixed_temp", b.Attr, val)
		case "":
			err = chk.Err("%s.type is required and must be a string", b.Path)
			return
		default:
			err = inp.UnknownBcKind(b, "voltage", "ground", "fixed_temp")
			return
		}
	}
	if !bv.HasAny("potential") {
		err = chk.Err("config.bcs must include at least one voltage or ground boundary condition")
		return
	}
	if !bv.HasAny("fixed_temp") {
		err = chk.Err("config.bcs must include at least one fixed_temp boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)

	// electric operator, finalized once. The potential itself is re-solved
	// before every thermal step and its dissipation refreshes the heat load.
	veqs, vvv := sp.Essential(bv.Markers("potential"), bv.Values("potential"))
	sysV := fea.NewSystem(sp, veqs, vvv)
	if err = fea.AddDiffusion(sysV, fea.Const(sigma), 1); err != nil {
		return
	}
	AV := sysV.Finalize(1)
	V := la.NewVector(sp.Ny)
	heat := la.NewVector(sp.Ny)
	epcg := fea.NewPCG()
	electricIt := 0
	updateJoule := func() error {
		V.Fill(0)
		sysV.InitGuess(V)
		if e := epcg.Solve(AV, sysV.Diag, sysV.B, V); e != nil {
			return e
		}
		electricIt += epcg.It
		sysQ := fea.NewSystem(sp, nil, nil)
		if e := fea.AddGradSquaredSource(sysQ, V, fea.Const(sigma), 1); e != nil {
			return e
		}
		copy(heat, sysQ.B)
		return nil
	}

	teqs, tvv := sp.Essential(bv.Markers("fixed_temp"), bv.Values("fixed_temp"))

	// full heat-capacity mass for step products and energy
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(capacity), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)

	// implicit thermal operator c*M + dt*kappa*K
	var elimB []float64
	var essMask []bool
	op := &fea.CachedOp{Build: func(dtcur float64) (*la.CCMatrix, []float64, error) {
		sys := fea.NewSystem(sp, teqs, tvv)
		if e := fea.AddMass(sys, fea.Const(capacity), 1); e != nil {
			return nil, nil, e
		}
		if e := fea.AddDiffusion(sys, fea.Const(kappa), dtcur); e != nil {
			return nil, nil, e
		}
		A := sys.Finalize(1)
		elimB = append([]float64(nil), sys.B...)
		essMask = sys.EssMask()
		return A, sys.Diag, nil
	}}

	T := la.NewVector(sp.Ny)
	T.Fill(initTemp)
	for k, eq := range teqs {
		T[eq] = tvv[k]
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	mT := la.NewVector(sp.Ny)
	rhs := make([]float64, sp.Ny)
	pcg := fea.NewPCG()
	thermalIt := 0
	resnorm := 0.0

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "temperature", T)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		if e := updateJoule(); e != nil {
			return e
		}
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
				rhs[i] = elimB[i] + mT[i] + dtcur*heat[i]
			}
		}
		if e = pcg.Solve(A, diag, rhs, T); e != nil {
			return e
		}
		thermalIt += pcg.It
		if resnorm, e = fea.ResidualNorm(A, T, rhs, essMask); e != nil {
			return e
		}
		for k, eq := range teqs {
			T[eq] = tvv[k]
		}
		return nil
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	mT.Fill(0)
	la.SpMatVecMulAdd(mT, 1, M, T)
	energy := fea.Energy(T, mT)
	if err = fea.CheckFinite("JouleHeating energy", energy); err != nil {
		return
	}
	logf(ctx, "joule heating: %d steps, %d electric + %d thermal iterations\n",
		nsteps, electricIt, thermalIt)

	meta := map[string]interface{}{
		"solver_class":        o.Name(),
		"solver_backend":      "backward_euler_staggered",
		"electric_iterations": electricIt,
		"thermal_iterations":  thermalIt,
		"time_steps":          nsteps,
	}
	if err = out.WriteMeta(ctx.WorkDir, "joule_heating.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: electricIt + thermalIt, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
