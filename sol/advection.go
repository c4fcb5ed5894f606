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

// Advection transports a step-function profile with a constant velocity
// field using explicit Euler steps over the lumped mass, with inflow values
// pinned after every step
type Advection struct{}

func init() {
	register("Advection", func() Solver { return &Advection{} }, "linearadvection")
}

func (o *Advection) Name() string { return "Advection" }

func (o *Advection) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	rawVel, ok := cfg["velocity_field"].([]interface{})
	if !ok {
		err = chk.Err("config.velocity_field is required and must be an array")
		return
	}
	if len(rawVel) == 0 {
		err = chk.Err("config.velocity_field must not be empty")
		return
	}
	vel := make([]float64, len(rawVel))
	for i, e := range rawVel {
		v, ok := asNum(e)
		if !ok {
			err = chk.Err("config.velocity_field entries must be numeric")
			return
		}
		vel[i] = v
	}
	vel = inp.ResizeVec(vel, nd)
	if _, err = cfg.OptIntMin("config", "order", 0, 1); err != nil {
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

	// step_function initial condition
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
	if inp.Canon(typ) != "stepfunction" {
		err = chk.Err("config.initial_condition.type must be step_function")
		return
	}
	rawCenter, ok := ic["center"].([]interface{})
	if !ok {
		err = chk.Err("config.initial_condition.center is required and must be an array")
		return
	}
	if len(rawCenter) == 0 {
		err = chk.Err("config.initial_condition.center must not be empty")
		return
	}
	center := make([]float64, len(rawCenter))
	for i, e := range rawCenter {
		v, ok := asNum(e)
		if !ok {
			err = chk.Err("config.initial_condition.center entries must be numeric")
			return
		}
		center[i] = v
	}
	center = inp.ResizeVec(center, nd)
	radius, err := ic.ReqNum("config.initial_condition", "radius")
	if err != nil {
		return
	}
	if radius <= 0 {
		err = chk.Err("config.initial_condition.radius must be > 0")
		return
	}
	value, err := ic.ReqNum("config.initial_condition", "value")
	if err != nil {
		return
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		if b.Kind != "inflow" {
			err = inp.UnknownBcKind(b, "inflow")
			return
		}
		val, e := b.Raw.ReqNum(b.Path, "value")
		if e != nil {
			err = e
			return
		}
		bv.SetEss("inflow", b.Attr, val)
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("inflow"), bv.Values("inflow"))

	// transport operator and lumped mass
	sysC := fea.NewSystem(sp, nil, nil)
	if err = fea.AddAdvection(sysC, vel, 1); err != nil {
		return
	}
	C := sysC.Finalize(1)
	sysM := fea.NewSystem(sp, nil, nil)
	if err = fea.AddMass(sysM, fea.Const(1), 1); err != nil {
		return
	}
	M := sysM.Finalize(1)
	ones := la.NewVector(sp.Ny)
	ones.Fill(1)
	lump := make([]float64, sp.Ny)
	la.SpMatVecMulAdd(lump, 1, M, ones)
	for i, l := range lump {
		if !(l > 0) {
			err = chk.Err("Advection lumped mass entry %d is not positive", i)
			return
		}
	}

	// step profile with inflow values applied
	u := make([]float64, sp.Ny)
	for i, vert := range m.Verts {
		var r2 float64
		for d := 0; d < nd; d++ {
			dx := vert.C[d] - center[d]
			r2 += dx * dx
		}
		if math.Sqrt(r2) <= radius {
			u[i] = value
		}
	}
	for k, eq := range eqs {
		u[eq] = vv[k]
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	flux := la.NewVector(sp.Ny)
	tmp := la.NewVector(sp.Ny)

	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "concentration", u)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		flux.Fill(0)
		la.SpMatVecMulAdd(flux, 1, C, u)
		for i := range u {
			u[i] -= dtcur * flux[i] / lump[i]
		}
		for k, eq := range eqs {
			u[eq] = vv[k]
		}
		return fea.CheckFinite("Advection field", u...)
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// transported mass in the L2 sense
	tmp.Fill(0)
	la.SpMatVecMulAdd(tmp, 1, M, u)
	energy := fea.Energy(u, tmp)
	if err = fea.CheckFinite("Advection energy", energy); err != nil {
		return
	}
	logf(ctx, "advection: %d steps, energy %g\n", nsteps, energy)
	return Summary{Energy: energy, Iterations: nsteps, ErrorNorm: 0, Dimension: nd}, nil
}
