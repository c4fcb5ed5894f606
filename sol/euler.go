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

// Euler steps the compressible shock-tube problem on the conserved nodal
// fields (density, x-momentum, total energy) with an explicit Rusanov-type
// update: transport at the mean contact velocity plus wave-speed-scaled
// dissipation over the lumped mass. Slip walls are the natural boundary.
type Euler struct{}

func init() {
	register("CompressibleEuler", func() Solver { return &Euler{} })
}

func (o *Euler) Name() string { return "CompressibleEuler" }

// tubeState reads one [density, velocity_x, pressure] triple
func tubeState(ic inp.Cfg, key string) ([3]float64, error) {
	var st [3]float64
	raw, present := ic[key]
	if !present {
		return st, chk.Err("config.initial_condition.%s is required", key)
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return st, chk.Err("config.initial_condition.%s must be an array", key)
	}
	if len(arr) != 3 {
		return st, chk.Err("config.initial_condition.%s must contain [density, velocity_x, pressure]", key)
	}
	for i, e := range arr {
		v, ok := asNum(e)
		if !ok {
			return st, chk.Err("config.initial_condition.%s entries must be numeric", key)
		}
		st[i] = v
	}
	if st[0] <= 0 {
		return st, chk.Err("config.initial_condition.%s density must be > 0", key)
	}
	if st[2] <= 0 {
		return st, chk.Err("config.initial_condition.%s pressure must be > 0", key)
	}
	return st, nil
}

func (o *Euler) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	gamma, err := cfg.ReqNum("config", "specific_heat_ratio")
	if err != nil {
		return
	}
	if gamma <= 1 {
		err = chk.Err("config.specific_heat_ratio must be > 1")
		return
	}
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
	if inp.Canon(typ) != "shocktube" {
		err = chk.Err("config.initial_condition.type must be shock_tube")
		return
	}
	left, err := tubeState(ic, "left_state")
	if err != nil {
		return
	}
	right, err := tubeState(ic, "right_state")
	if err != nil {
		return
	}

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	for _, b := range bcs {
		if b.Kind != "slipwall" {
			err = inp.UnknownBcKind(b, "slip_wall")
			return
		}
		// slip walls are natural in this formulation
	}

	// diaphragm at the x midpoint
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, vert := range m.Verts {
		if vert.C[0] < xmin {
			xmin = vert.C[0]
		}
		if vert.C[0] > xmax {
			xmax = vert.C[0]
		}
	}
	if !(xmax > xmin) {
		err = chk.Err("failed to determine mesh x-extents for shock_tube initialization")
		return
	}
	xmid := 0.5 * (xmin + xmax)

	sp := fea.NewSpace(m, 1)

	// conserved nodal fields
	toConserved := func(st [3]float64) (rho, mom, etot float64) {
		rho = st[0]
		mom = st[0] * st[1]
		etot = st[2]/(gamma-1) + 0.5*st[0]*st[1]*st[1]
		return
	}
	rho := make([]float64, sp.Ny)
	mom := make([]float64, sp.Ny)
	etot := make([]float64, sp.Ny)
	for i, vert := range m.Verts {
		st := left
		if vert.C[0] > xmid {
			st = right
		}
		rho[i], mom[i], etot[i] = toConserved(st)
	}

	// transport at the mean contact velocity, dissipation at the fastest wave
	umean := 0.5 * (left[1] + right[1])
	smax := 0.0
	for _, st := range [][3]float64{left, right} {
		c := math.Sqrt(gamma * st[2] / st[0])
		if ws := math.Abs(st[1]) + c; ws > smax {
			smax = ws
		}
	}
	vel := make([]float64, m.Ndim)
	vel[0] = umean

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
	vol := 0.0
	for i, l := range lump {
		if !(l > 0) {
			err = chk.Err("CompressibleEuler lumped mass entry %d is not positive", i)
			return
		}
		vol += l
	}
	h := math.Pow(vol/math.Max(1, float64(len(m.Cells))), 1/float64(m.Ndim))

	sysD := fea.NewSystem(sp, nil, nil)
	if err = fea.AddDiffusion(sysD, fea.Const(smax*h), 1); err != nil {
		return
	}
	D := sysD.Finalize(1)

	flux := la.NewVector(sp.Ny)
	step := func(w []float64, dtcur float64) {
		flux.Fill(0)
		la.SpMatVecMulAdd(flux, 1, C, w)
		la.SpMatVecMulAdd(flux, 1, D, w)
		for i := range w {
			w[i] -= dtcur * flux[i] / lump[i]
		}
	}

	coll := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	loop := &TimeLoop{Tf: tf, Dt: dt, OutEvery: outEvery, Snap: func(cycle int, t float64) error {
		return coll.SaveStep(cycle, t, "density", rho)
	}}
	nsteps, err := loop.Run(func(t, dtcur float64) error {
		step(rho, dtcur)
		step(mom, dtcur)
		step(etot, dtcur)
		return fea.CheckFinite("CompressibleEuler density", rho...)
	})
	if err != nil {
		return
	}
	if err = coll.Close(""); err != nil {
		return
	}

	// integral of the conserved total energy
	energy := 0.0
	for i := range etot {
		energy += lump[i] * etot[i]
	}
	if err = fea.CheckFinite("CompressibleEuler energy", energy); err != nil {
		return
	}
	logf(ctx, "compressible euler: %d steps, total energy %g\n", nsteps, energy)
	return Summary{Energy: energy, Iterations: nsteps, ErrorNorm: 0, Dimension: m.Ndim}, nil
}
