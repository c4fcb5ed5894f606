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
)

// Elastic solves static linear elasticity with per-attribute materials,
// optional body forces, and fixed/load boundaries
type Elastic struct{}

func init() {
	register("LinearElasticity", func() Solver { return &Elastic{} })
}

func (o *Elastic) Name() string { return "LinearElasticity" }

// lameFromMaterial converts (E, nu) to the Lame parameters
func lameFromMaterial(E, nu float64) (lam, mu float64, err error) {
	if E <= 0 {
		return 0, 0, chk.Err("materials[].E must be > 0")
	}
	if nu <= -1 || nu >= 0.5 {
		return 0, 0, chk.Err("materials[].nu must be in (-1, 0.5)")
	}
	lam = E * nu / ((1 + nu) * (1 - 2*nu))
	mu = E / (2 * (1 + nu))
	return
}

func (o *Elastic) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	// materials: the first entry is the default, then per-attribute overrides
	mats, ok := cfg["materials"].([]interface{})
	if !ok || len(mats) == 0 {
		err = chk.Err("config.materials must be a non-empty array")
		return
	}
	nslots := m.NdomAttrs
	if nslots < 1 {
		nslots = 1
	}
	lamByAttr := make([]float64, nslots)
	muByAttr := make([]float64, nslots)
	first, ok := mats[0].(map[string]interface{})
	if !ok {
		err = chk.Err("config.materials entries must be objects")
		return
	}
	defE, _ := asNum(first["E"])
	defNu, _ := asNum(first["nu"])
	defLam, defMu, err := lameFromMaterial(defE, defNu)
	if err != nil {
		return
	}
	for i := range lamByAttr {
		lamByAttr[i], muByAttr[i] = defLam, defMu
	}
	for _, e := range mats {
		mat, ok := e.(map[string]interface{})
		if !ok {
			err = chk.Err("config.materials entries must be objects")
			return
		}
		attr, ok := asInt(mat["attribute"])
		if !ok {
			err = chk.Err("config.materials[].attribute is required and must be an integer")
			return
		}
		if attr <= 0 {
			err = chk.Err("config.materials[].attribute must be > 0")
			return
		}
		if m.NdomAttrs > 0 && attr > m.NdomAttrs {
			err = chk.Err("config.materials[].attribute exceeds mesh domain attribute count")
			return
		}
		matE, _ := asNum(mat["E"])
		matNu, _ := asNum(mat["nu"])
		if lamByAttr[attr-1], muByAttr[attr-1], err = lameFromMaterial(matE, matNu); err != nil {
			return
		}
	}

	// body force: density*gravity, density*acceleration, or an explicit
	// vector; later fields override earlier ones
	bodyForce := make([]float64, nd)
	if cfg.Has("gravity") {
		density, e := cfg.OptNum("config", "density", 1)
		if e != nil {
			err = e
			return
		}
		g, e := cfg.VecMin("config", "gravity", nd, true)
		if e != nil {
			err = e
			return
		}
		for i := 0; i < nd; i++ {
			bodyForce[i] = density * g[i]
		}
	}
	if cfg.Has("acceleration") {
		density, e := cfg.OptNum("config", "density", 1)
		if e != nil {
			err = e
			return
		}
		a, e := cfg.VecMin("config", "acceleration", nd, true)
		if e != nil {
			err = e
			return
		}
		for i := 0; i < nd; i++ {
			bodyForce[i] = density * a[i]
		}
	}
	if cfg.Has("body_force") {
		if bodyForce, err = cfg.VecMin("config", "body_force", nd, true); err != nil {
			return
		}
	}

	// boundary conditions: fixed eliminates, load accumulates tractions
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
		case "load":
			vec, e := b.Raw.VecMin(b.Path, "value", nd, true)
			if e != nil {
				err = e
				return
			}
			bv.Mark("load", b.Attr)
			if tracVecs[b.Attr-1] == nil {
				tracVecs[b.Attr-1] = make([]float64, nd)
			}
			for i := 0; i < nd; i++ {
				tracVecs[b.Attr-1][i] += vec[i]
			}
		default:
			err = inp.UnknownBcKind(b, "fixed", "load")
			return
		}
	}

	// assemble
	sp := fea.NewSpace(m, nd)
	eqs, vv := sp.Essential(bv.Markers("fixed"), nil)
	sys := fea.NewSystem(sp, eqs, vv)
	lam := func(attr int) float64 { return lamByAttr[attr-1] }
	mu := func(attr int) float64 { return muByAttr[attr-1] }
	if err = fea.AddElasticity(sys, lam, mu, 1); err != nil {
		return
	}
	hasBody := false
	for _, v := range bodyForce {
		if math.Abs(v) > 0 {
			hasBody = true
		}
	}
	if hasBody {
		if err = fea.AddVecSource(sys, bodyForce, 1); err != nil {
			return
		}
	}
	fea.AddVecBoundaryLoad(sys, bv.Markers("load"), tracVecs, 1)

	// solve
	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("LinearElasticity energy", energy); err != nil {
		return
	}
	logf(ctx, "linear elasticity: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "displacement", x, ""); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: nd}, nil
}
