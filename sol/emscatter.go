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
)

// EMScattering solves the damped frequency-domain scattering problem: the
// curl-curl operator shifted by the absorbing layer, driven by an impressed
// current on selected domain attributes. The perfectly matched layer is a
// set of domain attributes carrying extra absorption.
type EMScattering struct{}

func init() {
	register("ElectromagneticScattering", func() Solver { return &EMScattering{} }, "emscattering")
}

func (o *EMScattering) Name() string { return "ElectromagneticScattering" }

// attrSet validates a list of 1-based domain attributes
func attrSet(m *msh.Mesh, path string, raw []interface{}) (map[int]bool, []int, error) {
	set := make(map[int]bool)
	list := []int{}
	for _, e := range raw {
		a, ok := asInt(e)
		if !ok {
			return nil, nil, chk.Err("%s entries must be integers", path)
		}
		if a <= 0 {
			return nil, nil, chk.Err("%s entries must be > 0", path)
		}
		if a > m.NdomAttrs {
			return nil, nil, chk.Err("%s entry exceeds mesh element attribute count", path)
		}
		if !set[a] {
			set[a] = true
			list = append(list, a)
		}
	}
	return set, list, nil
}

func (o *EMScattering) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	frequency, err := cfg.ReqPosNum("config", "frequency")
	if err != nil {
		return
	}
	permittivity, err := cfg.ReqPosNum("config", "permittivity")
	if err != nil {
		return
	}
	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	omega := 2 * math.Pi * frequency

	rawPml, ok := cfg["pml_attributes"].([]interface{})
	if !ok {
		err = chk.Err("config.pml_attributes is required and must be an array")
		return
	}
	if m.NdomAttrs == 0 && len(rawPml) > 0 {
		err = chk.Err("mesh has no element attributes but config.pml_attributes was provided")
		return
	}
	pmlSet, _, err := attrSet(m, "config.pml_attributes", rawPml)
	if err != nil {
		return
	}

	srcObj, ok := cfg["source_current"].(map[string]interface{})
	if !ok {
		err = chk.Err("config.source_current must be an object")
		return
	}
	src := inp.Cfg(srcObj)
	rawSrc, ok := src["attributes"].([]interface{})
	if !ok {
		err = chk.Err("config.source_current.attributes is required and must be an array")
		return
	}
	if len(rawSrc) == 0 {
		err = chk.Err("config.source_current.attributes must not be empty")
		return
	}
	if m.NdomAttrs == 0 {
		err = chk.Err("mesh has no element attributes but source_current.attributes was provided")
		return
	}
	srcSet, srcList, err := attrSet(m, "config.source_current.attributes", rawSrc)
	if err != nil {
		return
	}
	amplitude, err := src.OptNum("config.source_current", "amplitude", 1)
	if err != nil {
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

	// the mass shift is omega^2*eps everywhere, doubled in the absorbing layer
	shift := func(attr int) float64 {
		v := omega * omega * permittivity
		if pmlSet[attr] {
			v *= 2
		}
		return v
	}
	source := func(attr int) float64 {
		if srcSet[attr] {
			return omega * amplitude
		}
		return 0
	}

	sp := fea.NewSpace(m, nd)
	eqs, _ := sp.Essential(bv.Markers("pec"), nil)
	sys := fea.NewSystem(sp, eqs, make([]float64, len(eqs)))
	if err = fea.AddDiffusion(sys, fea.Const(1/permeability), 1); err != nil {
		return
	}
	if err = fea.AddMass(sys, shift, 1); err != nil {
		return
	}
	for d := 0; d < nd; d++ {
		if err = fea.AddSource(sys, source, d, 1); err != nil {
			return
		}
	}

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("ElectromagneticScattering energy", energy); err != nil {
		return
	}
	logf(ctx, "electromagnetic scattering: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "electric_field_real", x, ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":      o.Name(),
		"solver_backend":    "pcg_jacobi_shifted",
		"iterations":        it,
		"residual_norm":     resnorm,
		"angular_frequency": omega,
		"source_attributes": srcList,
		"dimension":         nd,
	}
	if err = out.WriteMeta(ctx.WorkDir, "electromagnetic_scattering.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: nd}, nil
}
