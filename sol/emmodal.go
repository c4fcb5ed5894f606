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

// EMModal computes resonant cavity modes: (1/mu)K.x = lambda*eps*M.x on the
// vector field with perfectly conducting walls eliminated
type EMModal struct{}

func init() {
	register("ElectromagneticModal", func() Solver { return &EMModal{} }, "emmodal")
}

func (o *EMModal) Name() string { return "ElectromagneticModal" }

func (o *EMModal) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	nd := m.Ndim

	permittivity, err := cfg.ReqPosNum("config", "permittivity")
	if err != nil {
		return
	}
	permeability, err := cfg.ReqPosNum("config", "permeability")
	if err != nil {
		return
	}
	nmodes, err := cfg.IntRange("config", "num_modes", 1, 64)
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

	sp := fea.NewSpace(m, nd)
	eqs, _ := sp.Essential(bv.Markers("pec"), nil)

	K, err := fea.BuildPair(sp, eqs, 1, func(sys *fea.System) error {
		return fea.AddDiffusion(sys, fea.Const(1/permeability), 1)
	})
	if err != nil {
		return
	}
	M, err := fea.BuildPair(sp, eqs, massElimDiag, func(sys *fea.System) error {
		return fea.AddMass(sys, fea.Const(permittivity), 1)
	})
	if err != nil {
		return
	}

	res, backend, reason, err := eigPair(K, M, nmodes, ctx.ForceFallback)
	if err != nil {
		return
	}
	if err = fea.CheckFinite("ElectromagneticModal spectrum", res.Lambdas...); err != nil {
		return
	}
	freqs := make([]float64, len(res.Lambdas))
	for i, l := range res.Lambdas {
		freqs[i] = math.Sqrt(math.Max(l, 0))
	}
	defect := fea.ModeResidual(K.A, M.A, res.Lambdas[0], res.Modes[0])
	logf(ctx, "electromagnetic modal: %d modes via %s, omega1 %g rad/s\n", nmodes, backend, freqs[0])

	if err = writeField(ctx, "electric_mode_1", res.Modes[0], ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":               o.Name(),
		"solver_backend":             backend,
		"eigenvalues":                res.Lambdas,
		"resonant_frequencies_rad_s": freqs,
	}
	if backend == "inverse_iteration_fallback" {
		meta["fallback_reason"] = reason
	}
	if err = out.WriteMeta(ctx.WorkDir, "electromagnetic_modes.json", meta); err != nil {
		return
	}
	return Summary{Energy: res.Lambdas[0], Iterations: len(res.Lambdas), ErrorNorm: defect, Dimension: nd}, nil
}
