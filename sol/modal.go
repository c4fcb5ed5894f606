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

// StructuralModal computes the lowest natural vibration modes of an elastic
// body: K.x = lambda*rho*M.x with the elasticity stiffness and consistent
// mass. The fallback path runs when the primary eigensolver fails or when
// the job forces it.
type StructuralModal struct{}

func init() {
	register("StructuralModal", func() Solver { return &StructuralModal{} })
}

func (o *StructuralModal) Name() string { return "StructuralModal" }

func (o *StructuralModal) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

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
	nmodes, err := cfg.IntRange("config", "num_modes", 1, 64)
	if err != nil {
		return
	}
	lam := E * nu / ((1 + nu) * (1 - 2*nu))
	mu := E / (2 * (1 + nu))

	bcs, err := cfg.Bcs("config", "bcs", "attribute", m.NbdryAttrs)
	if err != nil {
		return
	}
	bv := fea.NewBVals(m.NbdryAttrs)
	for _, b := range bcs {
		if b.Kind != "fixed" {
			err = inp.UnknownBcKind(b, "fixed")
			return
		}
		bv.Mark("fixed", b.Attr)
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition")
		return
	}

	sp := fea.NewSpace(m, nd)
	eqs, _ := sp.Essential(bv.Markers("fixed"), nil)

	K, err := fea.BuildPair(sp, eqs, 1, func(sys *fea.System) error {
		return fea.AddElasticity(sys, fea.Const(lam), fea.Const(mu), 1)
	})
	if err != nil {
		return
	}
	M, err := fea.BuildPair(sp, eqs, massElimDiag, func(sys *fea.System) error {
		return fea.AddMass(sys, fea.Const(density), 1)
	})
	if err != nil {
		return
	}

	res, backend, reason, err := eigPair(K, M, nmodes, ctx.ForceFallback)
	if err != nil {
		return
	}
	if err = fea.CheckFinite("StructuralModal spectrum", res.Lambdas...); err != nil {
		return
	}
	freqs := make([]float64, len(res.Lambdas))
	for i, l := range res.Lambdas {
		freqs[i] = math.Sqrt(math.Max(l, 0))
	}
	defect := fea.ModeResidual(K.A, M.A, res.Lambdas[0], res.Modes[0])
	logf(ctx, "structural modal: %d modes via %s, omega1 %g rad/s\n", nmodes, backend, freqs[0])

	if err = writeField(ctx, "mode_1", res.Modes[0], ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":              o.Name(),
		"solver_backend":            backend,
		"eigenvalues":               res.Lambdas,
		"natural_frequencies_rad_s": freqs,
	}
	if backend == "inverse_iteration_fallback" {
		meta["fallback_reason"] = reason
	}
	if err = out.WriteMeta(ctx.WorkDir, "structural_modes.json", meta); err != nil {
		return
	}
	return Summary{Energy: res.Lambdas[0], Iterations: len(res.Lambdas), ErrorNorm: defect, Dimension: nd}, nil
}
