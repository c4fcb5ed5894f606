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
)

// AnisoDiffusion solves diffusion with a full 3x3 tensor coefficient.
// Symmetry or positive-definiteness of the tensor is not checked.
type AnisoDiffusion struct{}

func init() {
	register("AnisotropicDiffusion", func() Solver { return &AnisoDiffusion{} })
}

func (o *AnisoDiffusion) Name() string { return "AnisotropicDiffusion" }

func (o *AnisoDiffusion) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	// the tensor is always 9 entries, row-major, regardless of dimension
	raw, ok := cfg["diffusion_tensor"].([]interface{})
	if !ok {
		err = chk.Err("config.diffusion_tensor is required and must be an array")
		return
	}
	tensor := make([]float64, len(raw))
	for i, e := range raw {
		v, ok := asNum(e)
		if !ok {
			err = chk.Err("config.diffusion_tensor entries must be numeric")
			return
		}
		tensor[i] = v
	}
	if len(tensor) != 9 {
		err = chk.Err("config.diffusion_tensor must contain exactly 9 numeric values")
		return
	}
	source := 0.0
	if cfg.Has("source_term") {
		v, ok := asNum(cfg["source_term"])
		if !ok {
			err = chk.Err("config.source_term must be numeric when provided")
			return
		}
		source = v
	}

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
		case "fixed":
			bv.SetEss("fixed", b.Attr, val)
		case "flux":
			bv.AddNat("flux", b.Attr, val)
		default:
			err = inp.UnknownBcKind(b, "fixed", "flux")
			return
		}
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed"), bv.Values("fixed"))
	sys := fea.NewSystem(sp, eqs, vv)
	if err = fea.AddDiffusionTensor(sys, tensor, 1); err != nil {
		return
	}
	if err = fea.AddSource(sys, fea.Const(source), 0, 1); err != nil {
		return
	}
	fea.AddBoundaryFlux(sys, bv.Markers("flux"), bv.Values("flux"), 0, 1)

	x, it, resnorm, err := solveStatic(sys, 0, 0)
	if err != nil {
		return
	}
	energy := fea.Energy(x, sys.B)
	if err = fea.CheckFinite("AnisotropicDiffusion energy", energy); err != nil {
		return
	}
	logf(ctx, "anisotropic diffusion: %d iterations, residual %g\n", it, resnorm)

	if err = writeField(ctx, "solution", x, ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":   o.Name(),
		"solver_backend": "pcg_jacobi",
		"iterations":     it,
		"residual_norm":  resnorm,
		"dimension":      m.Ndim,
	}
	if err = out.WriteMeta(ctx.WorkDir, "anisotropic_diffusion.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: it, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
