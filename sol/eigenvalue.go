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

// massElimDiag is the substitution diagonal for eliminated rows of mass
// operators in generalized eigenproblems. With unity on the stiffness side,
// eliminated rows turn into eigenvalues around 1/massElimDiag, far above any
// physical mode.
const massElimDiag = 1e-300

// Eigenvalue computes the lowest Laplace eigenpairs K.x = lambda*M.x on the
// mesh, with fixed boundaries eliminated. Falls back to per-mode inverse
// iteration when the primary subspace solver fails.
type Eigenvalue struct{}

func init() {
	register("Eigenvalue", func() Solver { return &Eigenvalue{} })
}

func (o *Eigenvalue) Name() string { return "Eigenvalue" }

// eigPair runs the primary eigensolver with the fallback recovery path.
// Returns the backend tag of the path that produced the result and, when the
// fallback ran, the reason.
func eigPair(K, M *fea.SystemPair, nmodes int, force bool) (res *fea.EigResult, backend, reason string, err error) {
	backend = "subspace_iteration"
	if force {
		reason = "forced fallback via job force_fallback flag"
	} else {
		res, err = fea.EigenSolve(K.A, M.A, K.Diag, nmodes)
		if err == nil {
			return
		}
		reason = err.Error()
	}
	backend = "inverse_iteration_fallback"
	res, err = fea.FallbackEigen(K.A, M.A, K.Diag, nmodes)
	return
}

func (o *Eigenvalue) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	coef, err := cfg.ReqNum("config", "material_coefficient")
	if err != nil {
		return
	}
	if coef <= 0 {
		err = chk.Err("config.material_coefficient must be > 0")
		return
	}
	nmodes, err := cfg.IntRange("config", "num_eigenmodes", 1, 64)
	if err != nil {
		return
	}

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

	sp := fea.NewSpace(m, 1)
	eqs, _ := sp.Essential(bv.Markers("fixed"), nil)

	K, err := fea.BuildPair(sp, eqs, 1, func(sys *fea.System) error {
		return fea.AddDiffusion(sys, fea.Const(coef), 1)
	})
	if err != nil {
		return
	}
	M, err := fea.BuildPair(sp, eqs, massElimDiag, func(sys *fea.System) error {
		return fea.AddMass(sys, fea.Const(1), 1)
	})
	if err != nil {
		return
	}

	res, backend, reason, err := eigPair(K, M, nmodes, ctx.ForceFallback)
	if err != nil {
		return
	}
	if err = fea.CheckFinite("Eigenvalue spectrum", res.Lambdas...); err != nil {
		return
	}
	defect := fea.ModeResidual(K.A, M.A, res.Lambdas[0], res.Modes[0])
	logf(ctx, "eigenvalue: %d modes via %s, lambda1 %g\n", nmodes, backend, res.Lambdas[0])

	if err = writeField(ctx, "mode_1", res.Modes[0], ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":   o.Name(),
		"solver_backend": backend,
		"eigenvalues":    res.Lambdas,
	}
	if backend == "inverse_iteration_fallback" {
		meta["fallback_reason"] = reason
	}
	if err = out.WriteMeta(ctx.WorkDir, "eigenvalues.json", meta); err != nil {
		return
	}
	return Summary{Energy: res.Lambdas[0], Iterations: nmodes, ErrorNorm: defect, Dimension: m.Ndim}, nil
}
