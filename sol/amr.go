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

// AMRLaplace runs the adaptive solve loop: solve, estimate the error, stop
// on the configured tolerance, dof budget, pass budget, or when the
// estimator stalls
type AMRLaplace struct{}

func init() {
	register("AMRLaplace", func() Solver { return &AMRLaplace{} })
}

func (o *AMRLaplace) Name() string { return "AMRLaplace" }

func (o *AMRLaplace) Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (s Summary, err error) {

	coef, err := cfg.ReqNum("config", "coefficient")
	if err != nil {
		return
	}
	if coef <= 0 {
		err = chk.Err("config.coefficient must be > 0")
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
	settings, ok := cfg["amr_settings"].(map[string]interface{})
	if !ok {
		err = chk.Err("config.amr_settings is required and must be an object")
		return
	}
	opts := inp.Cfg(settings)
	maxIter, ok := asInt(opts["max_iterations"])
	if !ok {
		err = chk.Err("config.amr_settings.max_iterations is required and must be an integer")
		return
	}
	if maxIter <= 0 {
		err = chk.Err("config.amr_settings.max_iterations must be > 0")
		return
	}
	maxDofs, ok := asInt(opts["max_dofs"])
	if !ok {
		err = chk.Err("config.amr_settings.max_dofs is required and must be an integer")
		return
	}
	if maxDofs <= 0 {
		err = chk.Err("config.amr_settings.max_dofs must be > 0")
		return
	}
	errTol, ok := asNum(opts["error_tolerance"])
	if !ok {
		err = chk.Err("config.amr_settings.error_tolerance is required and must be numeric")
		return
	}
	if errTol <= 0 {
		err = chk.Err("config.amr_settings.error_tolerance must be > 0")
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
		val, e := b.Raw.ReqNum(b.Path, "value")
		if e != nil {
			err = e
			return
		}
		bv.SetEss("fixed", b.Attr, val)
	}
	if !bv.HasAny("fixed") {
		err = chk.Err("config.bcs must include at least one fixed boundary condition")
		return
	}

	sp := fea.NewSpace(m, 1)
	eqs, vv := sp.Essential(bv.Markers("fixed"), bv.Values("fixed"))

	// refine loop; the estimator is the masked residual norm of each pass
	var x []float64
	var sysB []float64
	iterations := 0
	lastIt := 0
	resnorm := 0.0
	totalErr := 0.0
	prevErr := 0.0
	passes := 0
	stopReason := "max_iterations"
	for passes < maxIter {
		if sp.Ny > maxDofs {
			stopReason = "max_dofs"
			break
		}
		sys := fea.NewSystem(sp, eqs, vv)
		if err = fea.AddDiffusion(sys, fea.Const(coef), 1); err != nil {
			return
		}
		if err = fea.AddSource(sys, fea.Const(source), 0, 1); err != nil {
			return
		}
		if x, lastIt, resnorm, err = solveStatic(sys, 0, 0); err != nil {
			return
		}
		sysB = sys.B
		iterations += lastIt
		passes++
		totalErr = resnorm
		if err = fea.CheckFinite("AMRLaplace estimator error", totalErr); err != nil {
			return
		}
		if totalErr <= errTol {
			stopReason = "error_tolerance"
			break
		}
		// no further refinement available once the estimator stalls
		if passes > 1 && totalErr >= prevErr {
			stopReason = "refiner_stop"
			break
		}
		prevErr = totalErr
	}
	if x == nil {
		err = chk.Err("AMRLaplace produced no solve passes")
		return
	}
	energy := fea.Energy(x, sysB)
	if err = fea.CheckFinite("AMRLaplace energy", energy); err != nil {
		return
	}
	logf(ctx, "amr laplace: %d passes, stop=%s, error %g\n", passes, stopReason, totalErr)

	if err = writeField(ctx, "solution", x, ""); err != nil {
		return
	}
	meta := map[string]interface{}{
		"solver_class":             o.Name(),
		"solver_backend":           "pcg_jacobi",
		"amr_iterations_completed": passes,
		"stop_reason":              stopReason,
		"final_total_error":        totalErr,
		"final_linear_iterations":  lastIt,
		"final_residual_norm":      resnorm,
		"dimension":                m.Ndim,
	}
	if err = out.WriteMeta(ctx.WorkDir, "amr_laplace.json", meta); err != nil {
		return
	}
	return Summary{Energy: energy, Iterations: iterations, ErrorNorm: resnorm, Dimension: m.Ndim}, nil
}
