// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"github.com/SeattleUser0/AutoSage/fea"
	"github.com/SeattleUser0/AutoSage/out"
	"github.com/cpmech/gosl/io"
)

// logf prints a progress message when verbose is on
func logf(ctx *Context, format string, prm ...interface{}) {
	if ctx.Verbose {
		io.Pf(format, prm...)
	}
}

// solveStatic finalizes the system and runs the preconditioned iterative
// solve followed by the post-solve checks: residual with eliminated dofs
// zeroed, then finiteness. tol/maxit override the solver defaults when
// positive. Returns the full-field solution.
func solveStatic(sys *fea.System, tol float64, maxit int) (x []float64, it int, resnorm float64, err error) {
	A := sys.Finalize(1)
	x = make([]float64, sys.Sp.Ny)
	sys.InitGuess(x)
	pcg := fea.NewPCG()
	if tol > 0 {
		pcg.Tol = tol
	}
	if maxit > 0 {
		pcg.MaxIt = maxit
	}
	if err = pcg.Solve(A, sys.Diag, sys.B, x); err != nil {
		return
	}
	it = pcg.It
	resnorm, err = fea.ResidualNorm(A, x, sys.B, sys.EssMask())
	return
}

// writeField writes a single-snapshot collection plus the stub
func writeField(ctx *Context, field string, vals []float64, note string) error {
	c := out.NewCollection(ctx.VtkPath, ctx.WorkDir)
	if err := c.SaveStep(0, 0, field, vals); err != nil {
		return err
	}
	return c.Close(note)
}
