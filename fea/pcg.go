// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// PCG is a Jacobi-preconditioned conjugate gradient solver over a compressed
// sparse matrix. It reports only the iteration count and final residual;
// convergence quality is judged by the caller from ErrorNorm.
type PCG struct {
	Tol     float64 // relative residual tolerance
	MaxIt   int     // iteration cap
	It      int     // iterations taken by the last solve
	ResNorm float64 // final absolute residual norm of the last solve
}

// NewPCG returns a solver with default tolerances
func NewPCG() *PCG {
	return &PCG{Tol: 1e-12, MaxIt: 2000}
}

// Solve solves A*x = b in place, with diag the matrix diagonal used as the
// Jacobi preconditioner. x carries the initial guess on entry.
func (o *PCG) Solve(A *la.CCMatrix, diag, b, x []float64) error {

	// initial residual
	n := len(b)
	r := la.NewVector(n)
	z := la.NewVector(n)
	p := la.NewVector(n)
	q := la.NewVector(n)
	copy(r, b)
	la.SpMatVecMulAdd(r, -1, A, x) // r = b - A*x
	bnorm := la.Vector(b).Norm()
	if bnorm == 0 {
		bnorm = 1
	}

	// precondition
	prec := func(dst, src []float64) {
		for i := 0; i < n; i++ {
			d := diag[i]
			if d == 0 {
				d = 1
			}
			dst[i] = src[i] / d
		}
	}
	prec(z, r)
	copy(p, z)
	rz := dot(r, z)

	// iterate
	o.It = 0
	o.ResNorm = r.Norm()
	for o.It < o.MaxIt {
		if o.ResNorm <= o.Tol*bnorm {
			return nil
		}
		q.Fill(0)
		la.SpMatVecMulAdd(q, 1, A, p)
		pq := dot(p, q)
		if !(pq > 0) || math.IsNaN(pq) {
			return chk.Err("conjugate gradient breakdown: operator is not positive definite")
		}
		alp := rz / pq
		for i := 0; i < n; i++ {
			x[i] += alp * p[i]
			r[i] -= alp * q[i]
		}
		o.It++
		o.ResNorm = r.Norm()
		if math.IsNaN(o.ResNorm) || math.IsInf(o.ResNorm, 0) {
			return chk.Err("conjugate gradient produced a non-finite residual")
		}
		prec(z, r)
		rznew := dot(r, z)
		bet := rznew / rz
		rz = rznew
		for i := 0; i < n; i++ {
			p[i] = z[i] + bet*p[i]
		}
	}
	return nil
}

// auxiliary //////////////////////////////////////////////////////////////////

func dot(u, v []float64) (res float64) {
	for i := range u {
		res += u[i] * v[i]
	}
	return
}

// matVec computes y = A*x into a fresh vector
func matVec(A *la.CCMatrix, x []float64) []float64 {
	y := make([]float64, len(x))
	la.SpMatVecMulAdd(y, 1, A, x)
	return y
}
