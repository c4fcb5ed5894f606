// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// fallback eigensolver parameters
const (
	fallbackSeed     = 75
	fallbackRestarts = 5
	fallbackMaxIt    = 250
	fallbackRelTol   = 1e-8
)

// EigResult holds eigenpairs of K*x = lambda*M*x in ascending order
type EigResult struct {
	Lambdas []float64
	Modes   [][]float64
}

// EigenSolve is the primary generalized eigensolver: blocked inverse
// subspace iteration on (K, M). kdiag is K's diagonal for the inner
// preconditioned solves. Fails with an error whenever it cannot produce
// nmodes finite eigenvalues; the caller then runs FallbackEigen.
func EigenSolve(K, M *la.CCMatrix, kdiag []float64, nmodes int) (*EigResult, error) {

	n := len(kdiag)
	if nmodes > n {
		return nil, chk.Err("cannot compute %d modes on a system of size %d", nmodes, n)
	}

	// random initial block
	rng := rand.New(rand.NewSource(4321))
	X := make([][]float64, nmodes)
	for j := range X {
		X[j] = make([]float64, n)
		for i := range X[j] {
			X[j][i] = rng.Float64() - 0.5
		}
	}
	if err := mOrthonormalize(M, X); err != nil {
		return nil, err
	}

	// iterate
	pcg := NewPCG()
	pcg.Tol = 1e-10
	pcg.MaxIt = 1000
	lams := make([]float64, nmodes)
	prev := make([]float64, nmodes)
	for it := 0; it < 100; it++ {
		for j := range X {
			rhs := matVec(M, X[j])
			y := make([]float64, n)
			if err := pcg.Solve(K, kdiag, rhs, y); err != nil {
				return nil, chk.Err("subspace iteration inner solve failed:\n%v", err)
			}
			X[j] = y
		}
		if err := mOrthonormalize(M, X); err != nil {
			return nil, err
		}
		maxrel := 0.0
		for j := range X {
			lams[j] = rayleigh(K, M, X[j])
			if math.IsNaN(lams[j]) || math.IsInf(lams[j], 0) {
				return nil, chk.Err("subspace iteration produced a non-finite eigenvalue")
			}
			rel := math.Abs(lams[j]-prev[j]) / math.Max(1, math.Abs(lams[j]))
			if rel > maxrel {
				maxrel = rel
			}
			prev[j] = lams[j]
		}
		if it > 0 && maxrel < 1e-9 {
			break
		}
	}

	// sort ascending
	idx := make([]int, nmodes)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return lams[idx[a]] < lams[idx[b]] })
	res := &EigResult{Lambdas: make([]float64, nmodes), Modes: make([][]float64, nmodes)}
	for k, j := range idx {
		res.Lambdas[k] = lams[j]
		res.Modes[k] = X[j]
	}
	return res, nil
}

// FallbackEigen is the recovery path: per-mode inverse iteration with
// explicit Gram-Schmidt deflation in the mass inner product, deterministic
// seeded random restarts when M-normalization fails, and Rayleigh-quotient
// convergence. Deliberately less accurate than the primary path; modes are
// accepted in discovery order.
func FallbackEigen(K, M *la.CCMatrix, kdiag []float64, nmodes int) (*EigResult, error) {

	n := len(kdiag)
	rng := rand.New(rand.NewSource(fallbackSeed))
	pcg := NewPCG()
	pcg.Tol = 1e-10
	pcg.MaxIt = 1000
	res := &EigResult{}

	for mode := 0; mode < nmodes; mode++ {

		// seeded random start, re-seeded when the M-norm is non-positive
		v := make([]float64, n)
		ok := false
		for attempt := 0; attempt < fallbackRestarts; attempt++ {
			for i := range v {
				v[i] = rng.Float64() - 0.5
			}
			mGramSchmidt(M, v, res.Modes)
			if mNormalize(M, v) {
				ok = true
				break
			}
		}
		if !ok {
			return nil, chk.Err("fallback eigensolver could not initialize mode %d", mode)
		}

		// inverse iteration
		lam := 0.0
		for it := 0; it < fallbackMaxIt; it++ {
			rhs := matVec(M, v)
			w := make([]float64, n)
			if err := pcg.Solve(K, kdiag, rhs, w); err != nil {
				return nil, chk.Err("fallback eigensolver inner solve failed:\n%v", err)
			}
			mGramSchmidt(M, w, res.Modes)
			if !mNormalize(M, w) {
				// deflated to nothing: restart this mode from a fresh vector
				for i := range w {
					w[i] = rng.Float64() - 0.5
				}
				mGramSchmidt(M, w, res.Modes)
				if !mNormalize(M, w) {
					return nil, chk.Err("fallback eigensolver lost mode %d during deflation", mode)
				}
			}
			copy(v, w)
			lamNew := rayleigh(K, M, v)
			if math.IsNaN(lamNew) || math.IsInf(lamNew, 0) {
				return nil, chk.Err("fallback eigensolver produced an invalid Rayleigh quotient")
			}
			if it > 0 && math.Abs(lamNew-lam) <= fallbackRelTol*math.Max(1, math.Abs(lamNew)) {
				lam = lamNew
				break
			}
			lam = lamNew
		}
		res.Lambdas = append(res.Lambdas, lam)
		res.Modes = append(res.Modes, append([]float64(nil), v...))
	}
	return res, nil
}

// ModeResidual returns the eigenpair defect |K.x - lambda*M.x|
func ModeResidual(K, M *la.CCMatrix, lambda float64, x []float64) float64 {
	r := matVec(K, x)
	mx := matVec(M, x)
	for i := range r {
		r[i] -= lambda * mx[i]
	}
	return la.Vector(r).Norm()
}

// auxiliary //////////////////////////////////////////////////////////////////

// rayleigh returns (x.K.x)/(x.M.x)
func rayleigh(K, M *la.CCMatrix, x []float64) float64 {
	return dot(x, matVec(K, x)) / dot(x, matVec(M, x))
}

// mGramSchmidt removes the M-projection of v onto each basis vector
func mGramSchmidt(M *la.CCMatrix, v []float64, basis [][]float64) {
	for _, u := range basis {
		c := dot(u, matVec(M, v))
		for i := range v {
			v[i] -= c * u[i]
		}
	}
}

// mNormalize scales v to unit M-norm, reporting failure on a non-positive norm
func mNormalize(M *la.CCMatrix, v []float64) bool {
	nrm2 := dot(v, matVec(M, v))
	if !(nrm2 > 0) || math.IsNaN(nrm2) {
		return false
	}
	nrm := math.Sqrt(nrm2)
	for i := range v {
		v[i] /= nrm
	}
	return true
}

// mOrthonormalize applies modified Gram-Schmidt in the M inner product to
// the whole block
func mOrthonormalize(M *la.CCMatrix, X [][]float64) error {
	for j := range X {
		mGramSchmidt(M, X[j], X[:j])
		if !mNormalize(M, X[j]) {
			return chk.Err("subspace block became linearly dependent")
		}
	}
	return nil
}
