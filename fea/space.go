// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fea implements the finite element surface used by all solvers:
// P1 spaces, assembly with essential elimination, iterative and eigen solves,
// and post-solve diagnostics
package fea

import (
	"github.com/SeattleUser0/AutoSage/msh"
)

// Space is a piecewise-linear nodal space over the mesh with Ndof unknowns
// per vertex (1 for scalar fields, mesh dimension for vector fields)
type Space struct {
	M    *msh.Mesh
	Ndof int // dofs per vertex
	Ny   int // total number of equations
}

// NewSpace allocates a space
func NewSpace(m *msh.Mesh, ndof int) *Space {
	return &Space{M: m, Ndof: ndof, Ny: len(m.Verts) * ndof}
}

// Eq returns the equation number of dof d at vertex v
func (o *Space) Eq(v, d int) int {
	return v*o.Ndof + d
}

// NnzMax estimates the sparse-assembly capacity for a full operator pass.
// Sized for two stacked operators (e.g. M + dt*K) plus eliminated diagonals.
func (o *Space) NnzMax() int {
	nnz := 0
	for _, c := range o.M.Cells {
		nv := len(c.Verts)
		nnz += (nv * o.Ndof) * (nv * o.Ndof)
	}
	return 2*nnz + 2*o.Ny
}

// Essential collects the eliminated equations and their prescribed values
// from the marked boundary attributes. vals holds one value per attribute
// applied to every dof at marked vertices; nil means zero. Later faces
// overwrite earlier ones on shared vertices.
func (o *Space) Essential(marker []int, vals []float64) (eqs []int, vv []float64) {
	seen := make(map[int]int) // eq => index into eqs
	for _, f := range o.M.BFaces {
		if marker[f.Tag-1] == 0 {
			continue
		}
		val := 0.0
		if vals != nil {
			val = vals[f.Tag-1]
		}
		for _, v := range f.Verts {
			for d := 0; d < o.Ndof; d++ {
				eq := o.Eq(v, d)
				if k, ok := seen[eq]; ok {
					vv[k] = val
					continue
				}
				seen[eq] = len(eqs)
				eqs = append(eqs, eq)
				vv = append(vv, val)
			}
		}
	}
	return
}

// EssentialVec is like Essential with one value vector per attribute, one
// component per dof. Vectors shorter than Ndof imply zero for the missing
// components.
func (o *Space) EssentialVec(marker []int, vecs [][]float64) (eqs []int, vv []float64) {
	seen := make(map[int]int)
	for _, f := range o.M.BFaces {
		if marker[f.Tag-1] == 0 {
			continue
		}
		var vec []float64
		if vecs != nil {
			vec = vecs[f.Tag-1]
		}
		for _, v := range f.Verts {
			for d := 0; d < o.Ndof; d++ {
				val := 0.0
				if d < len(vec) {
					val = vec[d]
				}
				eq := o.Eq(v, d)
				if k, ok := seen[eq]; ok {
					vv[k] = val
					continue
				}
				seen[eq] = len(eqs)
				eqs = append(eqs, eq)
				vv = append(vv, val)
			}
		}
	}
	return
}
