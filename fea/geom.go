// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"math"

	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
)

// elemGeom holds the constant-gradient data of one simplex sub-element:
// its measure and the gradients of the nodal shape functions. qua4 cells are
// split into two tri3 sub-elements.
type elemGeom struct {
	verts []int       // global vertex ids
	vol   float64     // measure (length, area or volume)
	g     [][]float64 // g[a] = gradient of shape function a (len = mesh Ndim)
}

// geoms returns the simplex sub-elements of a cell
func geoms(m *msh.Mesh, c *msh.Cell) ([]elemGeom, error) {
	switch c.Type {
	case "lin2":
		e, err := linGeom(m, c.Verts)
		if err != nil {
			return nil, err
		}
		return []elemGeom{e}, nil
	case "tri3":
		e, err := triGeom(m, c.Verts)
		if err != nil {
			return nil, err
		}
		return []elemGeom{e}, nil
	case "qua4":
		a, err := triGeom(m, []int{c.Verts[0], c.Verts[1], c.Verts[2]})
		if err != nil {
			return nil, err
		}
		b, err := triGeom(m, []int{c.Verts[0], c.Verts[2], c.Verts[3]})
		if err != nil {
			return nil, err
		}
		return []elemGeom{a, b}, nil
	case "tet4":
		e, err := tetGeom(m, c.Verts)
		if err != nil {
			return nil, err
		}
		return []elemGeom{e}, nil
	}
	return nil, chk.Err("cell %d has unsupported type %q", c.Id, c.Type)
}

func linGeom(m *msh.Mesh, v []int) (elemGeom, error) {
	a, b := m.Verts[v[0]].C, m.Verts[v[1]].C
	var l2 float64
	d := make([]float64, len(a))
	for i := range a {
		d[i] = b[i] - a[i]
		l2 += d[i] * d[i]
	}
	l := math.Sqrt(l2)
	if !(l > 0) {
		return elemGeom{}, chk.Err("degenerate lin2 element with vertices %v", v)
	}
	g := make([][]float64, 2)
	g[0] = make([]float64, len(a))
	g[1] = make([]float64, len(a))
	for i := range a {
		g[1][i] = d[i] / l2
		g[0][i] = -g[1][i]
	}
	return elemGeom{verts: v, vol: l, g: g}, nil
}

// triGeom computes tri3 gradients via the first fundamental form, so the
// same code serves planar meshes and triangulated surfaces in 3D
func triGeom(m *msh.Mesh, v []int) (elemGeom, error) {
	nd := m.Ndim
	p0, p1, p2 := m.Verts[v[0]].C, m.Verts[v[1]].C, m.Verts[v[2]].C
	e1 := make([]float64, nd)
	e2 := make([]float64, nd)
	for i := 0; i < nd; i++ {
		e1[i] = p1[i] - p0[i]
		e2[i] = p2[i] - p0[i]
	}
	var ee, ef, gg float64
	for i := 0; i < nd; i++ {
		ee += e1[i] * e1[i]
		ef += e1[i] * e2[i]
		gg += e2[i] * e2[i]
	}
	det := ee*gg - ef*ef
	if !(det > 0) {
		return elemGeom{}, chk.Err("degenerate tri3 element with vertices %v", v)
	}
	area := 0.5 * math.Sqrt(det)
	g := make([][]float64, 3)
	for a := 0; a < 3; a++ {
		g[a] = make([]float64, nd)
	}
	for i := 0; i < nd; i++ {
		g[1][i] = (gg*e1[i] - ef*e2[i]) / det
		g[2][i] = (ee*e2[i] - ef*e1[i]) / det
		g[0][i] = -g[1][i] - g[2][i]
	}
	return elemGeom{verts: v, vol: area, g: g}, nil
}

func tetGeom(m *msh.Mesh, v []int) (elemGeom, error) {
	p := make([][]float64, 4)
	for a := 0; a < 4; a++ {
		p[a] = m.Verts[v[a]].C
	}
	// jacobian columns are the edge vectors from vertex 0
	var j [3][3]float64
	for i := 0; i < 3; i++ {
		for a := 0; a < 3; a++ {
			j[i][a] = p[a+1][i] - p[0][i]
		}
	}
	det := j[0][0]*(j[1][1]*j[2][2]-j[1][2]*j[2][1]) -
		j[0][1]*(j[1][0]*j[2][2]-j[1][2]*j[2][0]) +
		j[0][2]*(j[1][0]*j[2][1]-j[1][1]*j[2][0])
	if math.Abs(det) < 1e-300 {
		return elemGeom{}, chk.Err("degenerate tet4 element with vertices %v", v)
	}
	// inverse transpose rows give the reference gradients pushed forward
	var inv [3][3]float64
	inv[0][0] = (j[1][1]*j[2][2] - j[1][2]*j[2][1]) / det
	inv[0][1] = (j[0][2]*j[2][1] - j[0][1]*j[2][2]) / det
	inv[0][2] = (j[0][1]*j[1][2] - j[0][2]*j[1][1]) / det
	inv[1][0] = (j[1][2]*j[2][0] - j[1][0]*j[2][2]) / det
	inv[1][1] = (j[0][0]*j[2][2] - j[0][2]*j[2][0]) / det
	inv[1][2] = (j[0][2]*j[1][0] - j[0][0]*j[1][2]) / det
	inv[2][0] = (j[1][0]*j[2][1] - j[1][1]*j[2][0]) / det
	inv[2][1] = (j[0][1]*j[2][0] - j[0][0]*j[2][1]) / det
	inv[2][2] = (j[0][0]*j[1][1] - j[0][1]*j[1][0]) / det
	g := make([][]float64, 4)
	for a := 0; a < 4; a++ {
		g[a] = make([]float64, 3)
	}
	for a := 0; a < 3; a++ { // reference gradients of N1..N3 are unit vectors
		for i := 0; i < 3; i++ {
			g[a+1][i] = inv[a][i]
			g[0][i] -= inv[a][i]
		}
	}
	return elemGeom{verts: v, vol: math.Abs(det) / 6.0, g: g}, nil
}

// faceMeasure returns the measure of a boundary face: 1 for a point, the
// length of an edge, or the area of a triangular face
func faceMeasure(m *msh.Mesh, f *msh.BFace) float64 {
	switch len(f.Verts) {
	case 1:
		return 1.0
	case 2:
		a, b := m.Verts[f.Verts[0]].C, m.Verts[f.Verts[1]].C
		var l2 float64
		for i := range a {
			d := b[i] - a[i]
			l2 += d * d
		}
		return math.Sqrt(l2)
	case 3:
		g, err := triGeom(m, f.Verts)
		if err != nil {
			return 0
		}
		return g.vol
	}
	return 0
}
