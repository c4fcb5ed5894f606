// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msh implements the mesh read by all solvers: vertices, cells with
// domain tags, and boundary faces with boundary tags
package msh

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/cpmech/gosl/chk"
)

// Vert holds one mesh vertex
type Vert struct {
	Id int       `json:"i"` // id
	C  []float64 `json:"c"` // coordinates
}

// Cell holds one mesh cell. FTags, when present, holds one boundary tag per
// face (edge in 2D, endpoint in 1D); zero marks an interior face.
type Cell struct {
	Id    int    `json:"i"`  // id
	Tag   int    `json:"t"`  // domain attribute (1-based)
	Type  string `json:"y"`  // lin2, tri3, qua4, tet4
	Verts []int  `json:"v"`  // connectivity
	FTags []int  `json:"ft"` // face boundary tags
}

// BFace is one boundary face, derived from a positive face tag
type BFace struct {
	Tag   int   // boundary attribute (1-based)
	Verts []int // global vertex ids
	Cell  *Cell // owner cell
}

// Mesh holds the full mesh plus derived quantities. Derived fields are set
// once by ReadBytes and never mutated afterwards.
type Mesh struct {

	// input
	Verts []*Vert `json:"verts"`
	Cells []*Cell `json:"cells"`

	// derived
	Ndim       int      `json:"-"` // space dimension (1-3)
	NdomAttrs  int      `json:"-"` // domain attribute count (max cell tag)
	NbdryAttrs int      `json:"-"` // boundary attribute count (max face tag)
	BFaces     []*BFace `json:"-"` // tagged boundary faces
}

// nverts and face-local vertex tables per cell type
var cellNverts = map[string]int{"lin2": 2, "tri3": 3, "qua4": 4, "tet4": 4}

var faceLocalVerts = map[string][][]int{
	"lin2": {{0}, {1}},
	"tri3": {{0, 1}, {1, 2}, {2, 0}},
	"qua4": {{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	"tet4": {{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}},
}

// ReadBytes decodes and checks a JSON mesh payload
func ReadBytes(b []byte) (*Mesh, error) {

	// decode
	var o Mesh
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, chk.Err("cannot unmarshal mesh:\n%v", err)
	}

	// vertices
	if len(o.Verts) < 1 {
		return nil, chk.Err("mesh has no vertices")
	}
	o.Ndim = len(o.Verts[0].C)
	if o.Ndim < 1 || o.Ndim > 3 {
		return nil, chk.Err("mesh dimension must be 1, 2 or 3")
	}
	for _, v := range o.Verts {
		if len(v.C) != o.Ndim {
			return nil, chk.Err("vertex %d has %d coordinates; mesh dimension is %d", v.Id, len(v.C), o.Ndim)
		}
	}

	// cells
	if len(o.Cells) < 1 {
		return nil, chk.Err("mesh has no cells")
	}
	for _, c := range o.Cells {
		nv, ok := cellNverts[c.Type]
		if !ok {
			return nil, chk.Err("cell %d has unsupported type %q", c.Id, c.Type)
		}
		if len(c.Verts) != nv {
			return nil, chk.Err("cell %d (%s) must have %d vertices", c.Id, c.Type, nv)
		}
		for _, v := range c.Verts {
			if v < 0 || v >= len(o.Verts) {
				return nil, chk.Err("cell %d references vertex %d out of range", c.Id, v)
			}
		}
		if c.Tag < 1 {
			return nil, chk.Err("cell %d tag must be >= 1", c.Id)
		}
		if c.Tag > o.NdomAttrs {
			o.NdomAttrs = c.Tag
		}
		nfaces := len(faceLocalVerts[c.Type])
		if len(c.FTags) > 0 && len(c.FTags) != nfaces {
			return nil, chk.Err("cell %d (%s) must have %d face tags", c.Id, c.Type, nfaces)
		}
	}

	// boundary faces
	for _, c := range o.Cells {
		for f, tag := range c.FTags {
			if tag < 1 {
				continue
			}
			if tag > o.NbdryAttrs {
				o.NbdryAttrs = tag
			}
			loc := faceLocalVerts[c.Type][f]
			verts := make([]int, len(loc))
			for k, l := range loc {
				verts[k] = c.Verts[l]
			}
			o.BFaces = append(o.BFaces, &BFace{Tag: tag, Verts: verts, Cell: c})
		}
	}
	return &o, nil
}

// Read reads a mesh file
func Read(fnamepath string) (*Mesh, error) {
	b, err := os.ReadFile(fnamepath)
	if err != nil {
		return nil, chk.Err("cannot read mesh file %q", fnamepath)
	}
	return ReadBytes(b)
}

// Resolve turns a MeshSpec into a concrete mesh. Relative file paths are
// taken from dir; inline payloads may be plain or base64.
func Resolve(spec *inp.MeshSpec, dir string) (*Mesh, error) {
	switch inp.Canon(spec.Type) {
	case "file":
		p := spec.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		return Read(p)
	case "inline":
		data := []byte(spec.Data)
		if inp.Canon(spec.Encoding) == "base64" {
			dec, err := base64.StdEncoding.DecodeString(spec.Data)
			if err != nil {
				return nil, chk.Err("cannot decode base64 mesh data:\n%v", err)
			}
			data = dec
		}
		return ReadBytes(data)
	}
	return nil, chk.Err("mesh.type must be inline or file")
}
