// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"encoding/base64"
	"testing"

	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

// unit square, two triangles, boundary tags 1..4 counter-clockwise from the
// bottom edge
const squareMesh = `{
  "verts": [
    {"i": 0, "c": [0, 0]},
    {"i": 1, "c": [1, 0]},
    {"i": 2, "c": [1, 1]},
    {"i": 3, "c": [0, 1]}
  ],
  "cells": [
    {"i": 0, "t": 1, "y": "tri3", "v": [0, 1, 2], "ft": [1, 2, 0]},
    {"i": 1, "t": 1, "y": "tri3", "v": [0, 2, 3], "ft": [0, 3, 4]}
  ]
}`

func Test_mesh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh01. read and derive attributes")

	m, err := ReadBytes([]byte(squareMesh))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(m.Ndim, 2)
	chk.IntAssert(m.NdomAttrs, 1)
	chk.IntAssert(m.NbdryAttrs, 4)
	chk.IntAssert(len(m.BFaces), 4)
	chk.Ints(tst, "bottom face", m.BFaces[0].Verts, []int{0, 1})
	chk.Ints(tst, "left face", m.BFaces[3].Verts, []int{3, 0})
}

func Test_mesh02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh02. inline base64 payloads resolve")

	spec := &inp.MeshSpec{
		Type:     "inline",
		Data:     base64.StdEncoding.EncodeToString([]byte(squareMesh)),
		Encoding: "base64",
	}
	m, err := Resolve(spec, "")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(len(m.Verts), 4)
	chk.IntAssert(len(m.Cells), 2)
}

func Test_mesh03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh03. malformed meshes fail")

	_, err := ReadBytes([]byte(`{"verts": [], "cells": []}`))
	if err == nil {
		tst.Errorf("empty mesh must fail")
		return
	}
	chk.String(tst, err.Error(), "mesh has no vertices")

	bad := `{
  "verts": [{"i": 0, "c": [0, 0]}, {"i": 1, "c": [1, 0]}, {"i": 2, "c": [1, 1]}],
  "cells": [{"i": 0, "t": 0, "y": "tri3", "v": [0, 1, 2]}]
}`
	_, err = ReadBytes([]byte(bad))
	if err == nil {
		tst.Errorf("zero cell tag must fail")
		return
	}
	chk.String(tst, err.Error(), "cell 0 tag must be >= 1")
}
