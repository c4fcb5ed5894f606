// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	chk.Verbose = true
}

func Test_coll01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("coll01. collection naming and step index")

	c := NewCollection("/tmp/autosage/out/field.pvd", "/tmp/autosage/out")
	chk.String(tst, c.Name, "field")
	chk.String(tst, c.Dir, "/tmp/autosage/out")

	if err := c.SaveStep(0, 0, "temperature", []float64{1, 2}); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if err := c.SaveStep(3, 0.9, "temperature", []float64{3, 4}); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if err := c.Close("note"); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// stub names the field and the index, plus the note
	stub := io.ReadFile("/tmp/autosage/out/field.pvd")
	chk.String(tst, strings.TrimSpace(string(stub)),
		"# temperature field written to field.collection.json (note)")

	// index carries both steps in order
	b := io.ReadFile("/tmp/autosage/out/field.collection.json")
	var idx struct {
		Collection string `json:"collection"`
		Steps      []Step `json:"steps"`
	}
	if err := json.Unmarshal(b, &idx); err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.String(tst, idx.Collection, "field")
	chk.IntAssert(len(idx.Steps), 2)
	chk.IntAssert(idx.Steps[1].Cycle, 3)
	chk.Float64(tst, "step time", 1e-17, idx.Steps[1].Time, 0.9)
	chk.String(tst, idx.Steps[1].File, "field-000003.dat")

	// saving after close is rejected
	if err := c.SaveStep(4, 1.2, "temperature", []float64{5}); err == nil {
		tst.Errorf("saving into a closed collection must fail")
	}
}
