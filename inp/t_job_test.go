// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"bytes"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// writeDoc drops a job document under /tmp/autosage
func writeDoc(fn, doc string) {
	var b bytes.Buffer
	b.WriteString(doc)
	io.WriteFileD("/tmp/autosage", fn, &b)
}

func verbose() {
	chk.Verbose = true
}

func Test_canon01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("canon01. enumeration canonicalization")

	chk.String(tst, Canon("No_Flow"), "noflow")
	chk.String(tst, Canon("fixed-temp"), "fixedtemp")
	chk.String(tst, Canon("  STOKES "), "stokes")
	chk.String(tst, Canon("perfect_conductor"), "perfectconductor")
}

func Test_job01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("job01. json and yaml jobs decode equally")

	jsonDoc := `{
  "solver_class": "heat_transfer",
  "mesh": {"type": "inline", "data": "{}"},
  "config": {"conductivity": 2.5, "dt": 0.3},
  "force_fallback": true
}`
	yamlDoc := `solver_class: heat_transfer
mesh:
  type: inline
  data: "{}"
config:
  conductivity: 2.5
  dt: 0.3
force_fallback: true
`
	writeDoc("job01.json", jsonDoc)
	writeDoc("job01.yaml", yamlDoc)

	jj, err := ReadJob("/tmp/autosage/job01.json")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	jy, err := ReadJob("/tmp/autosage/job01.yaml")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.String(tst, jj.SolverClass, "heat_transfer")
	chk.String(tst, jy.SolverClass, jj.SolverClass)
	chk.String(tst, jy.Mesh.Type, "inline")
	if !jj.ForceFallback || !jy.ForceFallback {
		tst.Errorf("force_fallback flag lost")
		return
	}
	cj, _ := jj.Config.Num("config", "conductivity")
	cy, _ := jy.Config.Num("config", "conductivity")
	chk.Float64(tst, "conductivity", 1e-17, cy, cj)
}

func Test_job02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("job02. malformed jobs fail")

	writeDoc("job02.json", `{"mesh": {"type": "inline", "data": "x"}, "config": {}}`)
	_, err := ReadJob("/tmp/autosage/job02.json")
	if err == nil {
		tst.Errorf("missing solver_class must fail")
		return
	}
	chk.String(tst, err.Error(), "solver_class is required")

	writeDoc("job03.json", `{"solver_class": "poisson", "mesh": {"type": "nope"}, "config": {}}`)
	_, err = ReadJob("/tmp/autosage/job03.json")
	if err == nil {
		tst.Errorf("bad mesh.type must fail")
		return
	}
	chk.String(tst, err.Error(), "mesh.type must be inline or file")
}
