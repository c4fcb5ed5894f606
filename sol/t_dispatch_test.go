// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

func Test_disp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp01. dispatch matches names, aliases, and spellings")

	for query, name := range map[string]string{
		"Poisson":          "Poisson",
		"heat_transfer":    "HeatTransfer",
		"HEAT-TRANSFER":    "HeatTransfer",
		"stokes":           "StokesFlow",
		"emmodal":          "ElectromagneticModal",
		"emscattering":     "ElectromagneticScattering",
		"linearadvection":  "Advection",
		"transientem":      "TransientMaxwell",
		"hyperelasticity":  "Hyperelastic",
		"linearelasticity": "LinearElasticity",
	} {
		s, err := New(query)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.String(tst, s.Name(), name)
	}
}

func Test_disp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp02. unknown classes enumerate the registry")

	_, err := New("warpdrive")
	if err == nil {
		tst.Errorf("unknown solver class must fail")
		return
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "solver_class must be ") {
		tst.Errorf("wrong message: %q", msg)
		return
	}
	for _, name := range []string{"Poisson", "StructuralModal", "NavierStokes"} {
		if !strings.Contains(msg, name) {
			tst.Errorf("message must enumerate %s, got %q", name, msg)
			return
		}
	}
	chk.IntAssert(len(Names()), 26)
}
