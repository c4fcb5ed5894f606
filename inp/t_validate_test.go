// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_validate01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("validate01. scalar pullers and their messages")

	cfg := Cfg{"k": 2.0, "n": 3, "bad": "x", "neg": -1.0}

	v, err := cfg.ReqPosNum("config", "k")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "k", 1e-17, v, 2.0)

	_, err = cfg.ReqNum("config", "missing")
	if err == nil {
		tst.Errorf("missing key must fail")
		return
	}
	chk.String(tst, err.Error(), "config.missing is required and must be numeric")

	_, err = cfg.ReqPosNum("config", "neg")
	if err == nil {
		tst.Errorf("negative value must fail")
		return
	}
	chk.String(tst, err.Error(), "config.neg must be > 0")

	_, err = cfg.IntRange("config", "n", 4, 10)
	if err == nil {
		tst.Errorf("out-of-range integer must fail")
		return
	}
	chk.String(tst, err.Error(), "config.n must be between 4 and 10")
}

func Test_validate02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("validate02. spatial vectors truncate, never pad")

	cfg := Cfg{"g": []interface{}{1.0, 2.0, 3.0}, "short": []interface{}{1.0}}

	v, err := cfg.VecMin("config", "g", 2, true)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "g", 1e-17, v, []float64{1, 2})

	_, err = cfg.VecMin("config", "short", 2, true)
	if err == nil {
		tst.Errorf("short vector must fail")
		return
	}
	chk.String(tst, err.Error(), "config.short must provide at least mesh-dimension components")

	_, err = cfg.VecMin("config", "missing", 2, true)
	if err == nil {
		tst.Errorf("missing required vector must fail")
		return
	}
	chk.String(tst, err.Error(), "config.missing is required")
}

func Test_bcs01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bcs01. boundary entries validate against the mesh")

	cfg := Cfg{"bcs": []interface{}{
		map[string]interface{}{"attribute": 1, "type": "fixed", "value": 0.0},
		map[string]interface{}{"attribute": 5, "type": "fixed", "value": 0.0},
	}}
	_, err := cfg.Bcs("config", "bcs", "attribute", 2)
	if err == nil {
		tst.Errorf("out-of-range attribute must fail")
		return
	}
	chk.String(tst, err.Error(), "config.bcs[1].attribute exceeds mesh boundary attribute count (2)")

	bcs, err := cfg.Bcs("config", "bcs", "attribute", 5)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.String(tst, bcs[0].Kind, "fixed")
	chk.String(tst, bcs[1].Path, "config.bcs[1]")

	// no boundary attributes at all
	_, err = cfg.Bcs("config", "bcs", "attribute", 0)
	if err == nil {
		tst.Errorf("bcs on an untagged mesh must fail")
		return
	}
	chk.String(tst, err.Error(), "mesh has no boundary attributes but config.bcs was provided")

	// unknown kind enumeration
	e := UnknownBcKind(bcs[0], "fixed", "flux", "load")
	chk.String(tst, e.Error(), "config.bcs[0].type must be fixed, flux, or load")
}
