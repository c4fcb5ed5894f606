// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Cfg is an untyped solver configuration object. Solvers pull typed,
// range-checked values out of it; every failure names the dotted field path
// and the violated constraint.
type Cfg map[string]interface{}

// Has tells whether key is present
func (o Cfg) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Num returns a required finite number
func (o Cfg) Num(path, key string) (float64, error) {
	v, ok := toNum(o[key])
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, chk.Err("%s.%s must be a finite number", path, key)
	}
	return v, nil
}

// PosNum returns a required number > 0. A missing, non-numeric, or
// non-positive field all produce the same message.
func (o Cfg) PosNum(path, key string) (float64, error) {
	v, ok := toNum(o[key])
	if !ok || !(v > 0) || math.IsInf(v, 0) {
		return 0, chk.Err("%s.%s must be > 0", path, key)
	}
	return v, nil
}

// ReqNum returns a required number, reporting presence and type in one
// message ("is required and must be numeric")
func (o Cfg) ReqNum(path, key string) (float64, error) {
	v, ok := toNum(o[key])
	if !ok {
		return 0, chk.Err("%s.%s is required and must be numeric", path, key)
	}
	return v, nil
}

// ReqPosNum is ReqNum followed by a positivity check
func (o Cfg) ReqPosNum(path, key string) (float64, error) {
	v, err := o.ReqNum(path, key)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, chk.Err("%s.%s must be > 0", path, key)
	}
	return v, nil
}

// OptEvery returns an output cadence, which must be a positive integer when
// provided
func (o Cfg) OptEvery(path, key string, def int) (int, error) {
	if !o.Has(key) {
		return def, nil
	}
	v, ok := toNum(o[key])
	if !ok || v != math.Trunc(v) {
		return 0, chk.Err("%s.%s must be an integer when provided", path, key)
	}
	if v <= 0 {
		return 0, chk.Err("%s.%s must be > 0", path, key)
	}
	return int(v), nil
}

// NonNegNum returns a required number >= 0
func (o Cfg) NonNegNum(path, key string) (float64, error) {
	v, ok := toNum(o[key])
	if !ok || !(v >= 0) || math.IsInf(v, 0) {
		return 0, chk.Err("%s.%s must be >= 0", path, key)
	}
	return v, nil
}

// Range returns a required number in the open interval (lo, hi)
func (o Cfg) Range(path, key string, lo, hi float64) (float64, error) {
	v, ok := toNum(o[key])
	if !ok || !(v > lo && v < hi) {
		return 0, chk.Err("%s.%s must be in (%g, %g)", path, key, lo, hi)
	}
	return v, nil
}

// OptNum returns a number or def when the key is absent
func (o Cfg) OptNum(path, key string, def float64) (float64, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.Num(path, key)
}

// OptPosNum returns a number > 0 or def when the key is absent
func (o Cfg) OptPosNum(path, key string, def float64) (float64, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.PosNum(path, key)
}

// IntMin returns a required integer >= min. Numbers with a fractional part
// are rejected.
func (o Cfg) IntMin(path, key string, min int) (int, error) {
	v, ok := toNum(o[key])
	if !ok || v != math.Trunc(v) || int(v) < min {
		return 0, chk.Err("%s.%s must be an integer >= %d", path, key, min)
	}
	return int(v), nil
}

// IntRange returns a required integer in [lo, hi]
func (o Cfg) IntRange(path, key string, lo, hi int) (int, error) {
	v, ok := toNum(o[key])
	if !ok || v != math.Trunc(v) || int(v) < lo || int(v) > hi {
		return 0, chk.Err("%s.%s must be between %d and %d", path, key, lo, hi)
	}
	return int(v), nil
}

// OptIntMin returns an integer >= min or def when the key is absent
func (o Cfg) OptIntMin(path, key string, min, def int) (int, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.IntMin(path, key, min)
}

// Str returns a required string
func (o Cfg) Str(path, key string) (string, error) {
	s, ok := o[key].(string)
	if !ok {
		return "", chk.Err("%s.%s must be a string", path, key)
	}
	return s, nil
}

// OptStr returns a string or def when the key is absent
func (o Cfg) OptStr(path, key, def string) (string, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.Str(path, key)
}

// OptBool returns a boolean or def when the key is absent
func (o Cfg) OptBool(path, key string, def bool) (bool, error) {
	if !o.Has(key) {
		return def, nil
	}
	b, ok := o[key].(bool)
	if !ok {
		return false, chk.Err("%s.%s must be a boolean", path, key)
	}
	return b, nil
}

// Obj returns a required nested object
func (o Cfg) Obj(path, key string) (Cfg, error) {
	m, ok := o[key].(map[string]interface{})
	if !ok {
		return nil, chk.Err("%s.%s must be an object", path, key)
	}
	return Cfg(m), nil
}

// List returns a required array
func (o Cfg) List(path, key string) ([]interface{}, error) {
	a, ok := o[key].([]interface{})
	if !ok {
		return nil, chk.Err("%s.%s must be an array", path, key)
	}
	return a, nil
}

// FixedVec returns an array of exactly n numbers
func (o Cfg) FixedVec(path, key string, n int) ([]float64, error) {
	a, ok := o[key].([]interface{})
	if !ok || len(a) != n {
		return nil, chk.Err("%s.%s must be an array of %d numbers", path, key, n)
	}
	v := make([]float64, n)
	for i, e := range a {
		x, ok := toNum(e)
		if !ok {
			return nil, chk.Err("%s.%s must be an array of %d numbers", path, key, n)
		}
		v[i] = x
	}
	return v, nil
}

// Vec returns a required array of numbers of any length
func (o Cfg) Vec(path, key string) ([]float64, error) {
	a, ok := o[key].([]interface{})
	if !ok {
		return nil, chk.Err("%s.%s must be an array of numbers", path, key)
	}
	v := make([]float64, len(a))
	for i, e := range a {
		x, ok := toNum(e)
		if !ok {
			return nil, chk.Err("%s.%s must be an array of numbers", path, key)
		}
		v[i] = x
	}
	return v, nil
}

// OptVec returns an array of numbers or def when the key is absent
func (o Cfg) OptVec(path, key string, def []float64) ([]float64, error) {
	if !o.Has(key) {
		return def, nil
	}
	return o.Vec(path, key)
}

// VecMin returns a spatial vector with at least n components, truncated to
// n. Vectors shorter than the mesh dimension change solve behavior, so their
// arity is strict; extra components are dropped.
func (o Cfg) VecMin(path, key string, n int, required bool) ([]float64, error) {
	if !o.Has(key) {
		if required {
			return nil, chk.Err("%s.%s is required", path, key)
		}
		return make([]float64, n), nil
	}
	a, ok := o[key].([]interface{})
	if !ok {
		return nil, chk.Err("%s.%s must be an array", path, key)
	}
	v := make([]float64, len(a))
	for i, e := range a {
		x, ok := toNum(e)
		if !ok {
			return nil, chk.Err("%s.%s components must be numeric", path, key)
		}
		v[i] = x
	}
	if len(v) < n {
		return nil, chk.Err("%s.%s must provide at least mesh-dimension components", path, key)
	}
	return v[:n], nil
}

// ResizeVec truncates or zero-pads v to n entries. Used for spatial vectors
// whose arity tolerantly follows the mesh dimension.
func ResizeVec(v []float64, n int) []float64 {
	r := make([]float64, n)
	copy(r, v)
	return r
}

// toNum converts the numeric types produced by the JSON and YAML decoders
func toNum(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
