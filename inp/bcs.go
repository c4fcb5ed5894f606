// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Bc is one validated boundary condition entry. Kind holds the canonicalized
// condition type; kind-specific fields stay in Raw and are pulled out by the
// solver with Path as the error prefix.
type Bc struct {
	Attr int    // 1-based boundary attribute
	Kind string // canonicalized condition type
	Path string // dotted path of this entry, e.g. "config.bcs[2]"
	Raw  Cfg
}

// Bcs validates a boundary condition list against the mesh's boundary
// attribute count. An absent key yields an empty list; solvers that require
// an essential condition check for one afterwards. attrKey is the name of the
// attribute field within each entry ("attribute" for most solvers).
func (o Cfg) Bcs(path, key, attrKey string, nbdry int) ([]Bc, error) {
	if !o.Has(key) {
		return nil, nil
	}
	a, ok := o[key].([]interface{})
	if !ok {
		return nil, chk.Err("%s.%s must be an array", path, key)
	}
	if nbdry == 0 && len(a) > 0 {
		return nil, chk.Err("mesh has no boundary attributes but %s.%s was provided", path, key)
	}
	bcs := make([]Bc, len(a))
	for i, e := range a {
		epath := io.Sf("%s.%s[%d]", path, key, i)
		m, ok := e.(map[string]interface{})
		if !ok {
			return nil, chk.Err("%s must be an object", epath)
		}
		raw := Cfg(m)
		attr, err := raw.IntMin(epath, attrKey, 1)
		if err != nil {
			return nil, err
		}
		if attr > nbdry {
			return nil, chk.Err("%s.%s exceeds mesh boundary attribute count (%d)", epath, attrKey, nbdry)
		}
		kind, err := raw.OptStr(epath, "type", "")
		if err != nil {
			return nil, err
		}
		bcs[i] = Bc{Attr: attr, Kind: Canon(kind), Path: epath, Raw: raw}
	}
	return bcs, nil
}

// UnknownBcKind builds the error for a condition type outside the solver's
// accepted vocabulary, enumerating the accepted kinds.
func UnknownBcKind(b Bc, accepted ...string) error {
	return chk.Err("%s.type must be %s", b.Path, JoinOr(accepted))
}

// JoinOr joins words as "a", "a or b", "a, b, or c"
func JoinOr(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " or " + words[1]
	}
	return strings.Join(words[:len(words)-1], ", ") + ", or " + words[len(words)-1]
}
