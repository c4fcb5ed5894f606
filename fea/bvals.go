// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

import (
	"github.com/cpmech/gosl/chk"
)

// BVals maps sparse boundary condition entries onto dense per-attribute
// marker/value arrays, one set per condition kind. Essential (Dirichlet-like)
// values overwrite on repeat; natural (Neumann-like) values accumulate.
// Attributes are 1-based; range checking happens during config validation.
type BVals struct {
	N      int // boundary attribute count
	marker map[string][]int
	value  map[string][]float64
	vecval map[string][][]float64
}

// NewBVals allocates marker storage for n boundary attributes
func NewBVals(n int) *BVals {
	return &BVals{
		N:      n,
		marker: make(map[string][]int),
		value:  make(map[string][]float64),
		vecval: make(map[string][][]float64),
	}
}

// Mark sets the marker of kind at attr
func (o *BVals) Mark(kind string, attr int) {
	o.Markers(kind)[attr-1] = 1
}

// SetEss marks attr and overwrites its value (last entry wins)
func (o *BVals) SetEss(kind string, attr int, v float64) {
	o.Mark(kind, attr)
	o.Values(kind)[attr-1] = v
}

// SetEssVec marks attr and overwrites its value vector
func (o *BVals) SetEssVec(kind string, attr int, v []float64) {
	o.Mark(kind, attr)
	o.VecValues(kind)[attr-1] = v
}

// AddNat marks attr and accumulates its value (repeated entries sum)
func (o *BVals) AddNat(kind string, attr int, v float64) {
	o.Mark(kind, attr)
	o.Values(kind)[attr-1] += v
}

// Markers returns the dense 0/1 marker array of kind
func (o *BVals) Markers(kind string) []int {
	m, ok := o.marker[kind]
	if !ok {
		m = make([]int, o.N)
		o.marker[kind] = m
	}
	return m
}

// Values returns the dense value array of kind
func (o *BVals) Values(kind string) []float64 {
	v, ok := o.value[kind]
	if !ok {
		v = make([]float64, o.N)
		o.value[kind] = v
	}
	return v
}

// VecValues returns the dense vector-value array of kind
func (o *BVals) VecValues(kind string) [][]float64 {
	v, ok := o.vecval[kind]
	if !ok {
		v = make([][]float64, o.N)
		o.vecval[kind] = v
	}
	return v
}

// HasAny tells whether any of the given kinds has a nonzero marker
func (o *BVals) HasAny(kinds ...string) bool {
	for _, k := range kinds {
		for _, m := range o.marker[k] {
			if m != 0 {
				return true
			}
		}
	}
	return false
}

// RequireEssential fails unless at least one of the given kinds is marked
func (o *BVals) RequireEssential(what string, kinds ...string) error {
	if !o.HasAny(kinds...) {
		return chk.Err("%s requires at least one essential boundary condition", what)
	}
	return nil
}

// Union returns the element-wise union of the marker arrays of the kinds
func (o *BVals) Union(kinds ...string) []int {
	u := make([]int, o.N)
	for _, k := range kinds {
		for i, m := range o.marker[k] {
			if m != 0 {
				u[i] = 1
			}
		}
	}
	return u
}
