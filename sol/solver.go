// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sol implements the physics solvers and the registry dispatching a
// solver_class to one of them
package sol

import (
	"sort"

	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/cpmech/gosl/chk"
)

// Summary is produced by every solver, independent of its numerical method.
// Energy carries a solver-specific meaning (strain energy, first eigenvalue,
// kinetic plus potential energy) but is always a finite scalar.
type Summary struct {
	Energy     float64 `json:"energy"`
	Iterations int     `json:"iterations"`
	ErrorNorm  float64 `json:"error_norm"`
	Dimension  int     `json:"dimension"`
}

// Context carries the per-job execution surroundings
type Context struct {
	WorkDir       string // directory for metadata and snapshot files
	VtkPath       string // caller-fixed visualization stub path
	ForceFallback bool   // force the eigensolver fallback path
	Verbose       bool
}

// Solver is one physics solve recipe
type Solver interface {
	Name() string
	Run(m *msh.Mesh, cfg inp.Cfg, ctx *Context) (Summary, error)
}

// allocators maps canonicalized solver-class names to factories
var allocators = make(map[string]func() Solver)

// displayNames maps canonical keys back to the registered names
var displayNames = make(map[string]string)

// register registers a solver factory under its display name plus aliases
func register(name string, alloc func() Solver, aliases ...string) {
	for _, n := range append([]string{name}, aliases...) {
		key := inp.Canon(n)
		if _, ok := allocators[key]; ok {
			chk.Panic("solver %q registered twice", n)
		}
		allocators[key] = alloc
	}
	displayNames[inp.Canon(name)] = name
}

// New returns the solver registered for solverClass. Matching is case- and
// underscore/hyphen-insensitive. Unknown names fail enumerating the accepted
// ones.
func New(solverClass string) (Solver, error) {
	if alloc, ok := allocators[inp.Canon(solverClass)]; ok {
		return alloc(), nil
	}
	return nil, chk.Err("solver_class must be %s", inp.JoinOr(Names()))
}

// Names returns the registered display names, sorted
func Names() []string {
	names := make([]string, 0, len(displayNames))
	for _, n := range displayNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
