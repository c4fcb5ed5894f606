// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out writes the solve artifacts: the field snapshot collection, the
// visualization stub, and per-solver metadata documents
package out

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Step indexes one snapshot of a collection
type Step struct {
	Cycle int     `json:"cycle"`
	Time  float64 `json:"time"`
	File  string  `json:"file"`
}

// Collection is a field snapshot collection keyed by name/cycle/time.
// Snapshot files and the index live in the working directory; names derive
// deterministically from the stub path's stem. Created once per job and
// never mutated after Close.
type Collection struct {
	Name   string // collection name (stub path stem)
	Dir    string // snapshot directory
	stub   string // caller-fixed stub path
	field  string // primary field name, from the first snapshot
	steps  []Step
	closed bool
}

// NewCollection creates a collection with the stub at the caller-fixed
// vtkpath. Snapshots go next to the stub when it carries a directory,
// otherwise into workdir.
func NewCollection(vtkpath, workdir string) *Collection {
	base := filepath.Base(vtkpath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = "solution"
	}
	dir := filepath.Dir(vtkpath)
	if dir == "." {
		dir = workdir
	}
	return &Collection{Name: name, Dir: dir, stub: vtkpath, field: "solution"}
}

// SaveStep writes one snapshot of a nodal field
func (o *Collection) SaveStep(cycle int, time float64, field string, vals []float64) error {
	if o.closed {
		return chk.Err("collection %q is closed", o.Name)
	}
	if len(o.steps) == 0 {
		o.field = field
	}
	fn := io.Sf("%s-%06d.dat", o.Name, cycle)
	var b bytes.Buffer
	b.WriteString(io.Sf("time %g\n", time))
	b.WriteString(io.Sf("%s %d\n", field, len(vals)))
	for _, v := range vals {
		b.WriteString(io.Sf("%.17g\n", v))
	}
	io.WriteFileD(o.Dir, fn, &b)
	o.steps = append(o.steps, Step{Cycle: cycle, Time: time, File: fn})
	return nil
}

// Close writes the collection index and the stub. note, when non-empty, is
// appended to the stub line (e.g. to name a fallback that was used).
func (o *Collection) Close(note string) error {
	if o.closed {
		return nil
	}
	idx := struct {
		Collection string `json:"collection"`
		Steps      []Step `json:"steps"`
	}{o.Name, o.steps}
	if o.steps == nil {
		idx.Steps = []Step{}
	}
	if err := WriteJSON(filepath.Join(o.Dir, o.Name+".collection.json"), idx); err != nil {
		return err
	}
	var b bytes.Buffer
	b.WriteString(io.Sf("# %s field written to %s.collection.json", o.field, o.Name))
	if note != "" {
		b.WriteString(" (" + note + ")")
	}
	b.WriteString("\n")
	io.WriteFileD(filepath.Dir(o.stub), filepath.Base(o.stub), &b)
	o.closed = true
	return nil
}

// WriteJSON writes an indented JSON document
func WriteJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return chk.Err("cannot marshal %q:\n%v", path, err)
	}
	var buf bytes.Buffer
	buf.Write(b)
	buf.WriteString("\n")
	io.WriteFileD(filepath.Dir(path), filepath.Base(path), &buf)
	return nil
}

// WriteMeta writes a per-solver metadata document into the working directory
func WriteMeta(dir, fname string, v interface{}) error {
	return WriteJSON(filepath.Join(dir, fname), v)
}
