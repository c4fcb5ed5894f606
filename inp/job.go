// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input job document read from a JSON or YAML file
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"
)

// MeshSpec holds the mesh selection part of a job document. The mesh is either
// an external file or an inline payload, resolved once before dispatch.
type MeshSpec struct {
	Type     string `json:"type" yaml:"type"`         // "file" or "inline"
	Path     string `json:"path" yaml:"path"`         // mesh file path when Type == "file"
	Data     string `json:"data" yaml:"data"`         // mesh payload when Type == "inline"
	Encoding string `json:"encoding" yaml:"encoding"` // "plain" or "base64"; default "plain"
}

// Job holds one solve request. Immutable once parsed.
type Job struct {
	SolverClass   string   `json:"solver_class" yaml:"solver_class"`
	Mesh          MeshSpec `json:"mesh" yaml:"mesh"`
	Config        Cfg      `json:"config" yaml:"config"`
	ForceFallback bool     `json:"force_fallback" yaml:"force_fallback"` // force the eigensolver fallback path
}

// ReadJob reads a job document. The decoder is selected by file extension:
// ".yaml" / ".yml" use YAML, everything else is treated as JSON.
func ReadJob(jobfilepath string) (*Job, error) {

	// read file
	b, err := os.ReadFile(jobfilepath)
	if err != nil {
		return nil, chk.Err("cannot read job file %q", jobfilepath)
	}

	// decode
	var o Job
	switch strings.ToLower(filepath.Ext(jobfilepath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &o)
	default:
		err = json.Unmarshal(b, &o)
	}
	if err != nil {
		return nil, chk.Err("cannot unmarshal job file %q:\n%v", jobfilepath, err)
	}

	// basic checks
	if o.SolverClass == "" {
		return nil, chk.Err("solver_class is required")
	}
	if o.Config == nil {
		return nil, chk.Err("config must be an object")
	}
	switch Canon(o.Mesh.Type) {
	case "file":
		if o.Mesh.Path == "" {
			return nil, chk.Err("mesh.path is required when mesh.type=file")
		}
	case "inline":
		if o.Mesh.Data == "" {
			return nil, chk.Err("mesh.data is required when mesh.type=inline")
		}
		switch Canon(o.Mesh.Encoding) {
		case "", "plain", "base64":
		default:
			return nil, chk.Err("mesh.encoding must be plain or base64")
		}
	default:
		return nil, chk.Err("mesh.type must be inline or file")
	}
	return &o, nil
}

// Canon canonicalizes an enumeration string: lower-case with underscores and
// hyphens removed, so "no_flow", "no-flow" and "noflow" compare equal.
func Canon(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Replace(s, "_", "", -1)
	return strings.Replace(s, "-", "", -1)
}
