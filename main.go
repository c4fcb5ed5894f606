// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// AutoSage reads a solve job document, dispatches it to the configured
// physics solver, and writes the summary, result, and visualization
// artifacts.
package main

import (
	"os"
	"path/filepath"

	"github.com/SeattleUser0/AutoSage/inp"
	"github.com/SeattleUser0/AutoSage/msh"
	"github.com/SeattleUser0/AutoSage/out"
	"github.com/SeattleUser0/AutoSage/sol"
	"github.com/cpmech/gosl/io"
)

// summaryDoc is the machine-readable outcome of one successful solve
type summaryDoc struct {
	Status      string `json:"status"`
	SolverClass string `json:"solver_class"`
	sol.Summary
	Text string `json:"summary"`
}

// resultDoc is the summary plus the artifact locations
type resultDoc struct {
	summaryDoc
	SummaryFile string `json:"summary_file"`
	VtkFile     string `json:"vtk_file"`
}

func main() {

	// read input parameters
	jobPath := io.ArgToString(0, "job.json")
	resultPath := io.ArgToString(1, "result.json")
	summaryPath := io.ArgToString(2, "summary.json")
	vtkPath := io.ArgToString(3, "solution.pvd")
	verbose := io.ArgToBool(4, false)

	if verbose {
		io.Pf("%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"job document", "jobPath", jobPath,
			"result document", "resultPath", resultPath,
			"summary document", "summaryPath", summaryPath,
			"visualization stub", "vtkPath", vtkPath,
			"show messages", "verbose", verbose,
		))
	}

	if err := run(jobPath, resultPath, summaryPath, vtkPath, verbose); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(jobPath, resultPath, summaryPath, vtkPath string, verbose bool) error {

	// job and mesh
	job, err := inp.ReadJob(jobPath)
	if err != nil {
		return err
	}
	m, err := msh.Resolve(&job.Mesh, filepath.Dir(jobPath))
	if err != nil {
		return err
	}

	// dispatch
	solver, err := sol.New(job.SolverClass)
	if err != nil {
		return err
	}
	ctx := &sol.Context{
		WorkDir:       filepath.Dir(resultPath),
		VtkPath:       vtkPath,
		ForceFallback: job.ForceFallback,
		Verbose:       verbose,
	}
	summary, err := solver.Run(m, job.Config, ctx)
	if err != nil {
		return err
	}

	// artifacts
	sd := summaryDoc{
		Status:      "ok",
		SolverClass: solver.Name(),
		Summary:     summary,
		Text:        io.Sf("%s solve completed.", solver.Name()),
	}
	if err := out.WriteJSON(summaryPath, sd); err != nil {
		return err
	}
	rd := resultDoc{summaryDoc: sd, SummaryFile: summaryPath, VtkFile: vtkPath}
	if err := out.WriteJSON(resultPath, rd); err != nil {
		return err
	}
	io.Pf("completed %s solve\n", solver.Name())
	return nil
}
