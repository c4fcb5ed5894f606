// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sol

// timeTol absorbs roundoff when comparing against the final time
const timeTol = 1e-12

// TimeLoop owns the transient simulation loop. Each step advances by
// min(Dt, Tf-t); snapshots go out at step 0, at every OutEvery-th step, and
// unconditionally at the final step.
type TimeLoop struct {
	Tf       float64
	Dt       float64
	OutEvery int                              // snapshot cadence in steps; 0 disables periodic snapshots
	Snap     func(cycle int, t float64) error // may be nil
}

// Run drives step until Tf is reached and returns the step count
func (o *TimeLoop) Run(step func(t, dt float64) error) (nsteps int, err error) {
	if o.Snap != nil {
		if err = o.Snap(0, 0); err != nil {
			return
		}
	}
	t := 0.0
	for t < o.Tf-timeTol {
		dt := o.Dt
		if t+dt > o.Tf {
			dt = o.Tf - t
		}
		if err = step(t, dt); err != nil {
			return
		}
		t += dt
		nsteps++
		if o.Snap != nil {
			final := t >= o.Tf-timeTol
			if final || (o.OutEvery > 0 && nsteps%o.OutEvery == 0) {
				if err = o.Snap(nsteps, t); err != nil {
					return
				}
			}
		}
	}
	return
}
