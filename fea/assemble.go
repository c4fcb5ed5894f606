// Copyright 2025 The AutoSage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fea

// Coef is a piecewise-constant coefficient per domain attribute (1-based)
type Coef func(attr int) float64

// Const returns a constant coefficient
func Const(v float64) Coef {
	return func(int) float64 { return v }
}

// AddDiffusion assembles scale * k * grad(u).grad(v), componentwise when the
// space carries more than one dof per vertex
func AddDiffusion(s *System, k Coef, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		kc := scale * k(c.Tag)
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			for a, va := range e.verts {
				for b, vb := range e.verts {
					var dot float64
					for i := range e.g[a] {
						dot += e.g[a][i] * e.g[b][i]
					}
					ke := kc * e.vol * dot
					for d := 0; d < sp.Ndof; d++ {
						s.Put(sp.Eq(va, d), sp.Eq(vb, d), ke)
					}
				}
			}
		}
	}
	return nil
}

// AddDiffusionTensor assembles scale * grad(v).K.grad(u) with K a full 3x3
// tensor in row-major order; only the leading Ndim block is used
func AddDiffusionTensor(s *System, kten []float64, scale float64) error {
	sp := s.Sp
	nd := sp.M.Ndim
	for _, c := range sp.M.Cells {
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			for a, va := range e.verts {
				for b, vb := range e.verts {
					var sum float64
					for i := 0; i < nd; i++ {
						for j := 0; j < nd; j++ {
							sum += e.g[a][i] * kten[3*i+j] * e.g[b][j]
						}
					}
					s.Put(sp.Eq(va, 0), sp.Eq(vb, 0), scale*e.vol*sum)
				}
			}
		}
	}
	return nil
}

// AddMass assembles the consistent mass operator scale * rho * u.v,
// componentwise for vector spaces
func AddMass(s *System, rho Coef, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		rc := scale * rho(c.Tag)
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			n := len(e.verts)
			den := float64(n * (n + 1))
			for a, va := range e.verts {
				for b, vb := range e.verts {
					f := 1.0
					if a == b {
						f = 2.0
					}
					me := rc * e.vol * f / den
					for d := 0; d < sp.Ndof; d++ {
						s.Put(sp.Eq(va, d), sp.Eq(vb, d), me)
					}
				}
			}
		}
	}
	return nil
}

// AddElasticity assembles the isotropic linear elasticity operator with Lame
// parameters per attribute. The space must carry Ndim dofs per vertex.
func AddElasticity(s *System, lam, mu Coef, scale float64) error {
	sp := s.Sp
	nd := sp.M.Ndim
	for _, c := range sp.M.Cells {
		lc := scale * lam(c.Tag)
		mc := scale * mu(c.Tag)
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			for a, va := range e.verts {
				for b, vb := range e.verts {
					var dot float64
					for k := 0; k < nd; k++ {
						dot += e.g[a][k] * e.g[b][k]
					}
					for i := 0; i < nd; i++ {
						for j := 0; j < nd; j++ {
							ke := lc*e.g[a][i]*e.g[b][j] + mc*e.g[a][j]*e.g[b][i]
							if i == j {
								ke += mc * dot
							}
							s.Put(sp.Eq(va, i), sp.Eq(vb, j), e.vol*ke)
						}
					}
				}
			}
		}
	}
	return nil
}

// AddAdvection assembles the linear advection operator scale * (vel.grad(u)) v
// with a constant velocity field
func AddAdvection(s *System, vel []float64, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			n := float64(len(e.verts))
			for _, va := range e.verts {
				for b, vb := range e.verts {
					var vg float64
					for i := range e.g[b] {
						if i < len(vel) {
							vg += vel[i] * e.g[b][i]
						}
					}
					s.Put(sp.Eq(va, 0), sp.Eq(vb, 0), scale*e.vol*vg/n)
				}
			}
		}
	}
	return nil
}

// AddSource adds the domain load scale * q * v to the right-hand side of
// dof component d
func AddSource(s *System, q Coef, d int, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		qc := scale * q(c.Tag)
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			w := qc * e.vol / float64(len(e.verts))
			for _, va := range e.verts {
				s.AddB(sp.Eq(va, d), w)
			}
		}
	}
	return nil
}

// AddVecSource adds a constant body-force vector to the right-hand side
func AddVecSource(s *System, f []float64, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			w := scale * e.vol / float64(len(e.verts))
			for _, va := range e.verts {
				for d := 0; d < sp.Ndof && d < len(f); d++ {
					s.AddB(sp.Eq(va, d), w*f[d])
				}
			}
		}
	}
	return nil
}

// AddGradSquaredSource adds scale * k * |grad(u)|^2 * v to the right-hand
// side for a given nodal field u. Used for resistive (Joule) heating, where
// the thermal load is the squared gradient of the electric potential.
func AddGradSquaredSource(s *System, u []float64, k Coef, scale float64) error {
	sp := s.Sp
	for _, c := range sp.M.Cells {
		kc := scale * k(c.Tag)
		gs, err := geoms(sp.M, c)
		if err != nil {
			return err
		}
		for _, e := range gs {
			var grad2 float64
			for i := range e.g[0] {
				var gi float64
				for a, va := range e.verts {
					gi += u[sp.Eq(va, 0)] * e.g[a][i]
				}
				grad2 += gi * gi
			}
			w := kc * grad2 * e.vol / float64(len(e.verts))
			for _, va := range e.verts {
				s.AddB(sp.Eq(va, 0), w)
			}
		}
	}
	return nil
}

// AddBoundaryFlux adds per-attribute flux values on marked boundary faces to
// the right-hand side of dof component d
func AddBoundaryFlux(s *System, marker []int, vals []float64, d int, scale float64) {
	sp := s.Sp
	for _, f := range sp.M.BFaces {
		if marker[f.Tag-1] == 0 {
			continue
		}
		w := scale * vals[f.Tag-1] * faceMeasure(sp.M, f) / float64(len(f.Verts))
		for _, v := range f.Verts {
			s.AddB(sp.Eq(v, d), w)
		}
	}
}

// AddVecBoundaryLoad adds per-attribute load vectors on marked boundary
// faces to the right-hand side
func AddVecBoundaryLoad(s *System, marker []int, vecs [][]float64, scale float64) {
	sp := s.Sp
	for _, f := range sp.M.BFaces {
		if marker[f.Tag-1] == 0 {
			continue
		}
		vec := vecs[f.Tag-1]
		w := scale * faceMeasure(sp.M, f) / float64(len(f.Verts))
		for _, v := range f.Verts {
			for d := 0; d < sp.Ndof && d < len(vec); d++ {
				s.AddB(sp.Eq(v, d), w*vec[d])
			}
		}
	}
}
