/*
 * structure.go, part of rsgrad.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package vasp

import (
	"math"
	"sort"
	"strings"

	"github.com/Ionizing/rsgrad/m33"
)

// Species is one block of identical atoms: the chemical symbol and how many
// atoms of it the structure holds. The order of Species values in a
// Structure is load-bearing: atom i belongs to the block determined by the
// cumulative counts, and every grouping, splitting and sorting operation
// relies on that.
type Species struct {
	Symbol string
	Num    int
}

// Structure is one crystallographic snapshot. Cart and Frac are kept
// mutually consistent; whichever was authoritative at load time was used to
// compute the other. Cartesian coordinates and cell rows are understood to
// be multiplied by Scale before use. Constr holds the per-atom, per-axis
// selective-dynamics flags (true = free to move) and is nil when the
// structure carries none.
type Structure struct {
	Scale  float64
	Cell   m33.Mat
	Types  []Species
	Cart   [][3]float64
	Frac   [][3]float64
	Constr [][3]bool
}

// Natoms returns the number of atoms in the structure.
func (s *Structure) Natoms() int {
	return len(s.Cart)
}

// TypesTotal returns the sum of the per-species counts.
func (s *Structure) TypesTotal() int {
	n := 0
	for _, t := range s.Types {
		n += t.Num
	}
	return n
}

// ScaledCell returns the cell with the scale factor applied to every row.
func (s *Structure) ScaledCell() m33.Mat {
	return s.Cell.Scaled(s.Scale)
}

// ExpandedSymbols broadcasts the species list into one symbol per atom, in
// species order.
func (s *Structure) ExpandedSymbols() []string {
	ret := make([]string, 0, s.TypesTotal())
	for _, t := range s.Types {
		for i := 0; i < t.Num; i++ {
			ret = append(ret, t.Symbol)
		}
	}
	return ret
}

func scalePts(pts [][3]float64, f float64) [][3]float64 {
	ret := make([][3]float64, len(pts))
	for i, p := range pts {
		ret[i] = [3]float64{p[0] * f, p[1] * f, p[2] * f}
	}
	return ret
}

// FracFromCart recomputes the fractional coordinates from the cartesian
// ones. It fails with a Geometry error when the (scaled) cell cannot be
// inverted.
func (s *Structure) FracFromCart() error {
	frac, ok := m33.CartToFrac(scalePts(s.Cart, s.Scale), s.ScaledCell())
	if !ok {
		return geometryErr(SingularCell)
	}
	s.Frac = frac
	return nil
}

// CartFromFrac recomputes the cartesian coordinates from the fractional
// ones. The stored cartesians stay in the same convention as the cell, i.e.
// still to be multiplied by Scale before use.
func (s *Structure) CartFromFrac() {
	abs := m33.FracToCart(s.Frac, s.ScaledCell())
	s.Cart = scalePts(abs, 1.0/s.Scale)
}

// check verifies the structural invariants of s.
func (s *Structure) check() error {
	if s.Scale <= 0 || math.IsNaN(s.Scale) {
		return formatErr("scale", InvalidScale+": %v", s.Scale)
	}
	n := s.TypesTotal()
	for _, t := range s.Types {
		if t.Num <= 0 {
			return formatErr("species", "species %s has count %d", t.Symbol, t.Num)
		}
	}
	if len(s.Cart) != n || len(s.Frac) != n {
		return consistencyErr("natoms", CountMismatch+": %d atoms declared, %d cartesian, %d fractional",
			n, len(s.Cart), len(s.Frac))
	}
	if s.Constr != nil && len(s.Constr) != n {
		return consistencyErr("constraints", CountMismatch+": %d atoms, %d constraint rows",
			n, len(s.Constr))
	}
	return nil
}

// blockOf returns the index into Types of the species block atom i belongs
// to.
func (s *Structure) blockOf(i int) int {
	acc := 0
	for k, t := range s.Types {
		acc += t.Num
		if i < acc {
			return k
		}
	}
	return len(s.Types) - 1
}

// Split partitions the structure into two disjoint ones by an explicit set
// of 0-based atom indices: the atoms named in indices go to the first
// returned structure, the rest to the second. Per-species counts are
// recomputed for each half, species left with no atoms are dropped, and
// constraints follow their atoms. Atoms keep their original relative order.
func (s *Structure) Split(indices []int) (*Structure, *Structure, error) {
	if err := s.check(); err != nil {
		return nil, nil, errDecorate(err, "Split")
	}
	n := s.Natoms()
	pick := make([]bool, n)
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, nil, consistencyErr("split", "atom index %d out of range, have %d atoms", i, n)
		}
		if pick[i] {
			return nil, nil, consistencyErr("split", "atom index %d selected twice", i)
		}
		pick[i] = true
	}
	countsA := make([]int, len(s.Types))
	for i := 0; i < n; i++ {
		if pick[i] {
			countsA[s.blockOf(i)]++
		}
	}
	half := func(want bool) *Structure {
		h := &Structure{Scale: s.Scale, Cell: s.Cell}
		for k, t := range s.Types {
			num := countsA[k]
			if !want {
				num = t.Num - countsA[k]
			}
			if num > 0 {
				h.Types = append(h.Types, Species{t.Symbol, num})
			}
		}
		for i := 0; i < n; i++ {
			if pick[i] != want {
				continue
			}
			h.Cart = append(h.Cart, s.Cart[i])
			h.Frac = append(h.Frac, s.Frac[i])
			if s.Constr != nil {
				h.Constr = append(h.Constr, s.Constr[i])
			}
		}
		return h
	}
	return half(true), half(false), nil
}

// axisKey resolves a composite sorting key. Keys are a subset/permutation
// of "ABC" for fractional axes or "XYZ" for cartesian ones,
// case-insensitive; the two families cannot be mixed. Priority is left to
// right.
func axisKey(key string) (axes []int, frac bool, err error) {
	up := strings.ToUpper(strings.TrimSpace(key))
	if up == "" {
		return nil, false, parseErr("axes", "empty axis key")
	}
	seen := [3]bool{}
	var isFrac, isCart bool
	for _, c := range up {
		var ax int
		switch c {
		case 'A', 'B', 'C':
			isFrac = true
			ax = int(c - 'A')
		case 'X', 'Y', 'Z':
			isCart = true
			ax = int(c - 'X')
		default:
			return nil, false, parseErr("axes", "unknown axis %q in key %q", string(c), key)
		}
		if seen[ax] {
			return nil, false, parseErr("axes", "axis %q repeated in key %q", string(c), key)
		}
		seen[ax] = true
		axes = append(axes, ax)
	}
	if isFrac && isCart {
		return nil, false, parseErr("axes", "mixed fractional and cartesian axes in key %q", key)
	}
	return axes, isFrac, nil
}

// SortByAxes stably sorts the atoms inside each species block by the given
// composite axis key ("ABC" axes compare fractional coordinates, "XYZ" axes
// cartesian ones). Species blocks and their order are never altered, only
// the order of atoms within a block. One index permutation is applied
// uniformly to cartesian positions, fractional positions and constraints,
// so the three stay aligned.
func (s *Structure) SortByAxes(key string) error {
	axes, frac, err := axisKey(key)
	if err != nil {
		return errDecorate(err, "SortByAxes")
	}
	if err := s.check(); err != nil {
		return errDecorate(err, "SortByAxes")
	}
	coords := s.Cart
	if frac {
		coords = s.Frac
	}
	perm := make([]int, s.Natoms())
	for i := range perm {
		perm[i] = i
	}
	start := 0
	for _, t := range s.Types {
		block := perm[start : start+t.Num]
		sort.SliceStable(block, func(a, b int) bool {
			pa, pb := coords[block[a]], coords[block[b]]
			for _, ax := range axes {
				if pa[ax] != pb[ax] {
					return pa[ax] < pb[ax]
				}
			}
			return false
		})
		start += t.Num
	}
	s.Cart = permute3f(s.Cart, perm)
	s.Frac = permute3f(s.Frac, perm)
	if s.Constr != nil {
		s.Constr = permute3b(s.Constr, perm)
	}
	return nil
}

func permute3f(v [][3]float64, perm []int) [][3]float64 {
	ret := make([][3]float64, len(v))
	for i, p := range perm {
		ret[i] = v[p]
	}
	return ret
}

func permute3b(v [][3]bool, perm []int) [][3]bool {
	ret := make([][3]bool, len(v))
	for i, p := range perm {
		ret[i] = v[p]
	}
	return ret
}
