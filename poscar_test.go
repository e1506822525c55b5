/*
 * poscar_test.go, part of rsgrad.
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
	"reflect"
	"strings"
	"testing"
)

const poscarNH3 = `NH3 in a box
   1.0
     6.0  0.0  0.0
     0.0  7.0  0.0
     0.0  0.0  8.0
   N   H
   1   3
Selective Dynamics
Direct
  0.500000  0.500000  0.500000  T T T
  0.646200  0.573600  0.500000  T T F
  0.500000  0.354700  0.500000  F F F
  0.353800  0.573600  0.500000  T F T
`

func TestParsePoscar(t *testing.T) {
	p, err := ParsePoscar(poscarNH3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Comment != "NH3 in a box" {
		t.Errorf("comment: got %q", p.Comment)
	}
	if p.Scale != 1.0 {
		t.Errorf("scale: got %v", p.Scale)
	}
	if !reflect.DeepEqual(p.Types, []Species{{"N", 1}, {"H", 3}}) {
		t.Errorf("species: got %v", p.Types)
	}
	if p.Natoms() != 4 || p.TypesTotal() != 4 {
		t.Errorf("atoms: got %d/%d", p.Natoms(), p.TypesTotal())
	}
	if p.Constr == nil || !p.Constr[1][1] || p.Constr[1][2] {
		t.Errorf("constraints: got %v", p.Constr)
	}
	// Fractional was authoritative, cartesian must have been derived.
	wantCart := [3]float64{0.5 * 6, 0.5 * 7, 0.5 * 8}
	for j := 0; j < 3; j++ {
		if math.Abs(p.Cart[0][j]-wantCart[j]) > 1e-10 {
			t.Errorf("cartesian[0]: got %v, want %v", p.Cart[0], wantCart)
		}
	}
}

func TestParsePoscarCartesian(t *testing.T) {
	text := `Cartesian input, no constraints
   2.0
     3.0  0.0  0.0
     0.0  3.5  0.0
     0.0  0.0  4.0
   C
   2
Kartesisch
  1.5  1.75  2.0
  0.0  0.00  0.0
`
	p, err := ParsePoscar(text)
	if err != nil {
		t.Fatal(err)
	}
	if p.Constr != nil {
		t.Errorf("constraints: got %v, want none", p.Constr)
	}
	// With scale 2 the lattice is 6 x 7 x 8; atom 1 sits at its center.
	for j := 0; j < 3; j++ {
		if math.Abs(p.Frac[0][j]-0.5) > 1e-10 {
			t.Errorf("fractional[0]: got %v, want 0.5 each", p.Frac[0])
		}
	}
}

func TestParsePoscarErrors(t *testing.T) {
	base := strings.Split(poscarNH3, "\n")
	mutate := func(line int, with string) string {
		cp := append([]string{}, base...)
		cp[line] = with
		return strings.Join(cp, "\n")
	}
	cases := []struct {
		name string
		text string
		kind Kind
	}{
		{"negative scale", mutate(1, "  -1.0"), Format},
		{"nan scale", mutate(1, "  NaN"), Format},
		{"incomplete cell", mutate(3, "   0.0  7.0"), Format},
		{"count mismatch species", mutate(6, "   1   3   5"), Format},
		{"zero count", mutate(6, "   0   4"), Format},
		{"bad coordinate type", mutate(8, "Neither"), Format},
		{"missing atom line", mutate(12, ""), Consistency},
		{"bad number", mutate(10, "  x  0.5  0.5  T T T"), Parse},
		{"missing flags", mutate(10, "  0.5  0.5  0.5"), Format},
	}
	for _, tc := range cases {
		_, err := ParsePoscar(tc.text)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		e, ok := err.(*Error)
		if !ok {
			t.Errorf("%s: got %T, want *Error", tc.name, err)
			continue
		}
		if e.Kind != tc.kind {
			t.Errorf("%s: got %v error (%v), want %v", tc.name, e.Kind, e, tc.kind)
		}
	}
}

func TestParsePoscarSingularCell(t *testing.T) {
	text := `flat cell
   1.0
     1.0  0.0  0.0
     1.0  0.0  0.0
     0.0  0.0  1.0
   C
   1
Cartesian
  0.1  0.2  0.3
`
	_, err := ParsePoscar(text)
	if err == nil {
		t.Fatal("expected a geometry error for a zero-volume cell")
	}
	if e, ok := err.(*Error); !ok || e.Kind != Geometry {
		t.Errorf("want a Geometry error, got %v", err)
	}
}

func TestPoscarRoundTrip(t *testing.T) {
	p, err := ParsePoscar(poscarNH3)
	if err != nil {
		t.Fatal(err)
	}
	for _, opts := range []*PoscarFormat{
		nil, // defaults
		NewPoscarFormat().Fractional(false),
		NewPoscarFormat().AddSymbolTags(false),
	} {
		text, err := p.Format(opts)
		if err != nil {
			t.Fatal(err)
		}
		q, err := ParsePoscar(text)
		if err != nil {
			t.Fatalf("re-parse: %v\n%s", err, text)
		}
		if q.Comment != p.Comment {
			t.Errorf("comment lost: %q", q.Comment)
		}
		if !reflect.DeepEqual(q.Types, p.Types) {
			t.Errorf("species changed: %v", q.Types)
		}
		if !reflect.DeepEqual(q.Constr, p.Constr) {
			t.Errorf("constraints changed: %v", q.Constr)
		}
		for i := range p.Frac {
			for j := 0; j < 3; j++ {
				if math.Abs(q.Frac[i][j]-p.Frac[i][j]) > 1e-9 {
					t.Errorf("atom %d fractional drifted: %v vs %v", i, q.Frac[i], p.Frac[i])
				}
			}
		}
	}
}

func TestFormatDropConstraints(t *testing.T) {
	p, err := ParsePoscar(poscarNH3)
	if err != nil {
		t.Fatal(err)
	}
	text, err := p.Format(NewPoscarFormat().PreserveConstraints(false))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "Selective Dynamics") {
		t.Error("selective dynamics block written despite being disabled")
	}
	q, err := ParsePoscar(text)
	if err != nil {
		t.Fatal(err)
	}
	if q.Constr != nil {
		t.Errorf("constraints survived: %v", q.Constr)
	}
}

func fiveAtomStructure() *Structure {
	s := &Structure{
		Scale: 1.0,
		Cell:  [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}},
		Types: []Species{{"C", 5}},
	}
	for i := 0; i < 5; i++ {
		s.Cart = append(s.Cart, [3]float64{float64(5 - i), 0, 0})
	}
	s.FracFromCart()
	return s
}

func TestSplit(t *testing.T) {
	s := fiveAtomStructure()
	a, b, err := s.Split([]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if a.Natoms() != 2 || b.Natoms() != 3 {
		t.Errorf("split sizes: got %d/%d, want 2/3", a.Natoms(), b.Natoms())
	}
	if a.Natoms()+b.Natoms() != s.Natoms() {
		t.Error("atoms lost or invented by the split")
	}
	if !reflect.DeepEqual(a.Types, []Species{{"C", 2}}) {
		t.Errorf("half A species: got %v", a.Types)
	}
	if !reflect.DeepEqual(b.Types, []Species{{"C", 3}}) {
		t.Errorf("half B species: got %v", b.Types)
	}
	if a.Cart[0] != s.Cart[0] {
		t.Errorf("half A first atom: got %v, want %v", a.Cart[0], s.Cart[0])
	}
	if b.Cart[0] != s.Cart[2] {
		t.Errorf("half B first atom: got %v, want %v", b.Cart[0], s.Cart[2])
	}
}

func TestSplitDropsEmptySpecies(t *testing.T) {
	p, err := ParsePoscar(poscarNH3)
	if err != nil {
		t.Fatal(err)
	}
	// All three hydrogens to half A; half B keeps only nitrogen.
	a, b, err := p.Split([]int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Types, []Species{{"H", 3}}) {
		t.Errorf("half A species: got %v", a.Types)
	}
	if !reflect.DeepEqual(b.Types, []Species{{"N", 1}}) {
		t.Errorf("half B species: got %v", b.Types)
	}
	if a.Constr == nil || len(a.Constr) != 3 {
		t.Errorf("half A constraints: got %v", a.Constr)
	}
}

func TestSplitBadIndices(t *testing.T) {
	s := fiveAtomStructure()
	if _, _, err := s.Split([]int{7}); err == nil {
		t.Error("out-of-range index accepted")
	}
	if _, _, err := s.Split([]int{1, 1}); err == nil {
		t.Error("duplicate index accepted")
	}
}

func TestSortByAxes(t *testing.T) {
	s := fiveAtomStructure()
	if err := s.SortByAxes("X"); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 5; i++ {
		if s.Cart[i][0] < s.Cart[i-1][0] {
			t.Fatalf("not sorted by X: %v", s.Cart)
		}
	}
	// Sorting an already-sorted structure is a no-op.
	before := append([][3]float64{}, s.Cart...)
	if err := s.SortByAxes("X"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, s.Cart) {
		t.Errorf("second sort changed the order: %v vs %v", before, s.Cart)
	}
}

func TestSortKeepsSpeciesBlocks(t *testing.T) {
	p, err := ParsePoscar(poscarNH3)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SortByAxes("ab"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Types, []Species{{"N", 1}, {"H", 3}}) {
		t.Errorf("species blocks changed: %v", p.Types)
	}
	// The single nitrogen stays first no matter what the hydrogens do.
	if p.Frac[0] != [3]float64{0.5, 0.5, 0.5} {
		t.Errorf("atom outside its species block: %v", p.Frac[0])
	}
	for i := 2; i < 4; i++ {
		if p.Frac[i][0] < p.Frac[i-1][0] {
			t.Errorf("hydrogens not sorted by A: %v", p.Frac[1:])
		}
	}
}

func TestSortBadKeys(t *testing.T) {
	s := fiveAtomStructure()
	for _, key := range []string{"", "AX", "Q", "AA"} {
		if err := s.SortByAxes(key); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}
