/*
 * m33_test.go, part of rsgrad.
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

package m33

import (
	"math"
	"testing"
)

const eps = 1e-10

func feq(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestDet(t *testing.T) {
	m := Mat{{6, 0, 0}, {0, 7, 0}, {0, 0, 8}}
	if d := m.Det(); !feq(d, 336.0) {
		t.Errorf("Det: got %v, want 336", d)
	}
	if v := m.Volume(); !feq(v, 336.0) {
		t.Errorf("Volume: got %v, want 336", v)
	}
}

func TestInv(t *testing.T) {
	m := Mat{{6, 0, 0}, {0, 7, 0}, {0, 0, 8}}
	inv, ok := m.Inv()
	if !ok {
		t.Fatal("Inv: unexpectedly singular")
	}
	want := Mat{{1.0 / 6, 0, 0}, {0, 1.0 / 7, 0}, {0, 0, 1.0 / 8}}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !feq(inv[i][j], want[i][j]) {
				t.Errorf("Inv[%d][%d]: got %v, want %v", i, j, inv[i][j], want[i][j])
			}
		}
	}
}

func TestInvSingular(t *testing.T) {
	// Two identical rows, zero volume.
	m := Mat{{1, 2, 3}, {1, 2, 3}, {0, 0, 1}}
	if _, ok := m.Inv(); ok {
		t.Error("Inv: singular matrix reported as invertible")
	}
	if _, ok := CartToFrac([][3]float64{{1, 1, 1}}, m); ok {
		t.Error("CartToFrac: singular cell reported as convertible")
	}
}

func TestTranspose(t *testing.T) {
	m := Mat{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	tr := m.T()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if tr[i][j] != m[j][i] {
				t.Fatalf("T: mismatch at %d,%d", i, j)
			}
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	cell := Mat{{6, 0, 0}, {1, 7, 0}, {0, 2, 8}}
	cart := [][3]float64{
		{3.8772, 4.0152, 4.0},
		{3.0, 2.4829, 4.0},
		{2.1228, 4.0152, 4.0},
	}
	frac, ok := CartToFrac(cart, cell)
	if !ok {
		t.Fatal("CartToFrac: cell reported singular")
	}
	back := FracToCart(frac, cell)
	for i := range cart {
		for j := 0; j < 3; j++ {
			if !feq(back[i][j], cart[i][j]) {
				t.Errorf("round trip atom %d axis %d: got %v, want %v", i, j, back[i][j], cart[i][j])
			}
		}
	}
	// Transform must not touch its input.
	if cart[0][0] != 3.8772 {
		t.Error("Transform modified its input")
	}
}

func TestScaled(t *testing.T) {
	m := Mat{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	s := m.Scaled(2.5)
	if !feq(s[0][0], 2.5) || !feq(s[1][1], 2.5) || !feq(s[2][2], 2.5) || !feq(s[0][1], 0) {
		t.Errorf("Scaled: got %v", s)
	}
}
