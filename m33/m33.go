/*
 * m33.go, part of rsgrad.
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

/*Package m33 implements the small 3x3 matrix algebra needed for lattice
work: determinant, closed-form-sized inverse, transpose and the row-wise
transform between fractional and cartesian coordinates. It is a thin layer
over gonum's Dense type, with the fixed 3x3 shape enforced by the Mat value
type.
*/
package m33

import (
	"gonum.org/v1/gonum/mat"
)

// DetTol is the determinant magnitude below which a lattice is considered
// singular and refused for inversion.
const DetTol = 1e-5

// Mat is a 3x3 real matrix. When it holds a lattice, rows are the lattice
// vectors.
type Mat [3][3]float64

// Dense returns a freshly allocated gonum Dense with the contents of m.
func (m Mat) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// FromDense builds a Mat from the first 3x3 block of d. It panics if d is
// smaller than 3x3, as that means the caller is already broken.
func FromDense(d *mat.Dense) Mat {
	r, c := d.Dims()
	if r < 3 || c < 3 {
		panic("m33: Dense smaller than 3x3")
	}
	var m Mat
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// Det returns the determinant of m.
func (m Mat) Det() float64 {
	return mat.Det(m.Dense())
}

// Volume returns the volume of the parallelepiped spanned by the rows of m.
func (m Mat) Volume() float64 {
	v := m.Det()
	if v < 0 {
		return -v
	}
	return v
}

// Inv returns the inverse of m. The second return value is false when
// |det(m)| < DetTol, in which case the returned matrix is meaningless.
func (m Mat) Inv() (Mat, bool) {
	d := m.Det()
	if d < DetTol && d > -DetTol {
		return Mat{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return Mat{}, false
	}
	return FromDense(&inv), true
}

// T returns the transpose of m.
func (m Mat) T() Mat {
	var t Mat
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// Scaled returns m with every element multiplied by s.
func (m Mat) Scaled(s float64) Mat {
	var r Mat
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] * s
		}
	}
	return r
}

// Transform applies m to every row vector in pts (v' = v*m) and returns the
// results in a new slice. pts is not modified.
func Transform(pts [][3]float64, m Mat) [][3]float64 {
	ret := make([][3]float64, len(pts))
	for k, p := range pts {
		for j := 0; j < 3; j++ {
			ret[k][j] = p[0]*m[0][j] + p[1]*m[1][j] + p[2]*m[2][j]
		}
	}
	return ret
}

// CartToFrac converts cartesian coordinates to fractional ones with respect
// to the lattice cell (rows = lattice vectors). ok is false when the cell
// is singular.
func CartToFrac(cart [][3]float64, cell Mat) (frac [][3]float64, ok bool) {
	inv, ok := cell.Inv()
	if !ok {
		return nil, false
	}
	return Transform(cart, inv), true
}

// FracToCart converts fractional coordinates to cartesian ones. It cannot
// fail: any cell, singular or not, defines the product.
func FracToCart(frac [][3]float64, cell Mat) [][3]float64 {
	return Transform(frac, cell)
}
