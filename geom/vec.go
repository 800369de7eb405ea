/*
package geom contains the small geometric primitives used by the force
core: three dimensional vectors, 3x3 matrices, and the periodic
simulation box.
*/
package geom

import (
	"math"
)

// Vec is a three dimensional vector.
type Vec [3]float64

// Mat3 is a 3x3 matrix. When a Mat3 stores a Jacobian, M[a][b] is the
// derivative of component b with respect to coordinate a.
type Mat3 [3][3]float64

func (v *Vec) Dot(u *Vec) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

func (v *Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v *Vec) Add(u *Vec) {
	v[0] += u[0]
	v[1] += u[1]
	v[2] += u[2]
}

func (v *Vec) Sub(u *Vec) {
	v[0] -= u[0]
	v[1] -= u[1]
	v[2] -= u[2]
}

func (v *Vec) Scale(s float64) {
	v[0] *= s
	v[1] *= s
	v[2] *= s
}

// Cross returns v x u.
func Cross(v, u *Vec) Vec {
	return Vec{
		v[1]*u[2] - v[2]*u[1],
		v[2]*u[0] - v[0]*u[2],
		v[0]*u[1] - v[1]*u[0],
	}
}

// BasisCross returns e_a x u, the cross product of the a-th Cartesian
// basis vector with u. It shows up when differentiating cross products
// with respect to a single coordinate.
func BasisCross(a int, u *Vec) Vec {
	switch a {
	case 0:
		return Vec{0, -u[2], u[1]}
	case 1:
		return Vec{u[2], 0, -u[0]}
	case 2:
		return Vec{-u[1], u[0], 0}
	}
	panic("geom: basis index out of range.")
}

// VecMul returns w with w[a] = sum_b m[a][b]*g[b]. For a Jacobian this is
// the chain-rule contraction of a gradient g against m.
func (m *Mat3) VecMul(g *Vec) Vec {
	var w Vec
	for a := 0; a < 3; a++ {
		w[a] = m[a][0]*g[0] + m[a][1]*g[1] + m[a][2]*g[2]
	}
	return w
}

// AddOuter adds s * (v outer u) to m.
func (m *Mat3) AddOuter(s float64, v, u *Vec) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			m[a][b] += s * v[a] * u[b]
		}
	}
}

func (m *Mat3) Add(o *Mat3) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			m[a][b] += o[a][b]
		}
	}
}
