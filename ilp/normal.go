package ilp

import (
	"github.com/ouyang-laboratory/GPUMD/geom"
)

// normalEps is the squared-magnitude floor below which the unnormalized
// normal is treated as degenerate (coincident or collinear bonds) and
// the undercoordinated default is used instead.
const normalEps = 1e-12

// NormalState is the local surface normal of an atom together with its
// first derivatives: DCenter[a][b] = dn[b]/dr_center[a], and
// DNeighbor[k][a][b] = dn[b]/dr_k[a] for the k-th bonded neighbor.
type NormalState struct {
	N         geom.Vec
	DCenter   geom.Mat3
	DNeighbor [MaxILPNeighbors]geom.Mat3
}

// CalcNormal computes the local normal of an atom from its bond vectors
// (neighbor position minus center, minimum-image folded).
//
// With 0 or 1 bonds there is no local plane and the normal defaults to
// (0,0,1) with zero derivatives. With 2 bonds the normal is the
// normalized cross product of the bonds. With 3 bonds the three pairwise
// cross products are averaged before normalizing, which removes the
// bond-ordering dependence and makes the center derivative identically
// zero.
func CalcNormal(bonds []geom.Vec, ns *NormalState) {
	if len(bonds) > MaxILPNeighbors {
		panic("ilp: more than three normal bonds.")
	}

	*ns = NormalState{N: geom.Vec{0, 0, 1}}

	var raw geom.Vec        // unnormalized normal
	var dCenter geom.Mat3   // row a = d(raw)/dr_center[a]
	var dNeigh [3]geom.Mat3 // row a = d(raw)/dr_k[a]

	switch len(bonds) {
	case 0, 1:
		return
	case 2:
		b0, b1 := &bonds[0], &bonds[1]
		raw = geom.Cross(b0, b1)
		diff := geom.Vec{b0[0] - b1[0], b0[1] - b1[1], b0[2] - b1[2]}
		for a := 0; a < 3; a++ {
			dCenter[a] = geom.BasisCross(a, &diff)
			dNeigh[0][a] = geom.BasisCross(a, b1)
			c := geom.BasisCross(a, b0)
			c.Scale(-1)
			dNeigh[1][a] = c
		}
	case 3:
		b0, b1, b2 := &bonds[0], &bonds[1], &bonds[2]
		c01 := geom.Cross(b0, b1)
		c12 := geom.Cross(b1, b2)
		c20 := geom.Cross(b2, b0)
		for a := 0; a < 3; a++ {
			raw[a] = (c01[a] + c12[a] + c20[a]) / 3
		}
		// The symmetric average makes the center derivative vanish
		// exactly, so dCenter stays zero.
		d0 := geom.Vec{b1[0] - b2[0], b1[1] - b2[1], b1[2] - b2[2]}
		d1 := geom.Vec{b2[0] - b0[0], b2[1] - b0[1], b2[2] - b0[2]}
		d2 := geom.Vec{b0[0] - b1[0], b0[1] - b1[1], b0[2] - b1[2]}
		for a := 0; a < 3; a++ {
			v0 := geom.BasisCross(a, &d0)
			v1 := geom.BasisCross(a, &d1)
			v2 := geom.BasisCross(a, &d2)
			v0.Scale(1.0 / 3)
			v1.Scale(1.0 / 3)
			v2.Scale(1.0 / 3)
			dNeigh[0][a] = v0
			dNeigh[1][a] = v1
			dNeigh[2][a] = v2
		}
	}

	rawSq := raw.Dot(&raw)
	if rawSq < normalEps {
		// Degenerate geometry: fall back to the undercoordinated
		// default rather than dividing by zero.
		return
	}

	invLen := 1 / raw.Norm()
	n := raw
	n.Scale(invLen)
	ns.N = n

	normalizeJacobian(&dCenter, &n, invLen, &ns.DCenter)
	for k := 0; k < len(bonds); k++ {
		normalizeJacobian(&dNeigh[k], &n, invLen, &ns.DNeighbor[k])
	}
}

// normalizeJacobian propagates a raw Jacobian of the unnormalized normal
// through normalization: out[a] = (raw[a] - (raw[a].n) n) / |N|.
func normalizeJacobian(raw *geom.Mat3, n *geom.Vec, invLen float64, out *geom.Mat3) {
	for a := 0; a < 3; a++ {
		dot := raw[a][0]*n[0] + raw[a][1]*n[1] + raw[a][2]*n[2]
		for b := 0; b < 3; b++ {
			out[a][b] = (raw[a][b] - dot*n[b]) * invLen
		}
	}
}
