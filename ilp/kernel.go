package ilp

import (
	"math"

	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

// kernelRange is the first evaluation pass. For each owned atom it
// builds the normal state from the secondary list, scans the general
// list for opposite-group partners, and accumulates the owner's share of
// energy, force, and half-weighted virial. The direct force of the
// owner's share goes into the pairwise buffer slot (read by the partner
// in the reduction pass) and the per-contributor many-body forces are
// collected locally and published to the many-body buffer once, after
// the scan.
func (p *ILP) kernelRange(
	lo, hi int, box *geom.Box, list *nlist.List,
	types []int, pos []geom.Vec, groups []int,
	energy []float64, force []geom.Vec, virial []geom.Mat3,
) error {
	var ns NormalState
	var bonds [MaxILPNeighbors]geom.Vec

	for n1 := lo; n1 < hi; n1++ {
		t1, g1 := types[n1], groups[n1]

		m := p.neigh.count[n1]
		ilpRow := p.neigh.row(n1)
		for k, nk := range ilpRow {
			bonds[k] = box.Displacement(&pos[n1], &pos[nk])
		}
		CalcNormal(bonds[:m], &ns)

		var f geom.Vec
		var w geom.Mat3
		var fmb [MaxILPNeighbors]geom.Vec
		pe := 0.0

		row := list.Row(n1)
		pairOff := n1 * list.MaxNeighbors
		for idx, n2 := range row {
			if groups[n2] == g1 {
				continue
			}
			prm := p.table.At(t1, types[n2])
			rv := box.Displacement(&pos[n1], &pos[n2])
			d2 := rv.Dot(&rv)
			if d2 >= prm.RcutGlobal*prm.RcutGlobal {
				continue
			}

			r := math.Sqrt(d2)
			rinv := 1 / r
			rcInv := 1 / prm.RcutGlobal
			tap := Taper(r, rcInv)
			dtap := TaperDeriv(r, rcInv)

			// Damped van der Waals attraction; the owner carries half.
			r6inv := rinv * rinv * rinv * rinv * rinv * rinv
			ts := 1 + math.Exp(prm.D-prm.DSeff*r)
			vvdw := -prm.C6 * r6inv / ts
			dvvdw := 6*prm.C6*r6inv*rinv/ts -
				prm.C6*r6inv*prm.DSeff*(ts-1)/(ts*ts)

			// Anisotropic repulsion against the owner's normal.
			dot := ns.N.Dot(&rv)
			rho2 := d2 - dot*dot
			exp0 := math.Exp(-prm.Lambda * (r - prm.Z0))
			frho := prm.C * math.Exp(-rho2*prm.Delta2Inv)
			vrep := exp0 * (0.5*prm.Epsilon + frho)

			vown := tap * (0.5*vvdw + vrep)
			pe += vown

			// Gradient of the owner's share with respect to the bond
			// vector, and with respect to the normal.
			radial := dtap*(0.5*vvdw+vrep) +
				tap*(0.5*dvvdw-prm.Lambda*vrep)
			c2 := 2 * tap * exp0 * frho * prm.Delta2Inv
			var gv, gn geom.Vec
			for a := 0; a < 3; a++ {
				gv[a] = radial*rv[a]*rinv - c2*(rv[a]-dot*ns.N[a])
				gn[a] = c2 * dot * rv[a]
			}

			// Direct force on the owner; the partner picks up the
			// reaction from the pairwise buffer in the next pass.
			f.Add(&gv)
			p.pairF[pairOff+idx] = gv
			w.AddOuter(-0.5, &rv, &gv)

			// The normal's dependence on the center and on each
			// contributing neighbor.
			fc := ns.DCenter.VecMul(&gn)
			f.Sub(&fc)
			for k := 0; k < m; k++ {
				fk := ns.DNeighbor[k].VecMul(&gn)
				fmb[k][0] -= fk[0]
				fmb[k][1] -= fk[1]
				fmb[k][2] -= fk[2]
			}
		}

		// Publish the many-body accumulator once per atom and take the
		// owner's half of its virial.
		mbOff := n1 * MaxILPNeighbors
		for k := 0; k < m; k++ {
			p.mbF[mbOff+k] = fmb[k]
			w.AddOuter(0.5, &bonds[k], &fmb[k])
		}

		energy[n1] += pe
		force[n1].Add(&f)
		virial[n1].Add(&w)
	}
	return nil
}
