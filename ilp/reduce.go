package ilp

import (
	"golang.org/x/exp/slices"

	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

// reduceRange is the second evaluation pass. The kernel pass could only
// apply forces the owner computed locally; the reciprocal halves live in
// the partner atoms' buffer slots and only exist once the whole kernel
// pass has finished. Here each owned atom folds those reciprocal entries
// back: the pairwise reaction with Newton's third law, and the many-body
// forces its same-layer neighbors attributed to it.
func (p *ILP) reduceRange(
	lo, hi int, box *geom.Box, list *nlist.List,
	pos []geom.Vec, groups []int,
	force []geom.Vec, virial []geom.Mat3,
) error {
	for n1 := lo; n1 < hi; n1++ {
		g1 := groups[n1]
		var f geom.Vec
		var w geom.Mat3

		// Pairwise reactions. The partner's cutoff may differ from ours
		// (type pairs are ordered), so every opposite-group neighbor's
		// slot is consulted; slots the partner never wrote are zero.
		for _, n2 := range list.Row(n1) {
			if groups[n2] == g1 {
				continue
			}
			j, ok := slices.BinarySearch(list.Row(n2), n1)
			if !ok {
				continue
			}
			f21 := &p.pairF[n2*list.MaxNeighbors+j]
			f.Sub(f21)
			rv := box.Displacement(&pos[n1], &pos[n2])
			w.AddOuter(0.5, &rv, f21)
		}

		// Many-body contributions attributed to this atom by its
		// same-layer neighbors. The virial sign flips relative to the
		// pairwise case: the geometric origin of this force is the bond
		// from the neighbor to us.
		for _, n2 := range p.neigh.row(n1) {
			j := -1
			for s, nb := range p.neigh.row(n2) {
				if nb == n1 {
					j = s
					break
				}
			}
			if j < 0 {
				continue
			}
			f21 := &p.mbF[n2*MaxILPNeighbors+j]
			f.Add(f21)
			rv := box.Displacement(&pos[n1], &pos[n2])
			w.AddOuter(-0.5, &rv, f21)
		}

		force[n1].Add(&f)
		virial[n1].Add(&w)
	}
	return nil
}
