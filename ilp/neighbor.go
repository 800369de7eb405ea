package ilp

import (
	"fmt"

	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

// MaxILPNeighbors is the capacity of the secondary neighbor list. The
// potential assumes a locally three-coordinated lattice; more same-layer
// neighbors within the ILP cutoff means the input is not the kind of
// structure this potential models.
const MaxILPNeighbors = 3

// ilpList is the secondary neighbor list: for each atom, the same-group
// neighbors within the type pair's ILP cutoff, used to build normals.
// Storage is flat with stride MaxILPNeighbors, like the general list.
type ilpList struct {
	count []int
	index []int
}

func newILPList(n int) *ilpList {
	return &ilpList{
		count: make([]int, n),
		index: make([]int, n*MaxILPNeighbors),
	}
}

func (l *ilpList) row(i int) []int {
	off := i * MaxILPNeighbors
	return l.index[off : off+l.count[i]]
}

// buildILPRange filters the general list down to the secondary list for
// atoms in [lo, hi). A capacity overflow is reported with the atom and
// the neighbors found so far; nothing is written past the cap.
func (p *ILP) buildILPRange(
	lo, hi int, box *geom.Box, list *nlist.List,
	types []int, pos []geom.Vec, groups []int,
) error {
	for n1 := lo; n1 < hi; n1++ {
		t1, g1 := types[n1], groups[n1]
		off := n1 * MaxILPNeighbors
		cnt := 0
		for _, n2 := range list.Row(n1) {
			if n2 == n1 || groups[n2] != g1 {
				continue
			}
			d := box.Displacement(&pos[n1], &pos[n2])
			if d.Dot(&d) >= p.table.At(t1, types[n2]).RcutILPSq {
				continue
			}
			if cnt == MaxILPNeighbors {
				return fmt.Errorf(
					"ilp: atom %d has more than %d same-layer neighbors "+
						"within the ILP cutoff (first %d: %v, next: %d); "+
						"the structure is not a well-formed layered lattice",
					n1, MaxILPNeighbors, MaxILPNeighbors,
					p.neigh.index[off:off+MaxILPNeighbors], n2,
				)
			}
			p.neigh.index[off+cnt] = n2
			cnt++
		}
		p.neigh.count[n1] = cnt
	}
	return nil
}
