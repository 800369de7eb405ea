/*
package nlist builds and stores the general neighbor list consumed by
the potentials. Storage is flat and atom-major: atom i's neighbors live
in Index[i*MaxNeighbors : i*MaxNeighbors+Count[i]], sorted ascending by
partner index so reciprocal lookups can binary search.
*/
package nlist

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/ouyang-laboratory/GPUMD/geom"
)

// List is a general neighbor list. Gen is bumped on every rebuild so
// consumers that derive secondary state from the list know when to
// refresh it.
type List struct {
	MaxNeighbors int
	Count        []int
	Index        []int
	Gen          int
}

// New creates an empty list for n atoms with the given per-atom capacity.
func New(n, maxNeighbors int) *List {
	if n <= 0 || maxNeighbors <= 0 {
		panic("nlist: atom count and capacity must be positive.")
	}
	return &List{
		MaxNeighbors: maxNeighbors,
		Count:        make([]int, n),
		Index:        make([]int, n*maxNeighbors),
	}
}

// Row returns atom i's neighbor indices.
func (l *List) Row(i int) []int {
	off := i * l.MaxNeighbors
	return l.Index[off : off+l.Count[i]]
}

// Build rebuilds the list with an O(N^2) minimum-image scan against a
// single cutoff. Rows come out sorted. An atom with more than
// MaxNeighbors partners is an input error, not a truncation.
func (l *List) Build(box *geom.Box, pos []geom.Vec, cutoff float64) error {
	if len(pos) != len(l.Count) {
		return fmt.Errorf(
			"nlist: list sized for %d atoms, got %d positions",
			len(l.Count), len(pos),
		)
	}

	cut2 := cutoff * cutoff
	for i := range pos {
		cnt := 0
		off := i * l.MaxNeighbors
		for j := range pos {
			if j == i {
				continue
			}
			d := box.Displacement(&pos[i], &pos[j])
			if d.Dot(&d) >= cut2 {
				continue
			}
			if cnt == l.MaxNeighbors {
				return fmt.Errorf(
					"nlist: atom %d has more than %d neighbors within %g",
					i, l.MaxNeighbors, cutoff,
				)
			}
			l.Index[off+cnt] = j
			cnt++
		}
		l.Count[i] = cnt
		slices.Sort(l.Index[off : off+cnt])
	}

	l.Gen++
	return nil
}

// RowsSorted reports whether every row is sorted ascending. Consumers
// that binary search rows assert this rather than silently falling back
// to a linear scan.
func (l *List) RowsSorted() bool {
	for i := range l.Count {
		if !slices.IsSorted(l.Row(i)) {
			return false
		}
	}
	return true
}
