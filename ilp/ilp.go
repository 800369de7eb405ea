/*
package ilp evaluates an anisotropic interlayer potential for layered
materials: isotropic van der Waals attraction plus a repulsion modulated
by each atom's local surface normal.

Evaluation is bulk synchronous. Four stages run in order, each fanned
out over atom ranges and fully joined before the next starts: secondary
neighbor list construction, temporary buffer initialization, the kernel
pass, and the many-body reduction pass. The barrier between the last two
is what makes the buffers safe: every slot has exactly one writer (the
owning atom, kernel pass) and one reader (the partner atom, reduction
pass).
*/
package ilp

import (
	"fmt"
	"runtime"

	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

// ILP owns the parameter table and the per-evaluation scratch state.
// The output arrays it writes to are caller-owned and only ever added
// to, so contributions from other potentials survive.
type ILP struct {
	table   *Table
	workers int

	natoms int
	stride int // general list stride the buffers were sized for
	gen    int // general list generation the secondary list matches

	neigh *ilpList
	pairF []geom.Vec // natoms*stride, direct force of the owner's share
	mbF   []geom.Vec // natoms*MaxILPNeighbors, many-body attributions
}

// New creates an evaluator for the given parameter table.
func New(table *Table) *ILP {
	return &ILP{table: table, workers: runtime.NumCPU(), gen: -1}
}

// SetWorkers overrides the number of concurrent lanes. Mostly useful in
// tests.
func (p *ILP) SetWorkers(n int) {
	if n < 1 {
		panic("ilp: worker count must be positive.")
	}
	p.workers = n
}

// Table returns the evaluator's parameter table.
func (p *ILP) Table() *Table { return p.table }

// Compute adds this potential's contribution to the caller-owned
// per-atom energy, force, and virial arrays. The general neighbor list
// is consumed as-is; the secondary list is rebuilt only when the general
// list's generation has moved since the last call.
func (p *ILP) Compute(
	box *geom.Box, list *nlist.List,
	types []int, pos []geom.Vec, groups []int,
	energy []float64, force []geom.Vec, virial []geom.Mat3,
) error {
	n := len(pos)
	if len(types) != n || len(groups) != n ||
		len(energy) != n || len(force) != n || len(virial) != n {
		return fmt.Errorf("ilp: per-atom array lengths disagree")
	}
	if len(list.Count) != n {
		return fmt.Errorf(
			"ilp: neighbor list covers %d atoms, got %d", len(list.Count), n,
		)
	}
	for i, t := range types {
		if t < 0 || t >= p.table.Types() {
			return fmt.Errorf(
				"ilp: atom %d has type %d outside table range [0, %d)",
				i, t, p.table.Types(),
			)
		}
	}
	if !list.RowsSorted() {
		// The reduction pass binary-searches neighbor rows; an unsorted
		// list is a broken collaborator, not a recoverable input.
		panic("ilp: general neighbor list rows are not sorted.")
	}

	p.resize(n, list.MaxNeighbors)

	if list.Gen != p.gen {
		err := p.forEachRange(n, func(lo, hi int) error {
			return p.buildILPRange(lo, hi, box, list, types, pos, groups)
		})
		if err != nil {
			// Leave the secondary list marked stale so a corrected
			// configuration rebuilds it.
			p.gen = -1
			return err
		}
		p.gen = list.Gen
	}

	_ = p.forEachRange(n, func(lo, hi int) error {
		zero := geom.Vec{}
		for i := lo * p.stride; i < hi*p.stride; i++ {
			p.pairF[i] = zero
		}
		for i := lo * MaxILPNeighbors; i < hi*MaxILPNeighbors; i++ {
			p.mbF[i] = zero
		}
		return nil
	})

	err := p.forEachRange(n, func(lo, hi int) error {
		return p.kernelRange(
			lo, hi, box, list, types, pos, groups, energy, force, virial,
		)
	})
	if err != nil {
		return err
	}

	return p.forEachRange(n, func(lo, hi int) error {
		return p.reduceRange(lo, hi, box, list, pos, groups, force, virial)
	})
}

func (p *ILP) resize(n, stride int) {
	if n == p.natoms && stride == p.stride {
		return
	}
	p.natoms, p.stride = n, stride
	p.neigh = newILPList(n)
	p.pairF = make([]geom.Vec, n*stride)
	p.mbF = make([]geom.Vec, n*MaxILPNeighbors)
	p.gen = -1
}

// forEachRange splits [0, n) across the workers and blocks until every
// range is done, so each call is a full barrier. The last range runs on
// the calling goroutine. The first error wins; the rest are dropped.
func (p *ILP) forEachRange(n int, fn func(lo, hi int) error) error {
	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return fn(0, n)
	}

	out := make(chan error, workers)
	chunk := (n + workers - 1) / workers
	for id := 0; id < workers-1; id++ {
		lo := id * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		go func(lo, hi int) { out <- fn(lo, hi) }(lo, hi)
	}
	out <- fn((workers-1)*chunk, n)

	var first error
	for i := 0; i < workers; i++ {
		if err := <-out; err != nil && first == nil {
			first = err
		}
	}
	return first
}
