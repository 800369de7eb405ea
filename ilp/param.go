package ilp

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/table"
)

const (
	// MaxTypes bounds the number of atom types a Table may hold.
	MaxTypes = 10
	// paramFields is the per-pair field count of the parameter stream.
	paramFields = 12
)

// Params holds the constants of one ordered type pair, already converted
// to the form the kernels evaluate. Energies are in eV, lengths in
// Angstrom.
type Params struct {
	C         float64 // repulsive prefactor, scaled by 1e-3*S at load
	C6        float64 // dispersion coefficient, scaled by 1e-3*S at load
	D         float64 // vdW damping steepness
	DSeff     float64 // D / (sR * reff)
	Epsilon   float64 // well depth, scaled by 1e-3*S at load
	Z0        float64 // equilibrium separation (= beta)
	Lambda    float64 // inverse decay rate, alpha / beta
	Delta2Inv float64 // 1 / delta^2
	S         float64 // global energy scale

	RcutILPSq  float64 // squared cutoff of the normal-building list
	RcutGlobal float64 // cutoff of the pair interaction
}

// Table is the immutable per-type-pair parameter table. Entries (i,j)
// and (j,i) are stored separately and may differ.
type Table struct {
	ntypes int
	params []Params // ntypes*ntypes, row-major by first type
}

// Types returns the number of atom types the table covers.
func (t *Table) Types() int { return t.ntypes }

// At returns the parameters of the ordered type pair (ti, tj).
func (t *Table) At(ti, tj int) *Params {
	return &t.params[ti*t.ntypes+tj]
}

// MaxCutoff returns the largest global cutoff in the table. The general
// neighbor list must reach at least this far.
func (t *Table) MaxCutoff() float64 {
	max := 0.0
	for i := range t.params {
		if t.params[i].RcutGlobal > max {
			max = t.params[i].RcutGlobal
		}
	}
	return max
}

func paramsFromFields(f []float64, ti, tj int) (Params, error) {
	beta, alpha, delta := f[0], f[1], f[2]
	eps, c, d := f[3], f[4], f[5]
	sR, reff, c6 := f[6], f[7], f[8]
	s, rcILP, rcGlobal := f[9], f[10], f[11]

	switch {
	case beta == 0:
		return Params{}, fmt.Errorf("ilp: pair (%d,%d): beta is zero", ti, tj)
	case delta == 0:
		return Params{}, fmt.Errorf("ilp: pair (%d,%d): delta is zero", ti, tj)
	case sR*reff == 0:
		return Params{}, fmt.Errorf(
			"ilp: pair (%d,%d): sR*reff is zero", ti, tj,
		)
	case rcILP <= 0 || rcGlobal <= 0:
		return Params{}, fmt.Errorf(
			"ilp: pair (%d,%d): cutoffs must be positive, got %g and %g",
			ti, tj, rcILP, rcGlobal,
		)
	}

	scale := 1e-3 * s
	return Params{
		C:          c * scale,
		C6:         c6 * scale,
		D:          d,
		DSeff:      d / (sR * reff),
		Epsilon:    eps * scale,
		Z0:         beta,
		Lambda:     alpha / beta,
		Delta2Inv:  1 / (delta * delta),
		S:          s,
		RcutILPSq:  rcILP * rcILP,
		RcutGlobal: rcGlobal,
	}, nil
}

// ReadParams reads a parameter table for ntypes atom types from r. The
// stream holds one ordered type pair per row in row-major order, each
// with the twelve whitespace-separated fields
// (beta, alpha, delta, epsilon, C, d, sR, reff, C6, S, rcutILP,
// rcutGlobal).
func ReadParams(r io.Reader, ntypes int) (*Table, error) {
	if ntypes < 1 || ntypes > MaxTypes {
		return nil, fmt.Errorf(
			"ilp: type count %d outside supported range [1, %d]",
			ntypes, MaxTypes,
		)
	}

	t := &Table{ntypes: ntypes, params: make([]Params, ntypes*ntypes)}
	f := make([]float64, paramFields)
	for i := 0; i < ntypes; i++ {
		for j := 0; j < ntypes; j++ {
			for k := range f {
				if _, err := fmt.Fscan(r, &f[k]); err != nil {
					return nil, fmt.Errorf(
						"ilp: pair (%d,%d) field %d: %v", i, j, k, err,
					)
				}
			}
			p, err := paramsFromFields(f, i, j)
			if err != nil {
				return nil, err
			}
			t.params[i*ntypes+j] = p
		}
	}
	return t, nil
}

// ReadParamsFile reads a parameter table from a twelve-column text file
// with one ordered type pair per line.
func ReadParamsFile(file string, ntypes int) (*Table, error) {
	if ntypes < 1 || ntypes > MaxTypes {
		return nil, fmt.Errorf(
			"ilp: type count %d outside supported range [1, %d]",
			ntypes, MaxTypes,
		)
	}

	colIdxs := make([]int, paramFields)
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil {
		return nil, err
	}
	if len(cols[0]) != ntypes*ntypes {
		return nil, fmt.Errorf(
			"ilp: %s: expected %d parameter rows for %d types, got %d",
			file, ntypes*ntypes, ntypes, len(cols[0]),
		)
	}

	t := &Table{ntypes: ntypes, params: make([]Params, ntypes*ntypes)}
	f := make([]float64, paramFields)
	for row := 0; row < ntypes*ntypes; row++ {
		for k := range f {
			f[k] = cols[k][row]
		}
		p, err := paramsFromFields(f, row/ntypes, row%ntypes)
		if err != nil {
			return nil, err
		}
		t.params[row] = p
	}
	return t, nil
}
