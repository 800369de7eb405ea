package ilp

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

// vdwOnlyRow zeroes epsilon and C so only the van der Waals channel is
// active. S = 1000 makes the 1e-3*S load scaling a no-op.
const vdwOnlyRow = "3.4 8.5 0.8 0.0 0.0 15.0 0.8 3.7 26000.0 1000.0 2.0 16.0"

func mustTable(t *testing.T, row string, ntypes int) *Table {
	rows := make([]string, ntypes*ntypes)
	for i := range rows {
		rows[i] = row
	}
	table, err := ReadParams(strings.NewReader(strings.Join(rows, "\n")), ntypes)
	require.NoError(t, err)
	return table
}

// bilayerSystem builds a periodic two-layer honeycomb, one layer per
// group, 8 atoms per layer per cell pair.
func bilayerSystem(nx, ny int, bond, gap float64) (*geom.Box, []geom.Vec, []int, []int) {
	cw := bond * math.Sqrt(3)
	ch := bond * 3
	lz := 40.0

	box := geom.NewBox(float64(nx)*cw, float64(ny)*ch, lz)
	box.Periodic[2] = false

	basis := [4]geom.Vec{
		{0, 0, 0},
		{cw / 2, bond / 2, 0},
		{cw / 2, 1.5 * bond, 0},
		{0, 2 * bond, 0},
	}

	var pos []geom.Vec
	var types, groups []int
	for layer := 0; layer < 2; layer++ {
		z := 0.5*lz + gap*(float64(layer)-0.5)
		for ix := 0; ix < nx; ix++ {
			for iy := 0; iy < ny; iy++ {
				for _, b := range basis {
					pos = append(pos, geom.Vec{
						float64(ix)*cw + b[0], float64(iy)*ch + b[1], z,
					})
					types = append(types, 0)
					groups = append(groups, layer)
				}
			}
		}
	}
	return box, pos, types, groups
}

func evaluate(
	t *testing.T, pot *ILP, box *geom.Box, list *nlist.List,
	types []int, pos []geom.Vec, groups []int,
) ([]float64, []geom.Vec, []geom.Mat3) {
	n := len(pos)
	energy := make([]float64, n)
	force := make([]geom.Vec, n)
	virial := make([]geom.Mat3, n)
	require.NoError(t, pot.Compute(
		box, list, types, pos, groups, energy, force, virial,
	))
	return energy, force, virial
}

func TestTwoAtomVdwClosedForm(t *testing.T) {
	table := mustTable(t, vdwOnlyRow, 1)
	pot := New(table)
	pot.SetWorkers(2)

	box := geom.NewBox(40, 40, 40)
	r := 3.9
	pos := []geom.Vec{{20, 20, 20}, {20, 20, 20 + r}}
	types := []int{0, 0}
	groups := []int{0, 1}

	list := nlist.New(2, 8)
	require.NoError(t, list.Build(box, pos, 16))

	energy, force, _ := evaluate(t, pot, box, list, types, pos, groups)

	p := table.At(0, 0)
	ts := 1 + math.Exp(p.D-p.DSeff*r)
	want := Taper(r, 1/p.RcutGlobal) * (-p.C6 / (math.Pow(r, 6) * ts))
	assert.InDelta(t, want, floats.Sum(energy), 1e-10)
	// Each endpoint carries half.
	assert.InDelta(t, want/2, energy[0], 1e-10)
	assert.InDelta(t, want/2, energy[1], 1e-10)

	// Attraction pulls the atoms together along z.
	assert.Greater(t, force[0][2], 0.0)
	assert.InDelta(t, -force[0][2], force[1][2], 1e-12)
}

func TestTwoAtomNewtonAndVirial(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)
	pot.SetWorkers(1)

	box := geom.NewBox(40, 40, 40)
	pos := []geom.Vec{{20, 20, 20}, {21, 20.5, 23.2}}
	types := []int{0, 0}
	groups := []int{0, 1}

	list := nlist.New(2, 8)
	require.NoError(t, list.Build(box, pos, 16))

	_, force, virial := evaluate(t, pot, box, list, types, pos, groups)

	for a := 0; a < 3; a++ {
		assert.InDelta(t, -force[0][a], force[1][a], 1e-12, "axis %d", a)
	}

	// Total virial of an isolated pair is -r12 (outer) F1.
	rv := box.Displacement(&pos[0], &pos[1])
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			got := virial[0][a][b] + virial[1][a][b]
			assert.InDelta(t, -rv[a]*force[0][b], got, 1e-10,
				"virial[%d][%d]", a, b)
		}
	}
}

func TestForcesMatchEnergyGradient(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)
	pot.SetWorkers(4)

	box, pos, types, groups := bilayerSystem(2, 1, 1.42, 3.4)
	n := len(pos)
	list := nlist.New(n, 64)
	require.NoError(t, list.Build(box, pos, 8))

	_, force, _ := evaluate(t, pot, box, list, types, pos, groups)

	totalEnergy := func() float64 {
		energy := make([]float64, n)
		f := make([]geom.Vec, n)
		w := make([]geom.Mat3, n)
		require.NoError(t, pot.Compute(
			box, list, types, pos, groups, energy, f, w,
		))
		return floats.Sum(energy)
	}

	h := 1e-5
	for _, i := range []int{0, 3, 7, 8, 12, 15} {
		for a := 0; a < 3; a++ {
			orig := pos[i][a]
			pos[i][a] = orig + h
			ep := totalEnergy()
			pos[i][a] = orig - h
			em := totalEnergy()
			pos[i][a] = orig

			fd := -(ep - em) / (2 * h)
			tol := 1e-6 + 1e-6*math.Abs(fd)
			assert.InDelta(t, fd, force[i][a], tol, "atom %d axis %d", i, a)
		}
	}
}

func TestTotalForceAndTranslationInvariance(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)

	box, pos, types, groups := bilayerSystem(2, 1, 1.42, 3.4)
	n := len(pos)
	list := nlist.New(n, 64)
	require.NoError(t, list.Build(box, pos, 8))

	energy, force, _ := evaluate(t, pot, box, list, types, pos, groups)
	e0 := floats.Sum(energy)

	var sum geom.Vec
	for i := range force {
		sum.Add(&force[i])
	}
	for a := 0; a < 3; a++ {
		assert.InDelta(t, 0, sum[a], 1e-9, "axis %d", a)
	}

	// Shift everything and rebuild; the energy must not move.
	shift := geom.Vec{1.7, -0.9, 2.3}
	for i := range pos {
		pos[i].Add(&shift)
		box.Wrap(&pos[i])
	}
	require.NoError(t, list.Build(box, pos, 8))
	energy, _, _ = evaluate(t, pot, box, list, types, pos, groups)
	assert.InDelta(t, e0, floats.Sum(energy), 1e-9)
}

func TestGroupRelabelInvariance(t *testing.T) {
	table := mustTable(t, testRow, 1)
	box, pos, types, groups := bilayerSystem(2, 1, 1.42, 3.4)
	n := len(pos)
	list := nlist.New(n, 64)
	require.NoError(t, list.Build(box, pos, 8))

	energy, _, _ := evaluate(t, New(table), box, list, types, pos, groups)
	e0 := floats.Sum(energy)

	// Any relabeling that preserves the partition is equivalent.
	relabeled := make([]int, n)
	for i, g := range groups {
		relabeled[i] = []int{7, 3}[g]
	}
	energy, _, _ = evaluate(t, New(table), box, list, types, pos, relabeled)
	assert.InDelta(t, e0, floats.Sum(energy), 1e-12)
}

func TestTriangleScenario(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)
	pot.SetWorkers(1)

	// Equilateral triangle in group 0, apex atom in group 1 above the
	// centroid.
	side := 1.5
	h := 3.4
	cx, cy := 10.0, 10.0
	rc := side / math.Sqrt(3) // circumradius
	box := geom.NewBox(20, 20, 20)
	pos := []geom.Vec{
		{cx + rc, cy, 10},
		{cx - rc/2, cy + side/2, 10},
		{cx - rc/2, cy - side/2, 10},
		{cx, cy, 10 + h},
	}
	types := []int{0, 0, 0, 0}
	groups := []int{0, 0, 0, 1}

	// The normals at the triangle atoms are out of plane.
	for i := 0; i < 3; i++ {
		var bonds []geom.Vec
		for j := 0; j < 3; j++ {
			if j == i {
				continue
			}
			bonds = append(bonds, box.Displacement(&pos[i], &pos[j]))
		}
		var ns NormalState
		CalcNormal(bonds, &ns)
		assert.InDelta(t, 1, ns.N[2]*ns.N[2], 1e-12, "atom %d", i)
	}

	list := nlist.New(4, 8)
	require.NoError(t, list.Build(box, pos, 16))

	energy, force, _ := evaluate(t, pot, box, list, types, pos, groups)

	// Symmetry: the apex atom is pushed straight along z.
	assert.InDelta(t, 0, force[3][0], 1e-10)
	assert.InDelta(t, 0, force[3][1], 1e-10)

	var sum geom.Vec
	for i := range force {
		sum.Add(&force[i])
	}
	for a := 0; a < 3; a++ {
		assert.InDelta(t, 0, sum[a], 1e-10, "axis %d", a)
	}

	// The repulsive channel really uses the normals: removing C changes
	// the energy.
	noC := strings.Replace(testRow, "20.0", "0.0", 1)
	energy2, _, _ := evaluate(
		t, New(mustTable(t, noC, 1)), box, list, types, pos, groups,
	)
	assert.Greater(t, math.Abs(floats.Sum(energy)-floats.Sum(energy2)), 1e-6)
}

func TestCapacityOverflowDiagnosed(t *testing.T) {
	table := mustTable(t, testRow, 1)
	gen := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		pot := New(table)
		n := 30
		box := geom.NewBox(5, 5, 5)
		pos := make([]geom.Vec, n)
		types := make([]int, n)
		groups := make([]int, n)
		for i := range pos {
			pos[i] = geom.Vec{
				5 * gen.Float64(), 5 * gen.Float64(), 5 * gen.Float64(),
			}
		}

		list := nlist.New(n, n)
		require.NoError(t, list.Build(box, pos, 2.5))

		energy := make([]float64, n)
		force := make([]geom.Vec, n)
		virial := make([]geom.Mat3, n)
		err := pot.Compute(
			box, list, types, pos, groups, energy, force, virial,
		)
		require.Error(t, err, "trial %d", trial)
		assert.Contains(t, err.Error(), "atom", "trial %d", trial)
	}
}

func TestOutputsAreAdditive(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)

	box, pos, types, groups := bilayerSystem(2, 1, 1.42, 3.4)
	n := len(pos)
	list := nlist.New(n, 64)
	require.NoError(t, list.Build(box, pos, 8))

	fresh, freshF, _ := evaluate(t, pot, box, list, types, pos, groups)

	energy := make([]float64, n)
	force := make([]geom.Vec, n)
	virial := make([]geom.Mat3, n)
	for i := range energy {
		energy[i] = 1.5
		force[i] = geom.Vec{1, 2, 3}
	}
	require.NoError(t, pot.Compute(
		box, list, types, pos, groups, energy, force, virial,
	))

	for i := range energy {
		assert.InDelta(t, 1.5+fresh[i], energy[i], 1e-12)
		assert.InDelta(t, 1+freshF[i][0], force[i][0], 1e-12)
		assert.InDelta(t, 3+freshF[i][2], force[i][2], 1e-12)
	}
}

func TestRepeatedEvaluationIsStable(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)

	box, pos, types, groups := bilayerSystem(2, 1, 1.42, 3.4)
	n := len(pos)
	list := nlist.New(n, 64)
	require.NoError(t, list.Build(box, pos, 8))

	// Without a rebuild the secondary list is reused; with one it is
	// rebuilt. Both must give the same answer for the same geometry.
	e1, _, _ := evaluate(t, pot, box, list, types, pos, groups)
	e2, _, _ := evaluate(t, pot, box, list, types, pos, groups)
	require.NoError(t, list.Build(box, pos, 8))
	e3, _, _ := evaluate(t, pot, box, list, types, pos, groups)

	assert.InDelta(t, floats.Sum(e1), floats.Sum(e2), 1e-12)
	assert.InDelta(t, floats.Sum(e1), floats.Sum(e3), 1e-12)
}

func TestComputeInputValidation(t *testing.T) {
	table := mustTable(t, testRow, 1)
	pot := New(table)
	box := geom.NewBox(10, 10, 10)
	pos := []geom.Vec{{1, 1, 1}, {2, 2, 2}}
	list := nlist.New(2, 4)
	require.NoError(t, list.Build(box, pos, 3))

	energy := make([]float64, 2)
	force := make([]geom.Vec, 2)
	virial := make([]geom.Mat3, 2)

	// Mismatched lengths.
	err := pot.Compute(
		box, list, []int{0}, pos, []int{0, 1}, energy, force, virial,
	)
	assert.Error(t, err)

	// Type outside the table.
	err = pot.Compute(
		box, list, []int{0, 5}, pos, []int{0, 1}, energy, force, virial,
	)
	assert.Error(t, err)
}
