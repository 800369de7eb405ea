package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/ouyang-laboratory/GPUMD/compute"
	"github.com/ouyang-laboratory/GPUMD/geom"
	"github.com/ouyang-laboratory/GPUMD/ilp"
	gio "github.com/ouyang-laboratory/GPUMD/io"
	"github.com/ouyang-laboratory/GPUMD/nlist"
)

const (
	// accelUnit converts (eV/A)/amu to A/fs^2.
	accelUnit  = 9.648533e-3
	carbonMass = 12.011
)

func main() {
	var run, exampleConfig string
	flag.StringVar(&run, "Run", "", "Configuration file for a bilayer run.")
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file to stdout. The only "+
			"accepted argument is 'Run'.",
	)
	flag.Parse()

	switch {
	case exampleConfig == "Run":
		fmt.Println(gio.ExampleRunFile)
		return
	case exampleConfig != "":
		log.Fatalf("Unrecognized config type '%s'.", exampleConfig)
	case run == "":
		log.Fatal("A -Run configuration file is required.")
	}

	wrap, err := gio.ReadRunConfig(run)
	if err != nil {
		log.Fatal(err.Error())
	}

	table, err := ilp.ReadParamsFile(wrap.ILP.ParamFile, wrap.ILP.Types)
	if err != nil {
		log.Fatal(err.Error())
	}

	cutoff := wrap.ILP.NeighborCutoff
	if cutoff == 0 {
		cutoff = table.MaxCutoff()
	}

	box, pos, types, groups := bilayer(8, 4, 1.42, table.At(0, 0).Z0)
	n := len(pos)
	log.Printf("Bilayer demo system: %d atoms.", n)

	list := nlist.New(n, wrap.ILP.MaxNeighbors)
	pot := ilp.New(table)

	mass := make([]float64, n)
	vel := make([]geom.Vec, n)
	gen := rand.New(rand.NewSource(42))
	for i := range mass {
		mass[i] = carbonMass
		for a := 0; a < 3; a++ {
			vel[i][a] = 1e-4 * (gen.Float64() - 0.5)
		}
	}

	energy := make([]float64, n)
	force := make([]geom.Vec, n)
	virial := make([]geom.Mat3, n)

	sampler := compute.NewSampler(2, wrap.Run.SampleEvery, wrap.Run.Steps)

	dt := wrap.Run.Timestep
	evaluate := func(step int) {
		if step%wrap.Run.NeighborEvery == 0 {
			if err := list.Build(box, pos, cutoff); err != nil {
				log.Fatal(err.Error())
			}
		}
		for i := range force {
			energy[i] = 0
			force[i] = geom.Vec{}
			virial[i] = geom.Mat3{}
		}
		err := pot.Compute(
			box, list, types, pos, groups, energy, force, virial,
		)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	evaluate(0)
	for step := 0; step < wrap.Run.Steps; step++ {
		for i := range pos {
			s := 0.5 * dt * accelUnit / mass[i]
			vel[i][0] += s * force[i][0]
			vel[i][1] += s * force[i][1]
			vel[i][2] += s * force[i][2]
			pos[i][0] += dt * vel[i][0]
			pos[i][1] += dt * vel[i][1]
			pos[i][2] += dt * vel[i][2]
			box.Wrap(&pos[i])
		}
		evaluate(step + 1)
		for i := range pos {
			s := 0.5 * dt * accelUnit / mass[i]
			vel[i][0] += s * force[i][0]
			vel[i][1] += s * force[i][1]
			vel[i][2] += s * force[i][2]
		}

		// The demo run has no thermostat, so the heat-exchange columns
		// are zero.
		sampler.Sample(step, mass, vel, groups, 0, 0)

		if (step+1)%wrap.Run.SampleEvery == 0 {
			log.Printf(
				"Step %6d: U = %12.6f eV", step+1, floats.Sum(energy),
			)
		}
	}

	if err := sampler.WriteFile(wrap.Run.OutputFile); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf(
		"Wrote %d samples to %s.", sampler.Samples(), wrap.Run.OutputFile,
	)
	os.Exit(0)
}

// bilayer builds two periodic honeycomb layers separated by gap, the
// lower one in group 0 and the upper in group 1. nx and ny count the
// four-atom rectangular cells per layer; bond is the in-plane bond
// length.
func bilayer(
	nx, ny int, bond, gap float64,
) (*geom.Box, []geom.Vec, []int, []int) {
	cw := bond * math.Sqrt(3) // cell width
	ch := bond * 3            // cell height
	lz := 10*gap + 20

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
						float64(ix)*cw + b[0],
						float64(iy)*ch + b[1],
						z,
					})
					types = append(types, 0)
					groups = append(groups, layer)
				}
			}
		}
	}
	return box, pos, types, groups
}
