/*package io handles run-configuration parsing.*/
package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

const ExampleRunFile = `[Run]

#######################
# Required Parameters #
#######################

# Number of integration steps.
Steps = 1000

# Integration timestep in fs.
Timestep = 1.0

#######################
# Optional Parameters #
#######################

# Cadence of general neighbor list rebuilds, in steps. Default is 10.
# NeighborEvery = 10

# Cadence of the group-temperature sampler, in steps. Default is 100.
# SampleEvery = 100

# File the sampler output is written to. Default is compute.out.
# OutputFile = compute.out

[ILP]

#######################
# Required Parameters #
#######################

# Text file holding the interlayer potential parameters, one ordered
# type pair per line, twelve columns:
# beta alpha delta epsilon C d sR reff C6 S rcut_ilp rcut_global
ParamFile = path/to/params.txt

# Number of atom types the parameter file covers.
Types = 1

#######################
# Optional Parameters #
#######################

# Group channel used for the same-layer test. Default is 0.
# GroupChannel = 0

# Cutoff of the general neighbor list in Angstrom. Defaults to the
# largest global cutoff in the parameter table.
# NeighborCutoff = 0

# Per-atom capacity of the general neighbor list. Default is 512.
# MaxNeighbors = 512`

type RunConfig struct {
	Steps         int
	Timestep      float64
	NeighborEvery int
	SampleEvery   int
	OutputFile    string
}

type ILPConfig struct {
	ParamFile      string
	Types          int
	GroupChannel   int
	NeighborCutoff float64
	MaxNeighbors   int
}

type RunWrapper struct {
	Run RunConfig
	ILP ILPConfig
}

// DefaultRunWrapper returns a wrapper with the documented defaults
// filled in, ready to be overwritten by a config file.
func DefaultRunWrapper() *RunWrapper {
	return &RunWrapper{
		Run: RunConfig{
			Timestep:      1.0,
			NeighborEvery: 10,
			SampleEvery:   100,
			OutputFile:    "compute.out",
		},
		ILP: ILPConfig{
			Types:        1,
			MaxNeighbors: 512,
		},
	}
}

// ReadRunConfig reads file into a default wrapper and validates it.
func ReadRunConfig(file string) (*RunWrapper, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadFileInto(wrap, file); err != nil {
		return nil, err
	}
	if err := wrap.Valid(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// Valid reports the first configuration error, if any.
func (w *RunWrapper) Valid() error {
	switch {
	case w.Run.Steps <= 0:
		return fmt.Errorf("config: Steps must be positive")
	case w.Run.Timestep <= 0:
		return fmt.Errorf("config: Timestep must be positive")
	case w.Run.NeighborEvery <= 0:
		return fmt.Errorf("config: NeighborEvery must be positive")
	case w.Run.SampleEvery <= 0:
		return fmt.Errorf("config: SampleEvery must be positive")
	case w.Run.OutputFile == "":
		return fmt.Errorf("config: OutputFile must not be empty")
	case w.ILP.ParamFile == "":
		return fmt.Errorf("config: ILP.ParamFile is required")
	case w.ILP.Types < 1:
		return fmt.Errorf("config: ILP.Types must be positive")
	case w.ILP.NeighborCutoff < 0:
		return fmt.Errorf("config: ILP.NeighborCutoff must not be negative")
	case w.ILP.MaxNeighbors < 1:
		return fmt.Errorf("config: ILP.MaxNeighbors must be positive")
	}
	return nil
}
