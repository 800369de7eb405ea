/*
package compute periodically samples per-group kinetic temperature and
thermostat heat exchange during a run and writes the result to a plain
text file at the end.

Units follow the rest of the module: masses in amu, velocities in
Angstrom/fs, energies in eV, temperatures in K.
*/
package compute

import (
	"fmt"
	"io"
	"os"

	"github.com/ouyang-laboratory/GPUMD/geom"
)

const (
	// kB in eV/K.
	kB = 8.617343e-5
	// keUnit converts amu*(A/fs)^2 to eV.
	keUnit = 1.0364270e2
)

// Sampler accumulates one row per sampled step: the kinetic temperature
// of each group followed by the source and sink heat-exchange energies
// reported by the thermostat.
type Sampler struct {
	Interval int

	groups int
	data   []float64 // stride groups+2
}

// NewSampler creates a sampler for the given group count that records
// every interval-th step. steps is the planned run length and only sizes
// the buffer up front.
func NewSampler(groups, interval, steps int) *Sampler {
	if groups < 1 || interval < 1 {
		panic("compute: group count and interval must be positive.")
	}
	s := &Sampler{Interval: interval, groups: groups}
	if steps > 0 {
		s.data = make([]float64, 0, (steps/interval+1)*(groups+2))
	}
	return s
}

// Samples returns the number of rows recorded so far.
func (s *Sampler) Samples() int { return len(s.data) / (s.groups + 2) }

// Sample records one row if step falls on the sampling interval.
// eSource and eSink are passed through untouched; their sign convention
// belongs to the thermostat that produced them.
func (s *Sampler) Sample(
	step int, mass []float64, vel []geom.Vec, groups []int,
	eSource, eSink float64,
) {
	if (step+1)%s.Interval != 0 {
		return
	}

	ke := make([]float64, s.groups)
	cnt := make([]int, s.groups)
	for i := range vel {
		g := groups[i]
		ke[g] += 0.5 * mass[i] * vel[i].Dot(&vel[i])
		cnt[g]++
	}

	for g := 0; g < s.groups; g++ {
		t := 0.0
		if cnt[g] > 0 {
			t = 2 * ke[g] * keUnit / (3 * float64(cnt[g]) * kB)
		}
		s.data = append(s.data, t)
	}
	s.data = append(s.data, eSource, eSink)
}

// Flush writes every recorded row to w, one line per sample: the group
// temperatures followed by the two heat-exchange values, fixed-width
// scientific notation, space separated, no header.
func (s *Sampler) Flush(w io.Writer) error {
	stride := s.groups + 2
	for off := 0; off < len(s.data); off += stride {
		for k := 0; k < stride; k++ {
			sep := " "
			if k == stride-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(w, "%15.7e%s", s.data[off+k], sep); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile appends the recorded rows to the named file.
func (s *Sampler) WriteFile(file string) error {
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Flush(f)
}
