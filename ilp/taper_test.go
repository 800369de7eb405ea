package ilp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaperEndpoints(t *testing.T) {
	rc := 16.0
	assert.Equal(t, 1.0, Taper(0, 1/rc))
	assert.Equal(t, 0.0, Taper(rc, 1/rc))
	assert.Equal(t, 0.0, Taper(rc+1, 1/rc))

	// Zero slope at both ends.
	assert.InDelta(t, 0, TaperDeriv(0, 1/rc), 1e-14)
	assert.Equal(t, 0.0, TaperDeriv(rc, 1/rc))
}

func TestTaperMonotonic(t *testing.T) {
	rc := 10.0
	prev := 1.0
	for i := 1; i <= 1000; i++ {
		r := rc * float64(i) / 1000
		cur := Taper(r, 1/rc)
		assert.LessOrEqual(t, cur, prev, "r = %g", r)
		assert.GreaterOrEqual(t, cur, 0.0, "r = %g", r)
		prev = cur
	}
}

func TestTaperDerivMatchesFiniteDifference(t *testing.T) {
	rc := 10.0
	h := 1e-6
	for _, r := range []float64{0.5, 2, 5, 7.3, 9.5} {
		fd := (Taper(r+h, 1/rc) - Taper(r-h, 1/rc)) / (2 * h)
		assert.InDelta(t, fd, TaperDeriv(r, 1/rc), 1e-7, "r = %g", r)
	}
}

func TestTaperSharedCutoffGate(t *testing.T) {
	// Value and derivative must switch off at exactly the same r.
	rc := 10.0
	for _, r := range []float64{rc - 1e-12, rc, rc + 1e-12} {
		v, d := Taper(r, 1/rc), TaperDeriv(r, 1/rc)
		assert.Equal(t, v == 0, d == 0, "r = %g", r)
	}
}
