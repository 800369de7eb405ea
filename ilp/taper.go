package ilp

// Coefficients of the switching polynomial in x = r/rc. The polynomial
// is 1 at x=0, 0 at x=1, and has zero slope at both ends.
var tapCoeff = [8]float64{1, 0, 0, 0, -35, 84, -70, 20}

// Taper evaluates the cutoff switching function at distance r. rcInv is
// the inverse cutoff. The r >= rc gate here and in TaperDeriv must stay
// identical or the two evaluators disagree at the cutoff.
func Taper(r, rcInv float64) float64 {
	x := r * rcInv
	if x >= 1 {
		return 0
	}
	t := tapCoeff[7]
	for i := 6; i >= 0; i-- {
		t = t*x + tapCoeff[i]
	}
	return t
}

// TaperDeriv evaluates d(Taper)/dr at distance r.
func TaperDeriv(r, rcInv float64) float64 {
	x := r * rcInv
	if x >= 1 {
		return 0
	}
	t := 7 * tapCoeff[7]
	for i := 6; i >= 1; i-- {
		t = t*x + float64(i)*tapCoeff[i]
	}
	return t * rcInv
}
