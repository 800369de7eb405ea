package geom

// Box is an orthogonal simulation box with per-axis periodic flags.
type Box struct {
	L        Vec
	Periodic [3]bool
}

// NewBox creates a box with the given side lengths, periodic along every
// axis. Side lengths must be positive.
func NewBox(lx, ly, lz float64) *Box {
	if lx <= 0 || ly <= 0 || lz <= 0 {
		panic("geom: box side lengths must be positive.")
	}
	return &Box{L: Vec{lx, ly, lz}, Periodic: [3]bool{true, true, true}}
}

// MinimumImage folds the displacement d into the shortest equivalent
// vector under the box's periodic boundary conditions.
func (b *Box) MinimumImage(d *Vec) {
	for a := 0; a < 3; a++ {
		if !b.Periodic[a] {
			continue
		}
		half := 0.5 * b.L[a]
		for d[a] >= half {
			d[a] -= b.L[a]
		}
		for d[a] < -half {
			d[a] += b.L[a]
		}
	}
}

// Wrap folds the position p into [0, L) along each periodic axis.
func (b *Box) Wrap(p *Vec) {
	for a := 0; a < 3; a++ {
		if !b.Periodic[a] {
			continue
		}
		for p[a] >= b.L[a] {
			p[a] -= b.L[a]
		}
		for p[a] < 0 {
			p[a] += b.L[a]
		}
	}
}

// Displacement returns the minimum-image displacement from p1 to p2.
func (b *Box) Displacement(p1, p2 *Vec) Vec {
	d := Vec{p2[0] - p1[0], p2[1] - p1[1], p2[2] - p1[2]}
	b.MinimumImage(&d)
	return d
}
