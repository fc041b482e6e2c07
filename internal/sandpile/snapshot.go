package sandpile

// Snapshot is an owned copy of a pile taken for rendering or inspection.
type Snapshot struct {
	W, H        int
	Counts      []uint64
	Rule        Rule
	Probability float64
	Stats       Stats
}

// CopyTo copies the pile into dst, reusing dst's buffer when it is large
// enough.
func (p *Pile) CopyTo(dst *Snapshot) {
	src := p.grid.Counts()
	if cap(dst.Counts) < len(src) {
		dst.Counts = make([]uint64, len(src))
	}
	dst.Counts = dst.Counts[:len(src)]
	copy(dst.Counts, src)
	dst.W, dst.H = p.grid.W, p.grid.H
	dst.Rule = p.rule
	dst.Probability = p.probability
	dst.Stats = p.stats
}

// Snapshot returns a freshly allocated copy of the pile.
func (p *Pile) Snapshot() *Snapshot {
	s := &Snapshot{}
	p.CopyTo(s)
	return s
}

// ValueAt returns the count at (x, y), or zero outside the grid.
func (s *Snapshot) ValueAt(x, y int) uint64 {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return 0
	}
	return s.Counts[y*s.W+x]
}

// Sum returns the number of grains in the snapshot.
func (s *Snapshot) Sum() uint64 {
	var total uint64
	for _, v := range s.Counts {
		total += v
	}
	return total
}

// Display writes the palette index of every cell into dst, growing it when
// needed, and returns it.
func (s *Snapshot) Display(dst []uint8) []uint8 {
	if cap(dst) < len(s.Counts) {
		dst = make([]uint8, len(s.Counts))
	}
	dst = dst[:len(s.Counts)]
	fillDisplay(dst, s.Counts, s.W, s.H, s.Rule.Bounded())
	return dst
}
