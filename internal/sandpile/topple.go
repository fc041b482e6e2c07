package sandpile

// toppleThreshold is the orthogonal neighbour count: a cell holding this many
// grains or more is unstable.
const toppleThreshold = 4

// splitPile returns how many grains an unstable pile sends to each neighbour
// and how many it keeps. Piles in [4,8) take the subtraction path; larger piles
// divide. Both paths agree with (c/4, c%4).
func splitPile(c uint64) (multiples, rest uint64) {
	switch {
	case c >= 2*toppleThreshold:
		multiples = c / toppleThreshold
		return multiples, c - toppleThreshold*multiples
	case c >= toppleThreshold:
		return 1, c - toppleThreshold
	default:
		return 0, c
	}
}

// relaxBounded visits every interior cell and drains the avalanches it finds.
// Ring cells absorb grains and are never queued.
func (p *Pile) relaxBounded() {
	cells := p.grid.Counts()
	w, h := p.grid.W, p.grid.H
	for y := 1; y < h-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			p.stats.Steps++
			if cells[row+x] >= toppleThreshold {
				p.work.push(row + x)
			}
		}
	}

	budget := p.budget
	for !p.work.empty() {
		if budget == 0 {
			p.stats.Stable = false
			return
		}
		i := p.work.pop()
		m, rest := splitPile(cells[i])
		if m == 0 {
			continue
		}
		budget--
		cells[i] = rest
		p.stats.Topples++
		x, y := i%w, i/w
		p.deliverBounded(i-1, x-1, y, m)
		p.deliverBounded(i-w, x, y-1, m)
		p.deliverBounded(i+1, x+1, y, m)
		p.deliverBounded(i+w, x, y+1, m)
	}
	p.stats.Stable = true
}

func (p *Pile) deliverBounded(i, x, y int, m uint64) {
	cells := p.grid.Counts()
	p.stats.Steps++
	cells[i] += m
	if cells[i] >= toppleThreshold && x > 0 && y > 0 && x < p.grid.W-1 && y < p.grid.H-1 {
		p.work.push(i)
	}
}

// relaxToroidal is relaxBounded on a torus. No grain ever leaves the grid.
func (p *Pile) relaxToroidal() {
	cells := p.grid.Counts()
	w := p.grid.W
	for i, c := range cells {
		p.stats.Steps++
		if c >= toppleThreshold {
			p.work.push(i)
		}
	}

	budget := p.budget
	for !p.work.empty() {
		if budget == 0 {
			p.stats.Stable = false
			return
		}
		i := p.work.pop()
		m, rest := splitPile(cells[i])
		if m == 0 {
			continue
		}
		budget--
		cells[i] = rest
		p.stats.Topples++
		west, north, east, south := p.torusNeighbors(i%w, i/w)
		p.deliverToroidal(west, m)
		p.deliverToroidal(north, m)
		p.deliverToroidal(east, m)
		p.deliverToroidal(south, m)
	}
	p.stats.Stable = true
}

func (p *Pile) deliverToroidal(i int, m uint64) {
	cells := p.grid.Counts()
	p.stats.Steps++
	cells[i] += m
	if cells[i] >= toppleThreshold {
		p.work.push(i)
	}
}

// torusNeighbors returns the linear indices of the west, north, east and
// south neighbours of (x, y) with wrap-around.
func (p *Pile) torusNeighbors(x, y int) (west, north, east, south int) {
	w, h := p.grid.W, p.grid.H
	i := y*w + x
	west, east, north, south = i-1, i+1, i-w, i+w
	if x == 0 {
		west = i + w - 1
	}
	if x == w-1 {
		east = i - w + 1
	}
	if y == 0 {
		north = i + (h-1)*w
	}
	if y == h-1 {
		south = x
	}
	return west, north, east, south
}

// sweepBounded performs one row-major pass over the interior. Grains that land
// on cells later in the same pass are seen by those cells in this pass.
func (p *Pile) sweepBounded() {
	if p.probability < 1 {
		p.sweepStochastic(true)
		return
	}
	cells := p.grid.Counts()
	w, h := p.grid.W, p.grid.H
	toppled := false
	for y := 1; y < h-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			i := row + x
			p.stats.Steps++
			m, rest := splitPile(cells[i])
			if m == 0 {
				continue
			}
			cells[i] = rest
			cells[i-1] += m
			cells[i-w] += m
			cells[i+1] += m
			cells[i+w] += m
			p.stats.Topples++
			toppled = true
		}
	}
	p.stats.Stable = !toppled
}

// sweepToroidal performs one deterministic row-major pass on the torus.
func (p *Pile) sweepToroidal() {
	if p.probability < 1 {
		p.sweepStochastic(false)
		return
	}
	cells := p.grid.Counts()
	w, h := p.grid.W, p.grid.H
	toppled := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			p.stats.Steps++
			m, rest := splitPile(cells[i])
			if m == 0 {
				continue
			}
			cells[i] = rest
			west, north, east, south := p.torusNeighbors(x, y)
			cells[west] += m
			cells[north] += m
			cells[east] += m
			cells[south] += m
			p.stats.Topples++
			toppled = true
		}
	}
	p.stats.Stable = !toppled
}

// sweepStochastic performs one pass where every unstable cell offers one grain
// to each neighbour and each offer succeeds with the configured probability.
// The pass counts as stable only if it found no unstable cell at all.
func (p *Pile) sweepStochastic(bounded bool) {
	cells := p.grid.Counts()
	w, h := p.grid.W, p.grid.H
	x0, y0, x1, y1 := 0, 0, w, h
	if bounded {
		x0, y0, x1, y1 = 1, 1, w-1, h-1
	}
	unstable := false
	var targets [4]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := y*w + x
			p.stats.Steps++
			if cells[i] < toppleThreshold {
				continue
			}
			unstable = true
			if bounded {
				targets = [4]int{i - 1, i - w, i + 1, i + w}
			} else {
				targets[0], targets[1], targets[2], targets[3] = p.torusNeighbors(x, y)
			}
			var moved uint64
			for _, t := range targets {
				if p.rng.Float64() < p.probability {
					cells[t]++
					moved++
				}
			}
			if moved > 0 {
				cells[i] -= moved
				p.stats.Topples++
			}
		}
	}
	p.stats.Stable = !unstable
}
