package raster

// circularOffsets returns the neighborhood offsets of a circular structuring
// element of the given radius, center included.
func circularOffsets(radius int) [][2]int {
	var offs [][2]int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offs = append(offs, [2]int{dx, dy})
			}
		}
	}
	return offs
}

// FocalMax dilates the layer with a circular structuring element: a cell is
// true in the output if any cell within the given radius is true in the
// input. The output is always a superset of the input.
func (b *Bool) FocalMax(radius int) *Bool {
	out := NewBool(b.Def)
	offs := circularOffsets(radius)
	w, h := b.Def.Width, b.Def.Height
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if !b.Data[row*w+col] {
				continue
			}
			for _, o := range offs {
				c, r := col+o[0], row+o[1]
				if c < 0 || r < 0 || c >= w || r >= h {
					continue
				}
				out.Data[r*w+c] = true
			}
		}
	}
	return out
}

var eightNeighbors = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Sieve removes connected components smaller than minSize cells, using
// 8-connectivity. Components are evaluated on the native cell layout, so the
// caller must sieve before any resampling.
func (b *Bool) Sieve(minSize int) *Bool {
	w, h := b.Def.Width, b.Def.Height
	out := NewBool(b.Def)
	seen := make([]bool, len(b.Data))
	var stack []int
	var comp []int

	for start, v := range b.Data {
		if !v || seen[start] {
			continue
		}

		// flood-fill one component
		comp = comp[:0]
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, i)
			col, row := i%w, i/w
			for _, n := range eightNeighbors {
				c, r := col+n[0], row+n[1]
				if c < 0 || r < 0 || c >= w || r >= h {
					continue
				}
				j := r*w + c
				if b.Data[j] && !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}

		if len(comp) >= minSize {
			for _, i := range comp {
				out.Data[i] = true
			}
		}
	}
	return out
}
