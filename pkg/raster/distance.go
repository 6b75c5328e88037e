package raster

import "math"

// DirectionalDistance computes, for every cell, the distance in cells to the
// nearest true cell along a fixed direction. The angle is in degrees, math
// convention: counter-clockwise from grid east, with north positive (so an
// angle of 90-azimuth points from a shadow cell back toward the sun). Cells
// with no true cell within maxDist steps get +Inf; true cells themselves get
// 0. The search is a straight single-cell walk, so the result is exact on
// the native cell layout.
func (b *Bool) DirectionalDistance(angleDeg float64, maxDist int) *Grid {
	w, h := b.Def.Width, b.Def.Height
	out := NewGrid(b.Def, math.Inf(1))

	rad := angleDeg * math.Pi / 180
	// row index grows southward, hence the negated sine
	ux := math.Cos(rad)
	uy := -math.Sin(rad)

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := row*w + col
			if b.Data[i] {
				out.Data[i] = 0
				continue
			}
			for t := 1; t <= maxDist; t++ {
				c := col + int(math.Round(float64(t)*ux))
				r := row + int(math.Round(float64(t)*uy))
				if c < 0 || r < 0 || c >= w || r >= h {
					break
				}
				if b.Data[r*w+c] {
					out.Data[i] = float64(t)
					break
				}
			}
		}
	}
	return out
}
