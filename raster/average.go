/*
Copyright © 2024 the vicparam authors.
This file is part of vicparam.

vicparam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

vicparam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with vicparam.  If not, see <http://www.gnu.org/licenses/>.
*/

package raster

import (
	"fmt"
	"math"
)

// Average returns a grid of nx columns and ny rows of square cells of
// side res whose upper left corner is (left, top). Rows run from north
// to south. Each cell holds the mean of the non-missing pixels of g
// weighted by their overlap area with the cell; cells that overlap no
// such pixel are NaN.
func (g *Grid) Average(left, top, res float64, nx, ny int) (*Grid, error) {
	if res <= 0 || nx < 1 || ny < 1 {
		return nil, fmt.Errorf("raster: invalid target grid %d×%d at resolution %g", nx, ny, res)
	}
	x := make([]float64, nx)
	for i := range x {
		x[i] = left + (float64(i)+0.5)*res
	}
	y := make([]float64, ny)
	for j := range y {
		y[j] = top - (float64(j)+0.5)*res
	}
	o := NewGrid(x, y)
	hx, hy := g.Dx()/2, g.Dy()/2
	for j, cy := range y {
		y0, y1 := cy-res/2, cy+res/2
		pj0, pj1 := span(g.Y, y0-hy, y1+hy)
		for i, cx := range x {
			x0, x1 := cx-res/2, cx+res/2
			pi0, pi1 := span(g.X, x0-hx, x1+hx)
			var sum, weight float64
			for pj := pj0; pj < pj1; pj++ {
				wy := overlap(g.Y[pj]-hy, g.Y[pj]+hy, y0, y1)
				if wy == 0 {
					continue
				}
				for pi := pi0; pi < pi1; pi++ {
					v := g.At(pj, pi)
					if math.IsNaN(v) {
						continue
					}
					w := wy * overlap(g.X[pi]-hx, g.X[pi]+hx, x0, x1)
					sum += w * v
					weight += w
				}
			}
			if weight > 0 {
				o.Set(sum/weight, j, i)
			}
		}
	}
	return o, nil
}

// overlap returns the length of the intersection of [a0, a1] and [b0, b1].
func overlap(a0, a1, b0, b1 float64) float64 {
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}
