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

package vicparam

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/gonum/floats"
	"github.com/spatialmodel/vicparam/raster"
	"gonum.org/v1/gonum/stat"
)

// Zonal computes statistics of the raster pixels that fall within the
// boxes of grid cells. A pixel belongs to a cell if its center is
// inside of or on the edge of the cell box.
type Zonal struct {
	def  *GridDef
	grid *raster.Grid
}

// NewZonal returns a Zonal for the cells of def and raster g.
func NewZonal(def *GridDef, g *raster.Grid) *Zonal {
	return &Zonal{def: def, grid: g}
}

// pixels calls f with every non-missing pixel value within the box of c.
func (z *Zonal) pixels(c GridCell, f func(v float64)) {
	box := z.def.Box(c)
	j0, j1, i0, i1 := z.grid.Window(box.Bounds())
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			v := z.grid.At(j, i)
			if math.IsNaN(v) {
				continue
			}
			if z.grid.Center(j, i).Within(box) == geom.Outside {
				continue
			}
			f(v)
		}
	}
}

// Histogram returns the number of pixels of each class within the box
// of c. Pixel values are rounded to the nearest integer.
func (z *Zonal) Histogram(c GridCell) map[int]int {
	h := make(map[int]int)
	z.pixels(c, func(v float64) {
		h[int(math.Round(v))]++
	})
	return h
}

// Majority returns the most frequent class within the box of c. Ties
// go to the lowest class id. ok is false if the box holds no pixels.
func (z *Zonal) Majority(c GridCell) (class int, ok bool) {
	return majority(z.Histogram(c))
}

func majority(h map[int]int) (class int, ok bool) {
	best := -1
	for _, k := range sortedClasses(h) {
		if h[k] > best {
			class, best, ok = k, h[k], true
		}
	}
	return class, ok
}

// Mean returns the mean of the pixels within the box of c. If the box
// holds no pixels, the value of the pixel nearest to the cell center is
// returned, which may be NaN.
func (z *Zonal) Mean(c GridCell) float64 {
	var v []float64
	z.pixels(c, func(x float64) { v = append(v, x) })
	if len(v) == 0 {
		return z.grid.Nearest(c.Lon, c.Lat)
	}
	return stat.Mean(v, nil)
}

// ClassFraction is the areal fraction of one class within a cell.
type ClassFraction struct {
	Class    int
	Fraction float64
}

// Fractions converts a class histogram into areal fractions. The
// excluded class is removed first (use a negative value to keep every
// class), then fractions are computed over the remaining pixels,
// classes with a fraction below threshold are dropped and the
// remaining fractions are scaled to sum to 1. The result is sorted by
// class and is empty if no class remains.
func Fractions(hist map[int]int, excluded int, threshold float64) []ClassFraction {
	var classes []int
	var counts []float64
	for _, k := range sortedClasses(hist) {
		if k == excluded || hist[k] <= 0 {
			continue
		}
		classes = append(classes, k)
		counts = append(counts, float64(hist[k]))
	}
	total := floats.Sum(counts)
	if total == 0 {
		return nil
	}
	floats.Scale(1/total, counts)

	var o []ClassFraction
	var kept []float64
	for i, f := range counts {
		if f < threshold {
			continue
		}
		o = append(o, ClassFraction{Class: classes[i], Fraction: f})
		kept = append(kept, f)
	}
	if len(o) == 0 {
		return nil
	}
	sum := floats.Sum(kept)
	for i := range o {
		o[i].Fraction /= sum
	}
	return o
}

func sortedClasses(h map[int]int) []int {
	k := make([]int, 0, len(h))
	for c := range h {
		k = append(k, c)
	}
	sort.Ints(k)
	return k
}
