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

// Package raster reads and writes regular geographic grids from
// classic NetCDF and ESRI ASCII files.
package raster

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Grid is a regular two-dimensional grid of values. Missing values are NaN.
type Grid struct {
	// X and Y are the cell-center coordinates of the columns and rows.
	// Each must be strictly monotonic but may be ascending or descending.
	X, Y []float64

	// Data holds the grid values with shape [len(Y), len(X)].
	Data *sparse.DenseArray
}

// NewGrid returns a grid of the given coordinates with every value set
// to NaN.
func NewGrid(x, y []float64) *Grid {
	g := &Grid{X: x, Y: y, Data: sparse.ZerosDense(len(y), len(x))}
	for i := range g.Data.Elements {
		g.Data.Elements[i] = math.NaN()
	}
	return g
}

// Check returns an error if the coordinates do not match the data
// shape or are not monotonic.
func (g *Grid) Check() error {
	if len(g.Data.Shape) != 2 || g.Data.Shape[0] != len(g.Y) || g.Data.Shape[1] != len(g.X) {
		return fmt.Errorf("raster: data shape %v does not match coordinates (%d, %d)",
			g.Data.Shape, len(g.Y), len(g.X))
	}
	if !monotonic(g.X) {
		return fmt.Errorf("raster: x coordinates are not monotonic")
	}
	if !monotonic(g.Y) {
		return fmt.Errorf("raster: y coordinates are not monotonic")
	}
	return nil
}

// At returns the value at row j and column i.
func (g *Grid) At(j, i int) float64 { return g.Data.Get(j, i) }

// Set sets the value at row j and column i.
func (g *Grid) Set(v float64, j, i int) { g.Data.Set(v, j, i) }

// Dx returns the absolute column spacing.
func (g *Grid) Dx() float64 { return spacing(g.X) }

// Dy returns the absolute row spacing.
func (g *Grid) Dy() float64 { return spacing(g.Y) }

// Bounds returns the outer edges of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	dx, dy := g.Dx()/2, g.Dy()/2
	x0, x1 := minMax(g.X)
	y0, y1 := minMax(g.Y)
	return &geom.Bounds{
		Min: geom.Point{X: x0 - dx, Y: y0 - dy},
		Max: geom.Point{X: x1 + dx, Y: y1 + dy},
	}
}

// Index returns the row and column of the pixel containing (x, y).
// ok is false if the point is outside of the grid.
func (g *Grid) Index(x, y float64) (j, i int, ok bool) {
	b := g.Bounds()
	if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
		return 0, 0, false
	}
	return nearestIndex(g.Y, y), nearestIndex(g.X, x), true
}

// Nearest returns the value of the pixel whose center is closest to
// (x, y). Points outside of the grid take the value of the closest
// edge pixel.
func (g *Grid) Nearest(x, y float64) float64 {
	return g.At(nearestIndex(g.Y, y), nearestIndex(g.X, x))
}

// Window returns the index ranges [j0, j1) and [i0, i1) of the pixels
// whose centers are within b.
func (g *Grid) Window(b *geom.Bounds) (j0, j1, i0, i1 int) {
	j0, j1 = span(g.Y, b.Min.Y, b.Max.Y)
	i0, i1 = span(g.X, b.Min.X, b.Max.X)
	return
}

// Center returns the center of pixel (j, i).
func (g *Grid) Center(j, i int) geom.Point {
	return geom.Point{X: g.X[i], Y: g.Y[j]}
}

func spacing(c []float64) float64 {
	if len(c) < 2 {
		return 0
	}
	return math.Abs(c[1] - c[0])
}

func minMax(c []float64) (float64, float64) {
	if len(c) == 0 {
		return math.NaN(), math.NaN()
	}
	if c[0] <= c[len(c)-1] {
		return c[0], c[len(c)-1]
	}
	return c[len(c)-1], c[0]
}

func monotonic(c []float64) bool {
	if len(c) < 2 {
		return true
	}
	asc := c[1] > c[0]
	for k := 1; k < len(c); k++ {
		if (asc && c[k] <= c[k-1]) || (!asc && c[k] >= c[k-1]) {
			return false
		}
	}
	return true
}

// ascending returns a search function over c that works for both
// ascending and descending coordinates, along with a function mapping
// search positions back to indices of c.
func ascending(c []float64) (search func(v float64) int, index func(k int) int) {
	n := len(c)
	if n < 2 || c[0] < c[n-1] {
		return func(v float64) int { return sort.SearchFloat64s(c, v) },
			func(k int) int { return k }
	}
	return func(v float64) int {
			return sort.Search(n, func(k int) bool { return c[n-1-k] >= v })
		},
		func(k int) int { return n - 1 - k }
}

// nearestIndex returns the index of the coordinate closest to v.
// Ties go to the lower coordinate.
func nearestIndex(c []float64, v float64) int {
	if len(c) == 0 {
		return -1
	}
	search, index := ascending(c)
	k := search(v)
	n := len(c)
	switch {
	case k == 0:
		return index(0)
	case k == n:
		return index(n - 1)
	}
	lo, hi := index(k-1), index(k)
	if v-c[lo] <= c[hi]-v {
		return lo
	}
	return hi
}

// span returns the range of indices [k0, k1) of c whose values are
// within [lo, hi]. The range refers to positions in c.
func span(c []float64, lo, hi float64) (int, int) {
	search, index := ascending(c)
	a := search(lo)
	b := search(math.Nextafter(hi, math.Inf(1)))
	if a >= b {
		return 0, 0
	}
	i0, i1 := index(a), index(b-1)
	if i0 > i1 {
		i0, i1 = i1, i0
	}
	return i0, i1 + 1
}
