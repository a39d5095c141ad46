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
	"reflect"
	"testing"

	"github.com/gonum/floats"
	"github.com/spatialmodel/vicparam/raster"
)

// pixelGrid returns a 10×10 raster of 0.1° pixels covering [0, 1]².
func pixelGrid() *raster.Grid {
	c := make([]float64, 10)
	for i := range c {
		c[i] = 0.05 + float64(i)/10
	}
	return raster.NewGrid(c, append([]float64(nil), c...))
}

func unitCell() (*GridDef, GridCell) {
	c := GridCell{ID: 1, Lat: 0.5, Lon: 0.5}
	return &GridDef{Cells: []GridCell{c}, Resolution: 1}, c
}

func TestZonalFractions(t *testing.T) {
	g := pixelGrid()
	for k := range g.Data.Elements {
		switch {
		case k < 70:
			g.Data.Elements[k] = 3
		case k < 98:
			g.Data.Elements[k] = 5
		default:
			g.Data.Elements[k] = 16
		}
	}
	def, cell := unitCell()
	z := NewZonal(def, g)
	h := z.Histogram(cell)
	if !reflect.DeepEqual(h, map[int]int{3: 70, 5: 28, 16: 2}) {
		t.Fatalf("histogram = %v", h)
	}
	if class, ok := z.Majority(cell); !ok || class != 3 {
		t.Errorf("majority = %d, %v", class, ok)
	}

	check := func(fr []ClassFraction) {
		t.Helper()
		if len(fr) != 2 || fr[0].Class != 3 || fr[1].Class != 5 {
			t.Fatalf("fractions = %v", fr)
		}
		if !floats.EqualWithinAbs(fr[0].Fraction, 0.714, 1e-3) ||
			!floats.EqualWithinAbs(fr[1].Fraction, 0.286, 1e-3) {
			t.Errorf("fractions = %v", fr)
		}
		if !floats.EqualWithinAbs(fr[0].Fraction+fr[1].Fraction, 1, 1e-6) {
			t.Errorf("fractions sum to %g", fr[0].Fraction+fr[1].Fraction)
		}
	}
	// The 2% class is removed as the excluded class.
	check(Fractions(h, 16, 0.03))
	// It is removed by the threshold otherwise.
	check(Fractions(h, -1, 0.03))
}

func TestFractionsDropped(t *testing.T) {
	if fr := Fractions(map[int]int{16: 100}, 16, 0.03); fr != nil {
		t.Errorf("only excluded pixels: %v", fr)
	}
	if fr := Fractions(map[int]int{}, 16, 0.03); fr != nil {
		t.Errorf("no pixels: %v", fr)
	}
	// Fractions are computed after the excluded class is removed.
	h := make(map[int]int)
	for c := 1; c <= 34; c++ {
		h[c] = 1
	}
	if fr := Fractions(h, 16, 0.03); len(fr) != 33 {
		t.Errorf("have %d classes, want 33", len(fr))
	}
}

func TestMajorityTie(t *testing.T) {
	class, ok := majority(map[int]int{7: 5, 2: 5, 4: 1})
	if !ok || class != 2 {
		t.Errorf("majority = %d, %v; want 2", class, ok)
	}
	if _, ok := majority(map[int]int{}); ok {
		t.Error("empty histogram should have no majority")
	}
}

func TestZonalMean(t *testing.T) {
	g := pixelGrid()
	for k := range g.Data.Elements {
		g.Data.Elements[k] = float64(k % 10)
	}
	g.Data.Elements[0] = math.NaN()
	def, cell := unitCell()
	z := NewZonal(def, g)
	// 99 pixels: ten columns of 0..9 minus one 0.
	if m := z.Mean(cell); !floats.EqualWithinAbs(m, 450./99, 1e-12) {
		t.Errorf("mean = %g", m)
	}

	// A cell smaller than a pixel takes the nearest pixel.
	small := GridCell{ID: 2, Lat: 0.52, Lon: 0.33}
	z = NewZonal(&GridDef{Cells: []GridCell{small}, Resolution: 0.01}, g)
	if m := z.Mean(small); m != 3 {
		t.Errorf("nearest fallback = %g, want 3", m)
	}
}
