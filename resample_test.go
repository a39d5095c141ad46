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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/gonum/floats"
	"github.com/spatialmodel/vicparam/raster"
)

// fineGrid is a 5×5 grid of 0.1° pixels covering 114-114.5°E and
// 32-32.5°N whose values are the column index.
func fineGrid() *raster.Grid {
	g := raster.NewGrid(
		[]float64{114.05, 114.15, 114.25, 114.35, 114.45},
		[]float64{32.05, 32.15, 32.25, 32.35, 32.45},
	)
	for j := range g.Y {
		for i := range g.X {
			g.Set(float64(i), j, i)
		}
	}
	return g
}

func checkGrid(t *testing.T, name string, have *raster.Grid, x, y []float64, want [][]float64, tol float64) {
	t.Helper()
	if !floats.EqualApprox(have.X, x, 1e-9) || !floats.EqualApprox(have.Y, y, 1e-9) {
		t.Errorf("%s: coordinates x=%v y=%v, want x=%v y=%v", name, have.X, have.Y, x, y)
		return
	}
	for j := range want {
		for i, w := range want[j] {
			v := have.At(j, i)
			if math.IsNaN(w) && math.IsNaN(v) {
				continue
			}
			if !floats.EqualWithinAbsOrRel(v, w, tol, tol) {
				t.Errorf("%s (%d, %d): have %g, want %g", name, j, i, v, w)
			}
		}
	}
}

func TestResample(t *testing.T) {
	x := []float64{114.125, 114.375}
	y := []float64{32.375, 32.125}

	r, err := Resample(fineGrid(), nil, DefaultResolution)
	if err != nil {
		t.Fatal(err)
	}
	// 114-114.25 covers columns 0 and 1 fully and half of column 2.
	checkGrid(t, "average", r, x, y, [][]float64{{0.8, 3.2}, {0.8, 3.2}}, 1e-9)

	g := fineGrid()
	g.Set(math.NaN(), 0, 0)
	if r, err = Resample(g, nil, DefaultResolution); err != nil {
		t.Fatal(err)
	}
	checkGrid(t, "missing pixel", r, x, y, [][]float64{{0.8, 3.2}, {20. / 21., 3.2}}, 1e-9)

	basin := NewBasin(geom.Polygon{{{X: 114, Y: 31.9}, {X: 114.3, Y: 31.9}, {X: 114.3, Y: 32.6}, {X: 114, Y: 32.6}, {X: 114, Y: 31.9}}})
	if r, err = Resample(fineGrid(), basin, DefaultResolution); err != nil {
		t.Fatal(err)
	}
	// Only half of column 2 is left in the eastern cell.
	checkGrid(t, "clipped", r, x, y, [][]float64{{0.8, 2}, {0.8, 2}}, 1e-9)

	outside := NewBasin(geom.Polygon{{{X: 100, Y: 20}, {X: 101, Y: 20}, {X: 101, Y: 21}, {X: 100, Y: 20}}})
	if _, err = Resample(fineGrid(), outside, DefaultResolution); err == nil {
		t.Error("a basin without pixels should fail")
	}
}

func TestResampledName(t *testing.T) {
	for in, want := range map[string]string{
		"/data/prec_CMFD_V0200_B-01_01dy_010deg_199101-199112.nc": "prec_CMFD_V0200_B-01_01dy_025deg_199101-199112_huai.nc",
		"elev_CMFD_V0200_B-00_fx_010deg.nc":                       "elev_CMFD_V0200_B-00_fx_010deg_huai.nc",
	} {
		if have := ResampledName(in, 0.25, "huai"); have != want {
			t.Errorf("%s: have %s, want %s", in, have, want)
		}
	}
	if have := ResampledName("wind_x_010deg_2001.nc", 0.5, ""); have != "wind_x_050deg_2001.nc" {
		t.Errorf("no suffix: %s", have)
	}
}

func TestResampleFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	double := fineGrid()
	for k := range double.Data.Elements {
		double.Data.Elements[k] *= 2
	}
	in := writeTestNetCDF(t, dir, "prec_x_010deg_1991.nc", map[string][]*raster.Grid{"prec": {fineGrid(), double}})
	out := filepath.Join(dir, ResampledName(in, DefaultResolution, "huai"))
	if err := ResampleFile(in, out, nil, DefaultResolution, testLogger()); err != nil {
		t.Fatal(err)
	}
	g, err := raster.ReadNetCDF(out, "prec", 1)
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, "second record", g, []float64{114.125, 114.375}, []float64{32.375, 32.125},
		[][]float64{{1.6, 6.4}, {1.6, 6.4}}, 1e-6) // stored as float32

	def, err := DefineGrid(out, "", -1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Cells) != 4 || !floats.EqualWithinAbsOrRel(def.Resolution, 0.25, 1e-9, 1e-9) {
		t.Errorf("resampled grid: %d cells at %g°", len(def.Cells), def.Resolution)
	}

	if err := ResampleFile(filepath.Join(dir, "missing.nc"), out, nil, DefaultResolution, testLogger()); err == nil {
		t.Error("missing input should fail")
	}
}
