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
	"errors"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gonum/floats"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam/raster"
)

func TestFileYear(t *testing.T) {
	for name, want := range map[string]int{
		"prec_CMFD_V0200_B-01_01dy_010deg_199101-199112.nc":      1991,
		"prec_CMFD_V0200_B-01_01dy_025deg_199101-199112_huai.nc": 1991,
		"/data/wind_CMFD_2020.nc":                                2020,
		"prec_2003_huai.nc":                                      2003,
		"prec_0200_huai.nc":                                      0,
		"prec.nc":                                                0,
	} {
		y, ok := FileYear(name)
		if ok != (want != 0) || y != want {
			t.Errorf("%s: have %d, %v", name, y, ok)
		}
	}
}

func TestFileYears(t *testing.T) {
	r, ok := FileYears("temp_CMFD_V0200_B-01_01dy_025deg_199001-199212_huai.nc")
	if !ok || r != (YearRange{From: 1990, To: 1992}) {
		t.Errorf("have %+v, %v", r, ok)
	}
	if !(YearRange{From: 1991, To: 2020}).Overlaps(r) {
		t.Error("range starting before 1991 should overlap 1991-2020")
	}
	if (YearRange{From: 1993, To: 2020}).Overlaps(r) {
		t.Error("range ending in 1992 should not overlap 1993-2020")
	}
}

func TestGlobFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	for _, name := range []string{
		"temp_x_199201-199212.nc", "temp_x_199101-199112.nc",
		"temp_x_202101-202112.nc", "temp_x_latest.nc", "prec_x_199101-199112.nc",
		"temp_x_025deg_199301-199312_huai.nc",
	} {
		if err := ioutil.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := GlobFiles(filepath.Join(dir, "temp_*.nc"), YearRange{From: 1991, To: 2020}, logrus.StandardLogger())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "temp_x_025deg_199301-199312_huai.nc"),
		filepath.Join(dir, "temp_x_199101-199112.nc"),
		filepath.Join(dir, "temp_x_199201-199212.nc"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v", files)
	}
	files, err = GlobFiles(filepath.Join(dir, "temp_*.nc"), YearRange{}, logrus.StandardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 5 {
		t.Errorf("unfiltered files = %v", files)
	}
}

func TestPrecipClimatology(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	constant := func(v float64) *raster.Grid {
		g := raster.NewGrid([]float64{114, 115}, []float64{32, 33})
		for k := range g.Data.Elements {
			g.Data.Elements[k] = v
		}
		return g
	}
	a, b := constant(1e-5), constant(1e-5)
	a.Set(math.NaN(), 0, 1)
	b.Set(math.NaN(), 0, 1)
	b.Set(3e-5, 1, 1)
	files := []string{
		writeTestNetCDF(t, dir, "prec_1_huai.nc", map[string][]*raster.Grid{"prec": {a, a}}),
		writeTestNetCDF(t, dir, "prec_2_huai.nc", map[string][]*raster.Grid{"prec": {b}}),
	}
	clim, err := PrecipClimatology(files, "", logrus.StandardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if v := clim.At(0, 0); !floats.EqualWithinAbsOrRel(v, 315.576, 1e-3, 1e-6) {
		t.Errorf("constant rate: %g mm/yr, want 315.576", v)
	}
	if v := clim.At(0, 1); !math.IsNaN(v) {
		t.Errorf("missing pixel = %g", v)
	}
	// (1e-5 + 1e-5 + 3e-5) / 3 mm/s.
	if v := clim.At(1, 1); !floats.EqualWithinAbsOrRel(v, 315.576*5/3, 1e-3, 1e-6) {
		t.Errorf("mean = %g", v)
	}

	_, err = PrecipClimatology(nil, "prec", logrus.StandardLogger())
	var mi *MissingInputError
	if !errors.As(err, &mi) {
		t.Errorf("err = %v", err)
	}
}
