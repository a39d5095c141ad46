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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gonum/floats"
	"github.com/spatialmodel/vicparam/raster"
)

func globalSoilRow(id int, lat, lon, avgT, quartz float64) string {
	f := make([]string, NumColumns)
	for i := range f {
		f[i] = "0"
	}
	for _, c := range Layers(WcrFract1) {
		f[c] = "0.3"
	}
	f[0], f[1] = "1", fmt.Sprint(id)
	f[2], f[3] = fmt.Sprint(lat), fmt.Sprint(lon)
	f[25] = fmt.Sprint(avgT)
	f[30], f[31], f[32] = fmt.Sprint(quartz), fmt.Sprint(quartz), fmt.Sprint(quartz)
	return strings.Join(f, " ")
}

// soilFixture writes a complete set of soil inputs for templateGrid
// to dir and returns a configuration that reads them.
func soilFixture(t *testing.T, dir string) *Config {
	t.Helper()
	tmpl := templateGrid()
	writeTestNetCDF(t, dir, "template.nc", map[string][]*raster.Grid{"mask": {tmpl}})

	dem := raster.NewGrid(tmpl.X, tmpl.Y)
	for k := range dem.Data.Elements {
		dem.Data.Elements[k] = 20 + float64(k)
	}
	if err := raster.Create(filepath.Join(dir, "dem.asc"), "", dem, -9999); err != nil {
		t.Fatal(err)
	}

	prec := raster.NewGrid(tmpl.X, tmpl.Y)
	for k := range prec.Data.Elements {
		prec.Data.Elements[k] = 1e-5
	}
	writeTestNetCDF(t, dir, "prec_1991_huai.nc", map[string][]*raster.Grid{"prec": {prec, prec}})

	attr := "grid_id,SHARE,T_USDA_TEX_CLASS,S_USDA_TEX_CLASS\n1,90,9,10\n2,100,3,3\n4,10,12,12\n"
	if err := ioutil.WriteFile(filepath.Join(dir, "zonal.csv"), []byte(attr), 0644); err != nil {
		t.Fatal(err)
	}

	global := strings.Join([]string{
		globalSoilRow(1, 32, 114, 14, 0.2),
		globalSoilRow(2, 32, 115, 14, 0.2),
		globalSoilRow(3, 33, 114, 16, 0.4),
		globalSoilRow(4, 33, 115, 16, 0.4),
	}, "\n")
	if err := ioutil.WriteFile(filepath.Join(dir, "global_soil.txt"), []byte(global), 0644); err != nil {
		t.Fatal(err)
	}

	c := DefaultConfig()
	c.GridTemplate = filepath.Join(dir, "template.nc")
	c.Elevation = filepath.Join(dir, "dem.asc")
	c.Texture = TextureConfig{Source: "table", Table: filepath.Join(dir, "zonal.csv")}
	c.Interp.GlobalSoil = filepath.Join(dir, "global_soil.txt")
	c.Precip.Files = filepath.Join(dir, "prec_*_huai.nc")
	return c
}

func TestRunSoil(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	c := soilFixture(t, dir)

	tbl, err := RunSoil(c, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 5 {
		t.Fatalf("%d rows", tbl.Len())
	}
	for _, test := range []struct {
		row  int
		col  Column
		want float64
	}{
		{0, Elev, 20},
		{2, Elev, 23}, // the missing template cell is skipped
		{0, Expt1, 13.362},
		{0, Expt3, 18.152},
		{1, Ksat3, 763.2},
		{2, Ksat1, 0}, // grid 3 has no record
		{0, InitMoist1, 0.145},
		{0, AvgT, 14.25},
		{4, Quartz2, 0.325},
		{3, AnnualPrec, 315.576},
		{0, OffGMT, 7.6},
		{0, Ds, 0.02},
		{0, Depth3, Missing},
	} {
		v, _ := tbl.Get(test.row, test.col)
		if !floats.EqualWithinAbsOrRel(v, test.want, 1e-3, 1e-6) {
			t.Errorf("row %d %s: have %g, want %g", test.row, test.col, v, test.want)
		}
	}

	out := filepath.Join(dir, "soil_param.txt")
	if err := c.Formatter().WriteFile(out, tbl); err != nil {
		t.Fatal(err)
	}
	back, err := ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != tbl.Len() {
		t.Errorf("read back %d rows", back.Len())
	}
	b, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	first := string(b[:bytes.IndexByte(b, '\n')])
	if !strings.HasPrefix(first, "1 1 32.1250 114.1250 0.30 0.02 10 0.70 2 13.36 13.36 18.15 ") {
		t.Errorf("first line: %s", first)
	}
}

func TestRunSoilPolicies(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	c := soilFixture(t, dir)

	c.InitMoist.Policy = InterpolateMoist
	c.Texture.Source = "ptf"
	tbl, err := RunSoil(c, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	// The fixture's global file has zero initial moisture and the
	// attribute table has no sand or clay.
	if v, _ := tbl.Get(0, InitMoist1); v != 0 {
		t.Errorf("interpolated init_moist_1 = %g", v)
	}
	if v, _ := tbl.Get(0, Expt1); v != PTFFallback.Expt {
		t.Errorf("ptf expt_1 = %g", v)
	}

	c.InitMoist.Policy = SentinelMoist
	c.Interp.Hydraulics = true
	if tbl, err = RunSoil(c, testLogger()); err != nil {
		t.Fatal(err)
	}
	if v, _ := tbl.Get(0, InitMoist3); v != Missing {
		t.Errorf("sentinel init_moist_3 = %g", v)
	}
	if v, _ := tbl.Get(0, Ksat1); v != 0 {
		t.Errorf("interpolated Ksat_1 = %g", v)
	}

	// Initial moisture follows the interpolated critical point even
	// though initmoist is listed before interpolate.
	c.InitMoist = InitMoistConfig{Policy: WcrFraction, Fraction: 0.5}
	if tbl, err = RunSoil(c, testLogger()); err != nil {
		t.Fatal(err)
	}
	if v, _ := tbl.Get(0, InitMoist1); !floats.EqualWithinAbsOrRel(v, 0.15, 1e-9, 1e-9) {
		t.Errorf("init_moist_1 = %g, want 0.15", v)
	}
}

func TestStageOrder(t *testing.T) {
	for _, test := range []struct {
		stages     []string
		hydraulics bool
		policy     InitMoistPolicy
		want       []string
	}{
		{
			stages: []string{"constants", "texture", "initmoist", "interpolate", "derived"},
			want:   []string{"constants", "texture", "initmoist", "interpolate", "derived"},
		},
		{
			stages:     []string{"constants", "texture", " InitMoist", "interpolate", "derived"},
			hydraulics: true,
			want:       []string{"constants", "texture", "interpolate", "initmoist", "derived"},
		},
		{
			stages:     []string{"texture", "initmoist", "interpolate"},
			hydraulics: true,
			policy:     SentinelMoist,
			want:       []string{"texture", "initmoist", "interpolate"},
		},
		{
			stages:     []string{"interpolate", "initmoist"},
			hydraulics: true,
			want:       []string{"interpolate", "initmoist"},
		},
	} {
		c := DefaultConfig()
		c.Stages = test.stages
		c.Interp.Hydraulics = test.hydraulics
		if test.policy != "" {
			c.InitMoist.Policy = test.policy
		}
		if have := c.stageOrder(); !reflect.DeepEqual(have, test.want) {
			t.Errorf("%v: have %v, want %v", test.stages, have, test.want)
		}
	}
}

func TestBuildStagesErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	base := soilFixture(t, dir)
	def, err := base.Grid()
	if err != nil {
		t.Fatal(err)
	}
	for name, mod := range map[string]func(c *Config){
		"stage":    func(c *Config) { c.Stages = []string{"bogus"} },
		"texture":  func(c *Config) { c.Texture.Source = "bogus" },
		"policy":   func(c *Config) { c.InitMoist.Policy = "bogus" },
		"method":   func(c *Config) { c.Interp.Method = "cubic" },
		"constant": func(c *Config) { c.Constants = map[string]float64{"bogus": 1} },
		"elev":     func(c *Config) { c.Elevation = "" },
		"precip":   func(c *Config) { c.Precip.Files = filepath.Join(dir, "none_*.nc") },
	} {
		c := *base
		mod(&c)
		if _, err := c.BuildStages(def, testLogger()); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
