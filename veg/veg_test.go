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

package veg

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/raster"
)

const testLibrary = `# Class OvrStry Rarc Rmin JAN-LAI FEB-LAI MAR-LAI APR-LAI MAY-LAI JUN-LAI JUL-LAI AUG-LAI SEP-LAI OCT-LAI NOV-LAI DEC-LAI
1 1 60.0 250.0 3.4 3.4 3.5 3.7 4.0 4.4 4.4 4.3 4.2 3.7 3.5 3.4 0.12

5	1	60.0	125.0	1.68	1.52	1.68	2.9	4.9	5.0	5.0	4.6	3.44	3.04	2.16	2.0	0.12
`

func TestParseLibrary(t *testing.T) {
	lib, err := ParseLibrary(strings.NewReader(testLibrary), "veglib")
	if err != nil {
		t.Fatal(err)
	}
	want := Library{
		1: {"3.400", "3.400", "3.500", "3.700", "4.000", "4.400", "4.400", "4.300", "4.200", "3.700", "3.500", "3.400"},
		5: {"1.680", "1.520", "1.680", "2.900", "4.900", "5.000", "5.000", "4.600", "3.440", "3.040", "2.160", "2.000"},
	}
	if !reflect.DeepEqual(lib, want) {
		t.Errorf("library: %v", pretty.Diff(lib, want))
	}

	_, err = ParseLibrary(strings.NewReader("1 1 2 3 4\n"), "short")
	var me *vicparam.MalformedRowError
	if !errors.As(err, &me) || me.Line != 1 {
		t.Errorf("err = %v", err)
	}
	_, err = ParseLibrary(strings.NewReader("x 1 60 250 1 1 1 1 1 1 1 1 1 1 1 1\n"), "bad")
	if !errors.As(err, &me) || me.Column != 0 {
		t.Errorf("err = %v", err)
	}
}

// landCover returns a 10×10 raster of 0.1° pixels covering [0, 1]²
// with 70 pixels of class 1, 28 of class 5 and 2 of class 16.
func landCover() *raster.Grid {
	c := make([]float64, 10)
	for i := range c {
		c[i] = 0.05 + float64(i)/10
	}
	g := raster.NewGrid(c, append([]float64(nil), c...))
	for k := range g.Data.Elements {
		switch {
		case k < 70:
			g.Data.Elements[k] = 1
		case k < 98:
			g.Data.Elements[k] = 5
		default:
			g.Data.Elements[k] = 16
		}
	}
	return g
}

func testBuilder(t *testing.T, rz *RootZones) *Builder {
	lib, err := ParseLibrary(strings.NewReader(testLibrary), "veglib")
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.Out = ioutil.Discard
	return &Builder{
		Def: &vicparam.GridDef{
			Cells: []vicparam.GridCell{
				{ID: 1, Lat: 0.5, Lon: 0.5},
				{ID: 2, Lat: 5.5, Lon: 5.5}, // no land cover pixels
			},
			Resolution: 1,
		},
		LandCover: landCover(),
		Library:   lib,
		RootZones: rz,
		Excluded:  DefaultExcluded,
		Threshold: DefaultThreshold,
		Log:       log,
	}
}

func TestBuildWrite(t *testing.T) {
	cells := testBuilder(t, RootZonesV1()).Build()
	var b bytes.Buffer
	if err := Write(&b, cells); err != nil {
		t.Fatal(err)
	}
	want := "1\t2\n" +
		"\t \t1\t0.71\t0.1 0.6 1.1 0.34 0.51 0.14\n" +
		"  \t \t 3.400\t3.400\t3.500\t3.700\t4.000\t4.400\t4.400\t4.300\t4.200\t3.700\t3.500\t3.400\n" +
		"\t \t5\t0.29\t0.1 0.6 1.7 0.25 0.52 0.22\n" +
		"  \t \t 1.680\t1.520\t1.680\t2.900\t4.900\t5.000\t5.000\t4.600\t3.440\t3.040\t2.160\t2.000\n"
	if b.String() != want {
		t.Errorf("have\n%q\nwant\n%q", b.String(), want)
	}
}

func TestSkipMissingLAI(t *testing.T) {
	b := testBuilder(t, RootZonesV2())
	delete(b.Library, 5)
	cells := b.Build()
	if len(cells) != 1 || len(cells[0].Classes) != 1 || cells[0].Classes[0].ID != 1 {
		t.Fatalf("cells = %+v", cells)
	}
	if root := strings.Join(cells[0].Classes[0].Root, " "); root != "0.10 0.34 0.6 0.52 0.8 0.14" {
		t.Errorf("root zone = %s", root)
	}

	// Without skipping, the class is kept with an empty LAI line.
	b.RootZones.SkipMissingLAI = false
	cells = b.Build()
	if len(cells[0].Classes) != 2 || cells[0].Classes[1].LAI != nil {
		t.Errorf("cells = %+v", cells)
	}

	// A cell whose only class has no LAI is left out.
	delete(b.Library, 1)
	b.RootZones.SkipMissingLAI = true
	if cells = b.Build(); len(cells) != 0 {
		t.Errorf("cells = %+v", cells)
	}
}

func TestRootZones(t *testing.T) {
	v1 := RootZonesV1()
	if !reflect.DeepEqual(v1.Get(99), []string{"0.1", "0.6", "1.0", "0.4", "0.4", "0.2"}) {
		t.Errorf("v1 default = %v", v1.Get(99))
	}
	v2, err := RootZonesByName("v2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v2.Get(13), []string{"0.10", "0.10", "1.00", "0.70", "0.50", "0.20"}) {
		t.Errorf("v2 default = %v", v2.Get(13))
	}
	if _, err := RootZonesByName("v3"); err == nil {
		t.Error("expected an error")
	}

	dir, err := ioutil.TempDir("", "veg")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "rootzones.toml")
	if err := v2.WriteTOML(path); err != nil {
		t.Fatal(err)
	}
	have, err := LoadRootZones(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, v2) {
		t.Errorf("root zone round trip: %v", pretty.Diff(have, v2))
	}
}
