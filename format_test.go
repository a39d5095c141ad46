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
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gonum/floats"
)

func TestFormat(t *testing.T) {
	f := NewFormatter(3)
	for _, test := range []struct {
		c    Column
		v    float64
		want string
	}{
		{RunCell, 1, "1"},
		{GridCel, 1234, "1234"},
		{Lat, 32.125, "32.1250"},
		{Lon, 114.37549, "114.3755"},
		{Elev, 31.456, "31.46"},
		{Elev, 31, "31.00"},
		{Elev, Missing, "-9999"},
		{Infilt, 0.3, "0.300"},
		{SoilDensity1, 2685, "2685"},
		{Dp, 4, "4"},
		{Ksat1, 763.2, "763.200"},
		{AvgT, math.NaN(), "-9999"},
		{Depth2, Missing, "-9999"},
		{OffGMT, 7.6, "7.600"},
	} {
		if have := f.Format(test.c, test.v); have != test.want {
			t.Errorf("%s(%g): have %q, want %q", test.c, test.v, have, test.want)
		}
	}

	f.TrimIntegral = false
	f.Decimals = 2
	if have := f.Format(SoilDensity1, 2685); have != "2685.00" {
		t.Errorf("untrimmed: have %q", have)
	}
}

func TestFormatRow(t *testing.T) {
	tbl := NewTable(testCells()[:1], Missing)
	if err := Constants(DefaultConstants())(tbl); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetColumns([]Column{Elev}, []float64{45.678}); err != nil {
		t.Fatal(err)
	}
	r := tbl.Row(0)
	fields := strings.Fields(NewFormatter(2).FormatRow(&r))
	if len(fields) != int(NumColumns) {
		t.Fatalf("got %d fields", len(fields))
	}
	want := []string{"1", "1", "32.1250", "114.3750", "0.30", "0.02", "10", "0.70", "2"}
	for i, w := range want {
		if fields[i] != w {
			t.Errorf("field %d: have %q, want %q", i, fields[i], w)
		}
	}
	for c, w := range map[Column]string{
		Elev: "45.68", Depth1: "0.10", Depth2: "-9999", Dp: "4",
		SoilDensity3: "2685", Rough: "0.01", SnowRough: "0.03",
		ResidMoist1: "0", FSActive: "0", AnnualPrec: "-9999",
	} {
		if fields[c] != w {
			t.Errorf("%s: have %q, want %q", c, fields[c], w)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	tbl := NewTable(testCells(), Missing)
	for c := Infilt; c < NumColumns; c++ {
		v := make([]float64, tbl.Len())
		for i := range v {
			v[i] = float64(c)*1.2345 + float64(i)/7
		}
		if err := tbl.SetColumns([]Column{c}, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := tbl.SetConstant(Depth3, Missing); err != nil {
		t.Fatal(err)
	}
	f := NewFormatter(3)
	var b bytes.Buffer
	if err := f.Write(&b, tbl); err != nil {
		t.Fatal(err)
	}
	text := b.String()
	if n := strings.Count(text, "\n"); n != tbl.Len() {
		t.Errorf("%d lines, want %d", n, tbl.Len())
	}

	parsed, err := Parse(strings.NewReader(text), "test")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Len() != tbl.Len() {
		t.Fatalf("parsed %d rows", parsed.Len())
	}
	for i := 0; i < tbl.Len(); i++ {
		want, have := tbl.Row(i), parsed.Row(i)
		for c := range want {
			tol := 0.0005
			switch Schema[c].Format {
			case FormatCoord:
				tol = 0.00005
			case FormatElev:
				tol = 0.005
			}
			if !floats.EqualWithinAbs(have[c], want[c], tol) {
				t.Errorf("row %d %s: have %g, want %g", i, Column(c), have[c], want[c])
			}
		}
	}

	// Output is byte-stable.
	var b2 bytes.Buffer
	if err := f.Write(&b2, parsed); err != nil {
		t.Fatal(err)
	}
	if b2.String() != text {
		t.Error("rewriting a parsed table changed its text")
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 3\n"), "short.txt")
	var me *MalformedRowError
	if !errors.As(err, &me) || me.Line != 1 || me.Column != -1 {
		t.Errorf("err = %v", err)
	}

	fields := make([]string, NumColumns)
	for i := range fields {
		fields[i] = "1"
	}
	fields[10] = "abc"
	_, err = Parse(strings.NewReader("\n"+strings.Join(fields, " ")+"\n"), "bad.txt")
	if !errors.As(err, &me) || me.Line != 2 || me.Column != 10 || me.Token != "abc" {
		t.Errorf("err = %v", err)
	}
}
