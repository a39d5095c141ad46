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
	"testing"
)

func testCells() []GridCell {
	return []GridCell{
		{ID: 1, Lat: 32.125, Lon: 114.375},
		{ID: 2, Lat: 32.125, Lon: 114.625},
		{ID: 3, Lat: 32.375, Lon: 114.375},
	}
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(testCells(), Missing)
	if tbl.Len() != 3 {
		t.Fatalf("len = %d", tbl.Len())
	}
	r := tbl.Row(1)
	if r[RunCell] != 1 || r[GridCel] != 2 || r[Lat] != 32.125 || r[Lon] != 114.625 {
		t.Errorf("row identity: %v", r[:4])
	}
	for c := Infilt; c < NumColumns; c++ {
		if r[c] != Missing {
			t.Errorf("%s = %g, want sentinel", c, r[c])
		}
	}
}

func TestSetColumnsLengthMismatch(t *testing.T) {
	tbl := NewTable(testCells(), Missing)
	err := tbl.SetColumns([]Column{Elev}, []float64{1, 2})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	if tbl.Written(Elev) {
		t.Error("failed write should not mark the column")
	}
	if err := tbl.SetColumns([]Column{Elev, AvgT}, []float64{1, 2, 3}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	if err := tbl.SetColumns([]Column{Elev, AvgT, Dp}, []float64{1, 2, 3}, []float64{1, 2, 3}); err == nil {
		t.Error("expected an error for a wrong number of value sets")
	}
}

func TestSetColumns(t *testing.T) {
	tbl := NewTable(testCells(), Missing)
	l := Layers(Quartz1)
	if err := tbl.SetColumns(l[:], []float64{0.1, 0.2, 0.3}); err != nil {
		t.Fatal(err)
	}
	for _, c := range l {
		v, err := tbl.Get(2, c)
		if err != nil {
			t.Fatal(err)
		}
		if v != 0.3 {
			t.Errorf("%s = %g, want 0.3", c, v)
		}
	}
	// The last write wins.
	if err := tbl.SetColumns([]Column{Quartz1, Quartz2}, []float64{1, 1, 1}, []float64{2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	if v, _ := tbl.Get(0, Quartz2); v != 2 {
		t.Errorf("quartz_2 = %g, want 2", v)
	}
	if _, err := tbl.Get(3, Quartz1); err == nil {
		t.Error("expected an out of range error")
	}
	if _, err := tbl.Get(0, NumColumns); err == nil {
		t.Error("expected an out of range error")
	}
}

func TestValidate(t *testing.T) {
	tbl := NewTable(testCells(), Missing)
	if err := tbl.Validate(); err == nil {
		t.Fatal("an unfilled table should not validate")
	}
	for c := Infilt; c < NumColumns; c++ {
		if Schema[c].SentinelOK {
			continue
		}
		if err := tbl.SetConstant(c, 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := tbl.Validate(); err != nil {
		t.Error(err)
	}
}

func TestColumnByName(t *testing.T) {
	for name, want := range map[string]Column{
		"off_gmt":     OffGMT,
		"OFF_GMT":     OffGMT,
		"Wcr_FRACT_3": WcrFract3,
		"fs_active":   FSActive,
		"lat":         Lat,
	} {
		c, err := ColumnByName(name)
		if err != nil {
			t.Error(err)
			continue
		}
		if c != want {
			t.Errorf("%s: have %s, want %s", name, c, want)
		}
	}
	if _, err := ColumnByName("nope"); err == nil {
		t.Error("expected an error for an unknown column")
	}
	if NumColumns != 53 {
		t.Errorf("NumColumns = %d", NumColumns)
	}
}
