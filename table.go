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
	"fmt"
	"strings"
)

// Missing is the value used in VIC parameter files for values that are
// unset or not applicable.
const Missing = -9999.

// GridCell is a single model grid cell.
type GridCell struct {
	// ID is the 1-based cell number.
	ID int

	// Lat and Lon are the cell center coordinates in decimal degrees.
	Lat, Lon float64
}

// Row holds the values of one soil parameter row.
type Row [NumColumns]float64

// Get returns the value of column c.
func (r *Row) Get(c Column) float64 { return r[c] }

// Table holds the soil parameter rows of all grid cells. Rows are kept
// in grid cell order. Fill stages write column subsets; the last write
// to a column wins.
//
// A Table is not safe for concurrent use.
type Table struct {
	rows    []Row
	written [NumColumns]bool
}

// NewTable creates a table with one row per cell. Every value is
// initialized to the sentinel except for the run flag (1), the cell
// id and the cell coordinates.
func NewTable(cells []GridCell, sentinel float64) *Table {
	t := &Table{rows: make([]Row, len(cells))}
	for i, c := range cells {
		r := &t.rows[i]
		for j := range r {
			r[j] = sentinel
		}
		r[RunCell] = 1
		r[GridCel] = float64(c.ID)
		r[Lat] = c.Lat
		r[Lon] = c.Lon
	}
	for _, c := range []Column{RunCell, GridCel, Lat, Lon} {
		t.written[c] = true
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Cells returns the grid cell identity of every row.
func (t *Table) Cells() []GridCell {
	o := make([]GridCell, len(t.rows))
	for i, r := range t.rows {
		o[i] = GridCell{ID: int(r[GridCel]), Lat: r[Lat], Lon: r[Lon]}
	}
	return o
}

// Get returns the value at the given row and column.
func (t *Table) Get(row int, col Column) (float64, error) {
	if row < 0 || row >= len(t.rows) {
		return 0, fmt.Errorf("vicparam: row %d out of range [0, %d)", row, len(t.rows))
	}
	if col < 0 || col >= NumColumns {
		return 0, fmt.Errorf("vicparam: column %d out of range [0, %d)", int(col), NumColumns)
	}
	return t.rows[row][col], nil
}

// Column returns a copy of all values in column c.
func (t *Table) Column(c Column) []float64 {
	o := make([]float64, len(t.rows))
	for i, r := range t.rows {
		o[i] = r[c]
	}
	return o
}

// SetColumns overwrites the given columns. values must hold either a
// single slice, which is written to every column in cols, or one slice
// per column. Every slice must have exactly one value per row.
func (t *Table) SetColumns(cols []Column, values ...[]float64) error {
	if len(values) != 1 && len(values) != len(cols) {
		return fmt.Errorf("vicparam: setting %d columns from %d value sets", len(cols), len(values))
	}
	for _, v := range values {
		if len(v) != len(t.rows) {
			return fmt.Errorf("%w: got %d values for %d rows", ErrLengthMismatch, len(v), len(t.rows))
		}
	}
	for _, c := range cols {
		if c < 0 || c >= NumColumns {
			return fmt.Errorf("vicparam: column %d out of range [0, %d)", int(c), NumColumns)
		}
	}
	for j, c := range cols {
		v := values[0]
		if len(values) > 1 {
			v = values[j]
		}
		for i := range t.rows {
			t.rows[i][c] = v[i]
		}
		t.written[c] = true
	}
	return nil
}

// SetConstant writes val to column c of every row.
func (t *Table) SetConstant(c Column, val float64) error {
	v := make([]float64, len(t.rows))
	for i := range v {
		v[i] = val
	}
	return t.SetColumns([]Column{c}, v)
}

// Written reports whether column c has been written by a fill stage.
func (t *Table) Written(c Column) bool { return t.written[c] }

// Validate checks that every column that may not keep the sentinel
// has been written by at least one fill stage.
func (t *Table) Validate() error {
	var missing []string
	for i, s := range Schema {
		if !s.SentinelOK && !t.written[i] {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("vicparam: soil parameter columns never filled: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
