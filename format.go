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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Formatter writes soil parameter tables as whitespace-delimited text,
// one line per grid cell.
type Formatter struct {
	// Decimals is the number of decimals used for FormatFloat columns.
	Decimals int

	// TrimIntegral causes integer-valued FormatFloat and FormatElev
	// values to be written without decimals.
	TrimIntegral bool

	// Sentinel is the missing value. Sentinel and NaN values are
	// written as the integer form of Sentinel.
	Sentinel float64
}

// NewFormatter returns a formatter with the given number of decimals
// that trims integral values and uses Missing as the sentinel.
func NewFormatter(decimals int) *Formatter {
	return &Formatter{Decimals: decimals, TrimIntegral: true, Sentinel: Missing}
}

// Format renders value v of column c.
func (f *Formatter) Format(c Column, v float64) string {
	switch Schema[c].Format {
	case FormatInt:
		return strconv.Itoa(int(v))
	case FormatCoord:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
	if math.IsNaN(v) || v == f.Sentinel {
		return strconv.FormatFloat(f.Sentinel, 'f', 0, 64)
	}
	if Schema[c].Format == FormatElev {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	if f.TrimIntegral && v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', f.Decimals, 64)
}

// FormatRow renders a full row without a line ending.
func (f *Formatter) FormatRow(r *Row) string {
	s := make([]string, NumColumns)
	for i, v := range r {
		s[i] = f.Format(Column(i), v)
	}
	return strings.Join(s, " ")
}

// Write writes every row of t to w in table order.
func (f *Formatter) Write(w io.Writer, t *Table) error {
	b := bufio.NewWriter(w)
	for i := range t.rows {
		if _, err := b.WriteString(f.FormatRow(&t.rows[i])); err != nil {
			return err
		}
		if err := b.WriteByte('\n'); err != nil {
			return err
		}
	}
	return b.Flush()
}

// Parse reads a soil parameter file. name is used in error messages.
// All columns of the returned table are marked as written.
func Parse(r io.Reader, name string) (*Table, error) {
	t := new(Table)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != int(NumColumns) {
			return nil, &MalformedRowError{File: name, Line: line, Column: -1,
				Err: fmt.Errorf("got %d columns, want %d", len(fields), NumColumns)}
		}
		var row Row
		for j, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &MalformedRowError{File: name, Line: line, Column: j, Token: tok, Err: err}
			}
			row[j] = v
		}
		t.rows = append(t.rows, row)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("vicparam: reading %s: %w", name, err)
	}
	for i := range t.written {
		t.written[i] = true
	}
	return t, nil
}
