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
	"fmt"
	"os"
)

// ErrLengthMismatch is returned when a column is assigned a number of
// values that differs from the number of rows in the table.
var ErrLengthMismatch = errors.New("vicparam: number of values does not match number of rows")

// MissingInputError is returned when a required input file or
// directory does not exist or holds no usable data. It is fatal.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("vicparam: missing input %s", e.Path)
	}
	return fmt.Sprintf("vicparam: missing input %s: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// MalformedRowError is returned when a value in a text table cannot
// be parsed as a number where one is required.
type MalformedRowError struct {
	File   string
	Line   int // 1-based
	Column int // 0-based; -1 when the row as a whole is wrong
	Token  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("vicparam: %s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("vicparam: %s line %d column %d: invalid value %q: %v",
		e.File, e.Line, e.Column+1, e.Token, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// SpatialJoinMiss records that a grid cell had no matching record in
// a zonal statistics source. It is recovered by using a default value.
type SpatialJoinMiss struct {
	CellID int
	Source string
}

func (e *SpatialJoinMiss) Error() string {
	return fmt.Sprintf("vicparam: grid cell %d has no match in %s", e.CellID, e.Source)
}

// InterpolationOutOfDomain records that a query point could not be
// interpolated from a source grid. It is recovered by filling 0.
type InterpolationOutOfDomain struct {
	Lat, Lon float64
	Param    string
}

func (e *InterpolationOutOfDomain) Error() string {
	return fmt.Sprintf("vicparam: %s: point (lat=%.4f, lon=%.4f) is outside of the source grid",
		e.Param, e.Lat, e.Lon)
}

// checkInput returns a MissingInputError if path does not exist.
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &MissingInputError{Path: path, Err: err}
	}
	return nil
}
