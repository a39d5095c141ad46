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

// Package veg builds VIC vegetation parameter files from a land cover
// raster, a vegetation library and a table of root zone parameters.
package veg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spatialmodel/vicparam"
)

// Library holds the 12 monthly leaf area index values of each
// vegetation class, already formatted with 3 decimals.
type Library map[int][]string

// ParseLibrary reads a VIC vegetation library. Blank lines and lines
// starting with # are skipped. The class id is the first field and the
// monthly LAI values are fields 5 to 16.
func ParseLibrary(r io.Reader, name string) (Library, error) {
	lib := make(Library)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		f := strings.Fields(text)
		if len(f) < 16 {
			return nil, &vicparam.MalformedRowError{File: name, Line: line, Column: -1,
				Err: fmt.Errorf("got %d fields, need at least 16", len(f))}
		}
		class, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, &vicparam.MalformedRowError{File: name, Line: line, Column: 0, Token: f[0], Err: err}
		}
		lai := make([]string, 12)
		for m := range lai {
			v, err := strconv.ParseFloat(f[4+m], 64)
			if err != nil {
				return nil, &vicparam.MalformedRowError{File: name, Line: line, Column: 4 + m, Token: f[4+m], Err: err}
			}
			lai[m] = strconv.FormatFloat(v, 'f', 3, 64)
		}
		lib[class] = lai
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("veg: reading %s: %w", name, err)
	}
	return lib, nil
}

// ReadLibrary reads the vegetation library file at path.
func ReadLibrary(path string) (Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &vicparam.MissingInputError{Path: path, Err: err}
	}
	defer f.Close()
	return ParseLibrary(f, path)
}
