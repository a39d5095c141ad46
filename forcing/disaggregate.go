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

package forcing

import (
	"bufio"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
)

// precColumn is the position of precipitation in a forcing file.
const precColumn = 1

// Disaggregate converts every daily forcing file in inDir to a file
// of the same name in outDir with steps records per day. Each daily
// record is repeated steps times; precipitation is divided evenly
// among the steps and every other value is kept.
func Disaggregate(ctx context.Context, inDir, outDir string, steps int, progress bool, log logrus.FieldLogger) error {
	if steps < 1 {
		return fmt.Errorf("forcing: invalid number of steps per day %d", steps)
	}
	entries, err := ioutil.ReadDir(inDir)
	if err != nil {
		return &vicparam.MissingInputError{Path: inDir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	log.WithFields(logrus.Fields{"files": len(names), "steps": steps}).Info("disaggregating forcing files")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return parallel(ctx, len(names), progress, func(i int) error {
		return disaggregateFile(filepath.Join(inDir, names[i]), filepath.Join(outDir, names[i]), steps)
	})
}

func disaggregateFile(in, out string, steps int) error {
	r, err := os.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	s := bufio.NewScanner(r)
	line := 0
	var row []float64
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) <= precColumn {
			f.Close()
			return &vicparam.MalformedRowError{File: in, Line: line, Column: -1,
				Err: fmt.Errorf("got %d columns", len(fields))}
		}
		row = row[:0]
		for j, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				f.Close()
				return &vicparam.MalformedRowError{File: in, Line: line, Column: j, Token: tok, Err: err}
			}
			row = append(row, v)
		}
		row[precColumn] /= float64(steps)
		for k := 0; k < steps; k++ {
			writeRow(w, row)
		}
	}
	if err := s.Err(); err != nil {
		f.Close()
		return fmt.Errorf("forcing: reading %s: %v", in, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
