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
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam/raster"
)

// Seconds per day and days per year used to convert precipitation rates.
const (
	secondsPerDay = 86400.
	daysPerYear   = 365.25
)

// yearToken matches a file name token holding a year, a month or a
// day, optionally followed by a second one, e.g. 1991, 199101 or
// 199101-199112.
var yearToken = regexp.MustCompile(`^(\d{4})(?:\d{2}){0,2}(?:-(\d{4})(?:\d{2}){0,2})?$`)

// FileYears returns the years covered by a file, read from the last
// underscore-separated token of the file name stem that holds a date
// or a date range, e.g. 1991 to 1991 for
// "prec_CMFD_V0200_B-01_01dy_025deg_199101-199112_huai.nc".
func FileYears(path string) (YearRange, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	for k := len(parts) - 1; k >= 0; k-- {
		m := yearToken.FindStringSubmatch(parts[k])
		if m == nil {
			continue
		}
		from, _ := strconv.Atoi(m[1])
		to := from
		if m[2] != "" {
			to, _ = strconv.Atoi(m[2])
		}
		if from < 1000 || to < from {
			continue
		}
		return YearRange{From: from, To: to}, true
	}
	return YearRange{}, false
}

// FileYear returns the first year covered by a file. See FileYears.
func FileYear(path string) (int, bool) {
	r, ok := FileYears(path)
	return r.From, ok
}

// YearRange is an inclusive range of years. A zero value matches every
// year.
type YearRange struct {
	From, To int
}

// Overlaps reports whether any year of o is in the range.
func (r YearRange) Overlaps(o YearRange) bool {
	if r.From == 0 && r.To == 0 {
		return true
	}
	return o.To >= r.From && o.From <= r.To
}

// Contains reports whether y is in the range.
func (r YearRange) Contains(y int) bool {
	if r.From == 0 && r.To == 0 {
		return true
	}
	return y >= r.From && y <= r.To
}

// GlobFiles returns the files matching pattern, sorted by name. If
// years is not the zero value, only files whose FileYears overlap
// years are returned; files without a year are skipped with a warning.
func GlobFiles(pattern string, years YearRange, log logrus.FieldLogger) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("vicparam: bad file pattern %q: %v", pattern, err)
	}
	sort.Strings(files)
	if years == (YearRange{}) {
		return files, nil
	}
	var o []string
	for _, f := range files {
		y, ok := FileYears(f)
		if !ok {
			log.WithField("file", f).Warn("can't parse year from file name; skipping")
			continue
		}
		if years.Overlaps(y) {
			o = append(o, f)
		}
	}
	return o, nil
}

// PrecipClimatology returns the annual precipitation [mm/yr] computed
// from the temporal mean of a precipitation rate [mm/s] over every
// record of every file. Missing values are skipped; pixels without
// any value are NaN. If variable is empty the first data variable of
// each file is used.
func PrecipClimatology(files []string, variable string, log logrus.FieldLogger) (*raster.Grid, error) {
	if len(files) == 0 {
		return nil, &MissingInputError{Path: variable, Err: fmt.Errorf("no precipitation files")}
	}
	var sum *raster.Grid
	var count []int
	for _, path := range files {
		n, err := raster.OpenNetCDF(path)
		if err != nil {
			return nil, err
		}
		v := variable
		if v == "" {
			vars := n.DataVariables()
			if len(vars) == 0 {
				n.Close()
				return nil, &MissingInputError{Path: path, Err: raster.ErrNoData}
			}
			v = vars[0]
		}
		nrec := n.NumRecords(v)
		for rec := 0; rec < nrec; rec++ {
			g, err := n.Read(v, rec)
			if err != nil {
				n.Close()
				return nil, err
			}
			if sum == nil {
				sum = raster.NewGrid(g.X, g.Y)
				for i := range sum.Data.Elements {
					sum.Data.Elements[i] = 0
				}
				count = make([]int, len(sum.Data.Elements))
			} else if len(g.Data.Elements) != len(sum.Data.Elements) {
				n.Close()
				return nil, fmt.Errorf("vicparam: %s: grid does not match the first precipitation file", path)
			}
			for i, x := range g.Data.Elements {
				if !math.IsNaN(x) {
					sum.Data.Elements[i] += x
					count[i]++
				}
			}
		}
		n.Close()
		log.WithFields(logrus.Fields{"file": filepath.Base(path), "records": nrec}).Debug("read precipitation")
	}
	if sum == nil {
		return nil, &MissingInputError{Path: files[0], Err: fmt.Errorf("no precipitation records")}
	}
	for i, c := range count {
		if c == 0 {
			sum.Data.Elements[i] = math.NaN()
			continue
		}
		sum.Data.Elements[i] = sum.Data.Elements[i] / float64(c) * secondsPerDay * daysPerYear
	}
	return sum, nil
}
