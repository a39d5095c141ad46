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
	"os"
	"sort"
	"strconv"
	"strings"
)

// Method is a spatial interpolation method.
type Method int

const (
	// Bilinear interpolates linearly between the four surrounding
	// grid points.
	Bilinear Method = iota
	// NearestNeighbor takes the value of the closest grid point.
	NearestNeighbor
)

// ParseMethod parses "bilinear" (or "linear") and "nearest".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bilinear", "linear", "":
		return Bilinear, nil
	case "nearest":
		return NearestNeighbor, nil
	}
	return 0, fmt.Errorf("vicparam: unknown interpolation method %q", s)
}

func (m Method) String() string {
	if m == NearestNeighbor {
		return "nearest"
	}
	return "bilinear"
}

// Interpolator interpolates values on a regular latitude-longitude
// grid built from scattered samples.
type Interpolator struct {
	// Lats and Lons are the distinct sample coordinates in
	// ascending order.
	Lats, Lons []float64

	// values has one entry per (lat, lon) pair in row-major order.
	// Combinations without a sample are NaN.
	values []float64
}

// NewInterpolator pivots samples (lat[k], lon[k], val[k]) onto a
// regular grid. Repeated coordinates are averaged.
func NewInterpolator(lat, lon, val []float64) (*Interpolator, error) {
	if len(lat) != len(lon) || len(lat) != len(val) {
		return nil, fmt.Errorf("%w: %d latitudes, %d longitudes, %d values",
			ErrLengthMismatch, len(lat), len(lon), len(val))
	}
	ip := &Interpolator{
		Lats: uniqueSorted(append([]float64(nil), lat...)),
		Lons: uniqueSorted(append([]float64(nil), lon...)),
	}
	n := len(ip.Lats) * len(ip.Lons)
	ip.values = make([]float64, n)
	counts := make([]int, n)
	for k := range lat {
		if math.IsNaN(val[k]) {
			continue
		}
		j := sort.SearchFloat64s(ip.Lats, lat[k])
		i := sort.SearchFloat64s(ip.Lons, lon[k])
		idx := j*len(ip.Lons) + i
		ip.values[idx] += val[k]
		counts[idx]++
	}
	for idx, c := range counts {
		if c == 0 {
			ip.values[idx] = math.NaN()
		} else {
			ip.values[idx] /= float64(c)
		}
	}
	return ip, nil
}

func (ip *Interpolator) at(j, i int) float64 { return ip.values[j*len(ip.Lons)+i] }

// bracket returns the indices of the coordinates below and above v and
// the weight of the upper one. ok is false if v is outside of c.
func bracket(c []float64, v float64) (lo, hi int, w float64, ok bool) {
	n := len(c)
	if n == 0 || v < c[0] || v > c[n-1] || math.IsNaN(v) {
		return 0, 0, 0, false
	}
	hi = sort.SearchFloat64s(c, v)
	if c[hi] == v {
		return hi, hi, 0, true
	}
	lo = hi - 1
	return lo, hi, (v - c[lo]) / (c[hi] - c[lo]), true
}

// Interpolate returns the value at (lat, lon). ok is false if the point
// is outside of the grid; the value is NaN if a grid point that the
// result depends on has no sample.
func (ip *Interpolator) Interpolate(lat, lon float64, m Method) (v float64, ok bool) {
	j0, j1, wy, okY := bracket(ip.Lats, lat)
	i0, i1, wx, okX := bracket(ip.Lons, lon)
	if !okY || !okX {
		return math.NaN(), false
	}
	if m == NearestNeighbor {
		j, i := j0, i0
		if wy > 0.5 {
			j = j1
		}
		if wx > 0.5 {
			i = i1
		}
		return ip.at(j, i), true
	}
	v = 0
	for _, c := range []struct {
		j, i int
		w    float64
	}{
		{j0, i0, (1 - wy) * (1 - wx)},
		{j0, i1, (1 - wy) * wx},
		{j1, i0, wy * (1 - wx)},
		{j1, i1, wy * wx},
	} {
		if c.w == 0 {
			continue
		}
		v += c.w * ip.at(c.j, c.i)
	}
	return v, true
}

// InterpMapping copies column Source of a global soil parameter file
// into the Targets columns of a soil parameter table.
type InterpMapping struct {
	Name    string
	Source  int
	Targets []Column
}

// DefaultInterpMappings returns the mappings for average soil
// temperature and quartz content.
func DefaultInterpMappings() []InterpMapping {
	return []InterpMapping{
		{Name: "avg_T", Source: 25, Targets: []Column{AvgT}},
		{Name: "quartz_1", Source: 30, Targets: []Column{Quartz1}},
		{Name: "quartz_2", Source: 31, Targets: []Column{Quartz2}},
		{Name: "quartz_3", Source: 32, Targets: []Column{Quartz3}},
	}
}

// InitMoistMappings returns the mappings for initial layer moisture.
func InitMoistMappings() []InterpMapping {
	return []InterpMapping{
		{Name: "init_moist_1", Source: 18, Targets: []Column{InitMoist1}},
		{Name: "init_moist_2", Source: 19, Targets: []Column{InitMoist2}},
		{Name: "init_moist_3", Source: 20, Targets: []Column{InitMoist3}},
	}
}

// HydraulicMappings returns mappings that take the layer hydraulic
// parameters from the first layer of the global file.
func HydraulicMappings() []InterpMapping {
	var o []InterpMapping
	for _, c := range []Column{Expt1, Ksat1, BulkDensity1, WcrFract1, WpwpFract1} {
		l := Layers(c)
		o = append(o, InterpMapping{Name: c.String(), Source: int(c), Targets: l[:]})
	}
	return o
}

// GlobalSoil holds a global soil parameter file: whitespace-delimited
// rows without a header, with latitude in column 2 and longitude in
// column 3 (0-based).
type GlobalSoil struct {
	Lat, Lon []float64
	rows     [][]float64
}

// ReadGlobalSoil reads the global soil parameter file at path.
func ReadGlobalSoil(path string) (*GlobalSoil, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseGlobalSoil(f, path)
}

func parseGlobalSoil(r io.Reader, name string) (*GlobalSoil, error) {
	g := new(GlobalSoil)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return nil, &MalformedRowError{File: name, Line: line, Column: -1,
				Err: fmt.Errorf("got %d columns, need at least 4", len(fields))}
		}
		row := make([]float64, len(fields))
		for j, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &MalformedRowError{File: name, Line: line, Column: j, Token: tok, Err: err}
			}
			row[j] = v
		}
		g.rows = append(g.rows, row)
		g.Lat = append(g.Lat, row[2])
		g.Lon = append(g.Lon, row[3])
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("vicparam: reading %s: %v", name, err)
	}
	if len(g.rows) == 0 {
		return nil, &MissingInputError{Path: name, Err: fmt.Errorf("no rows")}
	}
	return g, nil
}

// Interpolator returns an interpolator for column col. Rows that are
// too short to hold col contribute no sample.
func (g *GlobalSoil) Interpolator(col int) (*Interpolator, error) {
	if col < 0 {
		return nil, fmt.Errorf("vicparam: invalid global soil column %d", col)
	}
	v := make([]float64, len(g.rows))
	n := 0
	for k, r := range g.rows {
		if col < len(r) {
			v[k] = r[col]
			n++
		} else {
			v[k] = math.NaN()
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("vicparam: global soil file has no column %d", col)
	}
	return NewInterpolator(g.Lat, g.Lon, v)
}
