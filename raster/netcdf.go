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

package raster

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ErrNoData is returned when a file holds no gridded data variables.
var ErrNoData = errors.New("raster: no data variables")

// Coordinate variable names recognized for the x and y dimensions.
var (
	xNames = []string{"lon", "longitude", "x"}
	yNames = []string{"lat", "latitude", "y"}
)

// NetCDF is an open classic-format NetCDF file.
type NetCDF struct {
	path string
	file *os.File
	f    *cdf.File
	size int64
}

// OpenNetCDF opens the NetCDF file at path for reading.
func OpenNetCDF(path string) (*NetCDF, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := cdf.Open(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("raster: opening NetCDF file %s: %v", path, err)
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	return &NetCDF{path: path, file: file, f: f, size: fi.Size()}, nil
}

// Close closes the underlying file.
func (n *NetCDF) Close() error { return n.file.Close() }

// Path returns the file path.
func (n *NetCDF) Path() string { return n.path }

// DataVariables returns the names of the variables that have at least
// two dimensions and are not coordinate variables, in file order.
func (n *NetCDF) DataVariables() []string {
	dims := make(map[string]bool)
	for _, d := range n.f.Header.Dimensions("") {
		dims[d] = true
	}
	var o []string
	for _, v := range n.f.Header.Variables() {
		if dims[v] || len(n.f.Header.Dimensions(v)) < 2 {
			continue
		}
		o = append(o, v)
	}
	return o
}

// NumRecords returns the number of time records of variable v.
// Variables without a record dimension have a single record.
func (n *NetCDF) NumRecords(v string) int {
	if !n.f.Header.IsRecordVariable(v) {
		return 1
	}
	return int(n.f.Header.NumRecs(n.size))
}

// Coords returns the x and y coordinates of variable v, which are
// taken from the coordinate variables of its last two dimensions.
func (n *NetCDF) Coords(v string) (x, y []float64, err error) {
	dims := n.f.Header.Dimensions(v)
	if len(dims) < 2 {
		return nil, nil, fmt.Errorf("raster: %s: variable %q is not gridded", n.path, v)
	}
	if x, err = n.coordinate(dims[len(dims)-1], xNames); err != nil {
		return nil, nil, err
	}
	if y, err = n.coordinate(dims[len(dims)-2], yNames); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// coordinate reads the coordinate variable of dimension dim, falling
// back to any one-dimensional variable over dim with a recognized name.
func (n *NetCDF) coordinate(dim string, names []string) ([]float64, error) {
	candidates := append([]string{dim}, names...)
	for _, c := range candidates {
		d := n.f.Header.Dimensions(c)
		if len(d) != 1 || d[0] != dim {
			continue
		}
		return n.readAll(c)
	}
	return nil, fmt.Errorf("raster: %s: no coordinate variable for dimension %q (tried %s)",
		n.path, dim, strings.Join(candidates, ", "))
}

// readAll reads every value of a non-record variable.
func (n *NetCDF) readAll(v string) ([]float64, error) {
	r := n.f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("raster: reading %s variable %s: %v", n.path, v, err)
	}
	return toFloat64(buf), nil
}

// Read reads record rec of variable v. Records are ignored for
// variables without a record dimension. Fill values become NaN and
// the scale_factor and add_offset attributes are applied. Any
// dimensions between the record dimension and the last two must have
// length one.
func (n *NetCDF) Read(v string, rec int) (*Grid, error) {
	h := n.f.Header
	lengths := h.Lengths(v)
	if lengths == nil {
		return nil, fmt.Errorf("raster: %s: variable %q not in file", n.path, v)
	}
	x, y, err := n.Coords(v)
	if err != nil {
		return nil, err
	}
	isRec := h.IsRecordVariable(v)
	inner := lengths
	if isRec {
		if nr := n.NumRecords(v); rec < 0 || rec >= nr {
			return nil, fmt.Errorf("raster: %s: record %d out of range [0, %d)", n.path, rec, nr)
		}
		inner = lengths[1:]
	}
	nread := 1
	for _, l := range inner {
		nread *= l
	}
	if nread != len(x)*len(y) {
		return nil, fmt.Errorf("raster: %s: variable %q has shape %v; only one 2-d slice per record is supported",
			n.path, v, lengths)
	}

	var buf interface{}
	if isRec {
		start, end := make([]int, len(lengths)), make([]int, len(lengths))
		start[0], end[0] = rec, rec+1
		r := n.f.Reader(v, start, end)
		buf = r.Zero(nread)
		_, err = r.Read(buf)
	} else {
		r := n.f.Reader(v, nil, nil)
		buf = r.Zero(-1)
		_, err = r.Read(buf)
	}
	if err != nil {
		return nil, fmt.Errorf("raster: reading %s variable %s: %v", n.path, v, err)
	}

	raw := toFloat64(buf)
	fill, hasFill := n.fillValue(v)
	scale, hasScale := n.attribute(v, "scale_factor")
	offset, hasOffset := n.attribute(v, "add_offset")
	data := sparse.ZerosDense(len(y), len(x))
	for i, val := range raw {
		switch {
		case hasFill && (val == fill || (math.Abs(fill) > 1e30 && math.Abs(val) >= math.Abs(fill)*0.999)):
			val = math.NaN()
		case hasScale || hasOffset:
			if hasScale {
				val *= scale
			}
			if hasOffset {
				val += offset
			}
		}
		data.Elements[i] = val
	}
	return &Grid{X: x, Y: y, Data: data}, nil
}

// fillValue returns the _FillValue or missing_value attribute, or the
// default fill value of the variable type.
func (n *NetCDF) fillValue(v string) (float64, bool) {
	for _, a := range []string{"_FillValue", "missing_value"} {
		if f, ok := n.attribute(v, a); ok {
			return f, true
		}
	}
	switch fv := n.f.Header.FillValue(v).(type) {
	case float32:
		return float64(fv), true
	case float64:
		return fv, true
	case int16:
		return float64(fv), true
	case int32:
		return float64(fv), true
	}
	return 0, false
}

// attribute returns the first value of numeric attribute a of v.
func (n *NetCDF) attribute(v, a string) (float64, bool) {
	val := n.f.Header.GetAttribute(v, a)
	if val == nil {
		return 0, false
	}
	f := toFloat64(val) // nil for text attributes
	if len(f) == 0 {
		return 0, false
	}
	return f[0], true
}

func toFloat64(buf interface{}) []float64 {
	var o []float64
	switch b := buf.(type) {
	case []float32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []float64:
		o = make([]float64, len(b))
		copy(o, b)
	case []int16:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []uint8:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	}
	return o
}

// ReadNetCDF reads record rec of variable v from the NetCDF file at
// path. If v is empty the first data variable is read.
func ReadNetCDF(path, v string, rec int) (*Grid, error) {
	n, err := OpenNetCDF(path)
	if err != nil {
		return nil, err
	}
	defer n.Close()
	if v == "" {
		vars := n.DataVariables()
		if len(vars) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoData, path)
		}
		v = vars[0]
	}
	return n.Read(v, rec)
}

// WriteNetCDF writes gridded variables to w as a classic NetCDF file
// with dimensions (time, lat, lon). Every grid of every variable must
// share the coordinates of the first one; each variable holds one
// record per grid. Variables are written in name order.
func WriteNetCDF(w *os.File, vars map[string][]*Grid) error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 || len(vars[names[0]]) == 0 {
		return fmt.Errorf("raster: no data to write")
	}
	ref := vars[names[0]][0]
	for _, name := range names {
		for _, g := range vars[name] {
			if len(g.X) != len(ref.X) || len(g.Y) != len(ref.Y) {
				return fmt.Errorf("raster: variable %s does not match the grid of %s", name, names[0])
			}
		}
	}

	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, len(ref.Y), len(ref.X)})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	for _, name := range names {
		h.AddVariable(name, []string{"time", "lat", "lon"}, []float32{0})
		h.AddAttribute(name, "_FillValue", []float32{float32(fillValue)})
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("raster: creating NetCDF header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("raster: creating NetCDF file: %v", err)
	}
	if _, err = f.Writer("lat", nil, nil).Write(ref.Y); err != nil {
		return fmt.Errorf("raster: writing lat: %v", err)
	}
	if _, err = f.Writer("lon", nil, nil).Write(ref.X); err != nil {
		return fmt.Errorf("raster: writing lon: %v", err)
	}
	for _, name := range names {
		for rec, g := range vars[name] {
			data32 := make([]float32, len(g.Data.Elements))
			for i, e := range g.Data.Elements {
				if math.IsNaN(e) {
					data32[i] = float32(fillValue)
				} else {
					data32[i] = float32(e)
				}
			}
			start := []int{rec, 0, 0}
			end := []int{rec + 1, 0, 0}
			if _, err = f.Writer(name, start, end).Write(data32); err != nil {
				return fmt.Errorf("raster: writing variable %s record %d: %v", name, rec, err)
			}
		}
	}
	return cdf.UpdateNumRecs(w)
}

// fillValue marks missing data in written NetCDF files.
const fillValue = -9999.
