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
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// ReadASCII reads an ESRI ASCII grid. name is used in error messages.
func ReadASCII(r io.Reader, name string) (*Grid, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	hdr := make(map[string]float64)
	center := false
	var row []string
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])
		if len(fields) != 2 || (key[0] >= '0' && key[0] <= '9') || key[0] == '-' || key[0] == '.' {
			row = fields
			break
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("raster: %s line %d: invalid header value %q", name, line, fields[1])
		}
		if key == "xllcenter" || key == "yllcenter" {
			center = true
			key = strings.Replace(key, "center", "corner", 1)
		}
		hdr[key] = v
	}
	for _, k := range []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"} {
		if _, ok := hdr[k]; !ok {
			return nil, fmt.Errorf("raster: %s: missing header field %s", name, k)
		}
	}
	nx, ny, size := int(hdr["ncols"]), int(hdr["nrows"]), hdr["cellsize"]
	x0, y0 := hdr["xllcorner"], hdr["yllcorner"]
	if !center {
		x0 += size / 2
		y0 += size / 2
	}
	nodata, hasNodata := hdr["nodata_value"]

	g := &Grid{X: make([]float64, nx), Y: make([]float64, ny), Data: sparse.ZerosDense(ny, nx)}
	for i := range g.X {
		g.X[i] = x0 + float64(i)*size
	}
	for j := range g.Y { // first row is the northernmost
		g.Y[j] = y0 + float64(ny-1-j)*size
	}

	k := 0
	for {
		for _, tok := range row {
			if k >= len(g.Data.Elements) {
				return nil, fmt.Errorf("raster: %s: more than %d values", name, len(g.Data.Elements))
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("raster: %s line %d: invalid value %q", name, line, tok)
			}
			if hasNodata && v == nodata {
				v = math.NaN()
			}
			g.Data.Elements[k] = v
			k++
		}
		if !s.Scan() {
			break
		}
		line++
		row = strings.Fields(s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("raster: reading %s: %v", name, err)
	}
	if k != len(g.Data.Elements) {
		return nil, fmt.Errorf("raster: %s: got %d values, want %d", name, k, len(g.Data.Elements))
	}
	return g, nil
}

// WriteASCII writes g as an ESRI ASCII grid with rows from north to
// south. The grid must have equal x and y spacing. NaN values are
// written as nodata.
func WriteASCII(w io.Writer, g *Grid, nodata float64) error {
	if err := g.Check(); err != nil {
		return err
	}
	size := g.Dx()
	if len(g.Y) > 1 && math.Abs(g.Dy()-size) > 1e-9*size {
		return fmt.Errorf("raster: ESRI ASCII grids need square pixels; dx=%g, dy=%g", size, g.Dy())
	}
	b := g.Bounds()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", len(g.X))
	fmt.Fprintf(bw, "nrows %d\n", len(g.Y))
	fmt.Fprintf(bw, "xllcorner %s\n", strconv.FormatFloat(b.Min.X, 'f', -1, 64))
	fmt.Fprintf(bw, "yllcorner %s\n", strconv.FormatFloat(b.Min.Y, 'f', -1, 64))
	fmt.Fprintf(bw, "cellsize %s\n", strconv.FormatFloat(size, 'f', -1, 64))
	fmt.Fprintf(bw, "NODATA_value %s\n", strconv.FormatFloat(nodata, 'f', -1, 64))

	rows := make([]int, len(g.Y))
	for j := range rows {
		rows[j] = j
	}
	if len(g.Y) > 1 && g.Y[0] < g.Y[1] {
		for j := range rows {
			rows[j] = len(g.Y) - 1 - j
		}
	}
	cols := make([]int, len(g.X))
	for i := range cols {
		cols[i] = i
	}
	if len(g.X) > 1 && g.X[0] > g.X[1] {
		for i := range cols {
			cols[i] = len(g.X) - 1 - i
		}
	}
	for _, j := range rows {
		for k, i := range cols {
			if k > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(j, i)
			if math.IsNaN(v) {
				v = nodata
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Open reads a raster file. Files ending in .asc or .asc.gz are read
// as ESRI ASCII grids and everything else as NetCDF, in which case
// record rec of variable v (or of the first data variable if v is
// empty) is read.
func Open(path, v string, rec int) (*Grid, error) {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".asc") && !strings.HasSuffix(lower, ".asc.gz") {
		return ReadNetCDF(path, v, rec)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(lower, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("raster: %s: %v", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return ReadASCII(r, path)
}

// Create writes g to path as an ESRI ASCII grid, gzip compressed if
// path ends in .gz, or as a single-record NetCDF file with variable
// name v otherwise.
func Create(path, v string, g *Grid, nodata float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".asc"):
		err = WriteASCII(f, g, nodata)
	case strings.HasSuffix(lower, ".asc.gz"):
		gz := gzip.NewWriter(f)
		if err = WriteASCII(gz, g, nodata); err == nil {
			err = gz.Close()
		}
	default:
		err = WriteNetCDF(f, map[string][]*Grid{v: {g}})
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("raster: writing %s: %v", path, err)
	}
	return f.Close()
}
