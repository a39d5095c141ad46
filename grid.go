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
	"io/ioutil"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/vicparam/raster"
)

// GridDef is the set of model grid cells.
type GridDef struct {
	Cells []GridCell

	// Resolution is the side length of a grid cell in degrees.
	Resolution float64
}

// DefineGrid returns the valid cells of record rec of variable v in
// the reference grid file at path. If v is empty the first data
// variable is used. If rec is negative, a cell is only valid if it
// has a value in every record. Cells whose value is missing, or whose
// center is outside of basin when basin is not nil, are skipped.
// Cells are numbered from 1 in row-major order of the file.
func DefineGrid(path, v string, rec int, basin *Basin) (*GridDef, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	g, err := readTemplate(path, v, rec)
	if err != nil {
		if errors.Is(err, raster.ErrNoData) {
			return nil, &MissingInputError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("vicparam: reading grid template: %v", err)
	}
	d := &GridDef{Resolution: g.Dy()}
	if d.Resolution == 0 {
		d.Resolution = g.Dx()
	}
	for j, lat := range g.Y {
		for i, lon := range g.X {
			if math.IsNaN(g.At(j, i)) {
				continue
			}
			if basin != nil && !basin.Contains(lon, lat) {
				continue
			}
			d.Cells = append(d.Cells, GridCell{ID: len(d.Cells) + 1, Lat: lat, Lon: lon})
		}
	}
	if len(d.Cells) == 0 {
		return nil, &MissingInputError{Path: path, Err: fmt.Errorf("no valid grid cells")}
	}
	return d, nil
}

// readTemplate reads record rec of the template, or if rec is
// negative, the first record with every pixel that is missing in any
// record set to NaN.
func readTemplate(path, v string, rec int) (*raster.Grid, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".asc") || strings.HasSuffix(lower, ".asc.gz") {
		return raster.Open(path, v, 0)
	}
	if rec >= 0 {
		return raster.ReadNetCDF(path, v, rec)
	}
	n, err := raster.OpenNetCDF(path)
	if err != nil {
		return nil, err
	}
	defer n.Close()
	if v == "" {
		vars := n.DataVariables()
		if len(vars) == 0 {
			return nil, fmt.Errorf("%w: %s", raster.ErrNoData, path)
		}
		v = vars[0]
	}
	var g *raster.Grid
	for r := 0; r < n.NumRecords(v); r++ {
		rg, err := n.Read(v, r)
		if err != nil {
			return nil, err
		}
		if g == nil {
			g = rg
			continue
		}
		for i, x := range rg.Data.Elements {
			if math.IsNaN(x) {
				g.Data.Elements[i] = math.NaN()
			}
		}
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %s has no records of %s", raster.ErrNoData, path, v)
	}
	return g, nil
}

// GridFromTable returns the cells of a soil parameter table. The
// resolution is inferred from the cell coordinates.
func GridFromTable(t *Table) *GridDef {
	cells := t.Cells()
	return &GridDef{Cells: cells, Resolution: InferResolution(cells)}
}

// InferResolution returns the smallest nonzero spacing between the
// distinct latitudes or longitudes of cells, or 0 if there is only
// one distinct coordinate in each direction.
func InferResolution(cells []GridCell) float64 {
	res := math.Inf(1)
	for _, f := range []func(GridCell) float64{
		func(c GridCell) float64 { return c.Lat },
		func(c GridCell) float64 { return c.Lon },
	} {
		v := make([]float64, len(cells))
		for i, c := range cells {
			v[i] = f(c)
		}
		v = uniqueSorted(v)
		for k := 1; k < len(v); k++ {
			if d := v[k] - v[k-1]; d > 1e-9 && d < res {
				res = d
			}
		}
	}
	if math.IsInf(res, 1) {
		return 0
	}
	// Coordinates are usually stored with 4 decimals.
	return math.Round(res*1e4) / 1e4
}

// uniqueSorted sorts v and removes duplicate values.
func uniqueSorted(v []float64) []float64 {
	sort.Float64s(v)
	o := v[:0]
	for i, x := range v {
		if i == 0 || x != v[i-1] {
			o = append(o, x)
		}
	}
	return o
}

// Box returns the square polygon of cell c.
func (d *GridDef) Box(c GridCell) geom.Polygon {
	h := d.Resolution / 2
	return geom.Polygon{{
		{X: c.Lon - h, Y: c.Lat - h},
		{X: c.Lon + h, Y: c.Lat - h},
		{X: c.Lon + h, Y: c.Lat + h},
		{X: c.Lon - h, Y: c.Lat + h},
		{X: c.Lon - h, Y: c.Lat - h},
	}}
}

// wgs84WKT is the .prj content for geographic WGS84 coordinates.
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// WriteGridShp writes the cell centers as a point shapefile with a
// grid_id attribute and a WGS84 .prj file.
func WriteGridShp(filename string, cells []GridCell) error {
	base := strings.TrimSuffix(filename, ".shp")
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(base + ext)
	}
	e, err := shp.NewEncoderFromFields(base+".shp", goshp.POINT, goshp.NumberField("grid_id", 10))
	if err != nil {
		return fmt.Errorf("vicparam: creating grid shapefile: %v", err)
	}
	for _, c := range cells {
		if err = e.EncodeFields(geom.Point{X: c.Lon, Y: c.Lat}, c.ID); err != nil {
			e.Close()
			return fmt.Errorf("vicparam: writing grid shapefile: %v", err)
		}
	}
	e.Close()
	return ioutil.WriteFile(base+".prj", []byte(wgs84WKT), 0644)
}
