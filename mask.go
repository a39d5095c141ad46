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
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// Basin is a river basin boundary used to restrict grid cells to
// those whose centers fall within it.
type Basin struct {
	index *rtree.Rtree
	n     int
}

type basinPart struct {
	geom.Polygonal
}

// NewBasin creates a basin from polygons in geographic coordinates.
func NewBasin(polys ...geom.Polygonal) *Basin {
	b := &Basin{index: rtree.NewTree(25, 50)}
	for _, p := range polys {
		b.index.Insert(basinPart{p})
		b.n++
	}
	return b
}

// LoadBasin reads basin polygons from a shapefile or a GeoJSON file
// (.json or .geojson). Shapefile geometries are transformed to
// geographic WGS84 coordinates if a .prj file is present.
func LoadBasin(path string) (*Basin, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	var polys []geom.Polygonal
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		polys, err = basinFromShp(path)
	case ".json", ".geojson":
		polys, err = basinFromGeoJSON(path)
	default:
		return nil, fmt.Errorf("vicparam: unsupported basin file type %s", path)
	}
	if err != nil {
		return nil, err
	}
	if len(polys) == 0 {
		return nil, &MissingInputError{Path: path, Err: fmt.Errorf("no polygons")}
	}
	return NewBasin(polys...), nil
}

func basinFromShp(path string) ([]geom.Polygonal, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("vicparam: opening basin shapefile: %v", err)
	}
	defer d.Close()

	var trans proj.Transformer
	if src, err := d.SR(); err == nil {
		dst, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
		if err != nil {
			return nil, err
		}
		if trans, err = src.NewTransform(dst); err != nil {
			return nil, fmt.Errorf("vicparam: basin shapefile projection: %v", err)
		}
	}

	var polys []geom.Polygonal
	for {
		g, _, more := d.DecodeRowFields()
		if !more || d.Error() != nil {
			break
		}
		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, err
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("vicparam: basin shapefile %s has geometry type %T, need polygons", path, g)
		}
		polys = append(polys, p)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("vicparam: reading basin shapefile: %v", err)
	}
	return polys, nil
}

func basinFromGeoJSON(path string) ([]geom.Polygonal, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := geojson.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("vicparam: decoding basin GeoJSON %s: %v", path, err)
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("vicparam: basin GeoJSON %s has geometry type %T, need a polygon", path, g)
	}
	return []geom.Polygonal{p}, nil
}

// Contains reports whether the point (lon, lat) is inside of or on the
// edge of the basin.
func (b *Basin) Contains(lon, lat float64) bool {
	pt := geom.Point{X: lon, Y: lat}
	for _, item := range b.index.SearchIntersect(pt.Bounds()) {
		if pt.Within(item.(basinPart).Polygonal) != geom.Outside {
			return true
		}
	}
	return false
}

// Len returns the number of basin polygons.
func (b *Basin) Len() int { return b.n }
