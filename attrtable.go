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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// SoilRecord is the dominant soil mapping unit of a grid cell from a
// zonal statistics attribute table exported from ArcGIS.
type SoilRecord struct {
	Share              float64
	TopClass, SubClass int
	TopSand, TopClay   float64
	SubSand, SubClay   float64
}

// Attribute table column names.
const (
	colGridID   = "grid_id"
	colShare    = "SHARE"
	colTopClass = "T_USDA_TEX_CLASS"
	colSubClass = "S_USDA_TEX_CLASS"
	colTopSand  = "T_SAND"
	colTopClay  = "T_CLAY"
	colSubSand  = "S_SAND"
	colSubClay  = "S_CLAY"
)

// ReadAttributeTable reads an attribute table from a CSV file or, if
// path ends in .xlsx, from the named sheet of an Excel workbook (the
// first sheet if sheet is empty). For every grid_id the row with the
// largest SHARE is kept; rows with a blank SHARE are ignored, and the
// first row wins ties. Texture columns that are absent or blank are
// returned as 0 for classes and NaN for sand and clay.
func ReadAttributeTable(path, sheet string) (map[int]SoilRecord, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = excelRows(path, sheet)
	} else {
		rows, err = csvRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &MissingInputError{Path: path, Err: fmt.Errorf("empty attribute table")}
	}

	idx := make(map[string]int)
	for i, name := range rows[0] {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colGridID, colShare} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("vicparam: attribute table %s: missing column %s", path, required)
		}
	}
	get := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(row []string, line int, name string) (float64, error) {
		s := get(row, name)
		if s == "" {
			return math.NaN(), nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &MalformedRowError{File: path, Line: line, Column: idx[name], Token: s, Err: err}
		}
		return v, nil
	}

	o := make(map[int]SoilRecord)
	for k, row := range rows[1:] {
		line := k + 2
		share, err := num(row, line, colShare)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(share) {
			continue
		}
		id, err := num(row, line, colGridID)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(id) {
			continue
		}
		if prev, ok := o[int(id)]; ok && prev.Share >= share {
			continue
		}
		r := SoilRecord{Share: share}
		var vals [6]float64
		for i, name := range []string{colTopClass, colSubClass, colTopSand, colTopClay, colSubSand, colSubClay} {
			if vals[i], err = num(row, line, name); err != nil {
				return nil, err
			}
		}
		r.TopClass, r.SubClass = classOrZero(vals[0]), classOrZero(vals[1])
		r.TopSand, r.TopClay, r.SubSand, r.SubClay = vals[2], vals[3], vals[4], vals[5]
		o[int(id)] = r
	}
	return o, nil
}

func classOrZero(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(v)
}

func csvRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("vicparam: reading attribute table %s: %v", path, err)
		}
		rows = append(rows, rec)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// excelCache holds opened Excel workbooks so that a workbook used by
// more than one stage is only parsed once.
var (
	excelCache     *requestcache.Cache
	excelCacheOnce sync.Once
)

func loadExcelFile(path string) (*xlsx.File, error) {
	excelCacheOnce.Do(func() {
		excelCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			f, err := xlsx.OpenFile(req.(string))
			if err != nil {
				return nil, fmt.Errorf("vicparam: opening xlsx file: %v", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(20))
	})
	r := excelCache.NewRequest(context.Background(), path, path)
	f, err := r.Result()
	if err != nil {
		return nil, err
	}
	return f.(*xlsx.File), nil
}

func excelRows(path, sheet string) ([][]string, error) {
	f, err := loadExcelFile(path)
	if err != nil {
		return nil, err
	}
	var s *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, &MissingInputError{Path: path, Err: fmt.Errorf("no sheets")}
		}
		s = f.Sheets[0]
	} else {
		var ok bool
		if s, ok = f.Sheet[sheet]; !ok {
			return nil, fmt.Errorf("vicparam: %s has no sheet %s", path, sheet)
		}
	}
	rows := make([][]string, s.MaxRow)
	for j := range rows {
		rows[j] = make([]string, s.MaxCol)
		for i := range rows[j] {
			rows[j][i] = s.Cell(j, i).Value
		}
	}
	return rows, nil
}
