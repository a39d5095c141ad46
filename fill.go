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
	"sort"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam/raster"
)

// A Filler writes a subset of the columns of a soil parameter table.
type Filler func(*Table) error

// Stage is a named Filler.
type Stage struct {
	Name string
	Fill Filler
}

// Run runs stages on t in order. A later stage overwrites the columns
// written by earlier ones.
func Run(t *Table, log logrus.FieldLogger, stages ...Stage) error {
	for _, s := range stages {
		start := time.Now()
		log.WithField("stage", s.Name).Info("filling soil parameters")
		if err := s.Fill(t); err != nil {
			return fmt.Errorf("vicparam: stage %s: %w", s.Name, err)
		}
		log.WithFields(logrus.Fields{"stage": s.Name, "duration": time.Since(start)}).Debug("stage complete")
	}
	return nil
}

// DefaultConstants returns the fixed parameter values of the Huaihe
// configuration.
func DefaultConstants() map[Column]float64 {
	return map[Column]float64{
		Infilt:       0.3,
		Ds:           0.02,
		DsMax:        10,
		Ws:           0.7,
		C:            2,
		Depth1:       0.1,
		Depth2:       Missing,
		Depth3:       Missing,
		Dp:           4.0,
		SoilDensity1: 2685,
		SoilDensity2: 2685,
		SoilDensity3: 2685,
		Rough:        0.01,
		SnowRough:    0.03,
		ResidMoist1:  0,
		ResidMoist2:  0,
		ResidMoist3:  0,
		FSActive:     0,
	}
}

// ConstantsByName converts a column name to value map into a column to
// value map.
func ConstantsByName(m map[string]float64) (map[Column]float64, error) {
	o := make(map[Column]float64, len(m))
	for name, v := range m {
		c, err := ColumnByName(name)
		if err != nil {
			return nil, err
		}
		o[c] = v
	}
	return o, nil
}

// Constants writes the same value to every row of each given column.
func Constants(values map[Column]float64) Filler {
	return func(t *Table) error {
		cols := make([]int, 0, len(values))
		for c := range values {
			cols = append(cols, int(c))
		}
		sort.Ints(cols)
		for _, c := range cols {
			if err := t.SetConstant(Column(c), values[Column(c)]); err != nil {
				return err
			}
		}
		return nil
	}
}

// Elevation writes the mean of the elevation raster pixels within each
// cell box to the elev column. Cells without pixels take the nearest
// pixel; missing values become 0.
func Elevation(def *GridDef, dem *raster.Grid, log logrus.FieldLogger) Filler {
	return func(t *Table) error {
		z := NewZonal(def, dem)
		cells := t.Cells()
		v := make([]float64, len(cells))
		missing := 0
		for i, c := range cells {
			v[i] = z.Mean(c)
			if math.IsNaN(v[i]) {
				v[i] = 0
				missing++
			}
		}
		if missing > 0 {
			log.WithField("cells", missing).Warn("no elevation data; using 0")
		}
		return t.SetColumns([]Column{Elev}, v)
	}
}

// TextureSource gives the top soil and subsoil hydraulic parameters of
// every cell.
type TextureSource interface {
	Hydraulics(cells []GridCell) (top, sub []Hydraulics, err error)
}

// RasterTexture takes the majority class of a texture class raster
// within each cell box. Both soil layers get the same class. Cells
// without pixels get the default class.
type RasterTexture struct {
	Def    *GridDef
	Raster *raster.Grid
	Table  *TextureTable
	Log    logrus.FieldLogger
}

// Hydraulics implements TextureSource.
func (r *RasterTexture) Hydraulics(cells []GridCell) (top, sub []Hydraulics, err error) {
	z := NewZonal(r.Def, r.Raster)
	top = make([]Hydraulics, len(cells))
	for i, c := range cells {
		class, ok := z.Majority(c)
		if !ok {
			logMiss(r.Log, &SpatialJoinMiss{CellID: c.ID, Source: "texture raster"})
			class = r.Table.DefaultID
		}
		top[i] = lookupClass(r.Table, class, c.ID, r.Log)
	}
	return top, top, nil
}

// TableTexture takes the texture classes of the dominant soil record
// of each cell. Cells without a record get the default class.
type TableTexture struct {
	Records map[int]SoilRecord
	Table   *TextureTable
	Log     logrus.FieldLogger
}

// Hydraulics implements TextureSource.
func (s *TableTexture) Hydraulics(cells []GridCell) (top, sub []Hydraulics, err error) {
	top = make([]Hydraulics, len(cells))
	sub = make([]Hydraulics, len(cells))
	for i, c := range cells {
		r, ok := s.Records[c.ID]
		if !ok {
			logMiss(s.Log, &SpatialJoinMiss{CellID: c.ID, Source: "soil attribute table"})
			r.TopClass, r.SubClass = s.Table.DefaultID, s.Table.DefaultID
		}
		top[i] = lookupClass(s.Table, r.TopClass, c.ID, s.Log)
		sub[i] = lookupClass(s.Table, r.SubClass, c.ID, s.Log)
	}
	return top, sub, nil
}

// PTFTexture estimates hydraulic parameters from the sand and clay
// content of the dominant soil record of each cell with SaxtonRawls.
// Cells without a record get PTFFallback.
type PTFTexture struct {
	Records map[int]SoilRecord
	Log     logrus.FieldLogger
}

// Hydraulics implements TextureSource.
func (s *PTFTexture) Hydraulics(cells []GridCell) (top, sub []Hydraulics, err error) {
	top = make([]Hydraulics, len(cells))
	sub = make([]Hydraulics, len(cells))
	for i, c := range cells {
		r, ok := s.Records[c.ID]
		if !ok {
			logMiss(s.Log, &SpatialJoinMiss{CellID: c.ID, Source: "soil attribute table"})
			nan := math.NaN()
			r = SoilRecord{TopSand: nan, TopClay: nan, SubSand: nan, SubClay: nan}
		}
		top[i] = SaxtonRawls(r.TopSand, r.TopClay)
		sub[i] = SaxtonRawls(r.SubSand, r.SubClay)
	}
	return top, sub, nil
}

func lookupClass(t *TextureTable, class, cellID int, log logrus.FieldLogger) Hydraulics {
	h, ok := t.Lookup(class)
	if !ok {
		log.WithFields(logrus.Fields{"cell": cellID, "class": class}).
			Warn("unknown texture class; using default")
	}
	return h
}

func logMiss(log logrus.FieldLogger, err error) {
	log.Warn(err.Error())
}

// Texture writes the layer hydraulic parameters from src. Layers 1 and
// 2 take the top soil values and layer 3 the subsoil values.
func Texture(src TextureSource) Filler {
	return func(t *Table) error {
		top, sub, err := src.Hydraulics(t.Cells())
		if err != nil {
			return err
		}
		if len(top) != t.Len() || len(sub) != t.Len() {
			return fmt.Errorf("%w: texture source returned %d and %d records", ErrLengthMismatch, len(top), len(sub))
		}
		for _, f := range []struct {
			first Column
			get   func(Hydraulics) float64
		}{
			{Expt1, func(h Hydraulics) float64 { return h.Expt }},
			{Ksat1, func(h Hydraulics) float64 { return h.Ksat }},
			{BulkDensity1, func(h Hydraulics) float64 { return h.BulkDensity }},
			{WcrFract1, func(h Hydraulics) float64 { return h.Wcr }},
			{WpwpFract1, func(h Hydraulics) float64 { return h.Wpwp }},
		} {
			tv, sv := make([]float64, len(top)), make([]float64, len(sub))
			for i := range top {
				tv[i], sv[i] = f.get(top[i]), f.get(sub[i])
			}
			l := Layers(f.first)
			if err := t.SetColumns(l[:], tv, tv, sv); err != nil {
				return err
			}
		}
		return nil
	}
}

// InitMoistPolicy determines how initial layer moisture is set.
type InitMoistPolicy string

// Initial moisture policies.
const (
	// WcrFraction sets initial moisture to a fraction of each
	// layer's critical point.
	WcrFraction InitMoistPolicy = "wcr-fraction"
	// InterpolateMoist interpolates initial moisture from a global
	// soil parameter file.
	InterpolateMoist InitMoistPolicy = "interpolate"
	// SentinelMoist leaves initial moisture unset.
	SentinelMoist InitMoistPolicy = "sentinel"
)

// InitMoistureFraction writes init_moist_i = Wcr_FRACT_i × fraction.
// It must run after the critical point columns have been written.
func InitMoistureFraction(fraction float64) Filler {
	return func(t *Table) error {
		w := Layers(WcrFract1)
		m := Layers(InitMoist1)
		for k := range w {
			if !t.Written(w[k]) {
				return fmt.Errorf("vicparam: %s must be filled before initial moisture", w[k])
			}
			v := t.Column(w[k])
			for i := range v {
				v[i] *= fraction
			}
			if err := t.SetColumns([]Column{m[k]}, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// InitMoistureSentinel writes the missing value to the initial
// moisture columns.
func InitMoistureSentinel() Filler {
	l := Layers(InitMoist1)
	return Constants(map[Column]float64{l[0]: Missing, l[1]: Missing, l[2]: Missing})
}

// Interpolate fills columns from a global soil parameter file. Points
// outside of the source grid, or whose interpolated value is missing,
// are set to 0.
func Interpolate(g *GlobalSoil, mappings []InterpMapping, m Method, log logrus.FieldLogger) Filler {
	return func(t *Table) error {
		cells := t.Cells()
		for _, mp := range mappings {
			ip, err := g.Interpolator(mp.Source)
			if err != nil {
				return err
			}
			v := make([]float64, len(cells))
			outside := 0
			for i, c := range cells {
				val, ok := ip.Interpolate(c.Lat, c.Lon, m)
				if !ok {
					if outside == 0 {
						log.Warn((&InterpolationOutOfDomain{Lat: c.Lat, Lon: c.Lon, Param: mp.Name}).Error())
					}
					outside++
				}
				if math.IsNaN(val) {
					val = 0
				}
				v[i] = val
			}
			if outside > 1 {
				log.WithFields(logrus.Fields{"param": mp.Name, "cells": outside}).
					Warn("cells outside of the global soil grid; using 0")
			}
			if err := t.SetColumns(mp.Targets, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// AnnualPrecip writes the value of the nearest climatology pixel to
// the annual_prec column. Missing values become 0.
func AnnualPrecip(clim *raster.Grid) Filler {
	return func(t *Table) error {
		cells := t.Cells()
		v := make([]float64, len(cells))
		for i, c := range cells {
			v[i] = clim.Nearest(c.Lon, c.Lat)
			if math.IsNaN(v[i]) {
				v[i] = 0
			}
		}
		return t.SetColumns([]Column{AnnualPrec}, v)
	}
}

// DefaultDerived returns the derived column expressions of the Huaihe
// configuration.
func DefaultDerived() map[string]string {
	return map[string]string{"off_gmt": "round(lon * 24 / 360, 1)"}
}

// derivedFuncs are the functions available to derived column
// expressions.
var derivedFuncs = map[string]govaluate.ExpressionFunction{
	"round": func(args ...interface{}) (interface{}, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("vicparam: got %d arguments for function 'round', but needs 1 or 2", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("vicparam: round: invalid argument %v", args[0])
		}
		digits := 0.
		if len(args) == 2 {
			if digits, ok = args[1].(float64); !ok {
				return nil, fmt.Errorf("vicparam: round: invalid argument %v", args[1])
			}
		}
		p := math.Pow(10, digits)
		return math.RoundToEven(x*p) / p, nil
	},
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("vicparam: got %d arguments for function 'abs', but needs 1", len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("vicparam: abs: invalid argument %v", args[0])
		}
		return math.Abs(x), nil
	},
}

// Derived computes columns from expressions over other columns of the
// same row. Expressions may refer to any column by name and to id, lat
// and lon. Expressions are evaluated in column order.
func Derived(exprs map[string]string) Filler {
	return func(t *Table) error {
		type derived struct {
			col  Column
			expr *govaluate.EvaluableExpression
		}
		var ds []derived
		for name, e := range exprs {
			c, err := ColumnByName(name)
			if err != nil {
				return err
			}
			expr, err := govaluate.NewEvaluableExpressionWithFunctions(e, derivedFuncs)
			if err != nil {
				return fmt.Errorf("vicparam: derived column %s: %v", name, err)
			}
			for _, v := range expr.Vars() {
				if _, err := variableColumn(v); err != nil {
					return fmt.Errorf("vicparam: derived column %s: %v", name, err)
				}
			}
			ds = append(ds, derived{col: c, expr: expr})
		}
		sort.Slice(ds, func(i, j int) bool { return ds[i].col < ds[j].col })

		for _, d := range ds {
			v := make([]float64, t.Len())
			for i := range t.rows {
				params := make(map[string]interface{})
				for _, name := range d.expr.Vars() {
					c, _ := variableColumn(name)
					params[name] = t.rows[i][c]
				}
				r, err := d.expr.Evaluate(params)
				if err != nil {
					return fmt.Errorf("vicparam: derived column %s row %d: %v", d.col, i+1, err)
				}
				f, ok := r.(float64)
				if !ok {
					return fmt.Errorf("vicparam: derived column %s: expression result %v is not a number", d.col, r)
				}
				v[i] = f
			}
			if err := t.SetColumns([]Column{d.col}, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// variableColumn maps an expression variable to a column.
func variableColumn(name string) (Column, error) {
	if strings.EqualFold(name, "id") {
		return GridCel, nil
	}
	return ColumnByName(name)
}
