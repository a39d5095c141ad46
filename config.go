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
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam/raster"
)

// Config holds the settings of a soil parameter run.
type Config struct {
	GridTemplate string // Path to the NetCDF or ASCII reference grid
	GridVariable string // Variable of GridTemplate that defines valid cells; empty means the first one
	GridRecord   int    // Time record of GridVariable; negative means every record
	BasinMask    string // Optional basin shapefile or GeoJSON file

	Decimals     int     // decimals of ordinary output columns
	TrimIntegral bool    // write integer-valued columns without decimals
	Sentinel     float64 // missing value

	// Stages lists the fill stages to run, in order. Available stages
	// are constants, elevation, texture, initmoist, interpolate,
	// precip and derived.
	Stages []string

	// Constants gives fixed column values by column name.
	Constants map[string]float64

	Elevation         string // Path to the elevation raster [m]
	ElevationVariable string // NetCDF variable of the elevation raster

	Texture   TextureConfig
	InitMoist InitMoistConfig
	Interp    InterpConfig
	Precip    PrecipConfig

	// Derived gives expressions for columns computed from other
	// columns of the same row, by column name.
	Derived map[string]string
}

// TextureConfig selects the source of the soil hydraulic parameters.
type TextureConfig struct {
	// Source is raster, table or ptf.
	Source string

	Raster         string // texture class raster for the raster source
	RasterVariable string

	Table string // ArcGIS attribute table (CSV or XLSX) for the table and ptf sources
	Sheet string // Excel sheet; empty means the first one

	// ClassTable is an optional TOML texture class table replacing
	// the built-in USDA table.
	ClassTable string
}

// InitMoistConfig sets the initial soil moisture policy.
type InitMoistConfig struct {
	Policy   InitMoistPolicy
	Fraction float64 // of the critical point, for WcrFraction
}

// InterpConfig sets the interpolation from a global soil file.
type InterpConfig struct {
	GlobalSoil string // Path to the global soil parameter file
	Method     string // bilinear or nearest

	// Hydraulics also takes the layer hydraulic parameters from the
	// global file, replacing those from the texture stage.
	Hydraulics bool
}

// PrecipConfig sets the annual precipitation climatology.
type PrecipConfig struct {
	Files    string // glob pattern of NetCDF precipitation rate files [mm/s]
	Variable string
	Years    YearRange
}

// DefaultConfig returns the Huaihe basin configuration, without
// input paths.
func DefaultConfig() *Config {
	consts := make(map[string]float64)
	for c, v := range DefaultConstants() {
		consts[c.String()] = v
	}
	return &Config{
		GridRecord:   -1,
		Decimals:     2,
		TrimIntegral: true,
		Sentinel:     Missing,
		Stages:       []string{"constants", "elevation", "texture", "initmoist", "interpolate", "precip", "derived"},
		Constants:    consts,
		Texture:      TextureConfig{Source: "raster"},
		InitMoist:    InitMoistConfig{Policy: WcrFraction, Fraction: 0.5},
		Interp:       InterpConfig{Method: "bilinear"},
		Precip:       PrecipConfig{Files: "prec_*_huai.nc"},
		Derived:      DefaultDerived(),
	}
}

// Formatter returns the output formatter described by c.
func (c *Config) Formatter() *Formatter {
	return &Formatter{Decimals: c.Decimals, TrimIntegral: c.TrimIntegral, Sentinel: c.Sentinel}
}

// Grid reads the grid definition.
func (c *Config) Grid() (*GridDef, error) {
	var basin *Basin
	if c.BasinMask != "" {
		var err error
		if basin, err = LoadBasin(os.ExpandEnv(c.BasinMask)); err != nil {
			return nil, err
		}
	}
	return DefineGrid(os.ExpandEnv(c.GridTemplate), c.GridVariable, c.GridRecord, basin)
}

// BuildStages reads the inputs of the configured stages and returns
// the stages ready to run on a table of the cells of def.
func (c *Config) BuildStages(def *GridDef, log logrus.FieldLogger) ([]Stage, error) {
	var stages []Stage
	for _, name := range c.stageOrder() {
		var f Filler
		var err error
		switch name {
		case "constants":
			var consts map[Column]float64
			if consts, err = ConstantsByName(c.Constants); err == nil {
				f = Constants(consts)
			}
		case "elevation":
			var dem *raster.Grid
			if dem, err = c.openRaster(c.Elevation, c.ElevationVariable, "elevation"); err == nil {
				f = Elevation(def, dem, log)
			}
		case "texture":
			f, err = c.textureStage(def, log)
		case "initmoist":
			f, err = c.initMoistStage(log)
		case "interpolate":
			f, err = c.interpStage(log)
		case "precip":
			f, err = c.precipStage(log)
		case "derived":
			f = Derived(c.Derived)
		default:
			return nil, fmt.Errorf("vicparam: unknown fill stage %q", name)
		}
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{Name: name, Fill: f})
	}
	return stages, nil
}

// stageOrder returns the normalized stage names. When the critical
// point comes from the global soil file, a wcr-fraction initmoist
// stage is moved after the interpolate stage.
func (c *Config) stageOrder() []string {
	names := make([]string, len(c.Stages))
	for i, n := range c.Stages {
		names[i] = strings.ToLower(strings.TrimSpace(n))
	}
	if !c.Interp.Hydraulics || (c.InitMoist.Policy != WcrFraction && c.InitMoist.Policy != "") {
		return names
	}
	im, ip := -1, -1
	for i, n := range names {
		switch n {
		case "initmoist":
			im = i
		case "interpolate":
			ip = i
		}
	}
	if im < 0 || ip < im {
		return names
	}
	o := append([]string{}, names[:im]...)
	o = append(o, names[im+1:ip+1]...)
	o = append(o, names[im])
	return append(o, names[ip+1:]...)
}

func (c *Config) openRaster(path, v, what string) (*raster.Grid, error) {
	if path == "" {
		return nil, fmt.Errorf("vicparam: no %s raster configured", what)
	}
	path = os.ExpandEnv(path)
	if err := checkInput(path); err != nil {
		return nil, err
	}
	g, err := raster.Open(path, v, 0)
	if err != nil {
		return nil, fmt.Errorf("vicparam: reading %s raster: %w", what, err)
	}
	return g, nil
}

func (c *Config) textureStage(def *GridDef, log logrus.FieldLogger) (Filler, error) {
	classes := USDATextures()
	if c.Texture.ClassTable != "" {
		var err error
		if classes, err = LoadTextureTable(os.ExpandEnv(c.Texture.ClassTable)); err != nil {
			return nil, err
		}
	}
	switch strings.ToLower(c.Texture.Source) {
	case "raster", "":
		g, err := c.openRaster(c.Texture.Raster, c.Texture.RasterVariable, "texture")
		if err != nil {
			return nil, err
		}
		return Texture(&RasterTexture{Def: def, Raster: g, Table: classes, Log: log}), nil
	case "table", "ptf":
		recs, err := ReadAttributeTable(os.ExpandEnv(c.Texture.Table), c.Texture.Sheet)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(c.Texture.Source, "ptf") {
			return Texture(&PTFTexture{Records: recs, Log: log}), nil
		}
		return Texture(&TableTexture{Records: recs, Table: classes, Log: log}), nil
	}
	return nil, fmt.Errorf("vicparam: unknown texture source %q", c.Texture.Source)
}

func (c *Config) initMoistStage(log logrus.FieldLogger) (Filler, error) {
	switch c.InitMoist.Policy {
	case WcrFraction, "":
		return InitMoistureFraction(c.InitMoist.Fraction), nil
	case SentinelMoist:
		return InitMoistureSentinel(), nil
	case InterpolateMoist:
		g, m, err := c.globalSoil()
		if err != nil {
			return nil, err
		}
		return Interpolate(g, InitMoistMappings(), m, log), nil
	}
	return nil, fmt.Errorf("vicparam: unknown initial moisture policy %q", c.InitMoist.Policy)
}

func (c *Config) interpStage(log logrus.FieldLogger) (Filler, error) {
	g, m, err := c.globalSoil()
	if err != nil {
		return nil, err
	}
	mappings := DefaultInterpMappings()
	if c.Interp.Hydraulics {
		mappings = append(mappings, HydraulicMappings()...)
	}
	return Interpolate(g, mappings, m, log), nil
}

func (c *Config) globalSoil() (*GlobalSoil, Method, error) {
	m, err := ParseMethod(c.Interp.Method)
	if err != nil {
		return nil, m, err
	}
	if c.Interp.GlobalSoil == "" {
		return nil, m, fmt.Errorf("vicparam: no global soil parameter file configured")
	}
	g, err := ReadGlobalSoil(os.ExpandEnv(c.Interp.GlobalSoil))
	return g, m, err
}

func (c *Config) precipStage(log logrus.FieldLogger) (Filler, error) {
	files, err := GlobFiles(os.ExpandEnv(c.Precip.Files), c.Precip.Years, log)
	if err != nil {
		return nil, err
	}
	clim, err := PrecipClimatology(files, c.Precip.Variable, log)
	if err != nil {
		return nil, err
	}
	return AnnualPrecip(clim), nil
}

// RunSoil defines the grid, runs the configured fill stages and
// checks that every required column has been filled.
func RunSoil(c *Config, log logrus.FieldLogger) (*Table, error) {
	def, err := c.Grid()
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"cells": len(def.Cells), "resolution": def.Resolution}).Info("defined grid")
	stages, err := c.BuildStages(def, log)
	if err != nil {
		return nil, err
	}
	t := NewTable(def.Cells, c.Sentinel)
	if err := Run(t, log, stages...); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteFile writes t to the file at path.
func (f *Formatter) WriteFile(path string, t *Table) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vicparam: creating soil parameter file: %v", err)
	}
	if err := f.Write(w, t); err != nil {
		w.Close()
		return fmt.Errorf("vicparam: writing soil parameter file: %v", err)
	}
	return w.Close()
}

// ReadFile reads the soil parameter file at path.
func ReadFile(path string) (*Table, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}
