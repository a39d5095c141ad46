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

package vicutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/forcing"
	"github.com/spatialmodel/vicparam/raster"
	"github.com/spatialmodel/vicparam/veg"
	"github.com/spf13/cast"
)

// SoilConfig unmarshals a viper configuration for a soil parameter run.
// Input files that are URLs or blob storage locations are downloaded.
func SoilConfig(ctx context.Context, cfg *viper.Viper) (*vicparam.Config, error) {
	consts, err := getStringMapFloat64("Constants", cfg)
	if err != nil {
		return nil, fmt.Errorf("vicparam: parsing Constants: %v", err)
	}
	years, err := yearRange("Precip.Years", cfg)
	if err != nil {
		return nil, err
	}
	derived, err := GetStringMapString("Derived", cfg)
	if err != nil {
		return nil, fmt.Errorf("vicparam: parsing Derived: %v", err)
	}
	get := func(name string) string {
		return maybeDownload(ctx, os.ExpandEnv(cfg.GetString(name)), Log)
	}
	c := &vicparam.Config{
		GridTemplate:      get("GridTemplate"),
		GridVariable:      cfg.GetString("GridVariable"),
		GridRecord:        cfg.GetInt("GridRecord"),
		BasinMask:         get("BasinMask"),
		Decimals:          cfg.GetInt("Decimals"),
		TrimIntegral:      cfg.GetBool("TrimIntegral"),
		Sentinel:          cfg.GetFloat64("Sentinel"),
		Stages:            expandStringSlice(cfg.GetStringSlice("Stages")),
		Constants:         consts,
		Elevation:         get("Elevation"),
		ElevationVariable: cfg.GetString("ElevationVariable"),
		Texture: vicparam.TextureConfig{
			Source:         cfg.GetString("Texture.Source"),
			Raster:         get("Texture.Raster"),
			RasterVariable: cfg.GetString("Texture.RasterVariable"),
			Table:          get("Texture.Table"),
			Sheet:          cfg.GetString("Texture.Sheet"),
			ClassTable:     get("Texture.ClassTable"),
		},
		InitMoist: vicparam.InitMoistConfig{
			Policy:   vicparam.InitMoistPolicy(cfg.GetString("InitMoist.Policy")),
			Fraction: cfg.GetFloat64("InitMoist.Fraction"),
		},
		Interp: vicparam.InterpConfig{
			GlobalSoil: get("Interp.GlobalSoil"),
			Method:     cfg.GetString("Interp.Method"),
			Hydraulics: cfg.GetBool("Interp.Hydraulics"),
		},
		Precip: vicparam.PrecipConfig{
			Files:    os.ExpandEnv(cfg.GetString("Precip.Files")),
			Variable: cfg.GetString("Precip.Variable"),
			Years:    years,
		},
		Derived: derived,
	}
	if c.GridTemplate == "" {
		return nil, fmt.Errorf("vicparam: you need to specify a grid template raster in the GridTemplate configuration variable")
	}
	if c.Decimals < 0 {
		return nil, fmt.Errorf("vicparam: Decimals=%d but should be >= 0", c.Decimals)
	}
	return c, nil
}

// VegBuilder unmarshals a viper configuration for a vegetation
// parameter run and reads its inputs.
func VegBuilder(ctx context.Context, cfg *viper.Viper, log logrus.FieldLogger) (*veg.Builder, error) {
	get := func(name string) string {
		return maybeDownload(ctx, os.ExpandEnv(cfg.GetString(name)), log)
	}
	var def *vicparam.GridDef
	if soil := get("Veg.SoilFile"); soil != "" {
		t, err := vicparam.ReadFile(soil)
		if err != nil {
			return nil, err
		}
		def = vicparam.GridFromTable(t)
	} else {
		c := &vicparam.Config{
			GridTemplate: get("GridTemplate"),
			GridVariable: cfg.GetString("GridVariable"),
			GridRecord:   cfg.GetInt("GridRecord"),
			BasinMask:    get("BasinMask"),
		}
		if c.GridTemplate == "" {
			return nil, fmt.Errorf("vicparam: you need to specify either Veg.SoilFile or GridTemplate")
		}
		var err error
		if def, err = c.Grid(); err != nil {
			return nil, err
		}
	}

	lcPath := get("Veg.LandCover")
	if lcPath == "" {
		return nil, fmt.Errorf("vicparam: you need to specify a land cover raster in the Veg.LandCover configuration variable")
	}
	lc, err := raster.Open(lcPath, cfg.GetString("Veg.LandCoverVariable"), 0)
	if err != nil {
		return nil, &vicparam.MissingInputError{Path: lcPath, Err: err}
	}
	lib, err := veg.ReadLibrary(get("Veg.Library"))
	if err != nil {
		return nil, err
	}
	var rz *veg.RootZones
	if name := os.ExpandEnv(cfg.GetString("Veg.RootZones")); strings.EqualFold(name, "v1") || strings.EqualFold(name, "v2") {
		rz, err = veg.RootZonesByName(name)
	} else {
		rz, err = veg.LoadRootZones(maybeDownload(ctx, name, log))
	}
	if err != nil {
		return nil, err
	}
	return &veg.Builder{
		Def:       def,
		LandCover: lc,
		Library:   lib,
		RootZones: rz,
		Excluded:  cfg.GetInt("Veg.Excluded"),
		Threshold: cfg.GetFloat64("Veg.Threshold"),
		Log:       log,
	}, nil
}

// ForcingConfig unmarshals a viper configuration for a forcing run.
func ForcingConfig(ctx context.Context, cfg *viper.Viper) (*forcing.Config, error) {
	years, err := yearRange("Forcing.Years", cfg)
	if err != nil {
		return nil, err
	}
	c := &forcing.Config{
		Dir:      os.ExpandEnv(cfg.GetString("Forcing.InputDir")),
		Years:    years,
		Master:   cfg.GetString("Forcing.Master"),
		Prefix:   os.ExpandEnv(cfg.GetString("Forcing.Prefix")),
		Progress: cfg.GetBool("progress"),
	}
	if c.Dir == "" {
		return nil, fmt.Errorf("vicparam: you need to specify the input directory in the Forcing.InputDir configuration variable")
	}
	if mask := os.ExpandEnv(cfg.GetString("BasinMask")); mask != "" {
		if c.Basin, err = vicparam.LoadBasin(maybeDownload(ctx, mask, Log)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Resampling holds the settings of a resample run.
type Resampling struct {
	Files      string // glob pattern of the input NetCDF files
	Years      vicparam.YearRange
	Basin      *vicparam.Basin
	Resolution float64 // degrees
	Suffix     string  // appended to the output file name stems
	OutputDir  string
}

// ResampleConfig unmarshals a viper configuration for a resample run.
func ResampleConfig(ctx context.Context, cfg *viper.Viper) (*Resampling, error) {
	years, err := yearRange("Resample.Years", cfg)
	if err != nil {
		return nil, err
	}
	r := &Resampling{
		Files:      os.ExpandEnv(cfg.GetString("Resample.Files")),
		Years:      years,
		Resolution: cfg.GetFloat64("Resample.Resolution"),
		Suffix:     cfg.GetString("Resample.Suffix"),
		OutputDir:  os.ExpandEnv(cfg.GetString("Resample.OutputDir")),
	}
	if r.Files == "" {
		return nil, fmt.Errorf("vicparam: you need to specify the input files in the Resample.Files configuration variable")
	}
	if r.Resolution <= 0 {
		return nil, fmt.Errorf("vicparam: Resample.Resolution must be positive but is %g", r.Resolution)
	}
	if mask := os.ExpandEnv(cfg.GetString("BasinMask")); mask != "" {
		if r.Basin, err = vicparam.LoadBasin(maybeDownload(ctx, mask, Log)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// yearRange reads an inclusive [first, last] year range.
func yearRange(varName string, cfg *viper.Viper) (vicparam.YearRange, error) {
	y, err := toIntSliceE(cfg.Get(varName))
	if err != nil {
		return vicparam.YearRange{}, fmt.Errorf("vicparam: parsing %s: %v", varName, err)
	}
	switch len(y) {
	case 0:
		return vicparam.YearRange{}, nil
	case 2:
		if y[0] > y[1] {
			return vicparam.YearRange{}, fmt.Errorf("vicparam: %s: first year %d is after last year %d", varName, y[0], y[1])
		}
		return vicparam.YearRange{From: y[0], To: y[1]}, nil
	}
	return vicparam.YearRange{}, fmt.Errorf("vicparam: %s should be [first, last] but is %v", varName, y)
}

func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return cast.ToIntSliceE(s)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument. Keys and values have environment
// variables expanded and line breaks replaced by spaces.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	var o map[string]string
	switch v := cfg.Get(varName).(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		o = v
	case map[string]interface{}:
		var err error
		if o, err = cast.ToStringMapStringE(v); err != nil {
			return nil, err
		}
	case string:
		o = make(map[string]string)
		if v != "" {
			d := json.NewDecoder(bytes.NewBufferString(v))
			if err := d.Decode(&o); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("invalid type for map variable %s: %#v", varName, v)
	}
	out := make(map[string]string, len(o))
	for k, v := range o {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		out[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return out, nil
}

// getStringMapFloat64 is like GetStringMapString for numeric values.
func getStringMapFloat64(varName string, cfg *viper.Viper) (map[string]float64, error) {
	switch v := cfg.Get(varName).(type) {
	case nil:
		return map[string]float64{}, nil
	case map[string]float64:
		return v, nil
	case map[string]interface{}:
		o := make(map[string]float64, len(v))
		for k, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %v", k, err)
			}
			o[k] = f
		}
		return o, nil
	case string:
		o := make(map[string]float64)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for map variable %s: %#v", varName, v)
	}
}
