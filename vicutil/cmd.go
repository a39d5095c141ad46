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
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/forcing"
	"github.com/spatialmodel/vicparam/veg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by every command.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := vicparam.DefaultConfig()

	// Options are the configuration options available to vicparam.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log-level",
			usage: `
              log-level sets the logging level: debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridTemplate",
			usage: `
              GridTemplate is the NetCDF or ESRI ASCII raster whose non-missing
              pixels define the VIC grid cells.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags(), vegCmd.Flags()},
		},
		{
			name: "GridVariable",
			usage: `
              GridVariable is the NetCDF variable of GridTemplate that defines
              valid cells. If empty, the first data variable is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags(), vegCmd.Flags()},
		},
		{
			name: "GridRecord",
			usage: `
              GridRecord is the time record of GridVariable. If negative, a cell
              is only valid if GridVariable has a value in every record.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags(), vegCmd.Flags()},
		},
		{
			name: "BasinMask",
			usage: `
              BasinMask is an optional shapefile or GeoJSON file of the river
              basin. Only grid cells whose centers are inside it are kept.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags(), vegCmd.Flags(), forcingCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the soil parameter file to write. It may
              be a blob storage location such as gs://bucket/soil_param.txt.`,
			shorthand:  "o",
			defaultVal: "soil_param_huai.txt",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Decimals",
			usage: `
              Decimals is the number of decimals written for ordinary columns.`,
			defaultVal: def.Decimals,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "TrimIntegral",
			usage: `
              TrimIntegral writes integer-valued columns such as the cell id and
              the layer count without decimals.`,
			defaultVal: def.TrimIntegral,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Sentinel",
			usage: `
              Sentinel is the value written for missing data.`,
			defaultVal: def.Sentinel,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Stages",
			usage: `
              Stages lists the fill stages to run, in order. Available stages are
              constants, elevation, texture, initmoist, interpolate, precip and
              derived.`,
			defaultVal: def.Stages,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Constants",
			usage: `
              Constants gives fixed column values by column name.`,
			defaultVal: def.Constants,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Elevation",
			usage: `
              Elevation is the digital elevation model raster [m].`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "ElevationVariable",
			usage: `
              ElevationVariable is the NetCDF variable of the elevation raster.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.Source",
			usage: `
              Texture.Source selects the source of the soil hydraulic parameters:
              raster (a texture class raster), table (texture classes from an
              attribute table) or ptf (sand and clay from an attribute table).`,
			defaultVal: def.Texture.Source,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.Raster",
			usage: `
              Texture.Raster is the USDA texture class raster.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.RasterVariable",
			usage: `
              Texture.RasterVariable is the NetCDF variable of the texture raster.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.Table",
			usage: `
              Texture.Table is a zonal statistics attribute table exported from
              ArcGIS as CSV or XLSX.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.Sheet",
			usage: `
              Texture.Sheet is the sheet of an XLSX attribute table. If empty, the
              first sheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Texture.ClassTable",
			usage: `
              Texture.ClassTable is an optional TOML texture class table that
              replaces the built-in USDA table.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "InitMoist.Policy",
			usage: `
              InitMoist.Policy sets the initial layer moisture: wcr-fraction,
              interpolate or sentinel.`,
			defaultVal: string(def.InitMoist.Policy),
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "InitMoist.Fraction",
			usage: `
              InitMoist.Fraction is the fraction of the critical point used by the
              wcr-fraction policy.`,
			defaultVal: def.InitMoist.Fraction,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Interp.GlobalSoil",
			usage: `
              Interp.GlobalSoil is the global VIC soil parameter file that average
              soil temperature and quartz content are interpolated from.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Interp.Method",
			usage: `
              Interp.Method is the interpolation method: bilinear or nearest.`,
			defaultVal: def.Interp.Method,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Interp.Hydraulics",
			usage: `
              Interp.Hydraulics also takes the layer hydraulic parameters from the
              global soil file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Precip.Files",
			usage: `
              Precip.Files is a glob pattern of NetCDF precipitation rate files
              [mm/s].`,
			defaultVal: def.Precip.Files,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Precip.Variable",
			usage: `
              Precip.Variable is the NetCDF precipitation variable. If empty, the
              first data variable is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Precip.Years",
			usage: `
              Precip.Years is the inclusive range of years of precipitation files
              to use, as [first, last]. If empty, every file is used.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Derived",
			usage: `
              Derived gives expressions for columns computed from other columns of
              the same row, by column name.`,
			defaultVal: def.Derived,
			flagsets:   []*pflag.FlagSet{soilCmd.Flags()},
		},
		{
			name: "Veg.SoilFile",
			usage: `
              Veg.SoilFile is a soil parameter file whose cells define the
              vegetation grid. If empty, the grid is defined from GridTemplate.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.LandCover",
			usage: `
              Veg.LandCover is the land cover class raster.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.LandCoverVariable",
			usage: `
              Veg.LandCoverVariable is the NetCDF variable of the land cover raster.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.Library",
			usage: `
              Veg.Library is the VIC vegetation library file with monthly LAI.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.RootZones",
			usage: `
              Veg.RootZones is the root zone table: v1, v2 or the path to a TOML
              table file.`,
			defaultVal: "v1",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.Excluded",
			usage: `
              Veg.Excluded is the land cover class removed before fractions are
              computed. Use -1 to keep every class.`,
			defaultVal: veg.DefaultExcluded,
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.Threshold",
			usage: `
              Veg.Threshold is the smallest class fraction that is written.`,
			defaultVal: veg.DefaultThreshold,
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Veg.OutputFile",
			usage: `
              Veg.OutputFile is the path of the vegetation parameter file to write.`,
			defaultVal: "veg_param_huai.txt",
			flagsets:   []*pflag.FlagSet{vegCmd.Flags()},
		},
		{
			name: "Resample.Files",
			usage: `
              Resample.Files is the glob pattern of the NetCDF files to clip to
              BasinMask and average onto the model grid.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Resample.Years",
			usage: `
              Resample.Years is the inclusive range of years of input files to use,
              as [first, last]. If empty, every file is used.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Resample.Resolution",
			usage: `
              Resample.Resolution is the output grid resolution [degrees].`,
			defaultVal: vicparam.DefaultResolution,
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Resample.Suffix",
			usage: `
              Resample.Suffix is appended to the output file names, which are
              otherwise the input names with the resolution token replaced.`,
			defaultVal: "huai",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Resample.OutputDir",
			usage: `
              Resample.OutputDir is the directory the resampled files are written to.`,
			defaultVal: "huai",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Forcing.InputDir",
			usage: `
              Forcing.InputDir is the directory of daily NetCDF input files named
              {var}_*.nc.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags()},
		},
		{
			name: "Forcing.Years",
			usage: `
              Forcing.Years is the inclusive range of years of input files to use,
              as [first, last]. If empty, every file is used.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags()},
		},
		{
			name: "Forcing.Master",
			usage: `
              Forcing.Master is the variable whose first record defines the valid
              grid cells.`,
			defaultVal: "wind",
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags()},
		},
		{
			name: "Forcing.Prefix",
			usage: `
              Forcing.Prefix is the forcing file name prefix.`,
			defaultVal: forcing.DefaultPrefix,
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags()},
		},
		{
			name: "Forcing.OutputDir",
			usage: `
              Forcing.OutputDir is the directory the forcing files are written to.`,
			defaultVal: "forcing",
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags()},
		},
		{
			name: "progress",
			usage: `
              progress shows a progress bar while files are written.`,
			shorthand:  "p",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{forcingCmd.Flags(), disaggregateCmd.Flags()},
		},
		{
			name: "Disaggregate.InputDir",
			usage: `
              Disaggregate.InputDir is the directory of daily forcing files.`,
			defaultVal: "forcing",
			flagsets:   []*pflag.FlagSet{disaggregateCmd.Flags()},
		},
		{
			name: "Disaggregate.OutputDir",
			usage: `
              Disaggregate.OutputDir is the directory the sub-daily forcing files
              are written to.`,
			defaultVal: "forcing_6h",
			flagsets:   []*pflag.FlagSet{disaggregateCmd.Flags()},
		},
		{
			name: "Disaggregate.Steps",
			usage: `
              Disaggregate.Steps is the number of time steps per day.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{disaggregateCmd.Flags()},
		},
		{
			name: "SoilFile",
			usage: `
              SoilFile is the soil parameter file read by the shift, gridshp and
              diag commands.`,
			defaultVal: "soil_param_huai.txt",
			flagsets:   []*pflag.FlagSet{shiftCmd.Flags(), gridShpCmd.Flags(), diagCmd.Flags()},
		},
		{
			name: "Shift.OutputFile",
			usage: `
              Shift.OutputFile is the path of the shifted soil parameter file.`,
			defaultVal: "soil_param_huai_shifted.txt",
			flagsets:   []*pflag.FlagSet{shiftCmd.Flags()},
		},
		{
			name: "Shift.Lat",
			usage: `
              Shift.Lat is added to the latitude column [degrees].`,
			defaultVal: vicparam.DefaultLatShift,
			flagsets:   []*pflag.FlagSet{shiftCmd.Flags()},
		},
		{
			name: "Shift.Lon",
			usage: `
              Shift.Lon is added to the longitude column [degrees].`,
			defaultVal: vicparam.DefaultLonShift,
			flagsets:   []*pflag.FlagSet{shiftCmd.Flags()},
		},
		{
			name: "GridShp.OutputFile",
			usage: `
              GridShp.OutputFile is the path of the grid point shapefile.`,
			defaultVal: "grid_points.shp",
			flagsets:   []*pflag.FlagSet{gridShpCmd.Flags()},
		},
		{
			name: "Diag.Column",
			usage: `
              Diag.Column is the name of the soil parameter column to map.`,
			defaultVal: "elev",
			flagsets:   []*pflag.FlagSet{diagCmd.Flags()},
		},
		{
			name: "Diag.OutputFile",
			usage: `
              Diag.OutputFile is the ESRI ASCII grid to write. The histogram is
              written next to it with the extension .png.`,
			defaultVal: "diag.asc",
			flagsets:   []*pflag.FlagSet{diagCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("VICPARAM")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case []int:
				set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			case map[string]string, map[string]float64:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				set.String(option.name, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(soilCmd)
	Root.AddCommand(vegCmd)
	Root.AddCommand(resampleCmd)
	Root.AddCommand(forcingCmd)
	Root.AddCommand(disaggregateCmd)
	Root.AddCommand(shiftCmd)
	Root.AddCommand(gridShpCmd)
	Root.AddCommand(diagCmd)
	Root.AddCommand(guiCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("vicparam: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("vicparam: %v", err)
	}
	Log.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "vicparam",
	Short: "Build VIC model parameter and forcing files.",
	Long: `vicparam assembles soil parameter, vegetation parameter and meteorological
forcing files for the VIC hydrologic model on a regular latitude-longitude grid,
by default for the Huaihe river basin at 0.25°.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'VICPARAM_var' where 'var' is the
name of the variable to be set. Paths may contain environment variables and
may be http(s) URLs or blob storage locations (gs://, s3://, file://).`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of vicparam.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("vicparam v%s\n", vicparam.Version)
	},
	DisableAutoGenTag: true,
}

// soilCmd builds a soil parameter file.
var soilCmd = &cobra.Command{
	Use:   "soil",
	Short: "Build the soil parameter file.",
	Long: `soil defines the grid from GridTemplate, runs the configured fill
stages and writes the VIC soil parameter file to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := SoilConfig(ctx, Cfg)
		if err != nil {
			return err
		}
		return Soil(ctx, c, os.ExpandEnv(Cfg.GetString("OutputFile")), Log)
	},
	DisableAutoGenTag: true,
}

// vegCmd builds a vegetation parameter file.
var vegCmd = &cobra.Command{
	Use:   "veg",
	Short: "Build the vegetation parameter file.",
	Long: `veg computes the land cover class fractions of every grid cell and
writes them, with root zone parameters and monthly LAI, to Veg.OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := VegBuilder(ctx, Cfg, Log)
		if err != nil {
			return err
		}
		return Veg(ctx, b, os.ExpandEnv(Cfg.GetString("Veg.OutputFile")), Log)
	},
	DisableAutoGenTag: true,
}

// resampleCmd clips and coarsens gridded input files.
var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Clip gridded files to the basin and average them onto the model grid.",
	Long: `resample reads every NetCDF file matching Resample.Files, keeps the pixels
whose centers are inside BasinMask, averages them onto a grid of
Resample.Resolution degrees weighting each pixel by its overlap area, and
writes the result to Resample.OutputDir. Run it on the forcing and elevation
inputs before the forcing and soil commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, err := ResampleConfig(ctx, Cfg)
		if err != nil {
			return err
		}
		return Resample(ctx, r, Log)
	},
	DisableAutoGenTag: true,
}

// forcingCmd converts gridded meteorology to per-cell forcing files.
var forcingCmd = &cobra.Command{
	Use:   "forcing",
	Short: "Write daily VIC forcing files.",
	Long: `forcing reads daily gridded prec, temp, pres, srad, lrad, wind and shum
NetCDF files from Forcing.InputDir and writes one VIC forcing file per grid cell
to Forcing.OutputDir with the columns air_temp [°C], prec [mm/day],
pressure [kPa], swdown [W/m²], lwdown [W/m²], vp [kPa] and wind [m/s].`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := ForcingConfig(ctx, Cfg)
		if err != nil {
			return err
		}
		start := time.Now()
		d, err := forcing.Load(c, Log)
		if err != nil {
			return err
		}
		if err := d.Write(ctx, os.ExpandEnv(Cfg.GetString("Forcing.OutputDir")), c.Prefix, c.Progress, Log); err != nil {
			return err
		}
		Log.WithField("duration", time.Since(start)).Info("forcing finished")
		return nil
	},
	DisableAutoGenTag: true,
}

// disaggregateCmd splits daily forcing files into sub-daily steps.
var disaggregateCmd = &cobra.Command{
	Use:   "disaggregate",
	Short: "Split daily forcing files into sub-daily steps.",
	Long: `disaggregate repeats every row of the daily forcing files in
Disaggregate.InputDir Disaggregate.Steps times, dividing precipitation by the
number of steps, and writes the files to Disaggregate.OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forcing.Disaggregate(context.Background(),
			os.ExpandEnv(Cfg.GetString("Disaggregate.InputDir")),
			os.ExpandEnv(Cfg.GetString("Disaggregate.OutputDir")),
			Cfg.GetInt("Disaggregate.Steps"), Cfg.GetBool("progress"), Log)
	},
	DisableAutoGenTag: true,
}

// shiftCmd shifts the coordinates of a soil parameter file.
var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Shift the coordinates of a soil parameter file.",
	Long: `shift adds Shift.Lat and Shift.Lon to the latitude and longitude
columns of SoilFile and writes the result to Shift.OutputFile. All other
columns are copied unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return ShiftFile(ctx,
			maybeDownload(ctx, os.ExpandEnv(Cfg.GetString("SoilFile")), Log),
			os.ExpandEnv(Cfg.GetString("Shift.OutputFile")),
			Cfg.GetFloat64("Shift.Lat"), Cfg.GetFloat64("Shift.Lon"))
	},
	DisableAutoGenTag: true,
}

// gridShpCmd writes the grid cells of a soil file as a shapefile.
var gridShpCmd = &cobra.Command{
	Use:   "gridshp",
	Short: "Write the grid cell centers as a point shapefile.",
	Long: `gridshp writes the cell centers of SoilFile to GridShp.OutputFile as a
point shapefile with a grid_id attribute, for zonal statistics in a GIS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return GridShp(ctx,
			maybeDownload(ctx, os.ExpandEnv(Cfg.GetString("SoilFile")), Log),
			os.ExpandEnv(Cfg.GetString("GridShp.OutputFile")))
	},
	DisableAutoGenTag: true,
}

// diagCmd maps one column of a soil file.
var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Map one column of a soil parameter file.",
	Long: `diag writes column Diag.Column of SoilFile as an ESRI ASCII grid to
Diag.OutputFile and a histogram of its values next to it as a PNG image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return Diag(ctx,
			maybeDownload(ctx, os.ExpandEnv(Cfg.GetString("SoilFile")), Log),
			Cfg.GetString("Diag.Column"),
			os.ExpandEnv(Cfg.GetString("Diag.OutputFile")), Log)
	},
	DisableAutoGenTag: true,
}
