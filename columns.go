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
	"strings"
)

// Column identifies one of the fixed columns of a VIC soil parameter
// file. The numeric value of a Column is its 0-based position in a row.
type Column int

// The columns of a three-layer VIC soil parameter file, in file order.
const (
	RunCell Column = iota
	GridCel
	Lat
	Lon
	Infilt
	Ds
	DsMax
	Ws
	C
	Expt1
	Expt2
	Expt3
	Ksat1
	Ksat2
	Ksat3
	PhiS1
	PhiS2
	PhiS3
	InitMoist1
	InitMoist2
	InitMoist3
	Elev
	Depth1
	Depth2
	Depth3
	AvgT
	Dp
	Bubble1
	Bubble2
	Bubble3
	Quartz1
	Quartz2
	Quartz3
	BulkDensity1
	BulkDensity2
	BulkDensity3
	SoilDensity1
	SoilDensity2
	SoilDensity3
	OffGMT
	WcrFract1
	WcrFract2
	WcrFract3
	WpwpFract1
	WpwpFract2
	WpwpFract3
	Rough
	SnowRough
	AnnualPrec
	ResidMoist1
	ResidMoist2
	ResidMoist3
	FSActive

	// NumColumns is the number of columns in a soil parameter row.
	NumColumns
)

// Format is the text rendering rule for a column.
type Format int

const (
	// FormatInt renders the value as an integer.
	FormatInt Format = iota
	// FormatCoord renders the value with 4 decimals.
	FormatCoord
	// FormatElev renders the value with 2 decimals.
	FormatElev
	// FormatFloat renders the value with the formatter's
	// configured number of decimals.
	FormatFloat
)

// ColumnSpec describes a single soil parameter column.
type ColumnSpec struct {
	// Name is the VIC name of the column.
	Name string

	Format Format

	// SentinelOK is true for columns that are allowed to keep the
	// missing-value sentinel after all fill stages have run.
	SentinelOK bool
}

// Schema holds the name and output format of every soil parameter column,
// indexed by Column.
var Schema = [NumColumns]ColumnSpec{
	RunCell:      {Name: "run_cell", Format: FormatInt},
	GridCel:      {Name: "gridcel", Format: FormatInt},
	Lat:          {Name: "lat", Format: FormatCoord},
	Lon:          {Name: "lon", Format: FormatCoord},
	Infilt:       {Name: "infilt", Format: FormatFloat},
	Ds:           {Name: "Ds", Format: FormatFloat},
	DsMax:        {Name: "Dsmax", Format: FormatFloat},
	Ws:           {Name: "Ws", Format: FormatFloat},
	C:            {Name: "c", Format: FormatFloat},
	Expt1:        {Name: "expt_1", Format: FormatFloat},
	Expt2:        {Name: "expt_2", Format: FormatFloat},
	Expt3:        {Name: "expt_3", Format: FormatFloat},
	Ksat1:        {Name: "Ksat_1", Format: FormatFloat},
	Ksat2:        {Name: "Ksat_2", Format: FormatFloat},
	Ksat3:        {Name: "Ksat_3", Format: FormatFloat},
	PhiS1:        {Name: "phi_s_1", Format: FormatFloat, SentinelOK: true},
	PhiS2:        {Name: "phi_s_2", Format: FormatFloat, SentinelOK: true},
	PhiS3:        {Name: "phi_s_3", Format: FormatFloat, SentinelOK: true},
	InitMoist1:   {Name: "init_moist_1", Format: FormatFloat, SentinelOK: true},
	InitMoist2:   {Name: "init_moist_2", Format: FormatFloat, SentinelOK: true},
	InitMoist3:   {Name: "init_moist_3", Format: FormatFloat, SentinelOK: true},
	Elev:         {Name: "elev", Format: FormatElev},
	Depth1:       {Name: "depth_1", Format: FormatFloat},
	Depth2:       {Name: "depth_2", Format: FormatFloat, SentinelOK: true},
	Depth3:       {Name: "depth_3", Format: FormatFloat, SentinelOK: true},
	AvgT:         {Name: "avg_T", Format: FormatFloat},
	Dp:           {Name: "dp", Format: FormatFloat},
	Bubble1:      {Name: "bubble_1", Format: FormatFloat, SentinelOK: true},
	Bubble2:      {Name: "bubble_2", Format: FormatFloat, SentinelOK: true},
	Bubble3:      {Name: "bubble_3", Format: FormatFloat, SentinelOK: true},
	Quartz1:      {Name: "quartz_1", Format: FormatFloat},
	Quartz2:      {Name: "quartz_2", Format: FormatFloat},
	Quartz3:      {Name: "quartz_3", Format: FormatFloat},
	BulkDensity1: {Name: "bulk_density_1", Format: FormatFloat},
	BulkDensity2: {Name: "bulk_density_2", Format: FormatFloat},
	BulkDensity3: {Name: "bulk_density_3", Format: FormatFloat},
	SoilDensity1: {Name: "soil_density_1", Format: FormatFloat},
	SoilDensity2: {Name: "soil_density_2", Format: FormatFloat},
	SoilDensity3: {Name: "soil_density_3", Format: FormatFloat},
	OffGMT:       {Name: "off_gmt", Format: FormatFloat},
	WcrFract1:    {Name: "Wcr_FRACT_1", Format: FormatFloat},
	WcrFract2:    {Name: "Wcr_FRACT_2", Format: FormatFloat},
	WcrFract3:    {Name: "Wcr_FRACT_3", Format: FormatFloat},
	WpwpFract1:   {Name: "Wpwp_FRACT_1", Format: FormatFloat},
	WpwpFract2:   {Name: "Wpwp_FRACT_2", Format: FormatFloat},
	WpwpFract3:   {Name: "Wpwp_FRACT_3", Format: FormatFloat},
	Rough:        {Name: "rough", Format: FormatFloat},
	SnowRough:    {Name: "snow_rough", Format: FormatFloat},
	AnnualPrec:   {Name: "annual_prec", Format: FormatFloat},
	ResidMoist1:  {Name: "resid_moist_1", Format: FormatFloat},
	ResidMoist2:  {Name: "resid_moist_2", Format: FormatFloat},
	ResidMoist3:  {Name: "resid_moist_3", Format: FormatFloat},
	FSActive:     {Name: "fs_active", Format: FormatFloat},
}

func (c Column) String() string {
	if c < 0 || c >= NumColumns {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return Schema[c].Name
}

// ColumnByName returns the column with the given VIC name.
// The match is case insensitive.
func ColumnByName(name string) (Column, error) {
	name = strings.TrimSpace(name)
	for i, s := range Schema {
		if strings.EqualFold(s.Name, name) {
			return Column(i), nil
		}
	}
	return -1, fmt.Errorf("vicparam: unknown soil parameter column %q", name)
}

// Layers returns the three per-layer columns starting at first,
// e.g. Layers(Expt1) returns {Expt1, Expt2, Expt3}.
func Layers(first Column) [3]Column {
	return [3]Column{first, first + 1, first + 2}
}
