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

package forcing

import (
	"fmt"

	"github.com/ctessum/unit"
)

var (
	kgPerM2PerS = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2, unit.TimeDim: -1}
	kgPerM2     = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}
	wattPerM2   = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}
)

// Input variables, with their units in the source files.
var inputs = []struct {
	Name string
	Dims unit.Dimensions
}{
	{"prec", kgPerM2PerS}, // kg m-2 s-1, i.e. mm/s of water
	{"temp", unit.Kelvin},
	{"pres", unit.Pascal},
	{"srad", wattPerM2},
	{"lrad", wattPerM2},
	{"wind", unit.MeterPerSecond},
	{"shum", unit.Dimless}, // kg/kg
}

// Variables returns the names of the input variables.
func Variables() []string {
	v := make([]string, len(inputs))
	for i, in := range inputs {
		v[i] = in.Name
	}
	return v
}

// output is a VIC forcing column computed from input variables. The
// value is written in the unit given by Dims scaled by 1/Scale,
// e.g. kPa for Pascal with Scale 1000.
type output struct {
	Name  string
	Dims  unit.Dimensions
	Scale float64
	f     func(in map[string]*unit.Unit) *unit.Unit
}

var (
	secondsPerDay = unit.New(86400, unit.Second)
	freezing      = unit.New(273.15, unit.Kelvin)
)

// outputs are the forcing file columns in file order.
var outputs = []output{
	{"air_temp", unit.Kelvin, 1, func(in map[string]*unit.Unit) *unit.Unit {
		return unit.Sub(in["temp"], freezing) // °C
	}},
	{"prec", kgPerM2, 1, func(in map[string]*unit.Unit) *unit.Unit {
		return unit.Mul(in["prec"], secondsPerDay) // mm/day
	}},
	{"pressure", unit.Pascal, 1000, func(in map[string]*unit.Unit) *unit.Unit {
		return in["pres"]
	}},
	{"swdown", wattPerM2, 1, func(in map[string]*unit.Unit) *unit.Unit {
		return in["srad"]
	}},
	{"lwdown", wattPerM2, 1, func(in map[string]*unit.Unit) *unit.Unit {
		return in["lrad"]
	}},
	{"vp", unit.Pascal, 1000, func(in map[string]*unit.Unit) *unit.Unit {
		q := in["shum"]
		return unit.Div(unit.Mul(q, in["pres"]), unit.New(0.622+0.378*q.Value(), unit.Dimless))
	}},
	{"wind", unit.MeterPerSecond, 1, func(in map[string]*unit.Unit) *unit.Unit {
		return in["wind"]
	}},
}

// Columns returns the names of the forcing file columns.
func Columns() []string {
	c := make([]string, len(outputs))
	for i, o := range outputs {
		c[i] = o.Name
	}
	return c
}

// Convert computes the forcing file columns from one record of input
// values, indexed in the order of Variables.
func Convert(rec []float64) ([]float64, error) {
	if len(rec) != len(inputs) {
		return nil, fmt.Errorf("forcing: got %d input values, need %d", len(rec), len(inputs))
	}
	in := make(map[string]*unit.Unit, len(inputs))
	for i, v := range inputs {
		in[v.Name] = unit.New(rec[i], v.Dims)
	}
	o := make([]float64, len(outputs))
	for i, out := range outputs {
		u := out.f(in)
		if err := u.Check(out.Dims); err != nil {
			return nil, fmt.Errorf("forcing: %s: %v", out.Name, err)
		}
		o[i] = u.Value() / out.Scale
	}
	return o, nil
}
