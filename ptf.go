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

import "math"

// Hydraulics holds the soil hydraulic parameters of one soil layer.
type Hydraulics struct {
	// Ksat is the saturated hydraulic conductivity [mm/day].
	Ksat float64

	// Wcr is the critical point (field capacity) as a fraction of
	// the maximum moisture.
	Wcr float64

	// Wpwp is the wilting point as a fraction of the maximum moisture.
	Wpwp float64

	// Expt is the exponent of the Brooks-Corey / Campbell relation
	// between conductivity and moisture, 2b+3.
	Expt float64

	// BulkDensity is the soil bulk density [kg/m³].
	BulkDensity float64

	// Porosity is the saturated volumetric water content. It is only
	// set by the pedotransfer function.
	Porosity float64
}

// PTFFallback is returned by SaxtonRawls for missing or impossible
// soil textures.
var PTFFallback = Hydraulics{Expt: 4.0, BulkDensity: 1300, Wpwp: 0.1, Wcr: 0.25, Ksat: 10}

const (
	minWpwp     = 0.01
	minWcr      = 0.02
	minPorosity = 0.01
	minGap      = 0.02 // between wilting point, field capacity and porosity
	minKsatHr   = 0.1  // mm/hr
	minExpt     = 3.1
	particleDen = 2650. // kg/m³
)

// SaxtonRawls estimates soil hydraulic parameters from sand and clay
// percentages (0-100) using the Saxton & Rawls (2006) regressions.
// It returns PTFFallback if either percentage is NaN or negative or if
// they sum to more than 100.
func SaxtonRawls(sand, clay float64) Hydraulics {
	if math.IsNaN(sand) || math.IsNaN(clay) || sand < 0 || clay < 0 || sand+clay > 100 {
		return PTFFallback
	}
	s := math.Max(0.01, sand/100)
	c := math.Max(0.01, clay/100)

	// 1500 kPa moisture.
	wp := -0.024*s + 0.487*c + 0.006*s*c + 0.005*s*s*c + 0.013*s*c*c
	wpwp := math.Max(minWpwp, wp+0.14*wp-0.02)

	// 33 kPa moisture.
	fc := -0.251*s + 0.195*c + 0.011*s*c + 0.006*s*s*c - 0.027*s*c*c
	wcr := math.Max(minWcr, fc+0.14*fc-0.02)
	if wcr <= wpwp {
		wcr = wpwp + minGap
	}

	pt := 0.332 - 0.7251*s + 0.1276*math.Log10(c)
	porosity := math.Max(minPorosity, pt+0.02*pt*pt*math.Exp(-2.5*s))
	if porosity <= wcr {
		porosity = wcr + minGap
	}

	b := (math.Log(1500) - math.Log(33)) / (math.Log(wcr) - math.Log(wpwp))
	expt := 2*b + 3
	if expt <= 3 {
		expt = minExpt
	}

	ksatHr := math.Max(minKsatHr, 1930*math.Pow(porosity-wcr, 3-1/b))

	return Hydraulics{
		Ksat:        ksatHr * 24,
		Wcr:         wcr,
		Wpwp:        wpwp,
		Expt:        expt,
		BulkDensity: (1 - porosity) * particleDen,
		Porosity:    porosity,
	}
}
