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
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam/raster"
)

// DefaultResolution is the model grid resolution [degrees].
const DefaultResolution = 0.25

// resampler clips grids that share the coordinates of a reference grid
// to a basin and averages them onto a coarser grid.
type resampler struct {
	x, y      []float64
	inside    []bool
	left, top float64
	res       float64
	nx, ny    int
}

// newResampler computes the clip mask and target grid for grids with
// the coordinates of g. A pixel is kept if its center is inside of or
// on the edge of basin; a nil basin keeps every pixel. The target grid
// starts at the upper left corner of the kept pixels and covers all
// of them.
func newResampler(g *raster.Grid, basin *Basin, res float64) (*resampler, error) {
	if res <= 0 {
		return nil, fmt.Errorf("vicparam: invalid resolution %g", res)
	}
	r := &resampler{x: g.X, y: g.Y, res: res, inside: make([]bool, len(g.X)*len(g.Y))}
	hx, hy := g.Dx()/2, g.Dy()/2
	left, right := math.Inf(1), math.Inf(-1)
	bottom, top := math.Inf(1), math.Inf(-1)
	for j, lat := range g.Y {
		for i, lon := range g.X {
			if basin != nil && !basin.Contains(lon, lat) {
				continue
			}
			r.inside[j*len(g.X)+i] = true
			left, right = math.Min(left, lon-hx), math.Max(right, lon+hx)
			bottom, top = math.Min(bottom, lat-hy), math.Max(top, lat+hy)
		}
	}
	if math.IsInf(left, 1) {
		return nil, fmt.Errorf("vicparam: no pixels inside of the basin")
	}
	r.left, r.top = left, top
	r.nx = int(math.Ceil((right-left)/res - 1e-6))
	r.ny = int(math.Ceil((top-bottom)/res - 1e-6))
	if r.nx < 1 {
		r.nx = 1
	}
	if r.ny < 1 {
		r.ny = 1
	}
	return r, nil
}

func (r *resampler) resample(g *raster.Grid) (*raster.Grid, error) {
	if len(g.X) != len(r.x) || len(g.Y) != len(r.y) {
		return nil, fmt.Errorf("vicparam: resampling: grid does not match the reference grid")
	}
	c := raster.NewGrid(g.X, g.Y)
	for k, v := range g.Data.Elements {
		if r.inside[k] {
			c.Data.Elements[k] = v
		}
	}
	return c.Average(r.left, r.top, r.res, r.nx, r.ny)
}

// Resample clips g to basin and averages the remaining pixels onto a
// grid of resolution res, weighting each pixel by its overlap area
// with the target cell. The result rows run from north to south.
func Resample(g *raster.Grid, basin *Basin, res float64) (*raster.Grid, error) {
	r, err := newResampler(g, basin, res)
	if err != nil {
		return nil, err
	}
	return r.resample(g)
}

var resolutionToken = regexp.MustCompile(`_\d{3}deg_`)

// ResampledName returns the output file name for input path: the
// resolution token (e.g. _010deg_) is replaced by the one of res and
// suffix, if not empty, is appended to the stem. For example
// "prec_CMFD_V0200_B-01_01dy_010deg_199101-199112.nc" becomes
// "prec_CMFD_V0200_B-01_01dy_025deg_199101-199112_huai.nc".
func ResampledName(path string, res float64, suffix string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = resolutionToken.ReplaceAllString(stem, fmt.Sprintf("_%03ddeg_", int(math.Round(res*100))))
	if suffix != "" {
		stem += "_" + suffix
	}
	return stem + ".nc"
}

// ResampleFile resamples every record of every data variable of the
// NetCDF file in to the NetCDF file out. See Resample.
func ResampleFile(in, out string, basin *Basin, res float64, log logrus.FieldLogger) error {
	if err := checkInput(in); err != nil {
		return err
	}
	n, err := raster.OpenNetCDF(in)
	if err != nil {
		return err
	}
	defer n.Close()
	vars := n.DataVariables()
	if len(vars) == 0 {
		return &MissingInputError{Path: in, Err: raster.ErrNoData}
	}
	var r *resampler
	o := make(map[string][]*raster.Grid, len(vars))
	for _, v := range vars {
		for rec := 0; rec < n.NumRecords(v); rec++ {
			g, err := n.Read(v, rec)
			if err != nil {
				return err
			}
			if r == nil {
				if r, err = newResampler(g, basin, res); err != nil {
					return fmt.Errorf("%v: %s", err, in)
				}
			}
			rg, err := r.resample(g)
			if err != nil {
				return fmt.Errorf("%v: %s variable %s", err, in, v)
			}
			o[v] = append(o[v], rg)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := raster.WriteNetCDF(f, o); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": filepath.Base(out), "variables": len(vars),
		"columns": r.nx, "rows": r.ny}).Info("resampled")
	return nil
}
