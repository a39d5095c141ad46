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
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/raster"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// histBins is the number of histogram bins.
const histBins = 20

// Diag writes column of the soil parameter file at soilFile as an
// ESRI ASCII grid to outputFile and a histogram of its values to a PNG
// file of the same name. Summary statistics are logged.
func Diag(ctx context.Context, soilFile, column, outputFile string, log logrus.FieldLogger) error {
	t, err := vicparam.ReadFile(soilFile)
	if err != nil {
		return err
	}
	c, err := vicparam.ColumnByName(column)
	if err != nil {
		return err
	}
	vals := t.Column(c)
	g, err := ColumnGrid(t.Cells(), vals)
	if err != nil {
		return err
	}

	var valid []float64
	for _, v := range vals {
		if v != vicparam.Missing && !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return fmt.Errorf("vicparam: column %s has no valid values", column)
	}
	log.WithFields(logrus.Fields{
		"column": column,
		"n":      len(valid),
		"min":    stats.StatsMin(valid),
		"max":    stats.StatsMax(valid),
		"mean":   stats.StatsMean(valid),
		"stdev":  stats.StatsSampleStandardDeviation(valid),
	}).Info("column statistics")

	u := new(uploader)
	ascPath, err := u.localPath(outputFile)
	if err != nil {
		return err
	}
	pngPath, err := u.localPath(strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".png")
	if err != nil {
		return err
	}
	if err := raster.Create(ascPath, column, g, vicparam.Missing); err != nil {
		return err
	}
	if err := histogram(column, valid, pngPath); err != nil {
		return err
	}
	return u.uploadOutput(ctx)
}

// ColumnGrid places the values of cells on a regular grid at the
// resolution of the cells. Values equal to vicparam.Missing and
// pixels without a cell are NaN.
func ColumnGrid(cells []vicparam.GridCell, vals []float64) (*raster.Grid, error) {
	if len(cells) != len(vals) {
		return nil, fmt.Errorf("%w: %d cells, %d values", vicparam.ErrLengthMismatch, len(cells), len(vals))
	}
	res := vicparam.InferResolution(cells)
	if res == 0 {
		return nil, fmt.Errorf("vicparam: can't infer the grid resolution from %d cells", len(cells))
	}
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, c := range cells {
		minLat, maxLat = math.Min(minLat, c.Lat), math.Max(maxLat, c.Lat)
		minLon, maxLon = math.Min(minLon, c.Lon), math.Max(maxLon, c.Lon)
	}
	axis := func(lo, hi float64) []float64 {
		n := int(math.Round((hi-lo)/res)) + 1
		o := make([]float64, n)
		for i := range o {
			o[i] = lo + float64(i)*res
		}
		return o
	}
	g := raster.NewGrid(axis(minLon, maxLon), axis(minLat, maxLat))
	for k, c := range cells {
		if vals[k] == vicparam.Missing {
			continue
		}
		j := int(math.Round((c.Lat - minLat) / res))
		i := int(math.Round((c.Lon - minLon) / res))
		g.Set(vals[k], j, i)
	}
	return g, nil
}

func histogram(name string, vals []float64, path string) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = name
	p.X.Label.Text = name
	p.Y.Label.Text = "Grid cells"
	h, err := plotter.NewHist(plotter.Values(vals), histBins)
	if err != nil {
		return err
	}
	p.Add(h)
	if err := p.Save(4*vg.Inch, 3*vg.Inch, path); err != nil {
		return fmt.Errorf("vicparam: saving histogram: %v", err)
	}
	return nil
}
