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

// Package forcing converts daily gridded meteorological data into VIC
// per-cell forcing files.
package forcing

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/cheggaaa/pb"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/raster"
)

// DefaultPrefix is the default forcing file name prefix.
const DefaultPrefix = "huai_01dy_025deg"

// Config holds the settings of a forcing conversion.
type Config struct {
	// Dir is the directory of the input NetCDF files. The files of
	// each variable are found with the pattern {var}_*.nc.
	Dir string

	// Years restricts the input files to the given years.
	Years vicparam.YearRange

	// Master is the variable whose first record defines the valid
	// grid cells.
	Master string

	// Basin optionally restricts the grid cells to a river basin.
	Basin *vicparam.Basin

	// Prefix is the output file name prefix.
	Prefix string

	// Progress shows a progress bar on the terminal.
	Progress bool
}

// Dataset holds the time series of every input variable at every
// valid grid cell.
type Dataset struct {
	Cells []vicparam.GridCell
	Days  int

	// series[v][c] holds the values of variable v at cell c. Values
	// are stored with the single precision of the input files.
	series [][][]float32
}

// Load reads every input variable at the valid cells.
func Load(cfg *Config, log logrus.FieldLogger) (*Dataset, error) {
	if _, err := os.Stat(cfg.Dir); err != nil {
		return nil, &vicparam.MissingInputError{Path: cfg.Dir, Err: err}
	}
	files := make([][]string, len(inputs))
	for i, v := range inputs {
		var err error
		files[i], err = vicparam.GlobFiles(filepath.Join(cfg.Dir, v.Name+"_*.nc"), cfg.Years, log)
		if err != nil {
			return nil, err
		}
		if len(files[i]) == 0 {
			return nil, &vicparam.MissingInputError{Path: cfg.Dir, Err: fmt.Errorf("no files for variable %s", v.Name)}
		}
	}

	master := cfg.Master
	if master == "" {
		master = "wind"
	}
	mi := -1
	for i, v := range inputs {
		if v.Name == master {
			mi = i
		}
	}
	if mi < 0 {
		return nil, fmt.Errorf("forcing: unknown master variable %q", master)
	}
	g, err := raster.ReadNetCDF(files[mi][0], master, 0)
	if err != nil {
		return nil, fmt.Errorf("forcing: reading master grid: %w", err)
	}
	d := new(Dataset)
	for j, lat := range g.Y {
		for i, lon := range g.X {
			if math.IsNaN(g.At(j, i)) {
				continue
			}
			if cfg.Basin != nil && !cfg.Basin.Contains(lon, lat) {
				continue
			}
			d.Cells = append(d.Cells, vicparam.GridCell{ID: len(d.Cells) + 1, Lat: lat, Lon: lon})
		}
	}
	if len(d.Cells) == 0 {
		return nil, &vicparam.MissingInputError{Path: files[mi][0], Err: fmt.Errorf("no valid grid cells")}
	}
	log.WithField("cells", len(d.Cells)).Info("found valid forcing cells")

	d.series = make([][][]float32, len(inputs))
	for vi, v := range inputs {
		d.series[vi] = make([][]float32, len(d.Cells))
		days := 0
		for _, path := range files[vi] {
			n, err := readVariable(path, v.Name, d.Cells, d.series[vi])
			if err != nil {
				return nil, err
			}
			days += n
		}
		log.WithFields(logrus.Fields{"variable": v.Name, "files": len(files[vi]), "days": days}).Info("read forcing variable")
		if vi == 0 {
			d.Days = days
		} else if days != d.Days {
			return nil, fmt.Errorf("forcing: variable %s has %d days but %s has %d",
				v.Name, days, inputs[0].Name, d.Days)
		}
	}
	return d, nil
}

// readVariable appends every record of variable v in the file at path,
// sampled at the pixels nearest to cells, to series. It returns the
// number of records.
func readVariable(path, v string, cells []vicparam.GridCell, series [][]float32) (int, error) {
	n, err := raster.OpenNetCDF(path)
	if err != nil {
		return 0, err
	}
	defer n.Close()
	nrec := n.NumRecords(v)
	for rec := 0; rec < nrec; rec++ {
		g, err := n.Read(v, rec)
		if err != nil {
			return 0, err
		}
		for c, cell := range cells {
			series[c] = append(series[c], float32(g.Nearest(cell.Lon, cell.Lat)))
		}
	}
	return nrec, nil
}

// FileName returns the forcing file name of a cell.
func FileName(prefix string, lat, lon float64) string {
	return fmt.Sprintf("%s_%.4f_%.4f", prefix, lat, lon)
}

// Write writes one forcing file per cell to dir using one worker per
// processor.
func (d *Dataset) Write(ctx context.Context, dir, prefix string, progress bool, log logrus.FieldLogger) error {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	err := parallel(ctx, len(d.Cells), progress, func(c int) error {
		cell := d.Cells[c]
		return d.writeCell(filepath.Join(dir, FileName(prefix, cell.Lat, cell.Lon)), c)
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"files": len(d.Cells), "dir": dir}).Info("wrote forcing files")
	return nil
}

func (d *Dataset) writeCell(path string, c int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("forcing: %v", err)
	}
	w := bufio.NewWriter(f)
	rec := make([]float64, len(inputs))
	for day := 0; day < d.Days; day++ {
		for v := range inputs {
			rec[v] = float64(d.series[v][c][day])
		}
		out, err := Convert(rec)
		if err != nil {
			f.Close()
			return err
		}
		writeRow(w, out)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("forcing: writing %s: %v", path, err)
	}
	return f.Close()
}

// writeRow writes tab-separated values with 4 decimals.
func writeRow(w *bufio.Writer, v []float64) {
	for i, x := range v {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.WriteString(strconv.FormatFloat(x, 'f', 4, 64))
	}
	w.WriteByte('\n')
}

// parallel calls f for every index in [0, n) on runtime.GOMAXPROCS
// workers and returns the first error.
func parallel(ctx context.Context, n int, progress bool, f func(i int) error) error {
	var bar *pb.ProgressBar
	if progress {
		bar = pb.New(n)
		bar.ShowPercent = true
		bar.ShowCounters = true
		bar.ShowTimeLeft = true
		bar.Start()
		defer bar.Finish()
	}
	nprocs := runtime.GOMAXPROCS(0)
	jobs := make(chan int)
	errc := make(chan error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := f(i); err != nil {
					errc <- err
					return
				}
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}
	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case err = <-errc:
			break feed
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err == nil {
		select {
		case err = <-errc:
		default:
		}
	}
	return err
}
