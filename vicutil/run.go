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
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/veg"
)

// Soil runs the soil parameter pipeline described by c and writes the
// result to outputFile, which may be a blob storage location.
func Soil(ctx context.Context, c *vicparam.Config, outputFile string, log logrus.FieldLogger) error {
	start := time.Now()
	u := new(uploader)
	path, err := u.localPath(outputFile)
	if err != nil {
		return err
	}
	t, err := vicparam.RunSoil(c, log)
	if err != nil {
		return err
	}
	if err := c.Formatter().WriteFile(path, t); err != nil {
		return err
	}
	if err := u.uploadOutput(ctx); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":     outputFile,
		"cells":    t.Len(),
		"duration": time.Since(start),
	}).Info("wrote soil parameter file")
	return nil
}

// Resample clips and averages every input file of r and writes the
// results to r.OutputDir.
func Resample(ctx context.Context, r *Resampling, log logrus.FieldLogger) error {
	start := time.Now()
	files, err := vicparam.GlobFiles(r.Files, r.Years, log)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &vicparam.MissingInputError{Path: r.Files, Err: fmt.Errorf("no matching files")}
	}
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := filepath.Join(r.OutputDir, vicparam.ResampledName(f, r.Resolution, r.Suffix))
		if err := vicparam.ResampleFile(f, out, r.Basin, r.Resolution, log); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"files":    len(files),
		"dir":      r.OutputDir,
		"duration": time.Since(start),
	}).Info("resampling finished")
	return nil
}

// Veg builds the vegetation parameters and writes them to outputFile.
func Veg(ctx context.Context, b *veg.Builder, outputFile string, log logrus.FieldLogger) error {
	u := new(uploader)
	path, err := u.localPath(outputFile)
	if err != nil {
		return err
	}
	cells := b.Build()
	if len(cells) == 0 {
		return fmt.Errorf("vicparam: no grid cell has any vegetation class")
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vicparam: creating vegetation parameter file: %v", err)
	}
	if err := veg.Write(w, cells); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := u.uploadOutput(ctx); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": outputFile, "cells": len(cells)}).Info("wrote vegetation parameter file")
	return nil
}

// ShiftFile shifts the coordinates of the soil parameter file at
// inputFile and writes the result to outputFile.
func ShiftFile(ctx context.Context, inputFile, outputFile string, latShift, lonShift float64) error {
	r, err := os.Open(inputFile)
	if err != nil {
		return &vicparam.MissingInputError{Path: inputFile, Err: err}
	}
	defer r.Close()
	u := new(uploader)
	path, err := u.localPath(outputFile)
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vicparam.Shift(w, r, inputFile, latShift, lonShift); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return u.uploadOutput(ctx)
}

// GridShp writes the cells of the soil parameter file at soilFile as a
// point shapefile.
func GridShp(ctx context.Context, soilFile, outputFile string) error {
	t, err := vicparam.ReadFile(soilFile)
	if err != nil {
		return err
	}
	u := new(uploader)
	path, err := u.localPath(outputFile)
	if err != nil {
		return err
	}
	if err := vicparam.WriteGridShp(path, t.Cells()); err != nil {
		return err
	}
	return u.uploadOutput(ctx)
}

// localPath returns the local path to write outputFile to.
func (u *uploader) localPath(outputFile string) (string, error) {
	path := u.maybeUpload(outputFile)
	if u.err != nil {
		return "", u.err
	}
	return path, checkOutputFile(path)
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists.
func checkOutputFile(f string) error {
	if f == "" {
		return fmt.Errorf("vicparam: no output file specified")
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return fmt.Errorf("vicparam: the output file directory doesn't exist: %v", err)
	}
	return nil
}
