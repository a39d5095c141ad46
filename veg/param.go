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

package veg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/vicparam"
	"github.com/spatialmodel/vicparam/raster"
)

// Default class filtering settings.
const (
	DefaultExcluded  = 16 // bare ground
	DefaultThreshold = 0.03
)

// Class is one vegetation class within a grid cell.
type Class struct {
	ID       int
	Fraction float64
	Root     []string
	LAI      []string
}

// Cell holds the vegetation classes of one grid cell.
type Cell struct {
	ID      int
	Classes []Class
}

// Builder computes vegetation class fractions of grid cells from a
// land cover raster.
type Builder struct {
	Def       *vicparam.GridDef
	LandCover *raster.Grid
	Library   Library
	RootZones *RootZones

	// Excluded is a land cover class that is removed before fractions
	// are computed. Use a negative value to keep every class.
	Excluded int

	// Threshold is the smallest class fraction that is kept.
	Threshold float64

	Log logrus.FieldLogger
}

// Build returns the vegetation of every cell of b.Def that has at
// least one class left after filtering. Cells are in the order of
// b.Def and classes are in ascending order.
func (b *Builder) Build() []Cell {
	z := vicparam.NewZonal(b.Def, b.LandCover)
	var cells []Cell
	dropped, missingLAI := 0, make(map[int]bool)
	for _, gc := range b.Def.Cells {
		fr := vicparam.Fractions(z.Histogram(gc), b.Excluded, b.Threshold)
		c := Cell{ID: gc.ID}
		for _, f := range fr {
			lai, ok := b.Library[f.Class]
			if !ok {
				missingLAI[f.Class] = true
				if b.RootZones.SkipMissingLAI {
					continue
				}
			}
			c.Classes = append(c.Classes, Class{
				ID:       f.Class,
				Fraction: f.Fraction,
				Root:     b.RootZones.Get(f.Class),
				LAI:      lai,
			})
		}
		if len(c.Classes) == 0 {
			dropped++
			continue
		}
		cells = append(cells, c)
	}
	if dropped > 0 {
		b.Log.WithField("cells", dropped).Info("cells without vegetation left out")
	}
	for class := range missingLAI {
		b.Log.WithField("class", class).Warn("vegetation class has no LAI in the library")
	}
	return cells
}

// Write writes cells to w as a VIC vegetation parameter file.
func Write(w io.Writer, cells []Cell) error {
	bw := bufio.NewWriter(w)
	for _, c := range cells {
		fmt.Fprintf(bw, "%d\t%d\n", c.ID, len(c.Classes))
		for _, v := range c.Classes {
			fmt.Fprintf(bw, "\t \t%d\t%s\t%s\n", v.ID,
				strconv.FormatFloat(v.Fraction, 'f', 2, 64), strings.Join(v.Root, " "))
			fmt.Fprintf(bw, "  \t \t %s\n", strings.Join(v.LAI, "\t"))
		}
	}
	return bw.Flush()
}
