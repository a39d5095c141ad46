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
	"io"
	"sort"

	"github.com/BurntSushi/toml"
)

// TextureTable maps soil texture class ids to hydraulic parameters.
// Lookups of unknown ids return the entry of DefaultID.
type TextureTable struct {
	Classes   map[int]Hydraulics
	DefaultID int
}

// USDATextures is the 13-class USDA texture table used for the Huaihe
// basin, where class 1 means "no data" and carries zero parameters.
func USDATextures() *TextureTable {
	h := func(ksat, wcr, wpwp, expt, bulk float64) Hydraulics {
		return Hydraulics{Ksat: ksat, Wcr: wcr, Wpwp: wpwp, Expt: expt, BulkDensity: bulk}
	}
	return &TextureTable{
		DefaultID: 1,
		Classes: map[int]Hydraulics{
			1:  h(0, 0, 0, 0, 0),
			2:  h(708, 0.37, 0.25, 21.868, 1400),
			3:  h(763.2, 0.36, 0.17, 27.691, 1260),
			4:  h(1096.8, 0.36, 0.21, 15.195, 0),
			5:  h(424.8, 0.34, 0.21, 16.888, 1350),
			6:  h(2061.6, 0.28, 0.08, 8.509, 0),
			7:  h(950.4, 0.32, 0.12, 11.064, 1380),
			8:  h(285.6, 0.31, 0.23, 12.302, 0),
			9:  h(472.8, 0.29, 0.14, 13.362, 1410),
			10: h(576, 0.27, 0.17, 18.152, 1410),
			11: h(1257.6, 0.21, 0.09, 12.524, 1480),
			12: h(2608.8, 0.15, 0.06, 11.888, 1660),
			13: h(9218.4, 0.08, 0.03, 11.734, 1740),
		},
	}
}

// Lookup returns the parameters of texture class id, or of the
// default class if id is unknown. ok is false when the default was used.
func (t *TextureTable) Lookup(id int) (h Hydraulics, ok bool) {
	if h, ok = t.Classes[id]; ok {
		return h, true
	}
	return t.Classes[t.DefaultID], false
}

// textureFile is the TOML layout of a texture table file:
//
//	default = 1
//	[[class]]
//	id = 2
//	ksat = 708.0
//	wcr = 0.37
//	wpwp = 0.25
//	expt = 21.868
//	bulk_density = 1400.0
type textureFile struct {
	Default int            `toml:"default"`
	Class   []textureClass `toml:"class"`
}

type textureClass struct {
	ID          int     `toml:"id"`
	Ksat        float64 `toml:"ksat"`
	Wcr         float64 `toml:"wcr"`
	Wpwp        float64 `toml:"wpwp"`
	Expt        float64 `toml:"expt"`
	BulkDensity float64 `toml:"bulk_density"`
}

// LoadTextureTable reads a texture table from a TOML file.
func LoadTextureTable(filename string) (*TextureTable, error) {
	if err := checkInput(filename); err != nil {
		return nil, err
	}
	var f textureFile
	if _, err := toml.DecodeFile(filename, &f); err != nil {
		return nil, fmt.Errorf("vicparam: parsing texture table %s: %v", filename, err)
	}
	t := &TextureTable{DefaultID: f.Default, Classes: make(map[int]Hydraulics)}
	for _, c := range f.Class {
		if _, dup := t.Classes[c.ID]; dup {
			return nil, fmt.Errorf("vicparam: texture table %s: duplicate class %d", filename, c.ID)
		}
		t.Classes[c.ID] = Hydraulics{Ksat: c.Ksat, Wcr: c.Wcr, Wpwp: c.Wpwp, Expt: c.Expt, BulkDensity: c.BulkDensity}
	}
	if _, ok := t.Classes[t.DefaultID]; !ok {
		return nil, fmt.Errorf("vicparam: texture table %s: default class %d is not defined",
			filename, t.DefaultID)
	}
	return t, nil
}

// WriteTOML writes t in the format read by LoadTextureTable.
func (t *TextureTable) WriteTOML(w io.Writer) error {
	f := textureFile{Default: t.DefaultID}
	ids := make([]int, 0, len(t.Classes))
	for id := range t.Classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		h := t.Classes[id]
		f.Class = append(f.Class, textureClass{ID: id, Ksat: h.Ksat, Wcr: h.Wcr,
			Wpwp: h.Wpwp, Expt: h.Expt, BulkDensity: h.BulkDensity})
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("vicparam: writing texture table: %v", err)
	}
	return nil
}
