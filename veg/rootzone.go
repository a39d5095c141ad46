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
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/vicparam"
)

// RootZones holds the root zone parameters (depth and fraction of
// each root zone) of each vegetation class as the tokens that are
// written to the parameter file.
type RootZones struct {
	Classes map[int][]string

	// Default is used for classes that are not in Classes.
	Default []string

	// SkipMissingLAI causes classes that are not in the vegetation
	// library to be left out of the parameter file. Otherwise they
	// are written with an empty LAI line.
	SkipMissingLAI bool
}

// Get returns the root zone parameters of class.
func (r *RootZones) Get(class int) []string {
	if p, ok := r.Classes[class]; ok {
		return p
	}
	return r.Default
}

func split(s string) []string { return strings.Fields(s) }

// RootZonesV1 returns the root zone table used with the UMD land cover
// classes in the first Huaihe parameter set.
func RootZonesV1() *RootZones {
	return &RootZones{
		Default: split("0.1 0.6 1.0 0.4 0.4 0.2"),
		Classes: map[int][]string{
			0:  split("0.1 0.6 0.8 0.44 0.45 0.11"),
			1:  split("0.1 0.6 1.1 0.34 0.51 0.14"),
			2:  split("0.1 0.6 2.3 0.32 0.44 0.23"),
			3:  split("0.1 0.6 1.3 0.34 0.5 0.16"),
			4:  split("0.1 0.6 1.3 0.31 0.52 0.17"),
			5:  split("0.1 0.6 1.7 0.25 0.52 0.22"),
			6:  split("0.1 0.6 1.8 0.31 0.49 0.21"),
			7:  split("0.1 0.6 2.4 0.33 0.43 0.24"),
			8:  split("0.1 0.6 1.7 0.36 0.45 0.19"),
			9:  split("0.1 0.6 1.0 0.37 0.5 0.13"),
			10: split("0.1 0.6 0.8 0.44 0.45 0.11"),
			11: split("0.1 0.6 0.8 0.44 0.45 0.11"),
			12: split("0.1 0.6 0.8 0.33 0.55 0.12"),
			13: split("0.1 0.6 0.8 0.44 0.45 0.11"),
			14: split("0.1 0.6 0.8 0.33 0.55 0.12"),
			15: split("0.1 0.6 0.8 0.44 0.45 0.11"),
			16: split("0.1 0.6 3.3 0.22 0.46 0.31"),
		},
	}
}

// RootZonesV2 returns the root zone table of the detailed vegetation
// parameter set. Classes without LAI data are skipped.
func RootZonesV2() *RootZones {
	return &RootZones{
		Default:        split("0.10 0.10 1.00 0.70 0.50 0.20"),
		SkipMissingLAI: true,
		Classes: map[int][]string{
			0:  split("0.1 0.44 0.6 0.45 0.8 0.11"),
			1:  split("0.10 0.34 0.6 0.52 0.8 0.14"),
			2:  split("0.1 0.32 0.6 0.44 2.3 0.23"),
			3:  split("0.1 0.34 0.6 0.5 1.3 0.16"),
			4:  split("0.10 0.31 0.6 0.52 1.3 0.17"),
			5:  split("0.10 0.25 0.60 0.52 1.70 0.22"),
			6:  split("0.10 0.30 0.60 0.5 2.00 0.2"),
			7:  split("0.10 0.37 0.60 0.5 0.10 0.3"),
			8:  split("0.10 0.31 0.60 0.48 1.80 0.21"),
			9:  split("0.10 0.33 0.60 0.43 2.40 0.24"),
			10: split("0.10 0.36 0.60 0.45 1.70 0.19"),
			11: split("0.10 0.33 0.6 0.55 0.80 0.12"),
			12: split("0.1 0.22 0.6 0.46 3.3 0.31"),
			14: split("0.1 0.44 0.6 0.45 0.8 0.11"),
		},
	}
}

// RootZonesByName returns the built-in table "v1" or "v2".
func RootZonesByName(name string) (*RootZones, error) {
	switch strings.ToLower(name) {
	case "v1", "":
		return RootZonesV1(), nil
	case "v2":
		return RootZonesV2(), nil
	}
	return nil, fmt.Errorf("veg: unknown root zone table %q", name)
}

// rootZoneFile is the TOML layout of a root zone table:
//
//	default = "0.1 0.6 1.0 0.4 0.4 0.2"
//	skip_missing_lai = false
//	[classes]
//	0 = "0.1 0.6 0.8 0.44 0.45 0.11"
type rootZoneFile struct {
	Default        string            `toml:"default"`
	SkipMissingLAI bool              `toml:"skip_missing_lai"`
	Classes        map[string]string `toml:"classes"`
}

// LoadRootZones reads a root zone table from a TOML file.
func LoadRootZones(path string) (*RootZones, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &vicparam.MissingInputError{Path: path, Err: err}
	}
	var f rootZoneFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("veg: parsing root zone table %s: %v", path, err)
	}
	r := &RootZones{
		Default:        split(f.Default),
		SkipMissingLAI: f.SkipMissingLAI,
		Classes:        make(map[int][]string, len(f.Classes)),
	}
	if len(r.Default) == 0 {
		return nil, fmt.Errorf("veg: root zone table %s has no default entry", path)
	}
	for k, v := range f.Classes {
		var class int
		if _, err := fmt.Sscanf(k, "%d", &class); err != nil {
			return nil, fmt.Errorf("veg: root zone table %s: invalid class %q", path, k)
		}
		r.Classes[class] = split(v)
	}
	return r, nil
}

// WriteTOML writes r in the format read by LoadRootZones.
func (r *RootZones) WriteTOML(path string) error {
	f := rootZoneFile{
		Default:        strings.Join(r.Default, " "),
		SkipMissingLAI: r.SkipMissingLAI,
		Classes:        make(map[string]string, len(r.Classes)),
	}
	for c, p := range r.Classes {
		f.Classes[fmt.Sprint(c)] = strings.Join(p, " ")
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		w.Close()
		return fmt.Errorf("veg: writing root zone table: %v", err)
	}
	return w.Close()
}
