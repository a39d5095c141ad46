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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestTextureLookup(t *testing.T) {
	tbl := USDATextures()
	h, ok := tbl.Lookup(3)
	if !ok || h.Ksat != 763.2 || h.Wcr != 0.36 || h.BulkDensity != 1260 {
		t.Errorf("class 3 = %+v, %v", h, ok)
	}
	h, ok = tbl.Lookup(99)
	if ok || h != tbl.Classes[1] {
		t.Errorf("unknown class = %+v, %v", h, ok)
	}
}

func TestTextureTableTOML(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	want := USDATextures()
	var b bytes.Buffer
	if err := want.WriteTOML(&b); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "texture.toml")
	if err := ioutil.WriteFile(path, b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	have, err := LoadTextureTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("texture table round trip: %v", pretty.Diff(have, want))
	}
}

func TestLoadTextureTableErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "vicparam")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	for name, text := range map[string]string{
		"dup.toml":     "default = 1\n[[class]]\nid = 1\n[[class]]\nid = 1\n",
		"default.toml": "default = 2\n[[class]]\nid = 1\nksat = 3.0\n",
		"syntax.toml":  "default = \n",
	} {
		path := filepath.Join(dir, name)
		if err := ioutil.WriteFile(path, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTextureTable(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
