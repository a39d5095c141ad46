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
	"os"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/vicparam"
)

func TestGetStringMapString(t *testing.T) {
	os.Setenv("VICPARAM_TEST_KEY", "moist")
	defer os.Unsetenv("VICPARAM_TEST_KEY")
	cfg := viper.New()
	cfg.Set("json", `{"off_gmt": "round(lon * 24 / 360, 1)", "${VICPARAM_TEST_KEY}": "a\nb"}`)
	cfg.Set("map", map[string]interface{}{"off_gmt": "lon / 15"})
	cfg.Set("bad", 12)
	t.Run("json", func(t *testing.T) {
		o, err := GetStringMapString("json", cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]string{"off_gmt": "round(lon * 24 / 360, 1)", "moist": "a b"}
		if !reflect.DeepEqual(o, want) {
			t.Errorf("%v != %v", o, want)
		}
	})
	t.Run("map", func(t *testing.T) {
		o, err := GetStringMapString("map", cfg)
		if err != nil {
			t.Fatal(err)
		}
		if want := map[string]string{"off_gmt": "lon / 15"}; !reflect.DeepEqual(o, want) {
			t.Errorf("%v != %v", o, want)
		}
	})
	t.Run("bad", func(t *testing.T) {
		if _, err := GetStringMapString("bad", cfg); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestGetStringMapFloat64(t *testing.T) {
	cfg := viper.New()
	cfg.Set("json", `{"ds": 0.02, "c": 2}`)
	cfg.Set("map", map[string]interface{}{"ds": 0.02, "c": int64(2)})
	want := map[string]float64{"ds": 0.02, "c": 2}
	for _, name := range []string{"json", "map"} {
		o, err := getStringMapFloat64(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(o, want) {
			t.Errorf("%s: %v != %v", name, o, want)
		}
	}
}

func TestYearRange(t *testing.T) {
	cfg := viper.New()
	for _, test := range []struct {
		val     interface{}
		want    vicparam.YearRange
		wantErr bool
	}{
		{val: "[]"},
		{val: "[1991,2020]", want: vicparam.YearRange{From: 1991, To: 2020}},
		{val: []interface{}{int64(1991), int64(2000)}, want: vicparam.YearRange{From: 1991, To: 2000}},
		{val: "[2020,1991]", wantErr: true},
		{val: "[1991]", wantErr: true},
		{val: "1991-2020", wantErr: true},
	} {
		cfg.Set("years", test.val)
		r, err := yearRange("years", cfg)
		if (err != nil) != test.wantErr {
			t.Errorf("%v: err = %v", test.val, err)
			continue
		}
		if r != test.want {
			t.Errorf("%v: have %+v, want %+v", test.val, r, test.want)
		}
	}
}

func TestSoilConfigDefaults(t *testing.T) {
	cfg := viper.New()
	cfg.Set("GridTemplate", "template.nc")
	cfg.Set("Decimals", 2)
	cfg.Set("Constants", `{"ds": 0.02}`)
	cfg.Set("Derived", `{"off_gmt": "round(lon * 24 / 360, 1)"}`)
	cfg.Set("Stages", []string{"constants", "derived"})
	cfg.Set("InitMoist.Policy", "sentinel")
	c, err := SoilConfig(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.GridTemplate != "template.nc" || c.Decimals != 2 {
		t.Errorf("config = %+v", c)
	}
	if !reflect.DeepEqual(c.Constants, map[string]float64{"ds": 0.02}) {
		t.Errorf("constants = %v", c.Constants)
	}
	if c.InitMoist.Policy != vicparam.SentinelMoist {
		t.Errorf("policy = %s", c.InitMoist.Policy)
	}
	if !reflect.DeepEqual(c.Stages, []string{"constants", "derived"}) {
		t.Errorf("stages = %v", c.Stages)
	}

	cfg.Set("GridTemplate", "")
	if _, err := SoilConfig(context.Background(), cfg); err == nil {
		t.Error("expected an error for a missing grid template")
	}
}

func TestConfigExample(t *testing.T) {
	cfg := viper.New()
	cfg.SetConfigFile("../cmd/vicparam/configExample.toml")
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	c, err := SoilConfig(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	consts, err := vicparam.ConstantsByName(c.Constants)
	if err != nil {
		t.Fatal(err)
	}
	if want := vicparam.DefaultConstants(); !reflect.DeepEqual(consts, want) {
		t.Errorf("constants = %v, want %v", consts, want)
	}
	if c.Precip.Years != (vicparam.YearRange{From: 1991, To: 2020}) {
		t.Errorf("precipitation years = %+v", c.Precip.Years)
	}
	if len(c.Stages) != 7 || c.Derived["off_gmt"] != "round(lon * 24 / 360, 1)" {
		t.Errorf("stages = %v, derived = %v", c.Stages, c.Derived)
	}
}
