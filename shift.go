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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Default coordinate shifts applied by Shift.
const (
	DefaultLatShift = 0.005
	DefaultLonShift = -0.005
)

// Shift copies a soil parameter file from r to w, adding latShift to
// the latitude and lonShift to the longitude of every row. Shifted
// coordinates are written with 4 decimals. Every other token, and the
// whitespace between tokens, is copied unchanged.
func Shift(w io.Writer, r io.Reader, name string, latShift, lonShift float64) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	b := bufio.NewWriter(w)
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		if strings.TrimSpace(text) != "" {
			var err error
			if text, err = shiftLine(text, name, line, latShift, lonShift); err != nil {
				return err
			}
		}
		if _, err := b.WriteString(text); err != nil {
			return err
		}
		if err := b.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("vicparam: reading %s: %w", name, err)
	}
	return b.Flush()
}

// shiftLine replaces the tokens at the latitude and longitude
// positions of a line.
func shiftLine(text, name string, line int, latShift, lonShift float64) (string, error) {
	var o strings.Builder
	tok := 0
	for len(text) > 0 {
		sp := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
		if sp < 0 {
			o.WriteString(text)
			break
		}
		o.WriteString(text[:sp])
		text = text[sp:]
		end := strings.IndexFunc(text, unicode.IsSpace)
		if end < 0 {
			end = len(text)
		}
		field := text[:end]
		text = text[end:]

		var shift float64
		switch Column(tok) {
		case Lat:
			shift = latShift
		case Lon:
			shift = lonShift
		default:
			o.WriteString(field)
			tok++
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return "", &MalformedRowError{File: name, Line: line, Column: tok, Token: field, Err: err}
		}
		o.WriteString(strconv.FormatFloat(v+shift, 'f', 4, 64))
		tok++
	}
	if tok <= int(Lon) {
		return "", &MalformedRowError{File: name, Line: line, Column: -1,
			Err: fmt.Errorf("got %d columns, need at least %d", tok, int(Lon)+1)}
	}
	return o.String(), nil
}
