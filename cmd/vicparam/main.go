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

// Command vicparam builds VIC hydrologic model parameter and forcing files.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/vicparam/vicutil"
)

func main() {
	if err := vicutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
