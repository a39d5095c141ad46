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

// Package vicparam assembles soil parameter files for the VIC land
// surface model from gridded and tabular inputs.
//
// A run defines the model grid from a reference raster, creates a
// Table with one row per grid cell and then applies a sequence of fill
// stages, each of which writes a subset of the 53 soil parameter
// columns. The result is written as whitespace-delimited text by a
// Formatter.
package vicparam

// Version gives the version of this software.
const Version = "0.3.0"
