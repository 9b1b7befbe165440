// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package strain

import "fmt"

// Bin coordinates outside the image, or grid indices outside the declared
// row and column counts
type ShapeMismatchError struct {
	Key   string // bin identifier, empty for whole-array dimensions
	What  string // offending attribute, e.g. "x1" or "row_index"
	Value int
	Limit int
}

func (e *ShapeMismatchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("shape mismatch: %s=%d, limit %d", e.What, e.Value, e.Limit)
	}
	return fmt.Sprintf("shape mismatch in bin %q: %s=%d, limit %d", e.Key, e.What, e.Value, e.Limit)
}

// A bin identifier absent from one of the measurement mappings
type MissingMeasurementError struct {
	Key     string
	Mapping string // "lambda", "d" or "strain"
}

func (e *MissingMeasurementError) Error() string {
	return fmt.Sprintf("missing %s measurement for bin %q", e.Mapping, e.Key)
}
