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

// Package strain holds the strain-mapping data model and the reprojection
// of per-bin measurements onto full image resolution.
package strain

import (
	"errors"
	"fmt"
)

// A rectangular region of interest on the radiograph, mapped to one cell of
// the compact measurement grid. The pixel box is half-open: [X0,X1) x [Y0,Y1)
type Bin struct {
	X0          int `json:"x0"          yaml:"x0"`
	Y0          int `json:"y0"          yaml:"y0"`
	X1          int `json:"x1"          yaml:"x1"`
	Y1          int `json:"y1"          yaml:"y1"`
	RowIndex    int `json:"rowIndex"    yaml:"rowIndex"`
	ColumnIndex int `json:"columnIndex" yaml:"columnIndex"`
}

// Width of the bin in pixels
func (b Bin) Width() int { return b.X1 - b.X0 }

// Height of the bin in pixels
func (b Bin) Height() int { return b.Y1 - b.Y0 }

// Strain fit result for one bin. Only Val is displayed. A failed fit
// carries NaN, which travels as JSON null
type StrainRecord struct {
	Val float64 `json:"val"`
	Err float64 `json:"err"`
}

// Per-bin values keyed by bin identifier. NaN marks a failed fit
type Values map[string]float64

// Per-bin measurements, keyed by bin identifier
type Measurements struct {
	Lambda Values                  `json:"lambda"`
	D      Values                  `json:"d"`
	Strain map[string]StrainRecord `json:"strain"`
}

// A displayable measurement
type Field int

const (
	FieldD Field = iota
	FieldStrain
	FieldLambda
)

// Display parameter names, in the order offered to the user
var fieldNames = []string{"d", "strain", "lambda"}

// Default display parameter
const DefaultField = FieldLambda

var ErrUnknownField = errors.New("unknown display parameter")

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Returns the names of all display parameters
func FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

// Parses a display parameter name. Unknown names are an error
func ParseField(s string) (Field, error) {
	for i, n := range fieldNames {
		if n == s {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

func (f Field) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(fieldNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}
	return []byte(fieldNames[f]), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	v, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
