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

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mlnoga/strainview/internal/grid"
)

// Pixel offset of the union of all bins. Y and X are minimized independently
type TopLeft struct {
	Y int `json:"y"`
	X int `json:"x"`
}

// Per-bin measurements expanded onto the full radiograph resolution, and
// packed into the compact (row, column) grid
type Reprojection struct {
	Height, Width     int // radiograph dimensions
	NbrRow, NbrColumn int // compact grid dimensions

	Lambda *mat.Dense // Height x Width, NaN outside bins
	Strain *mat.Dense
	D      *mat.Dense

	CompactLambda *mat.Dense // NbrRow x NbrColumn, NaN for cells without bin
	CompactStrain *mat.Dense
	CompactD      *mat.Dense

	TopLeft TopLeft
}

// Returns the full resolution array for the given field
func (r *Reprojection) Full(f Field) *mat.Dense {
	switch f {
	case FieldD:
		return r.D
	case FieldStrain:
		return r.Strain
	default:
		return r.Lambda
	}
}

// Returns the compact grid for the given field
func (r *Reprojection) Compact(f Field) *mat.Dense {
	switch f {
	case FieldD:
		return r.CompactD
	case FieldStrain:
		return r.CompactStrain
	default:
		return r.CompactLambda
	}
}

// Returns bin keys in canonical processing order: ascending row index, then
// column index, then key. Overlapping bins are written in this order, so the
// last one wins
func SortedKeys(bins map[string]Bin) []string {
	keys := make([]string, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := bins[keys[i]], bins[keys[j]]
		if a.RowIndex != b.RowIndex {
			return a.RowIndex < b.RowIndex
		}
		if a.ColumnIndex != b.ColumnIndex {
			return a.ColumnIndex < b.ColumnIndex
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Checks the dimensions, every bin and the presence of all measurements.
// Returns a *ShapeMismatchError or *MissingMeasurementError on failure
func Validate(height, width, nbrRow, nbrColumn int, bins map[string]Bin, m Measurements) error {
	dims := []struct {
		what  string
		value int
	}{{"height", height}, {"width", width}, {"nbr_row", nbrRow}, {"nbr_column", nbrColumn}}
	for _, d := range dims {
		if d.value <= 0 {
			return &ShapeMismatchError{What: d.what, Value: d.value, Limit: 1}
		}
	}
	for _, key := range SortedKeys(bins) {
		b := bins[key]
		switch {
		case b.X0 < 0:
			return &ShapeMismatchError{Key: key, What: "x0", Value: b.X0, Limit: 0}
		case b.Y0 < 0:
			return &ShapeMismatchError{Key: key, What: "y0", Value: b.Y0, Limit: 0}
		case b.X1 <= b.X0:
			return &ShapeMismatchError{Key: key, What: "x1", Value: b.X1, Limit: b.X0 + 1}
		case b.Y1 <= b.Y0:
			return &ShapeMismatchError{Key: key, What: "y1", Value: b.Y1, Limit: b.Y0 + 1}
		case b.X1 > width:
			return &ShapeMismatchError{Key: key, What: "x1", Value: b.X1, Limit: width}
		case b.Y1 > height:
			return &ShapeMismatchError{Key: key, What: "y1", Value: b.Y1, Limit: height}
		case b.RowIndex < 0 || b.RowIndex >= nbrRow:
			return &ShapeMismatchError{Key: key, What: "row_index", Value: b.RowIndex, Limit: nbrRow}
		case b.ColumnIndex < 0 || b.ColumnIndex >= nbrColumn:
			return &ShapeMismatchError{Key: key, What: "column_index", Value: b.ColumnIndex, Limit: nbrColumn}
		}
		if _, ok := m.Lambda[key]; !ok {
			return &MissingMeasurementError{Key: key, Mapping: "lambda"}
		}
		if _, ok := m.D[key]; !ok {
			return &MissingMeasurementError{Key: key, Mapping: "d"}
		}
		if _, ok := m.Strain[key]; !ok {
			return &MissingMeasurementError{Key: key, Mapping: "strain"}
		}
	}
	return nil
}

// Expands per-bin measurements onto a height x width canvas and packs them
// into the nbrRow x nbrColumn compact grid. All inputs are validated before
// anything is written, so on error no partial result is returned.
//
// The top left corner starts out at (height, width) and is lowered by every
// bin, so it stays there if bins is empty.
func Expand(height, width, nbrRow, nbrColumn int, bins map[string]Bin, m Measurements) (*Reprojection, error) {
	if err := Validate(height, width, nbrRow, nbrColumn, bins, m); err != nil {
		return nil, err
	}

	r := &Reprojection{
		Height:        height,
		Width:         width,
		NbrRow:        nbrRow,
		NbrColumn:     nbrColumn,
		Lambda:        grid.NewNaN(height, width),
		Strain:        grid.NewNaN(height, width),
		D:             grid.NewNaN(height, width),
		CompactLambda: grid.NewNaN(nbrRow, nbrColumn),
		CompactStrain: grid.NewNaN(nbrRow, nbrColumn),
		CompactD:      grid.NewNaN(nbrRow, nbrColumn),
		TopLeft:       TopLeft{Y: height, X: width},
	}

	for _, key := range SortedKeys(bins) {
		b := bins[key]
		if b.X0 < r.TopLeft.X {
			r.TopLeft.X = b.X0
		}
		if b.Y0 < r.TopLeft.Y {
			r.TopLeft.Y = b.Y0
		}

		lambda, d, strain := m.Lambda[key], m.D[key], m.Strain[key].Val

		r.CompactLambda.Set(b.RowIndex, b.ColumnIndex, lambda)
		r.CompactStrain.Set(b.RowIndex, b.ColumnIndex, strain)
		r.CompactD.Set(b.RowIndex, b.ColumnIndex, d)

		grid.FillRect(r.Lambda, b.Y0, b.Y1, b.X0, b.X1, lambda)
		grid.FillRect(r.Strain, b.Y0, b.Y1, b.X0, b.X1, strain)
		grid.FillRect(r.D, b.Y0, b.Y1, b.X0, b.X1, d)
	}
	return r, nil
}
