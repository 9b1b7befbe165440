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

package grid

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Row slices of a 2D array for JSON transport. NaN and infinities are
// written as null, and null reads back as NaN
type Rows [][]float64

// Converts m to Rows
func RowsOf(m mat.Matrix) Rows {
	return Rows(ToRows(m))
}

// Converts r to a dense array, or nil if r is empty
func (r Rows) Dense() *mat.Dense {
	return FromRows(r)
}

// Returns true if all rows have the same non-zero length
func (r Rows) IsRectangular() bool {
	if len(r) == 0 || len(r[0]) == 0 {
		return false
	}
	for _, row := range r {
		if len(row) != len(r[0]) {
			return false
		}
	}
	return true
}

func (r Rows) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for y, row := range r {
		if y > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for x, v := range row {
			if x > 0 {
				b.WriteByte(',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				b.WriteString("null")
			} else {
				b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (r *Rows) UnmarshalJSON(data []byte) error {
	var raw [][]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}
	out := make(Rows, len(raw))
	for y, row := range raw {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			if v == nil {
				out[y][x] = math.NaN()
			} else {
				out[y][x] = *v
			}
		}
	}
	*r = out
	return nil
}
