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

// Package grid holds the dense NaN-aware float64 arrays shared by the
// reprojection and display stages. Arrays are gonum mat.Dense values
// indexed (row, column), i.e. (y, x).
package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Creates a rows x cols array with every element set to NaN
func NewNaN(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	nan := math.NaN()
	for i := range data {
		data[i] = nan
	}
	return mat.NewDense(rows, cols, data)
}

// Creates an array from row slices. All rows must have the same length
func FromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	r, c := len(rows), len(rows[0])
	data := make([]float64, 0, r*c)
	for _, row := range rows {
		data = append(data, row[:c]...)
	}
	return mat.NewDense(r, c, data)
}

// Returns the rows of m as freshly allocated slices
func ToRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for y := 0; y < r; y++ {
		out[y] = make([]float64, c)
		for x := 0; x < c; x++ {
			out[y][x] = m.At(y, x)
		}
	}
	return out
}

// Sets the half-open rectangle [y0:y1, x0:x1] of m to v. The rectangle
// must lie within m
func FillRect(m *mat.Dense, y0, y1, x0, x1 int, v float64) {
	raw := m.RawMatrix()
	for y := y0; y < y1; y++ {
		row := raw.Data[y*raw.Stride+x0 : y*raw.Stride+x1]
		for x := range row {
			row[x] = v
		}
	}
}

// Returns the largest finite element of m. ok is false if m holds no
// finite element
func MaxFinite(m mat.Matrix) (max float64, ok bool) {
	max = math.Inf(-1)
	r, c := m.Dims()
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			v := m.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v > max {
				max = v
			}
			ok = true
		}
	}
	if !ok {
		return math.NaN(), false
	}
	return max, true
}

// Returns the finite elements of m in row-major order
func Finite(m mat.Matrix) []float64 {
	r, c := m.Dims()
	vals := make([]float64, 0, r*c)
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			if v := m.At(y, x); !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	return vals
}

// Returns minimum and maximum of the finite elements of m, as needed for a
// colorbar. ok is false if there are none
func Range(m mat.Matrix) (min, max float64, ok bool) {
	vals := Finite(m)
	if len(vals) == 0 {
		return math.NaN(), math.NaN(), false
	}
	return floats.Min(vals), floats.Max(vals), true
}

// Counts the NaN elements of m
func CountNaN(m mat.Matrix) int {
	r, c := m.Dims()
	n := 0
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			if math.IsNaN(m.At(y, x)) {
				n++
			}
		}
	}
	return n
}

// Multiplies every element of m by f in place. NaNs stay NaN
func Scale(m *mat.Dense, f float64) {
	m.Scale(f, m)
}

// Copies src into dst with its top left corner at (y, x). Parts of src
// falling outside dst are clipped. Returns the number of rows and columns
// actually copied
func Embed(dst, src *mat.Dense, y, x int) (rows, cols int) {
	dr, dc := dst.Dims()
	sr, sc := src.Dims()
	sy, sx := 0, 0
	if y < 0 {
		sy, y = -y, 0
	}
	if x < 0 {
		sx, x = -x, 0
	}
	rows = minInt(sr-sy, dr-y)
	cols = minInt(sc-sx, dc-x)
	if rows <= 0 || cols <= 0 {
		return 0, 0
	}
	to := dst.Slice(y, y+rows, x, x+cols).(*mat.Dense)
	to.Copy(src.Slice(sy, sy+rows, sx, sx+cols))
	return rows, cols
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
