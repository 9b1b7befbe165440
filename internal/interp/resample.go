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

package interp

import (
	"fmt"
	"math"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// contrib is the weight of one source row or column
type contrib struct {
	coord  int
	weight float64
}

// distrib lists, for each destination row or column, the source rows or
// columns it draws from
type distrib [][]contrib

// Distributes n source cells over n*scale destination cells. Destination
// centers map back to (d+0.5)/scale-0.5 in source coordinates, and taps
// beyond the edge are clamped to the edge cell.
func newDistrib(k *draw.Kernel, n, scale int) distrib {
	out := make(distrib, n*scale)
	for d := range out {
		center := (float64(d)+0.5)/float64(scale) - 0.5
		lo := int(math.Floor(center - k.Support))
		hi := int(math.Ceil(center + k.Support))
		cs := make([]contrib, 0, hi-lo+1)
		for s := lo; s <= hi; s++ {
			t := math.Abs(center - float64(s))
			if t >= k.Support {
				continue
			}
			w := k.At(t)
			if w == 0 {
				continue
			}
			coord := s
			if coord < 0 {
				coord = 0
			} else if coord >= n {
				coord = n - 1
			}
			cs = append(cs, contrib{coord, w})
		}
		out[d] = cs
	}
	return out
}

// Upsamples src by an integer factor using the given method, returning a
// (rows*scale) x (cols*scale) array.
//
// None and Nearest replicate each cell into a scale x scale block. Kernel
// methods compute a normalized weighted mean over the finite taps. A
// destination pixel whose nearest source cell is NaN stays NaN, so holes in
// the compact grid keep their footprint.
func Resample(src mat.Matrix, scale int, m Method) (*mat.Dense, error) {
	if m < 0 || m >= numMethods {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	if scale < 1 {
		return nil, fmt.Errorf("scale factor %d must be at least 1", scale)
	}
	rows, cols := src.Dims()
	dst := mat.NewDense(rows*scale, cols*scale, nil)

	k := kernels[m]
	if k == nil {
		replicate(dst, src, scale)
		return dst, nil
	}

	vertical := newDistrib(k, rows, scale)
	horizontal := newDistrib(k, cols, scale)
	raw := dst.RawMatrix()
	for y, vs := range vertical {
		out := raw.Data[y*raw.Stride : y*raw.Stride+raw.Cols]
		for x, hs := range horizontal {
			nearest := src.At(y/scale, x/scale)
			if math.IsNaN(nearest) {
				out[x] = math.NaN()
				continue
			}
			sum, wsum := 0.0, 0.0
			for _, v := range vs {
				for _, h := range hs {
					s := src.At(v.coord, h.coord)
					if math.IsNaN(s) || math.IsInf(s, 0) {
						continue
					}
					w := v.weight * h.weight
					sum += w * s
					wsum += w
				}
			}
			if math.Abs(wsum) < 1e-12 {
				out[x] = nearest
			} else {
				out[x] = sum / wsum
			}
		}
	}
	return dst, nil
}

func replicate(dst *mat.Dense, src mat.Matrix, scale int) {
	raw := dst.RawMatrix()
	for y := 0; y < raw.Rows; y++ {
		out := raw.Data[y*raw.Stride : y*raw.Stride+raw.Cols]
		for x := range out {
			out[x] = src.At(y/scale, x/scale)
		}
	}
}
