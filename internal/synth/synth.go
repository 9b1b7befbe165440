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

// Package synth generates synthetic strain-mapping datasets for demos and
// tests: a noisy radiograph of a disc-shaped sample with a regular grid of
// bins carrying a smooth strain field.
package synth

import (
	"fmt"
	"math"
	"strconv"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/grid"
	"github.com/mlnoga/strainview/internal/strain"
)

type Options struct {
	Height, Width     int
	NbrRow, NbrColumn int
	BinSize           int
	OffsetY, OffsetX  int     // top left corner of the bin grid
	D0                float64 // unstrained lattice spacing in Angstrom
	StrainAmplitude   float64
	Noise             float64 // relative noise on radiograph and strain
	Seed              uint32
}

func DefaultOptions() Options {
	return Options{
		Height: 256, Width: 256,
		NbrRow: 10, NbrColumn: 12,
		BinSize: 16,
		OffsetY: 48, OffsetX: 32,
		D0:              2.0268, // Fe 110
		StrainAmplitude: 1e-3,
		Noise:           0.02,
		Seed:            1,
	}
}

// Returns a uniform value in [-1,1)
func symmetric(rng *fastrand.RNG) float64 {
	return float64(rng.Uint32n(1<<24))/(1<<23) - 1
}

// Generates a dataset. The result is deterministic for a given seed
func Generate(o Options) (*dataset.Dataset, error) {
	if o.BinSize < 1 || o.NbrRow < 1 || o.NbrColumn < 1 {
		return nil, fmt.Errorf("invalid grid %dx%d with bin size %d", o.NbrRow, o.NbrColumn, o.BinSize)
	}
	if o.OffsetY < 0 || o.OffsetX < 0 ||
		o.OffsetY+o.NbrRow*o.BinSize > o.Height || o.OffsetX+o.NbrColumn*o.BinSize > o.Width {
		return nil, fmt.Errorf("bin grid %dx%d of size %d at (%d,%d) does not fit a %dx%d image",
			o.NbrRow, o.NbrColumn, o.BinSize, o.OffsetY, o.OffsetX, o.Height, o.Width)
	}

	rng := fastrand.RNG{}
	rng.Seed(o.Seed)

	// disc-shaped sample absorbing half the beam
	radio := make(grid.Rows, o.Height)
	cy, cx := float64(o.Height)/2, float64(o.Width)/2
	radius := 0.45 * math.Min(float64(o.Height), float64(o.Width))
	for y := range radio {
		radio[y] = make([]float64, o.Width)
		for x := range radio[y] {
			v := 0.9
			if math.Hypot(float64(y)-cy, float64(x)-cx) < radius {
				v = 0.45
			}
			v += o.Noise * symmetric(&rng)
			radio[y][x] = math.Max(0, math.Min(1, v))
		}
	}

	d := &dataset.Dataset{
		Name:       fmt.Sprintf("synthetic-%d", o.Seed),
		Radiograph: radio,
		NbrRow:     o.NbrRow,
		NbrColumn:  o.NbrColumn,
		BinSize:    o.BinSize,
		Bins:       make(map[string]strain.Bin, o.NbrRow*o.NbrColumn),
		Measurements: strain.Measurements{
			Lambda: strain.Values{},
			D:      strain.Values{},
			Strain: map[string]strain.StrainRecord{},
		},
	}
	for r := 0; r < o.NbrRow; r++ {
		for c := 0; c < o.NbrColumn; c++ {
			key := strconv.Itoa(r*o.NbrColumn + c)
			d.Bins[key] = strain.Bin{
				X0: o.OffsetX + c*o.BinSize, Y0: o.OffsetY + r*o.BinSize,
				X1: o.OffsetX + (c+1)*o.BinSize, Y1: o.OffsetY + (r+1)*o.BinSize,
				RowIndex: r, ColumnIndex: c,
			}
			u, v := float64(r)/float64(o.NbrRow), float64(c)/float64(o.NbrColumn)
			s := o.StrainAmplitude * (1 + 0.5*math.Sin(2*math.Pi*u)*math.Cos(2*math.Pi*v))
			s *= 1 + o.Noise*symmetric(&rng)
			spacing := o.D0 * (1 + s)
			d.Strain[key] = strain.StrainRecord{Val: s, Err: o.Noise * math.Abs(s)}
			d.D[key] = spacing
			d.Lambda[key] = 2 * spacing // Bragg edge at 2θ=180°
		}
	}
	return d, nil
}
