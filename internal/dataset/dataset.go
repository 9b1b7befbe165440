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

// Package dataset holds a read-only snapshot of one strain-mapping
// measurement: the integrated normalized radiograph, the bin layout and the
// per-bin fit results. Snapshots travel as JSON.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/mlnoga/strainview/internal/grid"
	"github.com/mlnoga/strainview/internal/strain"
)

type Dataset struct {
	Name       string                `json:"name"`
	Radiograph grid.Rows             `json:"radiograph"` // height x width, values expected in [0,1]
	NbrRow     int                   `json:"nbrRow"`
	NbrColumn  int                   `json:"nbrColumn"`
	BinSize    int                   `json:"binSize"` // pixels per bin edge
	Bins       map[string]strain.Bin `json:"bins"`
	strain.Measurements
}

func (d *Dataset) Height() int { return len(d.Radiograph) }

func (d *Dataset) Width() int {
	if len(d.Radiograph) == 0 {
		return 0
	}
	return len(d.Radiograph[0])
}

// Returns the radiograph as a dense array
func (d *Dataset) Image() *mat.Dense {
	return d.Radiograph.Dense()
}

// Checks the structure of the snapshot: a rectangular radiograph, positive
// grid dimensions and bin size no larger than the image, and bins and
// measurements consistent with both
func (d *Dataset) Validate() error {
	if !d.Radiograph.IsRectangular() {
		return &strain.ShapeMismatchError{What: "radiograph", Value: len(d.Radiograph), Limit: 1}
	}
	if d.BinSize < 1 {
		return &strain.ShapeMismatchError{What: "bin_size", Value: d.BinSize, Limit: 1}
	}
	// an upsampled bin never exceeds the image, nor does the compact grid
	if limit := minInt(d.Height(), d.Width()); d.BinSize > limit {
		return &strain.ShapeMismatchError{What: "bin_size", Value: d.BinSize, Limit: limit}
	}
	if d.NbrRow > d.Height() {
		return &strain.ShapeMismatchError{What: "nbr_row", Value: d.NbrRow, Limit: d.Height()}
	}
	if d.NbrColumn > d.Width() {
		return &strain.ShapeMismatchError{What: "nbr_column", Value: d.NbrColumn, Limit: d.Width()}
	}
	return strain.Validate(d.Height(), d.Width(), d.NbrRow, d.NbrColumn, d.Bins, d.Measurements)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Decodes and validates a dataset
func Read(r io.Reader) (*Dataset, error) {
	d := &Dataset{}
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Loads and validates a dataset from a JSON file
func Load(fileName string) (*Dataset, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	if d.Name == "" {
		d.Name = fileName
	}
	return d, nil
}

func (d *Dataset) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(d)
}

// Writes the dataset as JSON to the given file
func (d *Dataset) Save(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := d.Write(w); err != nil {
		return err
	}
	return w.Flush()
}
