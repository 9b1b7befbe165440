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

// Package session keeps the derived arrays of loaded datasets. A State is
// never modified after construction: every processing step returns a new
// State, and a failed step leaves the previous one in place.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/display"
	"github.com/mlnoga/strainview/internal/strain"
)

var (
	ErrOverBudget = errors.New("dataset exceeds memory budget")
	ErrNotFound   = errors.New("session not found")
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Upper bound on the working set of one session
type Budget struct {
	MaxBytes uint64 // 0 means unlimited
}

// Returns a budget of the given fraction of physical memory
func NewBudget(fraction float64) Budget {
	if fraction <= 0 {
		return Budget{}
	}
	return Budget{MaxBytes: uint64(float64(memory.TotalMemory()) * fraction)}
}

// Estimates the bytes held by a session over d: the radiograph, three full
// resolution fields, the display canvas and the upsampled block. d must have
// passed Validate, which bounds the grid and bin size by the image
func Estimate(d *dataset.Dataset) uint64 {
	pixels := uint64(d.Height()) * uint64(d.Width())
	block := uint64(d.NbrRow) * uint64(d.BinSize) * uint64(d.NbrColumn) * uint64(d.BinSize)
	return 8 * (5*pixels + block)
}

func (b Budget) Check(d *dataset.Dataset) error {
	if b.MaxBytes == 0 {
		return nil
	}
	if need := Estimate(d); need > b.MaxBytes {
		return fmt.Errorf("%w: need %d MiB, have %d MiB", ErrOverBudget, need>>20, b.MaxBytes>>20)
	}
	return nil
}

type State struct {
	ID           string
	Dataset      *dataset.Dataset
	Reprojection *strain.Reprojection
	View         display.View
	Display      *display.Result
	Generation   uint64 // set by the Store on commit
	Updated      time.Time
}

// Validates d, expands it to full resolution and computes view v
func New(id string, d *dataset.Dataset, b Budget, v display.View) (*State, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := b.Check(d); err != nil {
		return nil, err
	}
	s := &State{ID: id, Dataset: d, View: v}
	return s.reprocess()
}

// Recomputes the reprojection and the current view from the dataset
func (s *State) Reprocess() (*State, error) {
	return s.reprocess()
}

func (s *State) reprocess() (*State, error) {
	d := s.Dataset
	r, err := strain.Expand(d.Height(), d.Width(), d.NbrRow, d.NbrColumn, d.Bins, d.Measurements)
	if err != nil {
		return nil, err
	}
	res, err := display.Compute(r, d.BinSize, s.View)
	if err != nil {
		return nil, err
	}
	return &State{
		ID:           s.ID,
		Dataset:      d,
		Reprojection: r,
		View:         s.View,
		Display:      res,
		Generation:   s.Generation,
		Updated:      time.Now(),
	}, nil
}

// Returns a new state showing view v
func (s *State) WithView(v display.View) (*State, error) {
	res, err := display.Compute(s.Reprojection, s.Dataset.BinSize, v)
	if err != nil {
		return nil, err
	}
	n := *s
	n.View, n.Display, n.Updated = v, res, time.Now()
	return &n, nil
}
