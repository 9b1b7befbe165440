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

// Package display brings a measurement field to full radiograph resolution
// for overlay rendering. The renderer receives a height x width array with
// NaN holes, plus the colormap and interpolation identifiers.
package display

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mlnoga/strainview/internal/grid"
	"github.com/mlnoga/strainview/internal/interp"
	"github.com/mlnoga/strainview/internal/strain"
)

// The normalization maximum is zero, not finite, or the array has no finite
// values at all
type DegenerateNormalizationError struct {
	Max float64
}

func (e *DegenerateNormalizationError) Error() string {
	return fmt.Sprintf("degenerate normalization: maximum is %g", e.Max)
}

// Returns a copy of m divided by its largest finite element, and that element
func Normalize(m mat.Matrix) (*mat.Dense, float64, error) {
	max, ok := grid.MaxFinite(m)
	if !ok || max == 0 {
		return nil, max, &DegenerateNormalizationError{Max: max}
	}
	var out mat.Dense
	out.Scale(1/max, m)
	return &out, max, nil
}

// Parameters of one interpolated re-embedding
type Request struct {
	Compact        mat.Matrix     // NbrRow x NbrColumn grid
	Scale          int            // pixels per bin edge
	Method         interp.Method  // kernel for upsampling
	PostCorrection float64        // applied after interpolation, before re-embedding
	Height, Width  int            // canvas dimensions
	TopLeft        strain.TopLeft // where the upsampled block goes
	Normalize      bool           // divide by the finite maximum before interpolation
}

// Result of DisplayArray with the upsampled block dimensions
type embedding struct {
	canvas                 *mat.Dense
	blockRows, blockCols   int
	copiedRows, copiedCols int
}

// Upsamples the compact grid, applies the post-correction and places the
// block into a fresh NaN canvas at the top left corner of the ROI. Any part of
// the block extending past the canvas is clipped.
func DisplayArray(req Request) (*mat.Dense, error) {
	e, err := displayArray(req)
	if err != nil {
		return nil, err
	}
	return e.canvas, nil
}

func displayArray(req Request) (*embedding, error) {
	if req.Compact == nil {
		return nil, errors.New("no compact grid")
	}
	if req.Height <= 0 || req.Width <= 0 {
		return nil, &strain.ShapeMismatchError{What: "canvas", Value: req.Height * req.Width, Limit: 1}
	}
	src := req.Compact
	if req.Normalize {
		norm, _, err := Normalize(src)
		if err != nil {
			return nil, err
		}
		src = norm
	}

	block, err := interp.Resample(src, req.Scale, req.Method)
	if err != nil {
		return nil, err
	}
	grid.Scale(block, req.PostCorrection)

	canvas := grid.NewNaN(req.Height, req.Width)
	rows, cols := grid.Embed(canvas, block, req.TopLeft.Y, req.TopLeft.X)
	br, bc := block.Dims()
	return &embedding{canvas: canvas, blockRows: br, blockCols: bc, copiedRows: rows, copiedCols: cols}, nil
}

// User selection of what and how to display
type View struct {
	Parameter     strain.Field  `json:"parameter"`
	Colormap      Colormap      `json:"colormap"`
	Interpolation interp.Method `json:"interpolation"`
	Mode          Mode          `json:"mode"`
}

func DefaultView() View {
	return View{
		Parameter:     strain.DefaultField,
		Colormap:      DefaultColormap,
		Interpolation: interp.DefaultMethod,
		Mode:          DefaultMode,
	}
}

// Parses a view from its string identifiers. Empty strings select defaults
func ParseView(parameter, colormap, interpolation, mode string) (View, error) {
	return DefaultView().With(parameter, colormap, interpolation, mode)
}

// Returns v with the named selections replaced. Empty strings keep the
// current selection
func (v View) With(parameter, colormap, interpolation, mode string) (View, error) {
	var err error
	if parameter != "" {
		if v.Parameter, err = strain.ParseField(parameter); err != nil {
			return v, err
		}
	}
	if colormap != "" {
		if v.Colormap, err = ParseColormap(colormap); err != nil {
			return v, err
		}
	}
	if interpolation != "" {
		if v.Interpolation, err = interp.ParseMethod(interpolation); err != nil {
			return v, err
		}
	}
	if mode != "" {
		if v.Mode, err = ParseMode(mode); err != nil {
			return v, err
		}
	}
	return v, nil
}

// A display array with everything the renderer needs
type Result struct {
	View
	Array       *mat.Dense // Height x Width, NaN where nothing is shown
	Min, Max    float64    // finite value range for the colorbar, NaN if empty
	Coefficient float64    // post-correction applied after interpolation
	BlockRows   int        // dimensions of the upsampled block, 0 in full mode
	BlockCols   int
	// the block did not fit the canvas and was clipped
	Clipped bool
}

// Computes the display array for view v. In interpolated mode, d and lambda
// are normalized for interpolation and scaled back by their maximum, while
// strain stays in normalized units (post-correction 1).
func Compute(r *strain.Reprojection, scale int, v View) (*Result, error) {
	if r == nil {
		return nil, errors.New("no reprojection")
	}
	res := &Result{View: v, Coefficient: 1}

	switch v.Mode {
	case ModeFull:
		res.Array = mat.DenseCopyOf(r.Full(v.Parameter))

	case ModeInterpolated:
		norm, max, err := Normalize(r.Compact(v.Parameter))
		if err != nil {
			return nil, fmt.Errorf("normalizing %s: %w", v.Parameter, err)
		}
		res.Coefficient = max
		if v.Parameter == strain.FieldStrain {
			res.Coefficient = 1
		}
		e, err := displayArray(Request{
			Compact:        norm,
			Scale:          scale,
			Method:         v.Interpolation,
			PostCorrection: res.Coefficient,
			Height:         r.Height,
			Width:          r.Width,
			TopLeft:        r.TopLeft,
		})
		if err != nil {
			return nil, fmt.Errorf("displaying %s: %w", v.Parameter, err)
		}
		res.Array = e.canvas
		res.BlockRows, res.BlockCols = e.blockRows, e.blockCols
		res.Clipped = e.copiedRows < e.blockRows || e.copiedCols < e.blockCols

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(v.Mode))
	}

	var ok bool
	if res.Min, res.Max, ok = grid.Range(res.Array); !ok {
		res.Min, res.Max = math.NaN(), math.NaN()
	}
	return res, nil
}
