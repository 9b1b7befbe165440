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

// Package interp upsamples compact measurement grids with one of a fixed
// set of 2D interpolation kernels, named as in matplotlib's imshow.
package interp

import (
	"errors"
	"fmt"
)

// An interpolation kernel selector
type Method int

const (
	None Method = iota
	Nearest
	Bilinear
	Bicubic
	Spline16
	Spline36
	Hanning
	Hamming
	Hermite
	Kaiser
	Quadric
	Catrom
	Gaussian
	Bessel
	Mitchell
	Sinc
	Lanczos
	numMethods
)

// Default interpolation method
const DefaultMethod = None

var ErrUnknownMethod = errors.New("unknown interpolation method")

var methodNames = [numMethods]string{
	"none", "nearest", "bilinear", "bicubic", "spline16",
	"spline36", "hanning", "hamming", "hermite", "kaiser", "quadric",
	"catrom", "gaussian", "bessel", "mitchell", "sinc", "lanczos",
}

func (m Method) String() string {
	if m < 0 || m >= numMethods {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Returns the names of all interpolation methods, in UI order
func MethodNames() []string {
	return append([]string(nil), methodNames[:]...)
}

// Parses an interpolation method name. Unknown names are an error
func ParseMethod(s string) (Method, error) {
	for i, n := range methodNames {
		if n == s {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

func (m Method) MarshalText() ([]byte, error) {
	if m < 0 || m >= numMethods {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(methodNames[m]), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
