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
	"math"

	"golang.org/x/image/draw"
)

// Filter definitions follow the Anti-Grain Geometry image filters used by
// matplotlib. Support is measured in source cells. None and Nearest have no
// kernel, they replicate cells.
var kernels = [numMethods]*draw.Kernel{
	Bilinear: draw.BiLinear,
	Bicubic:  {Support: 2, At: bicubic},
	Spline16: {Support: 2, At: spline16},
	Spline36: {Support: 3, At: spline36},
	Hanning:  {Support: 1, At: func(t float64) float64 { return 0.5 + 0.5*math.Cos(math.Pi*t) }},
	Hamming:  {Support: 1, At: func(t float64) float64 { return 0.54 + 0.46*math.Cos(math.Pi*t) }},
	Hermite:  {Support: 1, At: func(t float64) float64 { return (2*t-3)*t*t + 1 }},
	Kaiser:   newKaiser(6.33),
	Quadric:  {Support: 1.5, At: quadric},
	Catrom:   draw.CatmullRom,
	Gaussian: {Support: 2, At: func(t float64) float64 { return math.Exp(-2*t*t) * math.Sqrt(2/math.Pi) }},
	Bessel:   {Support: 3.2383, At: bessel},
	Mitchell: newMitchell(1.0/3, 1.0/3),
	Sinc:     {Support: 4, At: sinc},
	Lanczos:  {Support: 4, At: func(t float64) float64 { return sinc(t) * sinc(t/4) }},
}

// Returns the kernel for m, or nil for the replicating methods
func Kernel(m Method) *draw.Kernel {
	if m < 0 || m >= numMethods {
		return nil
	}
	return kernels[m]
}

func pow3(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * x * x
}

func bicubic(t float64) float64 {
	return (pow3(t+2) - 4*pow3(t+1) + 6*pow3(t) - 4*pow3(t-1)) / 6
}

func spline16(t float64) float64 {
	if t < 1 {
		return ((t-9.0/5)*t-1.0/5)*t + 1
	}
	t--
	return ((-1.0/3*t+4.0/5)*t - 7.0/15) * t
}

func spline36(t float64) float64 {
	if t < 1 {
		return ((13.0/11*t-453.0/209)*t-3.0/209)*t + 1
	}
	if t < 2 {
		t--
		return ((-6.0/11*t+270.0/209)*t - 156.0/209) * t
	}
	t -= 2
	return ((1.0/11*t-45.0/209)*t + 26.0/209) * t
}

func quadric(t float64) float64 {
	if t < 0.5 {
		return 0.75 - t*t
	}
	t -= 1.5
	return 0.5 * t * t
}

func bessel(t float64) float64 {
	if t == 0 {
		return math.Pi / 4
	}
	return math.J1(math.Pi*t) / (2 * t)
}

func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	t *= math.Pi
	return math.Sin(t) / t
}

// Modified Bessel function of the first kind, order zero, by power series
func besselI0(x float64) float64 {
	const epsilon = 1e-12
	sum, y := 1.0, x*x/4
	term := y
	for i := 2; term > epsilon; i++ {
		sum += term
		term *= y / float64(i*i)
	}
	return sum
}

func newKaiser(a float64) *draw.Kernel {
	i0a := 1 / besselI0(a)
	return &draw.Kernel{Support: 1, At: func(t float64) float64 {
		return besselI0(a*math.Sqrt(1-t*t)) * i0a
	}}
}

// Mitchell-Netravali cubic with parameters b and c
func newMitchell(b, c float64) *draw.Kernel {
	p0 := (6 - 2*b) / 6
	p2 := (-18 + 12*b + 6*c) / 6
	p3 := (12 - 9*b - 6*c) / 6
	q0 := (8*b + 24*c) / 6
	q1 := (-12*b - 48*c) / 6
	q2 := (6*b + 30*c) / 6
	q3 := (-b - 6*c) / 6
	return &draw.Kernel{Support: 2, At: func(t float64) float64 {
		if t < 1 {
			return p0 + t*t*(p2+t*p3)
		}
		return q0 + t*(q1+t*(q2+t*q3))
	}}
}
