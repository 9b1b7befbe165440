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
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMethodNames(t *testing.T) {
	want := "none nearest bilinear bicubic spline16 spline36 hanning hamming hermite kaiser quadric catrom gaussian bessel mitchell sinc lanczos"
	if got := strings.Join(MethodNames(), " "); got != want {
		t.Errorf("names=%q; want %q", got, want)
	}
	if DefaultMethod.String() != "none" {
		t.Errorf("default=%s; want none", DefaultMethod)
	}
	for i, n := range MethodNames() {
		m, err := ParseMethod(n)
		if err != nil || m != Method(i) {
			t.Errorf("ParseMethod(%q)=%v,%v; want %d", n, m, err, i)
		}
	}
	if _, err := ParseMethod("blackman"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("err=%v; want ErrUnknownMethod", err)
	}
}

func TestKernelsAreFiniteAndPeakAtZero(t *testing.T) {
	for m := Bilinear; m < numMethods; m++ {
		k := Kernel(m)
		if k == nil {
			t.Errorf("%s: no kernel", m)
			continue
		}
		peak := k.At(0)
		if peak <= 0 || math.IsNaN(peak) {
			t.Errorf("%s: At(0)=%f; want positive", m, peak)
		}
		for tt := 0.0; tt < k.Support; tt += 0.05 {
			v := k.At(tt)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s: At(%f)=%f", m, tt, v)
			}
			if v > peak+1e-12 {
				t.Errorf("%s: At(%f)=%f exceeds At(0)=%f", m, tt, v, peak)
			}
		}
	}
	if Kernel(None) != nil || Kernel(Nearest) != nil {
		t.Errorf("none and nearest must replicate")
	}
}

func TestResampleReplicates(t *testing.T) {
	src := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	for _, m := range []Method{None, Nearest} {
		dst, err := Resample(src, 2, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		want := mat.NewDense(4, 4, []float64{
			1, 1, 2, 2,
			1, 1, 2, 2,
			3, 3, 4, 4,
			3, 3, 4, 4,
		})
		if !mat.Equal(dst, want) {
			t.Errorf("%s: got %v; want %v", m, mat.Formatted(dst), mat.Formatted(want))
		}
	}
}

func TestResampleScaleOneIsIdentityForInterpolatingKernels(t *testing.T) {
	src := mat.NewDense(3, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	for _, m := range []Method{None, Nearest, Bilinear, Hermite, Catrom} {
		dst, err := Resample(src, 1, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if !mat.EqualApprox(dst, src, 1e-12) {
			t.Errorf("%s: got %v; want %v", m, mat.Formatted(dst), mat.Formatted(src))
		}
	}
}

func TestResamplePreservesConstants(t *testing.T) {
	data := make([]float64, 3*5)
	for i := range data {
		data[i] = 0.75
	}
	src := mat.NewDense(3, 5, data)
	for m := None; m < numMethods; m++ {
		dst, err := Resample(src, 4, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		r, c := dst.Dims()
		if r != 12 || c != 20 {
			t.Fatalf("%s: dims=%dx%d; want 12x20", m, r, c)
		}
		for y := 0; y < r; y++ {
			for x := 0; x < c; x++ {
				if v := dst.At(y, x); math.Abs(v-0.75) > 1e-9 {
					t.Fatalf("%s: dst[%d,%d]=%f; want 0.75", m, y, x, v)
				}
			}
		}
	}
}

func TestResampleBilinearStaysWithinRange(t *testing.T) {
	src := mat.NewDense(2, 3, []float64{0.1, 1, 0.5, 0.2, 0.9, 0.3})
	for _, m := range []Method{Nearest, Bilinear, Hanning, Hermite, Gaussian, Quadric, Kaiser} {
		dst, err := Resample(src, 5, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if max := mat.Max(dst); max > 1+1e-12 {
			t.Errorf("%s: max=%f; want <=1", m, max)
		}
		if min := mat.Min(dst); min < 0.1-1e-12 {
			t.Errorf("%s: min=%f; want >=0.1", m, min)
		}
	}
}

func TestResampleBilinearRamp(t *testing.T) {
	src := mat.NewDense(1, 2, []float64{0, 1})
	dst, err := Resample(src, 2, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	// destination centers at -0.25, 0.25, 0.75, 1.25 in source coordinates,
	// clamped to the edge cells
	want := []float64{0, 0.25, 0.75, 1}
	for x, w := range want {
		if v := dst.At(0, x); math.Abs(v-w) > 1e-12 {
			t.Errorf("dst[0,%d]=%f; want %f", x, v, w)
		}
	}
}

func TestResampleKeepsNaNFootprint(t *testing.T) {
	nan := math.NaN()
	src := mat.NewDense(2, 2, []float64{1, nan, 3, 4})
	for m := None; m < numMethods; m++ {
		dst, err := Resample(src, 3, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		for y := 0; y < 6; y++ {
			for x := 0; x < 6; x++ {
				v := dst.At(y, x)
				inHole := y < 3 && x >= 3
				if inHole != math.IsNaN(v) {
					t.Fatalf("%s: dst[%d,%d]=%f; hole=%v", m, y, x, v, inHole)
				}
			}
		}
	}
}

func TestResampleErrors(t *testing.T) {
	src := mat.NewDense(1, 1, []float64{1})
	if _, err := Resample(src, 0, Bilinear); err == nil {
		t.Errorf("scale 0 accepted")
	}
	if _, err := Resample(src, 2, Method(99)); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("err=%v; want ErrUnknownMethod", err)
	}
}
