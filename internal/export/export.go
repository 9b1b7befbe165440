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

// Package export writes display arrays and radiographs as image files for
// external viewers. No colormap is applied: display arrays become 16-bit
// gray with NaN holes transparent.
package export

import (
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// Maps v from [min,max] to [0,1], clamping. ok is false for NaN
func unit(v, min, scale float64) (u float64, ok bool) {
	if math.IsNaN(v) {
		return 0, false
	}
	u = (v - min) * scale
	if u < 0 || math.IsInf(u, -1) {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	return u, true
}

func scaleFor(min, max float64) float64 {
	if max <= min {
		return 0
	}
	return 1 / (max - min)
}

// Write a display array to a 16-bit gray TIFF with alpha, mapping [min,max]
// onto the full gray range. NaN pixels become fully transparent.
func WriteTIFF16ToFile(fileName string, m mat.Matrix, min, max float64) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteTIFF16(writer, m, min, max); err != nil {
		return err
	}
	return writer.Flush()
}

// Write a display array to a 16-bit gray TIFF with alpha, mapping [min,max]
// onto the full gray range. NaN pixels become fully transparent.
func WriteTIFF16(writer io.Writer, m mat.Matrix, min, max float64) error {
	height, width := m.Dims()
	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	scale := scaleFor(min, max)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u, ok := unit(m.At(y, x), min, scale)
			if !ok {
				img.SetNRGBA64(x, y, color.NRGBA64{})
				continue
			}
			g := uint16(u*65535 + 0.5)
			img.SetNRGBA64(x, y, color.NRGBA64{R: g, G: g, B: g, A: 0xffff})
		}
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// Write a grayscale radiograph to JPG, mapping [min,max] to black and white.
func WriteMonoJPGToFile(fileName string, m mat.Matrix, min, max float64, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteMonoJPG(writer, m, min, max, quality); err != nil {
		return err
	}
	return writer.Flush()
}

// Write a grayscale radiograph to JPG, mapping [min,max] to black and white.
func WriteMonoJPG(writer io.Writer, m mat.Matrix, min, max float64, quality int) error {
	height, width := m.Dims()
	img := image.NewGray(image.Rect(0, 0, width, height))
	scale := scaleFor(min, max)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// replace NaNs with zeros for export, else JPG output breaks
			u, _ := unit(m.At(y, x), min, scale)
			img.SetGray(x, y, color.Gray{Y: uint8(u*255 + 0.5)})
		}
	}

	return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
}
