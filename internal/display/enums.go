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

package display

import (
	"errors"
	"fmt"
)

// A colormap identifier, handed through to the renderer
type Colormap int

const (
	Viridis Colormap = iota
	Jet
)

const DefaultColormap = Viridis

var colormapNames = []string{"viridis", "jet"}

var ErrUnknownColormap = errors.New("unknown colormap")

func (c Colormap) String() string {
	if c < 0 || int(c) >= len(colormapNames) {
		return fmt.Sprintf("Colormap(%d)", int(c))
	}
	return colormapNames[c]
}

func ColormapNames() []string { return append([]string(nil), colormapNames...) }

func ParseColormap(s string) (Colormap, error) {
	for i, n := range colormapNames {
		if n == s {
			return Colormap(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColormap, s)
}

func (c Colormap) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colormapNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColormap, int(c))
	}
	return []byte(colormapNames[c]), nil
}

func (c *Colormap) UnmarshalText(text []byte) error {
	v, err := ParseColormap(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// How a field is brought to full resolution
type Mode int

const (
	// Upsample the compact grid with the chosen kernel and re-embed it
	ModeInterpolated Mode = iota
	// Show the per-bin full resolution array; the kernel is only passed on to the renderer
	ModeFull
)

const DefaultMode = ModeInterpolated

var modeNames = []string{"interpolated", "full"}

var ErrUnknownMode = errors.New("unknown display mode")

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ModeNames() []string { return append([]string(nil), modeNames...) }

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
