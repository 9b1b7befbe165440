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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "strainview.yaml")
	cfg := DefaultConfig()
	cfg.Display.Colormap = "jet"
	cfg.Resources.MemoryFraction = 0.25
	require.NoError(t, SaveConfig(cfg, path))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, back)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  interpolation: lanczos\n"), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "lanczos", cfg.Display.Interpolation)
	require.Equal(t, "viridis", cfg.Display.Colormap)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display: [1, 2"), 0644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STRAINVIEW_ADDR", "127.0.0.1:9999")
	t.Setenv("STRAINVIEW_MEMORY_FRACTION", "0.5")
	t.Setenv("STRAINVIEW_RELEASE", "true")
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, 0.5, cfg.Resources.MemoryFraction)
	require.True(t, cfg.Server.Release)

	t.Setenv("STRAINVIEW_MEMORY_FRACTION", "lots")
	require.Error(t, DefaultConfig().ApplyEnv())
}
