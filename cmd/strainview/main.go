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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	nl "github.com/mlnoga/strainview/internal"
	"github.com/mlnoga/strainview/internal/config"
	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/display"
	"github.com/mlnoga/strainview/internal/export"
	"github.com/mlnoga/strainview/internal/grid"
	"github.com/mlnoga/strainview/internal/interp"
	"github.com/mlnoga/strainview/internal/rest"
	"github.com/mlnoga/strainview/internal/session"
	"github.com/mlnoga/strainview/internal/strain"
	"github.com/mlnoga/strainview/internal/synth"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var configFile = flag.String("config", "strainview.yaml", "load configuration from YAML `file`, if present")
var addr = flag.String("addr", "", "listen address for the HTTP API, e.g. `:8080`. Overrides config")
var logFile = flag.String("log", "", "save log output to `file`. Overrides config")

var parameter = flag.String("parameter", "", "displayed parameter, one of d, strain, lambda. Overrides config")
var colormap = flag.String("colormap", "", "colormap identifier, one of viridis, jet. Overrides config")
var interpolation = flag.String("interp", "", "interpolation method, e.g. none, bilinear, bicubic, lanczos. Overrides config")
var mode = flag.String("mode", "", "display mode, one of interpolated, full. Overrides config")

var out = flag.String("out", "%auto", "save output to `file`. `%auto` derives the name from the input file")
var jpg = flag.String("jpg", "", "save 8bit preview of the display array as JPEG to `file`")

var rows = flag.Int("rows", 10, "demo: number of bin rows")
var cols = flag.Int("cols", 12, "demo: number of bin columns")
var binSize = flag.Int("binSize", 16, "demo: bin edge length in pixels")
var seed = flag.Uint("seed", 1, "demo: random seed")

var memFraction = flag.Float64("memFraction", -1, "bound the working set of a session to this fraction of physical memory, 0=unlimited, -1=from config")

var chroot = flag.String("chroot", "", "serve: change filesystem root to `dir` before listening (requires root)")
var setuid = flag.Int("setuid", -1, "serve: change user id to `uid` before listening, -1=no change")

func main() {
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(os.Stdout, `Strainview Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (serve|process|display|demo|options|legal|version) [dataset.json ...]

Commands:
  serve   Serve the HTTP API, preloading the given datasets as sessions
  process Expand a dataset to full resolution and show a summary
  display Compute the display array of a dataset and save it as 16bit TIFF
  demo    Generate a synthetic dataset
  options Show available parameters, colormaps, interpolations and modes
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		nl.LogFatalf("Error loading configuration: %s\n", err.Error())
	}

	if cfg.Output.Log != "" {
		if err := nl.LogAlsoToFile(cfg.Output.Log); err != nil {
			nl.LogFatalf("Unable to open logfile '%s'\n", cfg.Output.Log)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	switch args[0] {
	case "serve", "process", "display":
		banner()
	}

	switch args[0] {
	case "serve":
		err = cmdServe(cfg, args[1:])

	case "process":
		err = cmdProcess(args[1:])

	case "display":
		err = cmdDisplay(cfg, args[1:])

	case "demo":
		err = cmdDemo()

	case "options":
		cmdOptions(cfg)

	case "legal":
		cmdLegal()

	case "version":
		nl.LogPrintf("Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		nl.LogPrintf("Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	nl.LogPrintf("\nDone after %v\n", time.Since(start))

	if err != nil {
		nl.LogPrintf("Error: %s\n", err.Error())
		nl.LogSync()
		os.Exit(-1)
	}
	nl.LogSync()
}

// Loads the YAML configuration and environment overlay, then applies
// explicitly set command line flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logFile != "" {
		cfg.Output.Log = *logFile
	}
	if *parameter != "" {
		cfg.Display.Parameter = *parameter
	}
	if *colormap != "" {
		cfg.Display.Colormap = *colormap
	}
	if *interpolation != "" {
		cfg.Display.Interpolation = *interpolation
	}
	if *mode != "" {
		cfg.Display.Mode = *mode
	}
	if *memFraction >= 0 {
		cfg.Resources.MemoryFraction = *memFraction
	}
	return cfg, nil
}

func viewOf(cfg *config.Config) (display.View, error) {
	return display.ParseView(cfg.Display.Parameter, cfg.Display.Colormap, cfg.Display.Interpolation, cfg.Display.Mode)
}

// Shows machine resources available to the process
func banner() {
	avx2 := "no"
	if cpuid.CPU.AVX2() {
		avx2 = "yes"
	}
	nl.LogPrintf("Running on %s with %d logical cores (GOMAXPROCS %d, AVX2 %s) and %d MiB of physical memory\n",
		strings.TrimSpace(cpuid.CPU.BrandName), cpuid.CPU.LogicalCores, runtime.GOMAXPROCS(0), avx2,
		memory.TotalMemory()/1024/1024)
}

// Derives an output file name from the input file, unless one was given
func autoName(given, input, suffix string) string {
	if given != "%auto" {
		return given
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// Serves the HTTP API, optionally preloading datasets as sessions
func cmdServe(cfg *config.Config, fileNames []string) error {
	view, err := viewOf(cfg)
	if err != nil {
		return err
	}
	if cfg.Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	budget := session.NewBudget(cfg.Resources.MemoryFraction)
	if budget.MaxBytes > 0 {
		nl.LogPrintf("Limiting sessions to %d MiB each\n", budget.MaxBytes>>20)
	}

	srv := rest.NewServer(session.NewStore(), budget, view)
	srv.JPEGQuality = cfg.Output.JPEGQuality
	for _, fileName := range fileNames {
		d, err := dataset.Load(fileName)
		if err != nil {
			return err
		}
		st, err := session.New(srv.Store.NewID(), d, budget, view)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}
		st = srv.Store.Put(st)
		nl.LogPrintf("Preloaded '%s' as session %s\n", fileName, st.ID)
	}

	if err := rest.MakeSandbox(*chroot, *setuid); err != nil {
		return err
	}
	return rest.Serve(cfg.Server.Addr, srv)
}

func loadOne(fileNames []string) (*dataset.Dataset, error) {
	if len(fileNames) != 1 {
		return nil, fmt.Errorf("need exactly one dataset file, got %d", len(fileNames))
	}
	d, err := dataset.Load(fileNames[0])
	if err != nil {
		return nil, err
	}
	nl.LogPrintf("Loaded '%s': %dx%d pixels, %dx%d grid of %d bins with bin size %d\n",
		d.Name, d.Width(), d.Height(), d.NbrColumn, d.NbrRow, len(d.Bins), d.BinSize)
	return d, nil
}

// Expands a dataset to full resolution and summarizes the result
func cmdProcess(fileNames []string) error {
	d, err := loadOne(fileNames)
	if err != nil {
		return err
	}
	r, err := strain.Expand(d.Height(), d.Width(), d.NbrRow, d.NbrColumn, d.Bins, d.Measurements)
	if err != nil {
		return err
	}
	nl.LogPrintf("Top left corner of ROI at y=%d x=%d\n", r.TopLeft.Y, r.TopLeft.X)
	for _, f := range []strain.Field{strain.FieldLambda, strain.FieldD, strain.FieldStrain} {
		full, compact := r.Full(f), r.Compact(f)
		min, max, ok := grid.Range(full)
		if !ok {
			nl.LogPrintf("%-6s  no finite values\n", f)
			continue
		}
		nl.LogPrintf("%-6s  min %.6g max %.6g  %d of %d pixels empty, %d of %d cells empty\n",
			f, min, max, grid.CountNaN(full), r.Height*r.Width, grid.CountNaN(compact), r.NbrRow*r.NbrColumn)
	}
	return nil
}

// Computes the configured view of a dataset and saves it
func cmdDisplay(cfg *config.Config, fileNames []string) error {
	view, err := viewOf(cfg)
	if err != nil {
		return err
	}
	d, err := loadOne(fileNames)
	if err != nil {
		return err
	}
	st, err := session.New("cli", d, session.NewBudget(cfg.Resources.MemoryFraction), view)
	if err != nil {
		return err
	}
	res := st.Display
	nl.LogPrintf("Displaying %s in %s mode with %s interpolation and %s colormap\n",
		view.Parameter, view.Mode, view.Interpolation, view.Colormap)
	nl.LogPrintf("Range [%.6g, %.6g], coefficient %.6g", res.Min, res.Max, res.Coefficient)
	if res.BlockRows > 0 {
		nl.LogPrintf(", block %dx%d at y=%d x=%d", res.BlockCols, res.BlockRows, st.Reprojection.TopLeft.Y, st.Reprojection.TopLeft.X)
	}
	if res.Clipped {
		nl.LogPrint(", clipped")
	}
	nl.LogPrintln()

	fileName := autoName(*out, fileNames[0], ".tiff")
	nl.LogPrintf("Writing TIFF to %s\n", fileName)
	if err := export.WriteTIFF16ToFile(fileName, res.Array, res.Min, res.Max); err != nil {
		return err
	}
	if *jpg != "" {
		nl.LogPrintf("Writing JPEG to %s\n", *jpg)
		if err := export.WriteMonoJPGToFile(*jpg, res.Array, res.Min, res.Max, cfg.Output.JPEGQuality); err != nil {
			return err
		}
	}
	return nil
}

// Generates a synthetic dataset
func cmdDemo() error {
	o := synth.DefaultOptions()
	o.NbrRow, o.NbrColumn, o.BinSize, o.Seed = *rows, *cols, *binSize, uint32(*seed)
	// grow the image to fit the bin grid with a margin
	if h := o.OffsetY + o.NbrRow*o.BinSize + o.OffsetY; h > o.Height {
		o.Height = h
	}
	if w := o.OffsetX + o.NbrColumn*o.BinSize + o.OffsetX; w > o.Width {
		o.Width = w
	}
	d, err := synth.Generate(o)
	if err != nil {
		return err
	}
	fileName := autoName(*out, d.Name, ".json")
	nl.LogPrintf("Writing %dx%d pixel dataset with %d bins to %s\n", d.Width(), d.Height(), len(d.Bins), fileName)
	return d.Save(fileName)
}

// Lists the available display selections and the configured defaults
func cmdOptions(cfg *config.Config) {
	nl.LogPrintf("Parameters:     %s\n", strings.Join(strain.FieldNames(), ", "))
	nl.LogPrintf("Colormaps:      %s\n", strings.Join(display.ColormapNames(), ", "))
	nl.LogPrintf("Interpolations: %s\n", strings.Join(interp.MethodNames(), ", "))
	nl.LogPrintf("Modes:          %s\n", strings.Join(display.ModeNames(), ", "))
	nl.LogPrintf("\nConfigured: parameter=%s colormap=%s interp=%s mode=%s addr=%s memFraction=%g\n",
		cfg.Display.Parameter, cfg.Display.Colormap, cfg.Display.Interpolation, cfg.Display.Mode,
		cfg.Server.Addr, cfg.Resources.MemoryFraction)
}
