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

package dataset_test

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/strain"
	"github.com/mlnoga/strainview/internal/synth"
)

const small = `{
  "name": "small",
  "radiograph": [[0.1, 0.2, 0.3, 0.4], [0.5, null, 0.7, 0.8], [0, 0, 0, 0], [1, 1, 1, 1]],
  "nbrRow": 1, "nbrColumn": 1, "binSize": 2,
  "bins": {"0": {"x0": 0, "y0": 0, "x1": 2, "y1": 2, "rowIndex": 0, "columnIndex": 0}},
  "lambda": {"0": 5.0},
  "d": {"0": 2.5},
  "strain": {"0": {"val": 0.001, "err": 0.0001}}
}`

func TestRead(t *testing.T) {
	d, err := dataset.Read(strings.NewReader(small))
	if err != nil {
		t.Fatal(err)
	}
	if d.Height() != 4 || d.Width() != 4 {
		t.Errorf("dims=%dx%d; want 4x4", d.Height(), d.Width())
	}
	if !math.IsNaN(d.Radiograph[1][1]) {
		t.Errorf("null pixel=%f; want NaN", d.Radiograph[1][1])
	}
	if d.Lambda["0"] != 5 || d.D["0"] != 2.5 || d.Strain["0"].Val != 0.001 {
		t.Errorf("measurements=%+v", d.Measurements)
	}
	if b := d.Bins["0"]; b.Width() != 2 || b.Height() != 2 {
		t.Errorf("bin=%+v", b)
	}
}

func TestReadRejects(t *testing.T) {
	tcs := []struct {
		name, from, to string
	}{
		{"ragged radiograph", `[1, 1, 1, 1]]`, `[1, 1, 1]]`},
		{"zero bin size", `"binSize": 2`, `"binSize": 0`},
		{"bin outside image", `"x1": 2`, `"x1": 5`},
		{"missing d", `"d": {"0": 2.5}`, `"d": {}`},
		{"bin size beyond image", `"binSize": 2`, `"binSize": 4611686018427387904`},
		{"more rows than pixels", `"nbrRow": 1`, `"nbrRow": 5`},
		{"more columns than pixels", `"nbrColumn": 1`, `"nbrColumn": 5`},
	}
	for _, tc := range tcs {
		_, err := dataset.Read(strings.NewReader(strings.Replace(small, tc.from, tc.to, 1)))
		var shape *strain.ShapeMismatchError
		var missing *strain.MissingMeasurementError
		if !errors.As(err, &shape) && !errors.As(err, &missing) {
			t.Errorf("%s: err=%v", tc.name, err)
		}
	}
	if _, err := dataset.Read(strings.NewReader("{")); err == nil {
		t.Errorf("truncated JSON accepted")
	}
}

func TestSaveLoad(t *testing.T) {
	d, err := synth.Generate(synth.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	fileName := filepath.Join(t.TempDir(), "synthetic.json")
	if err := d.Save(fileName); err != nil {
		t.Fatal(err)
	}
	back, err := dataset.Load(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if back.Name != d.Name || back.Height() != d.Height() || len(back.Bins) != len(d.Bins) {
		t.Errorf("round trip lost data")
	}
	var b bytes.Buffer
	if err := back.Write(&b); err != nil || b.Len() == 0 {
		t.Errorf("Write: %v", err)
	}
}

func TestFailedFitsSurviveRoundTrip(t *testing.T) {
	failed := strings.NewReplacer(
		`"lambda": {"0": 5.0}`, `"lambda": {"0": null}`,
		`"d": {"0": 2.5}`, `"d": {"0": null}`,
		`"val": 0.001, "err": 0.0001`, `"val": null`,
	).Replace(small)
	d, err := dataset.Read(strings.NewReader(failed))
	if err != nil {
		t.Fatal(err)
	}
	check := func(stage string, d *dataset.Dataset) {
		t.Helper()
		if !math.IsNaN(d.Lambda["0"]) || !math.IsNaN(d.D["0"]) || !math.IsNaN(d.Strain["0"].Val) {
			t.Errorf("%s: lambda=%f d=%f strain=%f; want NaN", stage, d.Lambda["0"], d.D["0"], d.Strain["0"].Val)
		}
		if d.Strain["0"].Err != 0 {
			t.Errorf("%s: missing err=%f; want 0", stage, d.Strain["0"].Err)
		}
	}
	check("read", d)

	var b bytes.Buffer
	if err := d.Write(&b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(b.String(), `"lambda":{"0":null}`) || !strings.Contains(b.String(), `"val":null`) {
		t.Errorf("written=%s; want nulls", b.String())
	}
	back, err := dataset.Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	check("round trip", back)
}

func TestWriteNaNMeasurements(t *testing.T) {
	d, err := dataset.Read(strings.NewReader(small))
	if err != nil {
		t.Fatal(err)
	}
	d.D["0"] = math.NaN()
	d.Strain["0"] = strain.StrainRecord{Val: math.Inf(1), Err: math.NaN()}
	var b bytes.Buffer
	if err := d.Write(&b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := dataset.Read(&b)
	if err != nil {
		t.Fatal(err)
	}
	if back.Lambda["0"] != 5 || !math.IsNaN(back.D["0"]) {
		t.Errorf("lambda=%f d=%f; want 5, NaN", back.Lambda["0"], back.D["0"])
	}
	if s := back.Strain["0"]; !math.IsNaN(s.Val) || !math.IsNaN(s.Err) {
		t.Errorf("strain=%+v; want NaN, NaN", s)
	}
}
