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

package strain

import (
	"encoding/json"
	"math"
)

// JSON has no NaN, so non-finite measurements are written as null and null
// reads back as NaN, the same as the radiograph rows.

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOf(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	out := make(map[string]*float64, len(v))
	for k, x := range v {
		out[k] = nullable(x)
	}
	return json.Marshal(out)
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = nil
		return nil
	}
	out := make(Values, len(raw))
	for k, p := range raw {
		out[k] = valueOf(p)
	}
	*v = out
	return nil
}

type strainRecordJSON struct {
	Val *float64 `json:"val"`
	Err *float64 `json:"err"`
}

func (r StrainRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(strainRecordJSON{Val: nullable(r.Val), Err: nullable(r.Err)})
}

// A missing or null val reads as NaN. A missing err reads as 0, a null one
// as NaN
func (r *StrainRecord) UnmarshalJSON(data []byte) error {
	zero := 0.0
	raw := strainRecordJSON{Err: &zero}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Val, r.Err = valueOf(raw.Val), valueOf(raw.Err)
	return nil
}
