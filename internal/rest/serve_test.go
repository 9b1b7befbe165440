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

package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	nl "github.com/mlnoga/strainview/internal"
	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/display"
	"github.com/mlnoga/strainview/internal/session"
	"github.com/mlnoga/strainview/internal/synth"
)

func init() {
	gin.SetMode(gin.TestMode)
	nl.SetLogOutput(io.Discard)
}

func smallDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	o := synth.DefaultOptions()
	o.Height, o.Width = 40, 48
	o.NbrRow, o.NbrColumn = 3, 4
	o.BinSize = 8
	o.OffsetY, o.OffsetX = 4, 6
	d, err := synth.Generate(o)
	require.NoError(t, err)
	return d
}

func newTestServer() *Server {
	return NewServer(session.NewStore(), session.Budget{}, display.DefaultView())
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r http.Handler, d *dataset.Dataset) sessionSummary {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/sessions", d)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestPing(t *testing.T) {
	r := newTestServer().Router()
	w := do(t, r, http.MethodGet, "/api/v1/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pong")
}

func TestOptions(t *testing.T) {
	r := newTestServer().Router()
	w := do(t, r, http.MethodGet, "/api/v1/options", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var o struct {
		Parameters     []string          `json:"parameters"`
		Interpolations []string          `json:"interpolations"`
		Defaults       map[string]string `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	require.ElementsMatch(t, []string{"d", "strain", "lambda"}, o.Parameters)
	require.Len(t, o.Interpolations, 17)
	require.Equal(t, "lambda", o.Defaults["parameter"])
	require.Equal(t, "none", o.Defaults["interpolation"])
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestServer().Router()
	d := smallDataset(t)
	s := createSession(t, r, d)

	require.NotEmpty(t, s.ID)
	require.Equal(t, 40, s.Height)
	require.Equal(t, 48, s.Width)
	require.Equal(t, 12, s.Bins)
	require.Equal(t, 4, s.TopLeft.Y)
	require.Equal(t, 6, s.TopLeft.X)

	w := do(t, r, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+s.ID+"/reprocess", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	require.Greater(t, again.Generation, s.Generation)

	w = do(t, r, http.MethodDelete, "/api/v1/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodDelete, "/api/v1/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisplay(t *testing.T) {
	r := newTestServer().Router()
	s := createSession(t, r, smallDataset(t))

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+s.ID+"/display",
		displayArgs{Parameter: "d", Interpolation: "bilinear"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		View      map[string]string `json:"view"`
		Height    int               `json:"height"`
		Width     int               `json:"width"`
		BlockRows int               `json:"blockRows"`
		BlockCols int               `json:"blockCols"`
		Clipped   bool              `json:"clipped"`
		Array     [][]*float64      `json:"array"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "d", res.View["parameter"])
	require.Equal(t, "bilinear", res.View["interpolation"])
	require.Equal(t, "viridis", res.View["colormap"])
	require.Equal(t, 24, res.BlockRows)
	require.Equal(t, 32, res.BlockCols)
	require.False(t, res.Clipped)
	require.Len(t, res.Array, 40)
	require.Len(t, res.Array[0], 48)

	// outside the block nothing is shown, inside values are lattice spacings
	require.Nil(t, res.Array[0][0])
	require.NotNil(t, res.Array[4][6])
	require.InDelta(t, 2.0268, *res.Array[10][10], 0.01)

	// a partial update keeps the other selections
	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+s.ID+"/display", displayArgs{Mode: "full"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "d", res.View["parameter"])
	require.Equal(t, "full", res.View["mode"])
	require.Equal(t, 0, res.BlockRows)

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID+"/display", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDisplayRejectsUnknownSelections(t *testing.T) {
	r := newTestServer().Router()
	s := createSession(t, r, smallDataset(t))

	for _, args := range []displayArgs{
		{Parameter: "energy"},
		{Colormap: "rainbow"},
		{Interpolation: "cubic"},
		{Mode: "compact"},
	} {
		w := do(t, r, http.MethodPost, "/api/v1/sessions/"+s.ID+"/display", args)
		require.Equal(t, http.StatusBadRequest, w.Code, "%+v", args)
	}

	// the stored view is unchanged
	w := do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID, nil)
	var got sessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, display.DefaultView(), got.View)
}

func TestCreateSessionErrors(t *testing.T) {
	srv := newTestServer()
	r := srv.Router()

	w := do(t, r, http.MethodPost, "/api/v1/sessions", "not a dataset")
	require.Equal(t, http.StatusBadRequest, w.Code)

	d := smallDataset(t)
	delete(d.Lambda, "5")
	w = do(t, r, http.MethodPost, "/api/v1/sessions", d)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "5")

	d = smallDataset(t)
	b := d.Bins["0"]
	b.X1 = 1000
	d.Bins["0"] = b
	w = do(t, r, http.MethodPost, "/api/v1/sessions", d)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	d = smallDataset(t)
	for k := range d.Lambda {
		d.Lambda[k] = 0
	}
	w = do(t, r, http.MethodPost, "/api/v1/sessions", d)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	srv.Budget = session.Budget{MaxBytes: 1024}
	w = do(t, r, http.MethodPost, "/api/v1/sessions", smallDataset(t))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	require.Empty(t, srv.Store.List())
}

func TestExports(t *testing.T) {
	r := newTestServer().Router()
	s := createSession(t, r, smallDataset(t))

	w := do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID+"/export.tiff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/tiff", w.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("II*\x00")))

	w = do(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID+"/radiograph.jpg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xff, 0xd8}))

	w = do(t, r, http.MethodGet, "/api/v1/sessions/nope/export.tiff", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
