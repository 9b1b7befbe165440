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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	nl "github.com/mlnoga/strainview/internal"
	"github.com/mlnoga/strainview/internal/dataset"
	"github.com/mlnoga/strainview/internal/display"
	"github.com/mlnoga/strainview/internal/export"
	"github.com/mlnoga/strainview/internal/grid"
	"github.com/mlnoga/strainview/internal/interp"
	"github.com/mlnoga/strainview/internal/session"
	"github.com/mlnoga/strainview/internal/strain"
)

// HTTP API over a session store
type Server struct {
	Store       *session.Store
	Budget      session.Budget
	Defaults    display.View
	JPEGQuality int
}

func NewServer(store *session.Store, budget session.Budget, defaults display.View) *Server {
	return &Server{Store: store, Budget: budget, Defaults: defaults, JPEGQuality: 95}
}

// Builds the router. Request logs go to the application log
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(nl.LogWriter()), gin.Recovery())
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/options", s.getOptions)
			v1.GET("/sessions", s.getSessions)
			v1.POST("/sessions", s.postSession)
			v1.GET("/sessions/:id", s.getSession)
			v1.DELETE("/sessions/:id", s.deleteSession)
			v1.POST("/sessions/:id/reprocess", s.postReprocess)
			v1.POST("/sessions/:id/display", s.postDisplay)
			v1.GET("/sessions/:id/display", s.getDisplay)
			v1.GET("/sessions/:id/export.tiff", s.getExportTIFF)
			v1.GET("/sessions/:id/radiograph.jpg", s.getRadiographJPG)
		}
	}
	return r
}

// Listens and serves on addr until the server fails
func Serve(addr string, s *Server) error {
	nl.LogPrintf("Serving API on %s\n", addr)
	return s.Router().Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Maps errors from the processing stages to HTTP status codes
func statusFor(err error) int {
	var shape *strain.ShapeMismatchError
	var missing *strain.MissingMeasurementError
	var degenerate *display.DegenerateNormalizationError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrOverBudget):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, interp.ErrUnknownMethod), errors.Is(err, strain.ErrUnknownField),
		errors.Is(err, display.ErrUnknownColormap), errors.Is(err, display.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.As(err, &shape), errors.As(err, &missing), errors.As(err, &degenerate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abortWith(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		nl.LogPrintf("error: %s\n", err.Error())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type optionsResponse struct {
	Parameters     []string     `json:"parameters"`
	Colormaps      []string     `json:"colormaps"`
	Interpolations []string     `json:"interpolations"`
	Modes          []string     `json:"modes"`
	Defaults       display.View `json:"defaults"`
}

func (s *Server) getOptions(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		Parameters:     strain.FieldNames(),
		Colormaps:      display.ColormapNames(),
		Interpolations: interp.MethodNames(),
		Modes:          display.ModeNames(),
		Defaults:       s.Defaults,
	})
}

type sessionSummary struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Height     int            `json:"height"`
	Width      int            `json:"width"`
	NbrRow     int            `json:"nbrRow"`
	NbrColumn  int            `json:"nbrColumn"`
	BinSize    int            `json:"binSize"`
	Bins       int            `json:"bins"`
	TopLeft    strain.TopLeft `json:"topLeft"`
	View       display.View   `json:"view"`
	Generation uint64         `json:"generation"`
}

func summarize(st *session.State) sessionSummary {
	d := st.Dataset
	return sessionSummary{
		ID:         st.ID,
		Name:       d.Name,
		Height:     d.Height(),
		Width:      d.Width(),
		NbrRow:     d.NbrRow,
		NbrColumn:  d.NbrColumn,
		BinSize:    d.BinSize,
		Bins:       len(d.Bins),
		TopLeft:    st.Reprojection.TopLeft,
		View:       st.View,
		Generation: st.Generation,
	}
}

func (s *Server) postSession(c *gin.Context) {
	var d dataset.Dataset
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := session.New(s.Store.NewID(), &d, s.Budget, s.Defaults)
	if err != nil {
		abortWith(c, err)
		return
	}
	st = s.Store.Put(st)
	nl.LogPrintf("Loaded session %s '%s' with %d bins on %dx%d pixels\n", st.ID, d.Name, len(d.Bins), d.Width(), d.Height())
	c.JSON(http.StatusCreated, summarize(st))
}

func (s *Server) getSessions(c *gin.Context) {
	list := s.Store.List()
	out := make([]sessionSummary, len(list))
	for i, st := range list {
		out[i] = summarize(st)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getSession(c *gin.Context) {
	st, err := s.Store.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(st))
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.Store.Delete(c.Param("id")); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postReprocess(c *gin.Context) {
	st, err := s.Store.Update(c.Param("id"), (*session.State).Reprocess)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(st))
}

type displayArgs struct {
	Parameter     string `json:"parameter"`
	Colormap      string `json:"colormap"`
	Interpolation string `json:"interpolation"`
	Mode          string `json:"mode"`
}

type displayResponse struct {
	ID          string         `json:"id"`
	Generation  uint64         `json:"generation"`
	View        display.View   `json:"view"`
	Height      int            `json:"height"`
	Width       int            `json:"width"`
	TopLeft     strain.TopLeft `json:"topLeft"`
	Min         *float64       `json:"min"`
	Max         *float64       `json:"max"`
	Coefficient float64        `json:"coefficient"`
	BlockRows   int            `json:"blockRows"`
	BlockCols   int            `json:"blockCols"`
	Clipped     bool           `json:"clipped"`
	Array       grid.Rows      `json:"array"`
}

func finiteOrNil(v float64) *float64 {
	if v != v {
		return nil
	}
	return &v
}

func respondDisplay(c *gin.Context, st *session.State) {
	res := st.Display
	c.JSON(http.StatusOK, displayResponse{
		ID:          st.ID,
		Generation:  st.Generation,
		View:        st.View,
		Height:      st.Reprojection.Height,
		Width:       st.Reprojection.Width,
		TopLeft:     st.Reprojection.TopLeft,
		Min:         finiteOrNil(res.Min),
		Max:         finiteOrNil(res.Max),
		Coefficient: res.Coefficient,
		BlockRows:   res.BlockRows,
		BlockCols:   res.BlockCols,
		Clipped:     res.Clipped,
		Array:       grid.RowsOf(res.Array),
	})
}

func (s *Server) postDisplay(c *gin.Context) {
	var args displayArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := s.Store.Update(c.Param("id"), func(cur *session.State) (*session.State, error) {
		v, err := cur.View.With(args.Parameter, args.Colormap, args.Interpolation, args.Mode)
		if err != nil {
			return nil, err
		}
		return cur.WithView(v)
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	respondDisplay(c, st)
}

func (s *Server) getDisplay(c *gin.Context) {
	st, err := s.Store.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	respondDisplay(c, st)
}

func (s *Server) getExportTIFF(c *gin.Context) {
	st, err := s.Store.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	res := st.Display
	c.Header("Content-Type", "image/tiff")
	c.Status(http.StatusOK)
	if err := export.WriteTIFF16(c.Writer, res.Array, res.Min, res.Max); err != nil {
		nl.LogPrintf("error exporting session %s: %s\n", st.ID, err.Error())
	}
}

func (s *Server) getRadiographJPG(c *gin.Context) {
	st, err := s.Store.Get(c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if err := export.WriteMonoJPG(c.Writer, st.Dataset.Image(), 0, 1, s.JPEGQuality); err != nil {
		nl.LogPrintf("error exporting session %s: %s\n", st.ID, err.Error())
	}
}
