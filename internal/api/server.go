package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/licita-radar/internal/config"
	"github.com/david/licita-radar/internal/dashboard"
	"github.com/david/licita-radar/internal/render"
)

// Server serves the dashboard page and a read-only JSON view of the same
// snapshot. The controller is loaded before the server starts and is never
// modified afterwards, so handlers share it without locking.
type Server struct {
	Echo       *echo.Echo
	Controller *dashboard.Controller
	Renderer   *render.Renderer

	port int
}

func NewServer(cfg *config.Config, ctrl *dashboard.Controller, renderer *render.Renderer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := cfg.Server.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:4200"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Echo:       e,
		Controller: ctrl,
		Renderer:   renderer,
		port:       cfg.Server.Port,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/", s.handleDashboard)

	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/stats", s.handleGetStats)
	api.GET("/meta", s.handleGetMeta)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// viewFor applies the request's search and sort to the snapshot. Unknown
// sort keys fall back to the default sort.
func (s *Server) viewFor(c echo.Context) *dashboard.View {
	sort := dashboard.ParseSort(c.QueryParam("sort"), c.QueryParam("dir"))
	return s.Controller.Apply(c.QueryParam("q"), sort)
}

func (s *Server) handleDashboard(c echo.Context) error {
	v := s.viewFor(c)

	var buf bytes.Buffer
	if err := s.Renderer.Page(&buf, v); err != nil {
		c.Logger().Errorf("Failed to render dashboard: %v", err)
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}

	status := http.StatusOK
	if v.Err() != nil {
		status = http.StatusServiceUnavailable
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.HTMLBlob(status, buf.Bytes())
}

func (s *Server) unavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": s.Controller.Err().Error()})
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	if s.Controller.Err() != nil {
		return s.unavailable(c)
	}

	v := s.viewFor(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"opportunities": v.Rows,
		"query":         v.Query,
		"sort":          string(v.Sort.Key),
		"dir":           v.Sort.Dir.String(),
		"shown":         len(v.Rows),
		"total":         len(s.Controller.All()),
	})
}

func (s *Server) handleGetStats(c echo.Context) error {
	if s.Controller.Err() != nil {
		return s.unavailable(c)
	}

	v := s.viewFor(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary":         v.Summary,
		"line":            v.SummaryLine(),
		"last_update_iso": v.Meta().LastUpdateISO,
	})
}

func (s *Server) handleGetMeta(c echo.Context) error {
	if s.Controller.Err() != nil {
		return s.unavailable(c)
	}
	return c.JSON(http.StatusOK, s.Controller.Meta())
}

func (s *Server) Start() error {
	return s.Echo.Start(fmt.Sprintf(":%d", s.port))
}
