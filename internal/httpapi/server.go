// Package httpapi exposes the engine's control plane: health and
// Prometheus endpoints, a bearer-token-guarded admin surface, and a
// server-sent-events stream of instance lifecycle notifications. Grounded
// on the teacher's Echo-based HTTP layer (middleware stack, handler
// style), trimmed to what a single dataflow-engine process needs.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	otelecho "go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Server wraps an Echo instance exposing the control plane.
type Server struct {
	echo *echo.Echo
	hub  *Hub
}

// NewServer builds the control-plane HTTP server. jwtSecret guards every
// route except /healthz and /metrics.
func NewServer(hub *Hub, jwtSecret []byte) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(otelecho.Middleware("mdfd"))
	e.Use(JWT(AuthConfig{
		Secret:    jwtSecret,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	s := &Server{echo: e, hub: hub}

	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/v1/events", s.handleEvents)

	return s
}

// Start serves on addr, blocking until the server stops or errors.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents streams instance lifecycle notifications as
// server-sent events, grounded on the teacher's streaming handler (the
// same "set headers, write, flush per event" shape, here fed by Hub
// instead of a run's event log).
func (s *Server) handleEvents(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := resp.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
				return err
			}
			resp.Flush()
		}
	}
}
