package ops

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server отдает служебный HTTP: /health, /health/ready, /metrics
type Server struct {
	addr string
	echo *echo.Echo
	log  *logger.Logger
}

func NewServer(port int, deps []Dependency, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/health", liveness)
	e.GET("/health/ready", readiness(deps))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{
		addr: fmt.Sprintf(":%d", port),
		echo: e,
		log:  log,
	}
}

// Handler: для тестов
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run слушает до отмены ctx, затем останавливается за 5 секунд
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(logger.Entry{
			Action:  "ops_server_starting",
			Message: fmt.Sprintf("listening on %s", s.addr),
		})
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.log.Error(logger.Entry{
			Action:  "ops_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return err
	}
	s.log.Info(logger.Entry{Action: "ops_server_stopped", Message: "ops server stopped gracefully"})
	return nil
}
