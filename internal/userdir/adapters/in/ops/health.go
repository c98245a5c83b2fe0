package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Dependency: внешняя зависимость для readiness. Некритичная зависимость
// отражается в ответе, но не делает сервис неготовым.
type Dependency struct {
	Name     string
	Check    func(ctx context.Context) error
	Critical bool
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// liveness: процесс жив
func liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func readiness(deps []Dependency) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		statuses := make(map[string]dependencyStatus, len(deps))
		healthy := true

		for _, d := range deps {
			if err := d.Check(ctx); err != nil {
				statuses[d.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
				if d.Critical {
					healthy = false
				}
				continue
			}
			statuses[d.Name] = dependencyStatus{Status: "ok"}
		}

		status := "ok"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		return c.JSON(httpStatus, readinessResponse{
			Status:       status,
			Dependencies: statuses,
		})
	}
}
