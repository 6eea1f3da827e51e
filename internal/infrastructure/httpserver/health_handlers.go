package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health check handler
func (s *Server) healthCheck(c echo.Context) error {
	health := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "polycache",
		"registries": s.cache.Registries(),
	}
	return c.JSON(http.StatusOK, health)
}
