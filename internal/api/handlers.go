// Package api contains the HTTP handlers for the Sentra audit service
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// welcomeMessage is the fixed body of GET /.
const welcomeMessage = "Welcome to Sentra API - AI Workflow Auditor"

// errorDetail is the error body shape used across the API.
type errorDetail struct {
	Detail string `json:"detail"`
}

func detail(msg string) errorDetail {
	return errorDetail{Detail: msg}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleRoot returns the welcome message
// (GET /)
func (s *Server) HandleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": welcomeMessage})
}

// HandleHealth returns basic health status (always returns 200 OK)
// (GET /health)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "sentra-backend",
		Version:   "1.0.0",
	})
}
