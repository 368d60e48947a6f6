package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sentra/backend/internal/services"
	"sentra/backend/pkg/models"
)

// Server holds the dependencies for the API server.
type Server struct {
	Service *services.AuditService
}

// NewServer creates a new Server.
func NewServer(service *services.AuditService) *Server {
	return &Server{Service: service}
}

// Register mounts the audit routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.HandleRoot)
	e.GET("/health", s.HandleHealth)
	e.POST("/analyze", s.HandleAnalyze)
	e.POST("/fix-step", s.HandleFixStep)
}

// HandleAnalyze assesses every step of a workflow
// (POST /analyze)
func (s *Server) HandleAnalyze(c echo.Context) error {
	var req models.WorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("Invalid request body: "+err.Error()))
	}

	results, err := s.Service.AnalyzeWorkflow(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrNoSteps) {
			return c.JSON(http.StatusBadRequest, detail(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, detail("Error analyzing workflow: "+err.Error()))
	}

	return c.JSON(http.StatusOK, results)
}

// HandleFixStep rewrites a single step to lower its risk
// (POST /fix-step)
func (s *Server) HandleFixStep(c echo.Context) error {
	var req models.FixStepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("Invalid request body: "+err.Error()))
	}

	result, err := s.Service.FixStep(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrBlankStep) {
			return c.JSON(http.StatusBadRequest, detail(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, detail("Error fixing workflow step: "+err.Error()))
	}

	return c.JSON(http.StatusOK, result)
}
