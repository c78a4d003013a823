// Package http provides the HTTP API for regwatchd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/assessment"
	"github.com/regwatchhq/regwatch/internal/match"
	"github.com/regwatchhq/regwatch/internal/store"
	"github.com/regwatchhq/regwatch/internal/tasks"
	"github.com/regwatchhq/regwatch/internal/webhook"
)

// Matcher runs the circular-matching pipeline.
type Matcher interface {
	Match(ctx context.Context, companyID string) (match.Result, error)
	SuggestRegulators(ctx context.Context, companyID string) (match.Suggestion, error)
}

// Assessor generates and persists pre-assessment questionnaires.
type Assessor interface {
	Generate(ctx context.Context, regulationID string) (assessment.Assessment, error)
}

// Tasker generates compliance task breakdowns.
type Tasker interface {
	Generate(ctx context.Context, req tasks.Request) (tasks.Breakdown, error)
}

// Server provides HTTP endpoints for regwatchd.
type Server struct {
	echo       *echo.Echo
	matcher    Matcher
	assessor   Assessor
	tasker     Tasker
	webhookLog *webhook.Log
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(matcher Matcher, assessor Assessor, tasker Tasker, webhookLog *webhook.Log, metrics *HTTPMetrics, logger *zap.Logger, cfg *Config) (*Server, error) {
	if matcher == nil {
		return nil, fmt.Errorf("matcher cannot be nil")
	}
	if assessor == nil {
		return nil, fmt.Errorf("assessor cannot be nil")
	}
	if tasker == nil {
		return nil, fmt.Errorf("tasker cannot be nil")
	}
	if webhookLog == nil {
		webhookLog = webhook.NewLog()
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if metrics != nil {
		e.Use(metrics.MetricsMiddleware())
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		matcher:    matcher,
		assessor:   assessor,
		tasker:     tasker,
		webhookLog: webhookLog,
		logger:     logger,
		config:     cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/circulars/match", s.handleMatchCirculars)
	v1.POST("/regulators/suggest", s.handleSuggestRegulators)
	v1.POST("/assessment/generate", s.handleGenerateAssessment)
	v1.POST("/tasks/generate", s.handleGenerateTasks)

	// Pre-assessment webhook surface
	s.echo.POST("/webhook/preassessment", s.handleReceiveWebhook)
	s.echo.GET("/webhook/received", s.handleListWebhooks)
	s.echo.DELETE("/webhook/received", s.handleClearWebhooks)
}

// handleIndex describes the API surface.
func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, IndexResponse{
		Message: "RegWatch AI API",
		Status:  "running",
		Endpoints: map[string]string{
			"health":                "/health",
			"suggest_regulators":    "POST /api/v1/regulators/suggest",
			"match_circulars":       "POST /api/v1/circulars/match",
			"generate_assessment":   "POST /api/v1/assessment/generate",
			"generate_tasks":        "POST /api/v1/tasks/generate",
			"preassessment_webhook": "POST /webhook/preassessment",
			"view_webhooks":         "GET /webhook/received",
			"clear_webhooks":        "DELETE /webhook/received",
		},
	})
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Databases: map[string]string{
			"regwatch":  "connected",
			"ecosystem": "connected",
		},
	})
}

// handleMatchCirculars runs the two-stage matching pipeline for a company.
func (s *Server) handleMatchCirculars(c echo.Context) error {
	var req CompanyIDRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid match request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CompanyID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "company_id field is required")
	}

	result, err := s.matcher.Match(c.Request().Context(), req.CompanyID)
	if err != nil {
		return s.serviceError(c, err, "Company not found in ecosystem database")
	}

	circulars := make([]any, len(result.Circulars))
	for i, reg := range result.Circulars {
		circulars[i] = store.Sanitize(store.Document(reg))
	}

	return c.JSON(http.StatusOK, CircularMatchResponse{
		CompanyName:            result.CompanyName,
		TotalRelevantCirculars: result.TotalRelevantCirculars,
		Circulars:              circulars,
	})
}

// handleSuggestRegulators runs only the regulator-suggestion stage.
func (s *Server) handleSuggestRegulators(c echo.Context) error {
	var req CompanyIDRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid suggest request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CompanyID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "company_id field is required")
	}

	suggestion, err := s.matcher.SuggestRegulators(c.Request().Context(), req.CompanyID)
	if err != nil {
		return s.serviceError(c, err, "Company not found in ecosystem database")
	}

	codes := suggestion.SuggestedRegulators
	if codes == nil {
		codes = []string{}
	}

	return c.JSON(http.StatusOK, RegulatorSuggestionResponse{
		CompanyName:         suggestion.CompanyName,
		SuggestedRegulators: codes,
	})
}

// handleGenerateAssessment generates and persists a pre-assessment
// questionnaire for a regulation.
func (s *Server) handleGenerateAssessment(c echo.Context) error {
	var req RegulationIDRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid assessment request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RegulationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "regulation_id field is required")
	}

	result, err := s.assessor.Generate(c.Request().Context(), req.RegulationID)
	if err != nil {
		return s.serviceError(c, err, "Regulation not found")
	}

	return c.JSON(http.StatusOK, result)
}

// handleGenerateTasks generates compliance tasks for a regulation and
// forwards them to RegComply.
func (s *Server) handleGenerateTasks(c echo.Context) error {
	var req TaskGenerationRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid task request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RegulationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "regulation_id field is required")
	}

	result, err := s.tasker.Generate(c.Request().Context(), tasks.Request{
		OrganizationID: req.OrganizationID,
		Risk:           req.Risk,
		RegulationID:   req.RegulationID,
	})
	if err != nil {
		return s.serviceError(c, err, "Regulation not found")
	}

	return c.JSON(http.StatusOK, result)
}

// handleReceiveWebhook logs an incoming pre-assessment webhook.
func (s *Server) handleReceiveWebhook(c echo.Context) error {
	var payload PreassessmentWebhookPayload
	if err := c.Bind(&payload); err != nil {
		s.logger.Warn("invalid webhook payload", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry := s.webhookLog.Record(payload.OrganizationID, payload.PreassessmentID, payload.RegulationID)

	s.logger.Info("pre-assessment webhook received",
		zap.String("organization_id", entry.OrganizationID),
		zap.String("preassessment_id", entry.PreassessmentID),
		zap.String("regulation_id", entry.RegulationID),
	)

	return c.JSON(http.StatusOK, WebhookReceiptResponse{
		Status:     "success",
		Message:    "Webhook received successfully",
		ReceivedAt: entry.Timestamp,
		Payload:    payload,
	})
}

// handleListWebhooks returns all logged pre-assessment webhooks.
func (s *Server) handleListWebhooks(c echo.Context) error {
	received := s.webhookLog.All()
	return c.JSON(http.StatusOK, ReceivedWebhooksResponse{
		TotalReceived: len(received),
		Webhooks:      received,
	})
}

// handleClearWebhooks empties the webhook log.
func (s *Server) handleClearWebhooks(c echo.Context) error {
	count := s.webhookLog.Clear()
	return c.JSON(http.StatusOK, ClearWebhooksResponse{
		Status:  "success",
		Message: fmt.Sprintf("Cleared %d webhooks", count),
	})
}

// serviceError maps store.ErrNotFound to a 404 with the given message and
// everything else to a 500.
func (s *Server) serviceError(c echo.Context, err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	s.logger.Error("request failed",
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
