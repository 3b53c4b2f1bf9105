// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mlaakso/agrisight-go/internal/analysis"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/crops"
	"github.com/mlaakso/agrisight-go/internal/logging"
	"github.com/mlaakso/agrisight-go/internal/observability"
)

// Analyzer runs one analysis request. Satisfied by analysis.Pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings

	analyzer        Analyzer
	knowledgeBase   *crops.KnowledgeBase
	metrics         *observability.Metrics
	classifierState func() string
	apiLogger       *slog.Logger
	apiLoggerClose  func() error
	startTime       time.Time
}

// New creates the controller and registers all routes. classifierState
// reports the inference circuit breaker state for the health endpoint;
// nil is allowed when no classifier is wired.
func New(settings *conf.Settings, analyzer Analyzer, kb *crops.KnowledgeBase, metrics *observability.Metrics, classifierState func() string) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	c := &Controller{
		Echo:            e,
		Settings:        settings,
		analyzer:        analyzer,
		knowledgeBase:   kb,
		metrics:         metrics,
		classifierState: classifierState,
		startTime:       time.Now(),
	}

	logger, closeFn, err := logging.NewFileLogger("logs/api.log", "api", slog.LevelInfo)
	if err != nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)).With("service", "api")
		closeFn = func() error { return nil }
	}
	c.apiLogger = logger
	c.apiLoggerClose = closeFn

	c.Group = e.Group("/api/v1")
	c.initRoutes()

	return c
}

// initRoutes registers all API endpoints.
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)
	c.Group.GET("/classes", c.GetClasses)
	c.Group.GET("/crops", c.GetCrops)
	c.Group.POST("/analyze", c.PostAnalyze)

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// Start runs the HTTP server until it fails or is shut down.
func (c *Controller) Start() error {
	addr := c.Settings.WebServer.Host + ":" + c.Settings.WebServer.Port
	c.apiLogger.Info("API server starting", "address", addr)
	return c.Echo.Start(addr)
}

// Shutdown stops the server gracefully and closes the API log.
func (c *Controller) Shutdown(ctx context.Context) error {
	err := c.Echo.Shutdown(ctx)
	if c.apiLoggerClose != nil {
		_ = c.apiLoggerClose()
	}
	return err
}

// ErrorResponse is the JSON error body for all API failures.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for tracking
// one error across logs and the client response.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs the error and returns the JSON error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)

	c.apiLogger.Error("API error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", resp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP())

	return ctx.JSON(code, resp)
}

// HealthCheck reports process liveness, uptime and collaborator
// readiness. The classifier breaker state is the live signal: an open
// breaker means classifications are currently failing and analyses run
// in degraded mode.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	breakerState := "unknown"
	if c.classifierState != nil {
		breakerState = c.classifierState()
	}

	status := "healthy"
	if breakerState == "open" {
		status = "degraded"
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":              status,
		"uptime_seconds":      int64(time.Since(c.startTime).Seconds()),
		"imagery_provider":    c.Settings.Imagery.Provider,
		"weather_provider":    c.Settings.Weather.Provider,
		"classifier_endpoint": c.Settings.Classifier.Endpoint,
		"classifier_breaker":  breakerState,
	})
}
