package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/service"
)

// RequestIDMiddleware adds a unique request ID to each request and its context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// RequestLoggerMiddleware writes one structured line per request
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// ErrorHandlerMiddleware renders errors attached with c.Error as problem details
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		if err.Type == gin.ErrorTypeBind {
			handleValidationError(c, err.Err)
			return
		}
		Response.StoreError(c, err.Err)
	}
}

// CORSMiddleware lets the dashboard call the API from another origin
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ResponseHelpers provides methods for REST-native responses
type ResponseHelpers struct{}

// Success sends the resource directly (no wrapper)
func (h *ResponseHelpers) Success(c *gin.Context, resource interface{}) {
	c.JSON(http.StatusOK, resource)
}

// Created sends a 201 created response with the created resource
func (h *ResponseHelpers) Created(c *gin.Context, resource interface{}) {
	c.JSON(http.StatusCreated, resource)
}

// NoContent sends a 204 no content response
func (h *ResponseHelpers) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *ResponseHelpers) ValidationError(c *gin.Context, field, message string) {
	problem := models.NewValidationProblem(field, message, models.ErrorCodeInvalidField)
	h.setRequestIDHeader(c)
	c.JSON(http.StatusBadRequest, problem)
}

func (h *ResponseHelpers) MultiValidationError(c *gin.Context, violations []models.ValidationError) {
	problem := models.NewMultiValidationProblem(violations)
	h.setRequestIDHeader(c)
	c.JSON(http.StatusBadRequest, problem)
}

// NotFound sends a 404 not found response
func (h *ResponseHelpers) NotFound(c *gin.Context, resource string) {
	problem := models.NewNotFoundProblem(resource)
	h.setRequestIDHeader(c)
	c.JSON(http.StatusNotFound, problem)
}

// Conflict sends a 409 conflict response
func (h *ResponseHelpers) Conflict(c *gin.Context, detail string, code models.ErrorCode) {
	problem := models.NewConflictProblem(detail, code)
	h.setRequestIDHeader(c)
	c.JSON(http.StatusConflict, problem)
}

// InternalError sends a 500 internal server error response
func (h *ResponseHelpers) InternalError(c *gin.Context, detail string) {
	problem := models.NewProblemDetails(http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	h.setRequestIDHeader(c)

	// Log the error for debugging but don't expose internals
	log.Error().
		Str("request_id", getRequestID(c)).
		Str("detail", detail).
		Msg("Internal server error")

	c.JSON(http.StatusInternalServerError, problem)
}

// StoreError maps a typed store error to its problem response
func (h *ResponseHelpers) StoreError(c *gin.Context, err error) {
	var (
		validation *models.ValidationError
		notFound   *models.NotFoundError
		conflict   *models.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		h.ValidationError(c, validation.Field, validation.Message)
	case errors.As(err, &notFound):
		h.NotFound(c, "Item "+notFound.ID)
	case errors.As(err, &conflict):
		code := models.ErrorCodeVersionConflict
		if strings.Contains(conflict.Reason, "already exists") {
			code = models.ErrorCodeDuplicateItem
		}
		h.Conflict(c, conflict.Reason, code)
	default:
		h.InternalError(c, err.Error())
	}
}

// Helper functions

func (h *ResponseHelpers) setRequestIDHeader(c *gin.Context) {
	if requestID := getRequestID(c); requestID != "" {
		c.Header("X-Request-ID", requestID)
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func handleValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		Response.MultiValidationError(c, violationsOf(validationErrors))
		return
	}

	Response.setRequestIDHeader(c)
	c.JSON(http.StatusBadRequest, models.NewProblemDetails(http.StatusBadRequest, "Bad Request", err.Error()))
}

func violationsOf(validationErrors validator.ValidationErrors) []models.ValidationError {
	violations := make([]models.ValidationError, 0, len(validationErrors))
	for _, validationError := range validationErrors {
		violations = append(violations, models.ValidationError{
			Field:   validationError.Field(),
			Message: getValidationMessage(validationError),
			Code:    validationError.Tag(),
		})
	}
	return violations
}

func getValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too small"
	case "max":
		return "Value is too large"
	case "url":
		return "Invalid URL format"
	default:
		return "Invalid value"
	}
}

// Response is the shared helper instance
var Response = &ResponseHelpers{}
