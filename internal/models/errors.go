package models

import (
	"errors"
	"fmt"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrorCodeInvalidField     ErrorCode = "INVALID_FIELD"
	ErrorCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrorCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrorCodeItemNotFound     ErrorCode = "ITEM_NOT_FOUND"
	ErrorCodeDuplicateItem    ErrorCode = "DUPLICATE_ITEM"
	ErrorCodeVersionConflict  ErrorCode = "VERSION_CONFLICT"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError  ErrorCode = "VALIDATION_ERROR"
	ErrorCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrorCodeCacheError       ErrorCode = "CACHE_ERROR"
	ErrorCodeEventingError    ErrorCode = "EVENTING_ERROR"
	ErrorCodeClassifierError  ErrorCode = "CLASSIFIER_ERROR"
	ErrorCodeReportError      ErrorCode = "REPORT_ERROR"
	ErrorCodeNotificationFail ErrorCode = "NOTIFICATION_ERROR"
)

const (
	ProblemTypeValidationError = "validation-error"
	ProblemTypeConflict        = "conflict"
	ProblemTypeNotFound        = "not-found"
	ProblemTypeInternalError   = "internal-error"
)

// ValidationError represents validation errors with detailed field information
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Value   any    `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// SystemError represents failures of a backing component (database, cache, inference service)
type SystemError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
	Component string    `json:"component"`
}

func (e *SystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s in %s: %s (caused by: %v)", e.Code, e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s in %s: %s", e.Code, e.Component, e.Message)
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NotFoundError represents resource not found errors
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// ConflictError represents a concurrent modification or uniqueness violation
type ConflictError struct {
	Resource string `json:"resource"`
	Reason   string `json:"reason"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with %s: %s", e.Resource, e.Reason)
}

type ProblemDetails struct {
	Type     string      `json:"type"`
	Title    string      `json:"title"`
	Status   int         `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Instance string      `json:"instance,omitempty"`
	Field    string      `json:"field,omitempty"`
	Code     string      `json:"code,omitempty"`
	Errors   interface{} `json:"errors,omitempty"`
}

func NewProblemDetails(status int, title, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   getProblemType(status),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// NewValidationProblem creates a validation error problem
func NewValidationProblem(field, message string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeValidationError,
		Title:  "Validation Failed",
		Status: 400,
		Detail: message,
		Field:  field,
		Code:   string(code),
	}
}

// NewMultiValidationProblem creates a multi-field validation error problem
func NewMultiValidationProblem(violations []ValidationError) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeValidationError,
		Title:  "Validation Failed",
		Status: 400,
		Detail: "Multiple validation errors occurred",
		Errors: violations,
	}
}

// NewNotFoundProblem creates a not found error problem
func NewNotFoundProblem(resource string) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeNotFound,
		Title:  "Resource Not Found",
		Status: 404,
		Detail: resource + " not found",
		Code:   string(ErrorCodeItemNotFound),
	}
}

// NewConflictProblem creates a conflict problem
func NewConflictProblem(detail string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeConflict,
		Title:  "Conflict",
		Status: 409,
		Detail: detail,
		Code:   string(code),
	}
}

func getProblemType(status int) string {
	switch status {
	case 400:
		return ProblemTypeValidationError
	case 404:
		return ProblemTypeNotFound
	case 409:
		return ProblemTypeConflict
	default:
		return ProblemTypeInternalError
	}
}

func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

func NewSystemError(code ErrorCode, component, message string, cause error) *SystemError {
	return &SystemError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Component: component,
	}
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Reason:   reason,
	}
}

// Error type guards; they see through wrapping

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsSystemError(err error) bool {
	var target *SystemError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// GetErrorCode extracts error code from various error types
func GetErrorCode(err error) ErrorCode {
	var (
		validation *ValidationError
		system     *SystemError
		notFound   *NotFoundError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return ErrorCodeValidationError
	case errors.As(err, &system):
		return system.Code
	case errors.As(err, &notFound):
		return ErrorCodeItemNotFound
	case errors.As(err, &conflict):
		return ErrorCodeVersionConflict
	default:
		return ErrorCodeInternalError
	}
}
