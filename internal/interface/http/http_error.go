package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
	"github.com/yanqian/ai-tripplanner/internal/domain/intent"
	"github.com/yanqian/ai-tripplanner/internal/domain/session"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]int{
	trip.CodeValidation:          http.StatusBadRequest,
	trip.CodeInvalidDayNumber:    http.StatusBadRequest,
	intent.CodeInvalidCommand:    http.StatusBadRequest,
	trip.CodeUnsupportedCity:     http.StatusUnprocessableEntity,
	intent.CodeUnsupportedIntent: http.StatusUnprocessableEntity,
	trip.CodeNoActiveTrip:        http.StatusNotFound,
	trip.CodeTargetNotFound:      http.StatusNotFound,
	trip.CodeConflict:            http.StatusConflict,
	session.CodeInvalidHandle:    http.StatusUnauthorized,
	session.CodeHandleScope:      http.StatusForbidden,
	trip.CodePOIProvider:         http.StatusBadGateway,
	trip.CodeWeatherProvider:     http.StatusBadGateway,
	intent.CodeIntentClassifier:  http.StatusBadGateway,
	export.CodeExportFailed:      http.StatusBadGateway,
	intent.CodeIntentUnavailable: http.StatusServiceUnavailable,
	export.CodeExportUnavailable: http.StatusServiceUnavailable,
}

// domainError maps an AppError code onto an HTTP status. Unknown codes are 500s.
func domainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
		if code == "" {
			code = "internal_error"
		}
	}
	var appErr *apperrors.AppError
	message := errMessage(err)
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	return NewHTTPError(status, code, message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
