package response

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	Code             string `json:"code,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

// Success returns a successful response with data
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Created returns a 201 Created response
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

// Accepted returns a 202 Accepted response
func Accepted(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusAccepted, APIResponse{
		Success: true,
		Data:    data,
	})
}

// NoContent returns a 204 No Content response
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error returns an error response with the status of the error's code.
// Cooldown errors also carry the remaining wait in the body and in Retry-After.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	status := getHTTPStatus(code)

	resp := ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	}
	if code == apperrors.CodeInternalError {
		resp.Error = "internal server error"
	}
	if cdErr := apperrors.GetCooldownError(err); cdErr != nil {
		resp.RemainingSeconds = cdErr.RemainingSeconds()
		c.Response().Header().Set("Retry-After", strconv.FormatInt(resp.RemainingSeconds, 10))
	}

	return c.JSON(status, resp)
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeValidation,
	})
}

// NotFound returns a 404 Not Found response
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeNotFound,
	})
}

// Conflict returns a 409 Conflict response
func Conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeConflict,
	})
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeInternalError,
	})
}

// getHTTPStatus maps error codes to HTTP status codes
func getHTTPStatus(code string) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeCooldown:
		return http.StatusTooManyRequests
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeProvisioning:
		return http.StatusBadGateway
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
