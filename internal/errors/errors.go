package errors

import (
	"errors"
	"fmt"
	"time"
)

// Domain-specific error types
var (
	// ErrValidation indicates malformed input or an unknown category / geo code
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the operation clashes with current state
	// (slot occupied, cap reached, already deleted)
	ErrConflict = errors.New("conflict")

	// ErrCooldown indicates a rate-limited operation is still blocked
	ErrCooldown = errors.New("cooldown active")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrProvisioning indicates a telecom gateway step failed or timed out
	ErrProvisioning = errors.New("provisioning failed")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeCooldown      = "COOLDOWN_ACTIVE"
	CodeNotFound      = "NOT_FOUND"
	CodeProvisioning  = "PROVISIONING_FAILED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// NewValidationError reports malformed input
func NewValidationError(format string, args ...any) *AppError {
	return NewAppError(ErrValidation, fmt.Sprintf(format, args...), CodeValidation)
}

// NewConflictError reports a state conflict
func NewConflictError(format string, args ...any) *AppError {
	return NewAppError(ErrConflict, fmt.Sprintf(format, args...), CodeConflict)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(format string, args ...any) *AppError {
	return NewAppError(ErrNotFound, fmt.Sprintf(format, args...), CodeNotFound)
}

// ProvisioningError represents a failed telecom gateway step.
// Nothing is persisted when one is returned.
type ProvisioningError struct {
	Step string
	Err  error
}

// Error implements the error interface
func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

// Unwrap exposes both the sentinel and the gateway cause
func (e *ProvisioningError) Unwrap() []error {
	return []error{ErrProvisioning, e.Err}
}

// NewProvisioningError wraps a gateway failure for the given pipeline step
func NewProvisioningError(step string, err error) *ProvisioningError {
	return &ProvisioningError{Step: step, Err: err}
}

// Cooldown operations
const (
	OperationCreate  = "create"
	OperationRecover = "recover"
)

// CooldownError carries the remaining wait so callers can show a countdown
type CooldownError struct {
	Operation string        `json:"operation"`
	Category  string        `json:"category,omitempty"`
	Remaining time.Duration `json:"-"`
}

// Error implements the error interface
func (e *CooldownError) Error() string {
	mins := int(e.Remaining / time.Minute)
	secs := int((e.Remaining % time.Minute) / time.Second)
	if e.Operation == OperationRecover {
		return fmt.Sprintf("cannot recover number yet, wait %dm %ds", mins, secs)
	}
	return fmt.Sprintf("cannot create a %s number yet, wait %dm %ds", e.Category, mins, secs)
}

// Unwrap returns the sentinel
func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}

// RemainingSeconds rounds the remaining wait up to whole seconds
func (e *CooldownError) RemainingSeconds() int64 {
	secs := int64(e.Remaining / time.Second)
	if e.Remaining%time.Second > 0 {
		secs++
	}
	return secs
}

// NewCooldownError creates a CooldownError
func NewCooldownError(operation, category string, remaining time.Duration) *CooldownError {
	return &CooldownError{
		Operation: operation,
		Category:  category,
		Remaining: remaining,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsCooldown checks if the error is a cooldown error
func IsCooldown(err error) bool {
	return errors.Is(err, ErrCooldown)
}

// IsProvisioning checks if the error is a provisioning error
func IsProvisioning(err error) bool {
	return errors.Is(err, ErrProvisioning)
}

// GetCooldownError extracts CooldownError from an error if it exists
func GetCooldownError(err error) *CooldownError {
	var cdErr *CooldownError
	if errors.As(err, &cdErr) {
		return cdErr
	}
	return nil
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsValidation(err):
		return CodeValidation
	case IsConflict(err):
		return CodeConflict
	case IsCooldown(err):
		return CodeCooldown
	case IsNotFound(err):
		return CodeNotFound
	case IsProvisioning(err):
		return CodeProvisioning
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}
