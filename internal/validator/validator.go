// Package validator provides input validation and sanitization functions
// for the proxynum API and the carrier SMTP bridge.
package validator

import (
	"errors"
	"net/http"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/telecom"
)

// Validation errors
var (
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidDomain = errors.New("invalid domain format")
	ErrInvalidNumber = errors.New("invalid phone number format")
	ErrInputTooLong  = errors.New("input exceeds maximum length")
	ErrEmptyInput    = errors.New("input cannot be empty")
)

// Regex patterns for validation
var (
	// Domain regex: allows lowercase alphanumeric, hyphens, and dots
	// Must start and end with alphanumeric, labels max 63 chars
	domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

	// Phone numbers are plain digit strings
	numberRegex = regexp.MustCompile(`^[0-9]{6,15}$`)
)

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateDomain validates domain name format against DNS standards.
// Returns nil if valid, or an appropriate error.
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(strings.ToLower(domain))

	if domain == "" {
		return ErrEmptyInput
	}

	// RFC 1035 specifies max domain length of 253 characters
	if len(domain) > 253 {
		return ErrInputTooLong
	}

	if !domainRegex.MatchString(domain) {
		return ErrInvalidDomain
	}

	return nil
}

// ValidateNumber validates a phone number: digits only, 6 to 15 of them (E.164 bound).
func ValidateNumber(number string) error {
	number = strings.TrimSpace(number)

	if number == "" {
		return ErrEmptyInput
	}
	if len(number) > 15 {
		return ErrInputTooLong
	}
	if !numberRegex.MatchString(number) {
		return ErrInvalidNumber
	}
	return nil
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}

// EchoValidator plugs go-playground/validator into echo's c.Validate
type EchoValidator struct {
	validate *playground.Validate
}

// New creates an EchoValidator with the category, geocode and phonenumber tags registered
func New() *EchoValidator {
	v := playground.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("category", func(fl playground.FieldLevel) bool {
		_, ok := models.ParseCategory(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("geocode", func(fl playground.FieldLevel) bool {
		_, ok := telecom.NumberLength(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("phonenumber", func(fl playground.FieldLevel) bool {
		return ValidateNumber(fl.Field().String()) == nil
	})
	return &EchoValidator{validate: v}
}

// Validate implements echo.Validator. Failures come back as a 400 HTTPError
// naming the first offending field.
func (v *EchoValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, describe(fieldErrs[0]))
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "category":
		return field + " must be one of commerce, social, personal"
	case "geocode":
		return field + " must be one of " + strings.Join(telecom.GeoCodes(), ", ")
	case "phonenumber":
		return field + " must be a phone number"
	case "max":
		return field + " exceeds " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
