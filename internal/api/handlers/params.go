package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
)

var errInvalidBody = errors.New("invalid request body")

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// bindAndValidate binds the request body into req and runs the echo validator.
// The returned error carries a message safe to show to clients.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	if err := c.Validate(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return fmt.Errorf("%v", httpErr.Message)
		}
		return err
	}
	return nil
}

// categoryQuery parses the optional ?category= filter. An empty value means all categories.
func categoryQuery(c echo.Context) (models.Category, error) {
	raw := c.QueryParam("category")
	if raw == "" {
		return "", nil
	}
	category, ok := models.ParseCategory(raw)
	if !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return category, nil
}
