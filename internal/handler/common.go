package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelara/seatsync/internal/seating"
)

// getUserID extracts the account id placed in the context by the
// identity middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return v, nil
	}
	return 0, errors.New("missing user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// engineStatus maps an engine error kind onto an HTTP status code.
func engineStatus(err error) int {
	switch seating.KindOf(err) {
	case seating.KindValidation:
		return http.StatusBadRequest
	case seating.KindNotFound:
		return http.StatusNotFound
	case seating.KindTransient:
		return http.StatusServiceUnavailable
	case seating.KindCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// engineFail writes the uniform failure envelope for an engine error:
// success flag, stable code and a human-readable message.
func engineFail(c echo.Context, err error) error {
	var typed *seating.Error
	code := string(seating.KindPermanent)
	msg := "internal error"
	if errors.As(err, &typed) {
		code = string(typed.Kind)
		msg = typed.Message
	}
	return c.JSON(engineStatus(err), map[string]any{
		"success": false,
		"code":    code,
		"message": msg,
	})
}
