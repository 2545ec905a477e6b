package middleware

import (
	"net/http"

	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	jsonres "github.com/Anwarisbased/laravelCR-sub000/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo fallback for errors that escape handlers, echo's
// own 404/405 included. Handler-level domain errors are mapped before they
// get here; anything arriving is either routing noise or a bug.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if ok {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}

		if err := c.JSON(he.Code, jsonres.Error(codeForStatus(he.Code), message, nil)); err != nil {
			logger.Error("failed to write error response", err)
		}
		return
	}

	logger.Error("unhandled error escaped a handler", "error", err, "path", c.Path())
	if err := c.JSON(http.StatusInternalServerError, jsonres.Error("INTERNAL", "Something went wrong", nil)); err != nil {
		logger.Error("failed to write error response", err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "INTERNAL"
	}
}
