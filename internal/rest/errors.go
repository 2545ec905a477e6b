package rest

import (
	"errors"
	"net/http"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	jsonres "github.com/Anwarisbased/laravelCR-sub000/pkg/response"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// errorJSON maps a domain error to a stable code and HTTP status. Anything
// outside the domain taxonomy comes back as a generic 500 so internals never
// leak to clients.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, jsonres.Error("INVALID_INPUT", err.Error(), nil))
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Invalid credentials", nil))
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", "You are not allowed to do that", nil))
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, jsonres.Error("NOT_FOUND", err.Error(), nil))
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, jsonres.Error("CONFLICT", err.Error(), nil))
	case errors.Is(err, domain.ErrInsufficientPoints):
		return c.JSON(http.StatusUnprocessableEntity, jsonres.Error("INSUFFICIENT_POINTS", "Not enough points for this reward", nil))
	case errors.Is(err, domain.ErrRankRequirementNotMet):
		return c.JSON(http.StatusUnprocessableEntity, jsonres.Error("RANK_REQUIREMENT_NOT_MET", "Your rank does not unlock this reward yet", nil))
	case errors.Is(err, domain.ErrCodeInvalidOrUsed):
		return c.JSON(http.StatusUnprocessableEntity, jsonres.Error("CODE_INVALID_OR_USED", "This code is invalid or has already been used", nil))
	default:
		logger.Error("unhandled error reached the rest layer", err)
		return c.JSON(http.StatusInternalServerError, jsonres.Error("INTERNAL", "Something went wrong", nil))
	}
}
