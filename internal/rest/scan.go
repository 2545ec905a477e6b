package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/business/claim"
	"github.com/Anwarisbased/laravelCR-sub000/business/command"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CommandDispatcher contract interface
type CommandDispatcher interface {
	Handle(ctx context.Context, cmd command.Command) (any, error)
}

// ClaimFinalizer redeems a claim token issued before the user had a session.
type ClaimFinalizer interface {
	FinalizeClaim(ctx context.Context, userID uint, token string, meta domain.EventMeta) (claim.ScanResult, error)
}

type ScanHandler struct {
	dispatcher CommandDispatcher
	finalizer  ClaimFinalizer
	validator  *validator.Validate
	timeout    time.Duration
}

func NewScanHandler(dispatcher CommandDispatcher, finalizer ClaimFinalizer) *ScanHandler {
	return &ScanHandler{
		dispatcher: dispatcher,
		finalizer:  finalizer,
		validator:  validator.New(),
		timeout:    10 * time.Second,
	}
}

type ScanRequest struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}

type ClaimTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Scan claims a reward code for the logged in user.
func (h *ScanHandler) Scan(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.ScanRequestLatency.Observe(time.Since(start).Seconds())
	}()

	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actor, ok := command.ActorFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.dispatcher.Handle(ctx, command.ProcessProductScan{
		UserID: actor.UserID,
		Code:   req.Code,
		Meta: domain.EventMeta{
			IPAddress: c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		},
	})
	if err != nil {
		logger.Error("Failed to process scan", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// UnauthenticatedClaim validates a code for a visitor without a session and
// hands back a short lived claim token instead of consuming the code.
func (h *ScanHandler) UnauthenticatedClaim(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.dispatcher.Handle(ctx, command.ProcessUnauthenticatedClaim{Code: req.Code})
	if err != nil {
		logger.Error("Failed to issue claim token", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// FinalizeClaim consumes a claim token once the visitor has registered or
// logged in, completing the scan they started anonymously.
func (h *ScanHandler) FinalizeClaim(c echo.Context) error {
	var req ClaimTokenRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actor, ok := command.ActorFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.finalizer.FinalizeClaim(ctx, actor.UserID, req.Token, domain.EventMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		logger.Error("Failed to finalize claim", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
