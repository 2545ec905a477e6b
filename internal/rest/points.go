package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/business/command"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ProductCatalog contract interface
type ProductCatalog interface {
	FindAllActive(ctx context.Context) ([]domain.Product, error)
}

type PointsHandler struct {
	dispatcher CommandDispatcher
	catalog    ProductCatalog
	validator  *validator.Validate
	timeout    time.Duration
}

func NewPointsHandler(dispatcher CommandDispatcher, catalog ProductCatalog) *PointsHandler {
	return &PointsHandler{
		dispatcher: dispatcher,
		catalog:    catalog,
		validator:  validator.New(),
		timeout:    10 * time.Second,
	}
}

type GrantPointsRequest struct {
	UserID         uint    `json:"user_id" validate:"required"`
	BasePoints     int64   `json:"base_points" validate:"min=0"`
	Description    string  `json:"description" validate:"required"`
	TempMultiplier float64 `json:"temp_multiplier,omitempty"`
}

type RedeemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// Grant is the admin escape hatch for manual point adjustments.
func (h *PointsHandler) Grant(c echo.Context) error {
	var req GrantPointsRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.dispatcher.Handle(ctx, command.GrantPoints{
		UserID:         req.UserID,
		BasePoints:     req.BasePoints,
		Description:    req.Description,
		TempMultiplier: req.TempMultiplier,
	})
	if err != nil {
		logger.Error("Failed to grant points", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// Redeem spends the logged in user's points on a catalog reward.
func (h *PointsHandler) Redeem(c echo.Context) error {
	var req RedeemRequest
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

	result, err := h.dispatcher.Handle(ctx, command.RedeemReward{
		UserID:    actor.UserID,
		ProductID: req.ProductID,
	})
	if err != nil {
		logger.Error("Failed to redeem reward", err)
		return errorJSON(c, err)
	}

	metrics.RedemptionOrdersTotal.Inc()
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}

// Catalog lists the active rewards a user can spend points on.
func (h *PointsHandler) Catalog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.FindAllActive(ctx)
	if err != nil {
		logger.Error("Failed to list reward catalog", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}
