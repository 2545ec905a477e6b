package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/business/command"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// ActionLogReader contract interface
type ActionLogReader interface {
	FindByUser(ctx context.Context, userID uint, limit, offset int) ([]domain.ActionLog, error)
}

// OrderReader contract interface
type OrderReader interface {
	FindByUser(ctx context.Context, userID uint) ([]domain.Order, error)
}

type HistoryHandler struct {
	actionLogs ActionLogReader
	orders     OrderReader
	timeout    time.Duration
}

func NewHistoryHandler(actionLogs ActionLogReader, orders OrderReader) *HistoryHandler {
	return &HistoryHandler{
		actionLogs: actionLogs,
		orders:     orders,
		timeout:    10 * time.Second,
	}
}

// Actions returns the logged in user's activity feed, newest first.
func (h *HistoryHandler) Actions(c echo.Context) error {
	actor, ok := command.ActorFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "not authenticated"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	entries, err := h.actionLogs.FindByUser(ctx, actor.UserID, limit, offset)
	if err != nil {
		logger.Error("Failed to list action history", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entries))
}

// Orders returns the logged in user's redemption orders, newest first.
func (h *HistoryHandler) Orders(c echo.Context) error {
	actor, ok := command.ActorFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.FindByUser(ctx, actor.UserID)
	if err != nil {
		logger.Error("Failed to list redemption orders", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}
