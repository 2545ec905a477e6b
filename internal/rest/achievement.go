package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/business/command"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// AchievementReader contract interface
type AchievementReader interface {
	FindAll(ctx context.Context) ([]domain.Achievement, error)
}

// ProgressReader contract interface
type ProgressReader interface {
	FindUnlockedByUser(ctx context.Context, userID uint) ([]domain.UserAchievement, error)
}

type AchievementHandler struct {
	achievements AchievementReader
	progress     ProgressReader
	timeout      time.Duration
}

func NewAchievementHandler(achievements AchievementReader, progress ProgressReader) *AchievementHandler {
	return &AchievementHandler{
		achievements: achievements,
		progress:     progress,
		timeout:      10 * time.Second,
	}
}

// List returns every achievement definition, locked or not.
func (h *AchievementHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	achievements, err := h.achievements.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to list achievements", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(achievements))
}

// Mine returns the logged in user's unlocked achievements.
func (h *AchievementHandler) Mine(c echo.Context) error {
	actor, ok := command.ActorFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	unlocked, err := h.progress.FindUnlockedByUser(ctx, actor.UserID)
	if err != nil {
		logger.Error("Failed to list unlocked achievements", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(unlocked))
}
