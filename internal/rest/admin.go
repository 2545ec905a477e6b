package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// RankAdmin contract interface
type RankAdmin interface {
	Upsert(ctx context.Context, rank domain.Rank) (domain.Rank, error)
}

// AchievementAdmin contract interface
type AchievementAdmin interface {
	Upsert(ctx context.Context, achievement domain.Achievement) (domain.Achievement, error)
}

// ProductAdmin contract interface
type ProductAdmin interface {
	Upsert(ctx context.Context, product domain.Product) (domain.Product, error)
}

// CodeAdmin contract interface
type CodeAdmin interface {
	CreateBatch(ctx context.Context, codes []domain.RewardCode) error
}

// CacheInvalidator contract interface. Each definition family invalidates
// independently after its upsert.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type AdminHandler struct {
	ranks            RankAdmin
	achievements     AchievementAdmin
	products         ProductAdmin
	codes            CodeAdmin
	rankCache        CacheInvalidator
	achievementCache CacheInvalidator
	productCache     CacheInvalidator
	validator        *validator.Validate
	timeout          time.Duration
}

func NewAdminHandler(
	ranks RankAdmin,
	achievements AchievementAdmin,
	products ProductAdmin,
	codes CodeAdmin,
	rankCache CacheInvalidator,
	achievementCache CacheInvalidator,
	productCache CacheInvalidator,
) *AdminHandler {
	return &AdminHandler{
		ranks:            ranks,
		achievements:     achievements,
		products:         products,
		codes:            codes,
		rankCache:        rankCache,
		achievementCache: achievementCache,
		productCache:     productCache,
		validator:        validator.New(),
		timeout:          10 * time.Second,
	}
}

type RankUpsertRequest struct {
	Key             string  `json:"key" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	PointsRequired  int64   `json:"points_required" validate:"min=0"`
	PointMultiplier float64 `json:"point_multiplier" validate:"required,gt=0"`
}

type AchievementUpsertRequest struct {
	Key          string          `json:"key" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	PointsReward int64           `json:"points_reward" validate:"min=0"`
	TriggerEvent string          `json:"trigger_event" validate:"required"`
	TriggerCount int             `json:"trigger_count" validate:"required,min=1"`
	Conditions   json.RawMessage `json:"conditions,omitempty"`
	IsActive     bool            `json:"is_active"`
}

type ProductUpsertRequest struct {
	SKU             string `json:"sku" validate:"required"`
	ProductName     string `json:"product_name" validate:"required"`
	ProductCategory string `json:"product_category,omitempty"`
	PointsCost      int64  `json:"points_cost" validate:"required,min=1"`
	RequiredRankKey string `json:"required_rank_key,omitempty"`
	IsActive        bool   `json:"is_active"`
}

type CodeBatchRequest struct {
	SKU   string `json:"sku" validate:"required"`
	Count int    `json:"count" validate:"required,min=1,max=10000"`
}

func (h *AdminHandler) UpsertRank(c echo.Context) error {
	var req RankUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rank, err := h.ranks.Upsert(ctx, domain.Rank{
		Key:             req.Key,
		Name:            req.Name,
		PointsRequired:  req.PointsRequired,
		PointMultiplier: req.PointMultiplier,
	})
	if err != nil {
		logger.Error("Failed to upsert rank", err)
		return errorJSON(c, err)
	}

	if err := h.rankCache.Invalidate(ctx); err != nil {
		logger.Warn("rank cache invalidation failed", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rank))
}

func (h *AdminHandler) UpsertAchievement(c echo.Context) error {
	var req AchievementUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	achievement, err := h.achievements.Upsert(ctx, domain.Achievement{
		Key:          req.Key,
		Title:        req.Title,
		PointsReward: req.PointsReward,
		TriggerEvent: req.TriggerEvent,
		TriggerCount: req.TriggerCount,
		Conditions:   datatypes.JSON(req.Conditions),
		IsActive:     req.IsActive,
	})
	if err != nil {
		logger.Error("Failed to upsert achievement", err)
		return errorJSON(c, err)
	}

	if err := h.achievementCache.Invalidate(ctx); err != nil {
		logger.Warn("achievement cache invalidation failed", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(achievement))
}

func (h *AdminHandler) UpsertProduct(c echo.Context) error {
	var req ProductUpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.products.Upsert(ctx, domain.Product{
		SKU:             req.SKU,
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		PointsCost:      req.PointsCost,
		RequiredRankKey: req.RequiredRankKey,
		IsActive:        req.IsActive,
	})
	if err != nil {
		logger.Error("Failed to upsert product", err)
		return errorJSON(c, err)
	}

	if err := h.productCache.Invalidate(ctx); err != nil {
		logger.Warn("product cache invalidation failed", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

// GenerateCodes mints a batch of single use reward codes for one SKU.
func (h *AdminHandler) GenerateCodes(c echo.Context) error {
	var req CodeBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	codes := make([]domain.RewardCode, 0, req.Count)
	values := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		value := newCodeValue()
		codes = append(codes, domain.RewardCode{Code: value, SKU: req.SKU})
		values = append(values, value)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.codes.CreateBatch(ctx, codes); err != nil {
		logger.Error("Failed to create code batch", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]interface{}{
		"sku":   req.SKU,
		"count": req.Count,
		"codes": values,
	}))
}

func newCodeValue() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:4] + "-" + raw[4:8] + "-" + raw[8:12]
}
