package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/labelpal/backend/internal/domain"
	"go.uber.org/zap"
)

const serviceName = "nutrition-label-pal"

// RecipeUsecase is the food and recipe lookup surface the handlers call
type RecipeUsecase interface {
	ProcessRecipe(ctx context.Context, request *domain.RecipeRequest) (*domain.RecipeNutritionReport, error)
	LookupSingleFood(ctx context.Context, fdcID int) (*domain.FoodDetail, domain.NutrientMap, error)
	SearchFoodsByName(ctx context.Context, query string) ([]domain.FoodSearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recipes RecipeUsecase
	texts   domain.TextRepository
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. Nil dependencies make the
// matching endpoints answer 503.
func NewHandler(recipes RecipeUsecase, texts domain.TextRepository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		recipes: recipes,
		texts:   texts,
		logger:  logger.Named("http"),
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type saveRequest struct {
	Text string `json:"text"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// SearchFood handles food search requests
func (h *Handler) SearchFood(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "food search")
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter is required"})
		return
	}

	results, err := h.recipes.SearchFoodsByName(c.Request.Context(), req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetFood returns the raw detail record of one food and its nutrient map
func (h *Handler) GetFood(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "food lookup")
		return
	}

	fdcID, err := strconv.Atoi(c.Param("fdcId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid FDC ID"})
		return
	}

	detail, nutrients, err := h.recipes.LookupSingleFood(c.Request.Context(), fdcID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"food_data": detail,
		"nutrients": nutrients,
	})
}

// ProcessRecipe builds the nutrition report of a recipe
func (h *Handler) ProcessRecipe(c *gin.Context) {
	if h.recipes == nil {
		notConfigured(c, "recipe processing")
		return
	}

	var req domain.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe request: " + err.Error()})
		return
	}

	report, err := h.recipes.ProcessRecipe(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// SaveText stores submitted text in a timestamped file
func (h *Handler) SaveText(c *gin.Context) {
	if h.texts == nil {
		notConfigured(c, "text saving")
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	filename, err := h.texts.Save(req.Text)
	if err != nil {
		h.logger.Error("failed to save text", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to save file: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Text saved successfully as " + filename,
		"filename": filename,
	})
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFoodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func notConfigured(c *gin.Context, feature string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": feature + " is not configured"})
}
