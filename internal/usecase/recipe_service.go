package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/domain"
	"github.com/labelpal/backend/internal/infrastructure/usda"
	"go.uber.org/zap"
)

// RecipeServiceConfig holds configuration for the recipe service
type RecipeServiceConfig struct {
	PageSize int
}

// RecipeService turns ingredient lists into nutrition reports
type RecipeService struct {
	foods    domain.FoodLookup
	pageSize int
	logger   *zap.Logger
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(foods domain.FoodLookup, config RecipeServiceConfig, logger *zap.Logger) *RecipeService {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = usda.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecipeService{
		foods:    foods,
		pageSize: pageSize,
		logger:   logger.Named("recipe"),
	}
}

// ProcessRecipe looks every ingredient up in order and returns one record
// per ingredient. Lookup failures become not_found records; only a nil
// request is an error.
func (s *RecipeService) ProcessRecipe(ctx context.Context, request *domain.RecipeRequest) (*domain.RecipeNutritionReport, error) {
	if request == nil {
		return nil, errors.Wrap(domain.ErrInvalidRequest, "recipe request is required")
	}

	recipeName := request.RecipeName
	if recipeName == "" {
		recipeName = domain.DefaultRecipeName
	}

	report := &domain.RecipeNutritionReport{
		RecipeName:           recipeName,
		IngredientsNutrition: make([]domain.IngredientNutritionRecord, 0, len(request.Ingredients)),
	}

	for _, ingredient := range request.Ingredients {
		record := s.lookupIngredient(ctx, ingredient)
		ingredientsTotal.WithLabelValues(string(record.Status)).Inc()
		report.IngredientsNutrition = append(report.IngredientsNutrition, record)
	}

	s.logger.Info("recipe processed",
		zap.String("recipe", recipeName),
		zap.Int("ingredients", len(report.IngredientsNutrition)),
		zap.Int("found", report.Found()),
	)

	return report, nil
}

// lookupIngredient takes the first search hit as the match
func (s *RecipeService) lookupIngredient(ctx context.Context, ingredient domain.IngredientRequest) domain.IngredientNutritionRecord {
	if strings.TrimSpace(ingredient.Name) == "" {
		s.logger.Debug("skipping ingredient without name", zap.String("amount", ingredient.Amount))
		return domain.NewNotFoundRecord(ingredient)
	}

	results := s.foods.SearchFood(ctx, ingredient.Name, s.pageSize)
	if len(results) == 0 {
		s.logger.Debug("no match for ingredient", zap.String("ingredient", ingredient.Name))
		return domain.NewNotFoundRecord(ingredient)
	}

	match := results[0]
	detail := s.foods.GetFoodDetails(ctx, match.FdcID)

	return domain.NewFoundRecord(ingredient, match, usda.ExtractNutrients(detail))
}

// LookupSingleFood returns the detail record of one food and its nutrient map
func (s *RecipeService) LookupSingleFood(ctx context.Context, fdcID int) (*domain.FoodDetail, domain.NutrientMap, error) {
	if fdcID <= 0 {
		return nil, nil, errors.Wrapf(domain.ErrInvalidRequest, "invalid FDC ID %d", fdcID)
	}

	detail := s.foods.GetFoodDetails(ctx, fdcID)
	if detail == nil {
		return nil, nil, errors.Wrapf(domain.ErrFoodNotFound, "fdcId %d", fdcID)
	}

	return detail, usda.ExtractNutrients(detail), nil
}

// SearchFoodsByName searches foods by name. A blank query is rejected
// before any remote call.
func (s *RecipeService) SearchFoodsByName(ctx context.Context, query string) ([]domain.FoodSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.Wrap(domain.ErrInvalidRequest, "query is required")
	}

	return s.foods.SearchFood(ctx, query, s.pageSize), nil
}
