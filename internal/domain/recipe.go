package domain

// DefaultRecipeName is used when a recipe request carries no name
const DefaultRecipeName = "Unknown Recipe"

// IngredientStatus reports whether an ingredient matched a food
type IngredientStatus string

const (
	StatusFound    IngredientStatus = "found"
	StatusNotFound IngredientStatus = "not_found"
)

// IngredientRequest is one line of a recipe
type IngredientRequest struct {
	Name   string `json:"name" yaml:"name"`
	Amount string `json:"amount" yaml:"amount"`
}

// RecipeRequest is the input of a recipe nutrition lookup
type RecipeRequest struct {
	RecipeName  string              `json:"recipe_name" yaml:"recipe_name"`
	Ingredients []IngredientRequest `json:"ingredients" yaml:"ingredients"`
}

// IngredientNutritionRecord is the lookup outcome for one ingredient.
// MatchedFood and FdcID are nil for ingredients that were not found.
type IngredientNutritionRecord struct {
	Name        string           `json:"name" yaml:"name"`
	Amount      string           `json:"amount" yaml:"amount"`
	Status      IngredientStatus `json:"status" yaml:"status"`
	MatchedFood *string          `json:"matched_food,omitempty" yaml:"matched_food,omitempty"`
	FdcID       *int             `json:"fdc_id,omitempty" yaml:"fdc_id,omitempty"`
	Nutrition   NutrientMap      `json:"nutrition" yaml:"nutrition"`
}

// NewFoundRecord builds the record of an ingredient matched to food
func NewFoundRecord(ingredient IngredientRequest, match FoodSearchResult, nutrition NutrientMap) IngredientNutritionRecord {
	if nutrition == nil {
		nutrition = NutrientMap{}
	}
	description := match.Description
	fdcID := match.FdcID
	return IngredientNutritionRecord{
		Name:        ingredient.Name,
		Amount:      ingredient.Amount,
		Status:      StatusFound,
		MatchedFood: &description,
		FdcID:       &fdcID,
		Nutrition:   nutrition,
	}
}

// NewNotFoundRecord builds the record of an ingredient without a match
func NewNotFoundRecord(ingredient IngredientRequest) IngredientNutritionRecord {
	return IngredientNutritionRecord{
		Name:      ingredient.Name,
		Amount:    ingredient.Amount,
		Status:    StatusNotFound,
		Nutrition: NutrientMap{},
	}
}

// RecipeNutritionReport holds one record per ingredient, in input order
type RecipeNutritionReport struct {
	RecipeName           string                      `json:"recipe_name" yaml:"recipe_name"`
	IngredientsNutrition []IngredientNutritionRecord `json:"ingredients_nutrition" yaml:"ingredients_nutrition"`
}

// Found counts the records that matched a food
func (r *RecipeNutritionReport) Found() int {
	n := 0
	for _, rec := range r.IngredientsNutrition {
		if rec.Status == StatusFound {
			n++
		}
	}
	return n
}
