package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotFoundRecord_JSON(t *testing.T) {
	record := NewNotFoundRecord(IngredientRequest{Name: "bread", Amount: "1 slice"})

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	assert.Equal(t, `{"name":"bread","amount":"1 slice","status":"not_found","nutrition":{}}`, string(encoded))
}

func TestNewFoundRecord(t *testing.T) {
	match := FoodSearchResult{FdcID: 111, Description: "Bread, white"}

	t.Run("copies match fields", func(t *testing.T) {
		record := NewFoundRecord(IngredientRequest{Name: "bread", Amount: "1 slice"}, match, NutrientMap{"Energy": {Value: 80, Unit: "kcal"}})

		encoded, err := json.Marshal(record)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"bread","amount":"1 slice","status":"found","matched_food":"Bread, white","fdc_id":111,"nutrition":{"Energy":{"value":80,"unit":"kcal"}}}`, string(encoded))
	})

	t.Run("nil nutrition encodes as empty object", func(t *testing.T) {
		record := NewFoundRecord(IngredientRequest{Name: "bread"}, match, nil)

		encoded, err := json.Marshal(record.Nutrition)
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(encoded))
	})

	t.Run("does not alias the match", func(t *testing.T) {
		m := match
		record := NewFoundRecord(IngredientRequest{Name: "bread"}, m, nil)
		m.Description = "changed"

		assert.Equal(t, "Bread, white", *record.MatchedFood)
	})
}

func TestRecipeNutritionReport_Found(t *testing.T) {
	report := RecipeNutritionReport{
		IngredientsNutrition: []IngredientNutritionRecord{
			NewNotFoundRecord(IngredientRequest{Name: "a"}),
			NewFoundRecord(IngredientRequest{Name: "b"}, FoodSearchResult{FdcID: 1}, nil),
			NewFoundRecord(IngredientRequest{Name: "c"}, FoodSearchResult{FdcID: 2}, nil),
		},
	}

	assert.Equal(t, 2, report.Found())
}
