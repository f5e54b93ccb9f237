package usda

import (
	"github.com/labelpal/backend/internal/domain"
)

// UnknownNutrientName keys entries whose nutrient has no name
const UnknownNutrientName = "Unknown"

// ExtractNutrients flattens a detail record into a nutrient map keyed by
// nutrient name. A missing name maps to UnknownNutrientName, a missing unit
// to "" and a missing amount to 0. When the record repeats a nutrient name
// the last entry wins.
func ExtractNutrients(detail *domain.FoodDetail) domain.NutrientMap {
	nutrients := domain.NutrientMap{}
	if detail == nil {
		return nutrients
	}

	for _, foodNutrient := range detail.FoodNutrients {
		name := UnknownNutrientName
		unit := ""
		if foodNutrient.Nutrient != nil {
			if foodNutrient.Nutrient.Name != nil {
				name = *foodNutrient.Nutrient.Name
			}
			unit = foodNutrient.Nutrient.UnitName
		}

		value := 0.0
		if foodNutrient.Amount != nil {
			value = *foodNutrient.Amount
		}

		nutrients[name] = domain.NutrientEntry{Value: value, Unit: unit}
	}

	return nutrients
}
