package domain

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// FoodSearchResult is a single hit from the USDA foods search endpoint.
// Only the fields the service reads are typed; the upstream hit is kept
// and re-emitted unchanged.
type FoodSearchResult struct {
	FdcID       int    `json:"fdcId" yaml:"fdcId"`
	Description string `json:"description" yaml:"description"`
	DataType    string `json:"dataType,omitempty" yaml:"dataType,omitempty"`

	raw json.RawMessage
}

// MarshalJSON emits the original upstream hit when one was parsed
func (r FoodSearchResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain FoodSearchResult
	return json.Marshal(plain(r))
}

// ParseFoodSearchResults decodes the hits of a search body one at a time.
// A hit that is not an object or lacks an integer fdcId is dropped and
// counted in skipped; the remaining hits keep their upstream order. Only a
// body that is not a JSON object is an error.
func ParseFoodSearchResults(body []byte) (results []FoodSearchResult, skipped int, err error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "search response")
	}

	hits, _ := field[[]json.RawMessage](fields, "foods")
	results = make([]FoodSearchResult, 0, len(hits))
	for _, hit := range hits {
		result, ok := parseFoodSearchResult(hit)
		if !ok {
			skipped++
			continue
		}
		results = append(results, result)
	}
	return results, skipped, nil
}

func parseFoodSearchResult(hit json.RawMessage) (FoodSearchResult, bool) {
	fields, err := decodeObject(hit)
	if err != nil {
		return FoodSearchResult{}, false
	}
	fdcID, ok := field[int](fields, "fdcId")
	if !ok {
		return FoodSearchResult{}, false
	}
	description, _ := field[string](fields, "description")
	dataType, _ := field[string](fields, "dataType")

	return FoodSearchResult{
		FdcID:       fdcID,
		Description: description,
		DataType:    dataType,
		raw:         append(json.RawMessage(nil), hit...),
	}, true
}

// FoodDetail is the USDA food detail record. Only the fields the service
// reads are typed; the upstream body is kept and re-emitted unchanged.
type FoodDetail struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	FoodNutrients []FoodNutrient `json:"foodNutrients"`

	raw json.RawMessage
}

// FoodNutrient is one entry of a detail record's foodNutrients list.
// Pointers distinguish absent fields from zero values.
type FoodNutrient struct {
	Nutrient *NutrientInfo `json:"nutrient,omitempty"`
	Amount   *float64      `json:"amount,omitempty"`
}

// NutrientInfo describes the nutrient an amount refers to
type NutrientInfo struct {
	ID       int     `json:"id,omitempty"`
	Number   string  `json:"number,omitempty"`
	Name     *string `json:"name,omitempty"`
	UnitName string  `json:"unitName,omitempty"`
}

// ParseFoodDetail decodes a detail body and retains it for pass-through.
// Typed fields are read one by one: a field with an unexpected type is
// treated as absent, and a foodNutrients element that is not an object is
// dropped. Only a body that is not a JSON object is an error.
func ParseFoodDetail(body []byte) (*FoodDetail, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, errors.Wrap(err, "food detail")
	}

	detail := &FoodDetail{raw: append(json.RawMessage(nil), body...)}
	detail.FdcID, _ = field[int](fields, "fdcId")
	detail.Description, _ = field[string](fields, "description")

	if entries, ok := field[[]json.RawMessage](fields, "foodNutrients"); ok {
		detail.FoodNutrients = make([]FoodNutrient, 0, len(entries))
		for _, entry := range entries {
			if nutrient, ok := parseFoodNutrient(entry); ok {
				detail.FoodNutrients = append(detail.FoodNutrients, nutrient)
			}
		}
	}
	return detail, nil
}

func parseFoodNutrient(entry json.RawMessage) (FoodNutrient, bool) {
	fields, err := decodeObject(entry)
	if err != nil {
		return FoodNutrient{}, false
	}

	var nutrient FoodNutrient
	if amount, ok := field[float64](fields, "amount"); ok {
		nutrient.Amount = &amount
	}
	if info, ok := field[map[string]json.RawMessage](fields, "nutrient"); ok {
		nutrient.Nutrient = &NutrientInfo{}
		nutrient.Nutrient.ID, _ = field[int](info, "id")
		nutrient.Nutrient.Number, _ = field[string](info, "number")
		nutrient.Nutrient.UnitName, _ = field[string](info, "unitName")
		if name, ok := field[string](info, "name"); ok {
			nutrient.Nutrient.Name = &name
		}
	}
	return nutrient, true
}

// MarshalJSON emits the original upstream body when one was parsed
func (d FoodDetail) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	type plain FoodDetail
	return json.Marshal(plain(d))
}

// decodeObject splits a JSON object into its raw members. null and
// non-object values are rejected.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	return fields, nil
}

// field decodes one member of an object. ok is false when the member is
// absent, null, or of another type.
func field[T any](fields map[string]json.RawMessage, key string) (value T, ok bool) {
	data, present := fields[key]
	if !present || string(data) == "null" {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// NutrientEntry is the amount and unit of one nutrient
type NutrientEntry struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// NutrientMap maps nutrient name to its entry
type NutrientMap map[string]NutrientEntry
