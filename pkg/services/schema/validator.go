package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// AnalysisPayload is a validated analysis response before the engine stamps
// identity and timestamp onto it.
type AnalysisPayload struct {
	Title       string
	Summary     string
	Items       []domain.NutritionItem
	Total       domain.TotalNutrition
	HealthScore int
	Advice      string
}

// ValidateAnalysis checks raw against the analysis contract and decodes it.
// No semantic correction happens here: out-of-range scores and totals that do
// not match the item sums pass through untouched.
func ValidateAnalysis(raw []byte) (AnalysisPayload, error) {
	if err := validate(raw, Analysis()); err != nil {
		return AnalysisPayload{}, err
	}

	var wire struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Items   []struct {
			Name     string  `json:"name"`
			WeightG  float64 `json:"weight_g"`
			Calories float64 `json:"calories"`
			Protein  float64 `json:"protein"`
			Carbs    float64 `json:"carbs"`
			Fat      float64 `json:"fat"`
		} `json:"items"`
		Total struct {
			Calories float64 `json:"calories"`
			Protein  float64 `json:"protein"`
			Carbs    float64 `json:"carbs"`
			Fat      float64 `json:"fat"`
			Fiber    float64 `json:"fiber"`
			Sugar    float64 `json:"sugar"`
		} `json:"total"`
		HealthScore float64 `json:"health_score"`
		Advice      string  `json:"advice"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return AnalysisPayload{}, &MalformedResponseError{Err: err}
	}

	payload := AnalysisPayload{
		Title:       wire.Title,
		Summary:     wire.Summary,
		Items:       make([]domain.NutritionItem, 0, len(wire.Items)),
		HealthScore: int(math.Round(wire.HealthScore)),
		Advice:      wire.Advice,
		Total: domain.TotalNutrition{
			Calories: wire.Total.Calories,
			Protein:  wire.Total.Protein,
			Carbs:    wire.Total.Carbs,
			Fat:      wire.Total.Fat,
			Fiber:    wire.Total.Fiber,
			Sugar:    wire.Total.Sugar,
		},
	}
	for _, it := range wire.Items {
		payload.Items = append(payload.Items, domain.NutritionItem{
			Name:     it.Name,
			WeightG:  it.WeightG,
			Calories: it.Calories,
			Protein:  it.Protein,
			Carbs:    it.Carbs,
			Fat:      it.Fat,
		})
	}
	return payload, nil
}

// ValidateRecipe checks raw against the recipe contract and decodes it.
func ValidateRecipe(raw []byte) (domain.Recipe, error) {
	if err := validate(raw, Recipe()); err != nil {
		return domain.Recipe{}, err
	}

	var wire struct {
		Name         string   `json:"name"`
		Ingredients  []string `json:"ingredients"`
		Instructions []string `json:"instructions"`
		Macros       struct {
			Calories float64 `json:"calories"`
			Protein  float64 `json:"protein"`
			Carbs    float64 `json:"carbs"`
			Fat      float64 `json:"fat"`
		} `json:"macros"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Recipe{}, &MalformedResponseError{Err: err}
	}

	return domain.Recipe{
		Name:         wire.Name,
		Ingredients:  wire.Ingredients,
		Instructions: wire.Instructions,
		Macros: domain.Macros{
			Calories: wire.Macros.Calories,
			Protein:  wire.Macros.Protein,
			Carbs:    wire.Macros.Carbs,
			Fat:      wire.Macros.Fat,
		},
	}, nil
}

func validate(raw []byte, def *Definition) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return &MalformedResponseError{Err: err}
	}
	return validateValue(doc, def, "$")
}

func validateValue(v interface{}, def *Definition, path string) error {
	switch def.Type {
	case KindObject:
		m, ok := v.(map[string]interface{})
		if !ok {
			return &SchemaViolationError{Path: path, Reason: fmt.Sprintf("expected object, got %s", typeName(v))}
		}
		for _, field := range def.Required {
			fv, present := m[field]
			if !present || fv == nil {
				return &SchemaViolationError{Path: joinPath(path, field), Reason: "required field missing"}
			}
		}
		for field, fdef := range def.Properties {
			fv, present := m[field]
			if !present || fv == nil {
				continue
			}
			if err := validateValue(fv, fdef, joinPath(path, field)); err != nil {
				return err
			}
		}
		return nil
	case KindArray:
		items, ok := v.([]interface{})
		if !ok {
			return &SchemaViolationError{Path: path, Reason: fmt.Sprintf("expected array, got %s", typeName(v))}
		}
		for i, item := range items {
			if err := validateValue(item, def.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case KindString:
		if _, ok := v.(string); !ok {
			return &SchemaViolationError{Path: path, Reason: fmt.Sprintf("expected string, got %s", typeName(v))}
		}
		return nil
	case KindNumber:
		if _, ok := v.(json.Number); !ok {
			return &SchemaViolationError{Path: path, Reason: fmt.Sprintf("expected number, got %s", typeName(v))}
		}
		return nil
	default:
		return &SchemaViolationError{Path: path, Reason: fmt.Sprintf("unknown schema kind %q", def.Type)}
	}
}

func joinPath(base, field string) string {
	if base == "$" {
		return field
	}
	return base + "." + field
}

func typeName(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
