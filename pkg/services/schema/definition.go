package schema

import "encoding/json"

type Kind string

const (
	KindObject Kind = "OBJECT"
	KindArray  Kind = "ARRAY"
	KindString Kind = "STRING"
	KindNumber Kind = "NUMBER"
)

// Definition describes a structured-output contract. The same definition is
// sent to the generator as a response schema and used locally to validate
// what comes back.
type Definition struct {
	Type       Kind                   `json:"type"`
	Properties map[string]*Definition `json:"properties,omitempty"`
	Items      *Definition            `json:"items,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

func (d *Definition) MarshalJSON() ([]byte, error) {
	type plain Definition
	return json.Marshal((*plain)(d))
}

func obj(props map[string]*Definition, required ...string) *Definition {
	return &Definition{Type: KindObject, Properties: props, Required: required}
}

func arr(items *Definition) *Definition {
	return &Definition{Type: KindArray, Items: items}
}

var (
	str = &Definition{Type: KindString}
	num = &Definition{Type: KindNumber}
)

// Analysis is the meal analysis contract. Bounds such as health_score being
// inside [0,100] are a data-quality concern for the caller, not enforced here.
func Analysis() *Definition {
	item := obj(map[string]*Definition{
		"name":     str,
		"weight_g": num,
		"calories": num,
		"protein":  num,
		"carbs":    num,
		"fat":      num,
	}, "name", "weight_g", "calories", "protein", "carbs", "fat")

	total := obj(map[string]*Definition{
		"calories": num,
		"protein":  num,
		"carbs":    num,
		"fat":      num,
		"fiber":    num,
		"sugar":    num,
	}, "calories", "protein", "carbs", "fat", "fiber", "sugar")

	return obj(map[string]*Definition{
		"title":        str,
		"summary":      str,
		"items":        arr(item),
		"total":        total,
		"health_score": num,
		"advice":       str,
	}, "title", "summary", "items", "total", "health_score", "advice")
}

// Recipe is the recipe contract.
func Recipe() *Definition {
	macros := obj(map[string]*Definition{
		"calories": num,
		"protein":  num,
		"carbs":    num,
		"fat":      num,
	}, "calories", "protein", "carbs", "fat")

	return obj(map[string]*Definition{
		"name":         str,
		"ingredients":  arr(str),
		"instructions": arr(str),
		"macros":       macros,
	}, "name", "ingredients", "instructions", "macros")
}
