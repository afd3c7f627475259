package domain

import "time"

// NutritionItem is one identified food component within a meal.
type NutritionItem struct {
	Name     string
	WeightG  float64
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// TotalNutrition is the generator's estimate for the whole meal. It is kept
// as given and is not reconciled against the per-item macros.
type TotalNutrition struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
}

// Add returns the elementwise sum of two totals.
func (t TotalNutrition) Add(other TotalNutrition) TotalNutrition {
	return TotalNutrition{
		Calories: t.Calories + other.Calories,
		Protein:  t.Protein + other.Protein,
		Carbs:    t.Carbs + other.Carbs,
		Fat:      t.Fat + other.Fat,
		Fiber:    t.Fiber + other.Fiber,
		Sugar:    t.Sugar + other.Sugar,
	}
}

// ImageRef is the opaque image payload attached to a record. Pixel content is
// never inspected.
type ImageRef struct {
	MIME string
	Data []byte
}

// AnalysisRecord is the canonical unit of history. It is immutable after
// creation; Timestamp is stamped by the engine, never by the generator.
type AnalysisRecord struct {
	ID          string
	Title       string
	Summary     string
	Items       []NutritionItem
	Total       TotalNutrition
	HealthScore int
	Advice      string
	Timestamp   time.Time
	Image       *ImageRef
}
