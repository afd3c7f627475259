package api

import "time"

// AnalyzeRequest is the submit-analysis payload. Image bytes travel base64
// encoded with an explicit MIME type.
type AnalyzeRequest struct {
	Text      string `json:"text"`
	Locale    string `json:"locale,omitempty"`
	ImageB64  string `json:"image_b64,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
}

type NutritionItem struct {
	Name     string  `json:"name"`
	WeightG  float64 `json:"weight_g"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type TotalNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
}

type AnalysisRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Items       []NutritionItem `json:"items"`
	Total       TotalNutrition  `json:"total"`
	HealthScore int             `json:"health_score"`
	Advice      string          `json:"advice"`
	Timestamp   time.Time       `json:"timestamp"`
	HasImage    bool            `json:"has_image"`
}
