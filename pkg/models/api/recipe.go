package api

type RecipeRequest struct {
	Ingredients string `json:"ingredients"`
	Locale      string `json:"locale,omitempty"`
}

type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type Recipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Macros       Macros   `json:"macros"`
}
