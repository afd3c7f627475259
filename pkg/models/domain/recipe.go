package domain

// Macros holds the macro estimate for a recipe.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Recipe is a generated recipe. It is ephemeral: held only as the current
// recipe, never written to history.
type Recipe struct {
	Name         string
	Ingredients  []string
	Instructions []string
	Macros       Macros
}
