package domain

const DefaultDailyCalorieGoal = 2000

// Profile is the small mutable user state consumed by the request builder and
// the aggregate views. Anthropometrics are user-entered and not validated for
// plausibility.
type Profile struct {
	DailyCalorieGoal  float64
	DietaryPreference string
	HeightCm          float64
	WeightKg          float64
	WaterGlasses      int
}

type BMIBand string

const (
	BMIUnderweight BMIBand = "underweight"
	BMINormal      BMIBand = "normal"
	BMIOverweight  BMIBand = "overweight"
	BMIObese       BMIBand = "obese"
)

// BMIResult is recomputed on demand, never stored independent of its inputs.
type BMIResult struct {
	Value float64
	Band  BMIBand
}
