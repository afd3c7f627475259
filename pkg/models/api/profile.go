package api

// ProfileUpdate carries the update-profile fields. Nil means "leave as is".
type ProfileUpdate struct {
	DailyCalorieGoal  *float64 `json:"daily_calorie_goal,omitempty"`
	DietaryPreference *string  `json:"dietary_preference,omitempty"`
	HeightCm          *float64 `json:"height_cm,omitempty"`
	WeightKg          *float64 `json:"weight_kg,omitempty"`
}

type BMI struct {
	Value float64 `json:"value"`
	Band  string  `json:"band"`
}

type Profile struct {
	DailyCalorieGoal  float64 `json:"daily_calorie_goal"`
	DietaryPreference string  `json:"dietary_preference"`
	HeightCm          float64 `json:"height_cm"`
	WeightKg          float64 `json:"weight_kg"`
	WaterGlasses      int     `json:"water_glasses"`
	BMI               *BMI    `json:"bmi,omitempty"`
}

type WaterRequest struct {
	Delta int `json:"delta"`
}

type WaterStatus struct {
	Glasses int     `json:"glasses"`
	Liters  float64 `json:"liters"`
}
