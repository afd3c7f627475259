package api

import "time"

type ReportRow struct {
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Calories float64   `json:"calories"`
}

type ReportTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Rows        []ReportRow  `json:"rows"`
	Totals      ReportTotals `json:"totals"`
}

// DailySummary is the home view: today's aggregate against the goal plus the
// water counter.
type DailySummary struct {
	Date            string         `json:"date"`
	Total           TotalNutrition `json:"total"`
	Goal            float64        `json:"goal"`
	GoalProgressPct float64        `json:"goal_progress_pct"`
	Records         int            `json:"records"`
	Water           WaterStatus    `json:"water"`
}
