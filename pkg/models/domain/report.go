package domain

import "time"

// ReportRow is one line of the nutrition report, one per history record,
// in insertion order.
type ReportRow struct {
	Date     time.Time
	Title    string
	Calories float64
}

// ReportTotals are grand totals across the entire snapshot, not just today.
type ReportTotals struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// ReportDocument is the presentational document model produced from a
// history snapshot.
type ReportDocument struct {
	GeneratedAt time.Time
	Rows        []ReportRow
	Totals      ReportTotals
}
