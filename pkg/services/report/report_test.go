package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

func TestGenerate(t *testing.T) {
	base := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	snapshot := []domain.AnalysisRecord{
		{
			Title:     "Oatmeal",
			Timestamp: base,
			Total:     domain.TotalNutrition{Calories: 500, Protein: 12, Carbs: 80, Fat: 9},
		},
		{
			Title:     "Chicken salad",
			Timestamp: base.Add(24 * time.Hour),
			Total:     domain.TotalNutrition{Calories: 700, Protein: 45, Carbs: 20, Fat: 30},
		},
		{
			Title:     "Yogurt",
			Timestamp: base.Add(26 * time.Hour),
			Total:     domain.TotalNutrition{Calories: 300, Protein: 15, Carbs: 30, Fat: 8},
		},
	}
	generatedAt := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)

	doc := Generate(snapshot, generatedAt)

	assert.Equal(t, generatedAt, doc.GeneratedAt)
	require.Len(t, doc.Rows, 3)

	// Rows follow the snapshot's insertion order.
	assert.Equal(t, "Oatmeal", doc.Rows[0].Title)
	assert.Equal(t, "Chicken salad", doc.Rows[1].Title)
	assert.Equal(t, "Yogurt", doc.Rows[2].Title)
	assert.Equal(t, base, doc.Rows[0].Date)
	assert.InDelta(t, 700, doc.Rows[1].Calories, 1e-9)

	assert.InDelta(t, 1500, doc.Totals.Calories, 1e-9)
	assert.InDelta(t, 72, doc.Totals.Protein, 1e-9)
	assert.InDelta(t, 130, doc.Totals.Carbs, 1e-9)
	assert.InDelta(t, 47, doc.Totals.Fat, 1e-9)
}

func TestGenerate_EmptySnapshot(t *testing.T) {
	doc := Generate(nil, time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC))

	assert.Empty(t, doc.Rows)
	assert.Equal(t, domain.ReportTotals{}, doc.Totals)
}

func TestGenerate_Deterministic(t *testing.T) {
	snapshot := []domain.AnalysisRecord{
		{Title: "a", Total: domain.TotalNutrition{Calories: 100}},
		{Title: "b", Total: domain.TotalNutrition{Calories: 200}},
	}
	at := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, Generate(snapshot, at), Generate(snapshot, at))
}
