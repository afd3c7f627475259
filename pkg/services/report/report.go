package report

import (
	"time"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// Generate turns a history snapshot into the report document: one row per
// record in insertion order plus grand totals over the whole snapshot.
// Deterministic for a given snapshot, no mutation, no I/O.
func Generate(snapshot []domain.AnalysisRecord, generatedAt time.Time) domain.ReportDocument {
	doc := domain.ReportDocument{
		GeneratedAt: generatedAt,
		Rows:        make([]domain.ReportRow, 0, len(snapshot)),
	}

	for _, rec := range snapshot {
		doc.Rows = append(doc.Rows, domain.ReportRow{
			Date:     rec.Timestamp,
			Title:    rec.Title,
			Calories: rec.Total.Calories,
		})
		doc.Totals.Calories += rec.Total.Calories
		doc.Totals.Protein += rec.Total.Protein
		doc.Totals.Carbs += rec.Total.Carbs
		doc.Totals.Fat += rec.Total.Fat
	}
	return doc
}
