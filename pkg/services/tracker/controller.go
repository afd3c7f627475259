package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/report"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/store/history"
)

// Archive is the optional durable snapshot behind the in-memory history.
// load/save round-trips exactly the domain shapes and nothing more.
type Archive interface {
	SaveRecord(ctx context.Context, rec domain.AnalysisRecord) error
	DeleteRecord(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	LoadRecords(ctx context.Context) ([]domain.AnalysisRecord, error)
	SaveProfile(ctx context.Context, p domain.Profile) error
	LoadProfile(ctx context.Context) (domain.Profile, bool, error)
}

// ProfileState is the part of the profile service the tracker restores on
// startup.
type ProfileState interface {
	Restore(p domain.Profile)
}

// Controller owns history mutations. The in-memory store is authoritative;
// archive failures are logged, never surfaced, so deletion and clear stay
// total and append never fails for a well-formed record.
type Controller struct {
	history *history.Store
	archive Archive
	session *session.Manager
	now     func() time.Time
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(hist *history.Store, archive Archive, sess *session.Manager, opts ...Option) *Controller {
	c := &Controller{
		history: hist,
		archive: archive,
		session: sess,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the persisted snapshot, if any, into memory.
func (c *Controller) Init(ctx context.Context, profiles ProfileState) error {
	if c.archive == nil {
		return nil
	}

	records, err := c.archive.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	c.history.Replace(records)

	prof, ok, err := c.archive.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if ok && profiles != nil {
		profiles.Restore(prof)
	}
	return nil
}

// Append adds the record to history and mirrors it to the archive.
func (c *Controller) Append(ctx context.Context, rec domain.AnalysisRecord) {
	c.history.Append(rec)
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveRecord(ctx, rec); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("record_id", rec.ID).Msg("archive record failed")
	}
}

// Remove deletes one record by identity. Idempotent under duplicate dispatch.
func (c *Controller) Remove(ctx context.Context, id string) {
	removed := c.history.Remove(id)
	c.session.Apply(session.RecordRemoved{ID: id})
	if !removed || c.archive == nil {
		return
	}
	if err := c.archive.DeleteRecord(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("record_id", id).Msg("archive delete failed")
	}
}

// Clear empties history unconditionally. Irreversible.
func (c *Controller) Clear(ctx context.Context) {
	c.history.Clear()
	c.session.Apply(session.HistoryCleared{})
	if c.archive == nil {
		return
	}
	if err := c.archive.DeleteAll(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("archive clear failed")
	}
}

// SaveProfile mirrors the profile to the archive.
func (c *Controller) SaveProfile(ctx context.Context, p domain.Profile) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveProfile(ctx, p); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("archive profile failed")
	}
}

// TodayAggregate folds the totals of today's records, recomputed fresh on
// every call.
func (c *Controller) TodayAggregate() (domain.TotalNutrition, int) {
	today := history.SameDay(c.now())
	return c.history.AggregateFor(today), c.history.CountFor(today)
}

// Today is the current local calendar day.
func (c *Controller) Today() string {
	return c.now().Format("2006-01-02")
}

// RemainingCalories is today's calorie budget left against the goal, floored
// at zero.
func (c *Controller) RemainingCalories(goal float64) float64 {
	agg, _ := c.TodayAggregate()
	remaining := goal - agg.Calories
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Recent returns the most recent records, newest first.
func (c *Controller) Recent(limit int) []domain.AnalysisRecord {
	return c.history.TopN(limit)
}

// Record looks up a single record by id.
func (c *Controller) Record(id string) (domain.AnalysisRecord, bool) {
	for _, rec := range c.history.Snapshot() {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.AnalysisRecord{}, false
}

// Report builds the report document from the current snapshot.
func (c *Controller) Report() domain.ReportDocument {
	return report.Generate(c.history.Snapshot(), c.now())
}
