package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/profile"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/store/history"
)

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) SaveRecord(ctx context.Context, rec domain.AnalysisRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockArchive) DeleteRecord(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockArchive) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockArchive) LoadRecords(ctx context.Context) ([]domain.AnalysisRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalysisRecord), args.Error(1)
}

func (m *mockArchive) SaveProfile(ctx context.Context, p domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockArchive) LoadProfile(ctx context.Context) (domain.Profile, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Profile), args.Bool(1), args.Error(2)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mealAt(id string, ts time.Time, calories float64) domain.AnalysisRecord {
	return domain.AnalysisRecord{
		ID:        id,
		Title:     "meal " + id,
		Timestamp: ts,
		Total:     domain.TotalNutrition{Calories: calories},
	}
}

func TestController_Init(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	saved := []domain.AnalysisRecord{mealAt("a", now, 400)}

	arch := new(mockArchive)
	arch.On("LoadRecords", mock.Anything).Return(saved, nil)
	arch.On("LoadProfile", mock.Anything).Return(domain.Profile{DailyCalorieGoal: 1800, WaterGlasses: 2}, true, nil)

	hist := history.NewStore()
	profiles := profile.NewService()
	c := NewController(hist, arch, session.NewManager(), WithClock(fixedClock(now)))

	require.NoError(t, c.Init(context.Background(), profiles))

	assert.Equal(t, 1, hist.Len())
	assert.InDelta(t, 1800, profiles.Get().DailyCalorieGoal, 1e-9)
	assert.Equal(t, 2, profiles.Get().WaterGlasses)
}

func TestController_Init_LoadError(t *testing.T) {
	arch := new(mockArchive)
	arch.On("LoadRecords", mock.Anything).Return(nil, errors.New("disk gone"))

	c := NewController(history.NewStore(), arch, session.NewManager())
	err := c.Init(context.Background(), profile.NewService())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load history")
}

func TestController_Append_ArchiveFailureNotSurfaced(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	arch := new(mockArchive)
	arch.On("SaveRecord", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	hist := history.NewStore()
	c := NewController(hist, arch, session.NewManager(), WithClock(fixedClock(now)))

	// Append has no error to return; the memory store still gains the record.
	c.Append(context.Background(), mealAt("a", now, 400))

	assert.Equal(t, 1, hist.Len())
	arch.AssertCalled(t, "SaveRecord", mock.Anything, mock.Anything)
}

func TestController_Remove(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	arch := new(mockArchive)
	arch.On("SaveRecord", mock.Anything, mock.Anything).Return(nil)
	arch.On("DeleteRecord", mock.Anything, "a").Return(nil)

	hist := history.NewStore()
	sess := session.NewManager()
	c := NewController(hist, arch, sess, WithClock(fixedClock(now)))

	rec := mealAt("a", now, 400)
	c.Append(context.Background(), rec)
	sess.Apply(session.AnalysisSucceeded{Record: rec})

	c.Remove(context.Background(), "a")
	assert.Equal(t, 0, hist.Len())
	assert.Nil(t, sess.Current().CurrentAnalysis)
	arch.AssertNumberOfCalls(t, "DeleteRecord", 1)

	// Duplicate dispatch: no second archive delete.
	c.Remove(context.Background(), "a")
	arch.AssertNumberOfCalls(t, "DeleteRecord", 1)
}

func TestController_Clear(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	arch := new(mockArchive)
	arch.On("SaveRecord", mock.Anything, mock.Anything).Return(nil)
	arch.On("DeleteAll", mock.Anything).Return(nil)

	hist := history.NewStore()
	c := NewController(hist, arch, session.NewManager(), WithClock(fixedClock(now)))
	c.Append(context.Background(), mealAt("a", now, 400))
	c.Append(context.Background(), mealAt("b", now, 600))

	c.Clear(context.Background())

	assert.Equal(t, 0, hist.Len())
	arch.AssertCalled(t, "DeleteAll", mock.Anything)
}

func TestController_TodayAggregate(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	hist := history.NewStore()
	c := NewController(hist, nil, session.NewManager(), WithClock(fixedClock(now)))

	hist.Append(mealAt("today1", now.Add(-3*time.Hour), 400))
	hist.Append(mealAt("today2", now.Add(-1*time.Hour), 600))
	hist.Append(mealAt("yesterday", now.Add(-25*time.Hour), 900))

	agg, count := c.TodayAggregate()
	assert.InDelta(t, 1000, agg.Calories, 1e-9)
	assert.Equal(t, 2, count)
}

func TestController_RemainingCalories(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	hist := history.NewStore()
	c := NewController(hist, nil, session.NewManager(), WithClock(fixedClock(now)))

	hist.Append(mealAt("a", now, 1500))

	assert.InDelta(t, 500, c.RemainingCalories(2000), 1e-9)
	// Overshoot floors at zero.
	assert.InDelta(t, 0, c.RemainingCalories(1200), 1e-9)
}

func TestController_NilArchive(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	hist := history.NewStore()
	c := NewController(hist, nil, session.NewManager(), WithClock(fixedClock(now)))

	require.NoError(t, c.Init(context.Background(), profile.NewService()))
	c.Append(context.Background(), mealAt("a", now, 400))
	c.Remove(context.Background(), "a")
	c.Clear(context.Background())
	c.SaveProfile(context.Background(), domain.Profile{})
}

func TestController_RecordLookup(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	hist := history.NewStore()
	c := NewController(hist, nil, session.NewManager(), WithClock(fixedClock(now)))

	hist.Append(mealAt("a", now, 400))

	got, ok := c.Record("a")
	require.True(t, ok)
	assert.Equal(t, "meal a", got.Title)

	_, ok = c.Record("missing")
	assert.False(t, ok)
}

func TestController_Report(t *testing.T) {
	now := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	hist := history.NewStore()
	c := NewController(hist, nil, session.NewManager(), WithClock(fixedClock(now)))

	hist.Append(mealAt("a", now.Add(-48*time.Hour), 500))
	hist.Append(mealAt("b", now, 700))

	doc := c.Report()
	assert.Equal(t, now, doc.GeneratedAt)
	require.Len(t, doc.Rows, 2)
	assert.InDelta(t, 1200, doc.Totals.Calories, 1e-9)
}
