package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/genai"
	"github.com/nutri-tools/nutri/pkg/services/schema"
	"github.com/nutri-tools/nutri/pkg/services/session"
)

const validAnalysisJSON = `{
	"title": "Apple",
	"summary": "One apple",
	"items": [{"name": "apple", "weight_g": 180, "calories": 95, "protein": 0.5, "carbs": 25, "fat": 0.3}],
	"total": {"calories": 95, "protein": 0.5, "carbs": 25, "fat": 0.3, "fiber": 4.4, "sugar": 19},
	"health_score": 85,
	"advice": "Good choice."
}`

const validRecipeJSON = `{
	"name": "Baked apple",
	"ingredients": ["1 apple", "cinnamon"],
	"instructions": ["Core the apple.", "Bake 20 minutes."],
	"macros": {"calories": 110, "protein": 1, "carbs": 28, "fat": 0.5}
}`

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req genai.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type recordingHistory struct {
	mu      sync.Mutex
	records []domain.AnalysisRecord
}

func (r *recordingHistory) Append(_ context.Context, rec domain.AnalysisRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingHistory) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPipeline_Analyze_Success(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return([]byte(validAnalysisJSON), nil)

	hist := &recordingHistory{}
	sess := session.NewManager()
	stamp := time.Date(2025, 6, 13, 12, 30, 0, 0, time.UTC)
	p := NewPipeline(gen, hist, sess, WithClock(fixedClock(stamp)))

	image := &domain.ImageRef{MIME: "image/jpeg", Data: []byte{1}}
	rec, err := p.Analyze(context.Background(), genai.InputBundle{
		Text:   "one apple",
		Image:  image,
		Locale: domain.LocaleEnglish,
	})
	require.NoError(t, err)

	// Exactly one record appended, stamped by the engine.
	assert.Equal(t, 1, hist.len())
	assert.Equal(t, stamp, rec.Timestamp)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Apple", rec.Title)
	assert.Equal(t, 85, rec.HealthScore)
	assert.Same(t, image, rec.Image)

	state := sess.Current()
	require.NotNil(t, state.CurrentAnalysis)
	assert.Equal(t, rec.ID, state.CurrentAnalysis.ID)
	assert.False(t, state.InFlight)
}

func TestPipeline_Analyze_EmptyInput_NoGeneratorCall(t *testing.T) {
	gen := new(mockGenerator)
	hist := &recordingHistory{}
	p := NewPipeline(gen, hist, session.NewManager())

	_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "   "})

	var emptyErr *genai.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, 0, hist.len())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPipeline_Analyze_GenerationFailure(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	hist := &recordingHistory{}
	sess := session.NewManager()
	p := NewPipeline(gen, hist, sess)

	_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "one apple"})

	var genErr *GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 0, hist.len())
	assert.False(t, sess.Current().InFlight)
	assert.NotEmpty(t, sess.Current().LastError)
}

func TestPipeline_Analyze_SchemaViolation(t *testing.T) {
	// health_score missing
	raw := `{
		"title": "t", "summary": "s", "items": [],
		"total": {"calories": 1, "protein": 1, "carbs": 1, "fat": 1, "fiber": 1, "sugar": 1},
		"advice": "a"
	}`
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return([]byte(raw), nil)

	hist := &recordingHistory{}
	p := NewPipeline(gen, hist, session.NewManager())

	_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "one apple"})

	var violation *schema.SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "health_score", violation.Path)
	assert.Equal(t, 0, hist.len())
}

func TestPipeline_Analyze_MalformedResponse(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return([]byte("not json"), nil)

	hist := &recordingHistory{}
	p := NewPipeline(gen, hist, session.NewManager())

	_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "one apple"})

	var malformed *schema.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, hist.len())
}

type blockingGenerator struct {
	entered chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(context.Context, genai.Request) ([]byte, error) {
	close(g.entered)
	<-g.release
	return []byte(validAnalysisJSON), nil
}

func TestPipeline_SingleFlight(t *testing.T) {
	gen := &blockingGenerator{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	hist := &recordingHistory{}
	p := NewPipeline(gen, hist, session.NewManager())

	done := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "first"})
		done <- err
	}()

	<-gen.entered

	// Second submit while the first is in flight.
	_, err := p.Analyze(context.Background(), genai.InputBundle{Text: "second"})
	assert.ErrorIs(t, err, ErrInFlight)

	close(gen.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, hist.len())

	// Back to idle: a new submit is admitted.
	gen2 := new(mockGenerator)
	gen2.On("Generate", mock.Anything, mock.Anything).Return([]byte(validAnalysisJSON), nil)
	p2 := NewPipeline(gen2, hist, session.NewManager())
	_, err = p2.Analyze(context.Background(), genai.InputBundle{Text: "third"})
	require.NoError(t, err)
}

func TestPipeline_GenerateRecipe_NotAppended(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return([]byte(validRecipeJSON), nil)

	hist := &recordingHistory{}
	sess := session.NewManager()
	p := NewPipeline(gen, hist, sess)

	recipe, err := p.GenerateRecipe(context.Background(), "apple, cinnamon", domain.LocaleEnglish, 500)
	require.NoError(t, err)

	assert.Equal(t, "Baked apple", recipe.Name)
	// Recipes are ephemeral: held as the current recipe, never in history.
	assert.Equal(t, 0, hist.len())
	require.NotNil(t, sess.Current().CurrentRecipe)
	assert.Equal(t, "Baked apple", sess.Current().CurrentRecipe.Name)
}

func TestPipeline_GenerateRecipe_EmptyIngredients(t *testing.T) {
	gen := new(mockGenerator)
	p := NewPipeline(gen, &recordingHistory{}, session.NewManager())

	_, err := p.GenerateRecipe(context.Background(), "", domain.LocaleEnglish, 500)

	var emptyErr *genai.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
