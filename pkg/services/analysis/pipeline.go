package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/genai"
	"github.com/nutri-tools/nutri/pkg/services/schema"
	"github.com/nutri-tools/nutri/pkg/services/session"
)

// History receives the canonical record as the final, atomic step of a
// successful run.
type History interface {
	Append(ctx context.Context, rec domain.AnalysisRecord)
}

type flightState int

const (
	stateIdle flightState = iota
	stateInFlight
)

// Pipeline turns an input bundle into a newly appended record, or a reported
// failure. The guard at its entry point admits one request at a time:
// submit moves Idle -> InFlight, succeed/fail moves back to Idle.
type Pipeline struct {
	gen     genai.Generator
	history History
	session *session.Manager
	now     func() time.Time

	mu    sync.Mutex
	state flightState
}

type Option func(*Pipeline)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(gen genai.Generator, history History, sess *session.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:     gen,
		history: history,
		session: sess,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateInFlight {
		return ErrInFlight
	}
	p.state = stateInFlight
	return nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	p.state = stateIdle
	p.mu.Unlock()
}

// Analyze runs the full pipeline: build request, generate, validate, stamp
// and append. There are no yield points between validation success and the
// append, so concurrent invocations can never interleave writes.
func (p *Pipeline) Analyze(ctx context.Context, bundle genai.InputBundle) (domain.AnalysisRecord, error) {
	logger := zerolog.Ctx(ctx)

	// Reject empty input before taking the flight slot; it never counts as a
	// generic failure.
	req, err := genai.BuildAnalysisRequest(bundle)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}

	if err := p.begin(); err != nil {
		return domain.AnalysisRecord{}, err
	}
	defer p.end()

	p.session.Apply(session.AnalysisStarted{})

	raw, err := p.gen.Generate(ctx, req)
	if err != nil {
		genErr := &GenerationFailedError{Err: err}
		p.session.Apply(session.AnalysisFailed{Reason: genErr.Error()})
		logger.Error().Err(err).Msg("generation call failed")
		return domain.AnalysisRecord{}, genErr
	}

	payload, err := schema.ValidateAnalysis(raw)
	if err != nil {
		// The raw response is discarded, never cached or retried.
		p.session.Apply(session.AnalysisFailed{Reason: err.Error()})
		logger.Error().Err(err).Msg("response failed validation")
		return domain.AnalysisRecord{}, err
	}

	rec := domain.AnalysisRecord{
		ID:          uuid.NewString(),
		Title:       payload.Title,
		Summary:     payload.Summary,
		Items:       payload.Items,
		Total:       payload.Total,
		HealthScore: payload.HealthScore,
		Advice:      payload.Advice,
		Timestamp:   p.now(),
		Image:       bundle.Image,
	}

	p.history.Append(ctx, rec)
	p.session.Apply(session.AnalysisSucceeded{Record: rec})

	logger.Info().
		Str("record_id", rec.ID).
		Str("title", rec.Title).
		Float64("calories", rec.Total.Calories).
		Msg("analysis recorded")

	return rec, nil
}

// GenerateRecipe runs the simpler recipe path: same build, generate and
// validate steps, but the result is held only as the current recipe and never
// written to history.
func (p *Pipeline) GenerateRecipe(ctx context.Context, ingredients string, locale domain.Locale, remainingCalories float64) (domain.Recipe, error) {
	logger := zerolog.Ctx(ctx)

	req, err := genai.BuildRecipeRequest(ingredients, locale, remainingCalories)
	if err != nil {
		return domain.Recipe{}, err
	}

	if err := p.begin(); err != nil {
		return domain.Recipe{}, err
	}
	defer p.end()

	p.session.Apply(session.AnalysisStarted{})

	raw, err := p.gen.Generate(ctx, req)
	if err != nil {
		genErr := &GenerationFailedError{Err: err}
		p.session.Apply(session.AnalysisFailed{Reason: genErr.Error()})
		logger.Error().Err(err).Msg("recipe generation call failed")
		return domain.Recipe{}, genErr
	}

	recipe, err := schema.ValidateRecipe(raw)
	if err != nil {
		p.session.Apply(session.AnalysisFailed{Reason: err.Error()})
		logger.Error().Err(err).Msg("recipe response failed validation")
		return domain.Recipe{}, err
	}

	p.session.Apply(session.RecipeSucceeded{Recipe: recipe})
	logger.Info().Str("recipe", recipe.Name).Msg("recipe generated")

	return recipe, nil
}
