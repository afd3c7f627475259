package nutrition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nutri-tools/nutri/pkg/models/api"
	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/analysis"
	"github.com/nutri-tools/nutri/pkg/services/genai"
	"github.com/nutri-tools/nutri/pkg/services/profile"
	"github.com/nutri-tools/nutri/pkg/services/schema"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/services/tracker"
)

const (
	defaultHistoryLimit = 20
	litersPerGlass      = 0.25
)

// Analyzer is the pipeline surface the handler drives.
type Analyzer interface {
	Analyze(ctx context.Context, bundle genai.InputBundle) (domain.AnalysisRecord, error)
	GenerateRecipe(ctx context.Context, ingredients string, locale domain.Locale, remainingCalories float64) (domain.Recipe, error)
}

type Handler struct {
	analyzer      Analyzer
	trackerCtrl   *tracker.Controller
	profiles      *profile.Service
	sessions      *session.Manager
	defaultLocale domain.Locale
}

func NewHandler(
	analyzer Analyzer,
	trackerCtrl *tracker.Controller,
	profiles *profile.Service,
	sessions *session.Manager,
	defaultLocale domain.Locale,
) *Handler {
	return &Handler{
		analyzer:      analyzer,
		trackerCtrl:   trackerCtrl,
		profiles:      profiles,
		sessions:      sessions,
		defaultLocale: defaultLocale,
	}
}

func (h *Handler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var image *domain.ImageRef
	if req.ImageB64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageB64)
		if err != nil {
			http.Error(w, "invalid image encoding", http.StatusBadRequest)
			return
		}
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		image = &domain.ImageRef{MIME: mime, Data: data}
	}

	bundle := genai.InputBundle{
		Text:              req.Text,
		Image:             image,
		Locale:            h.locale(req.Locale),
		DietaryPreference: h.profiles.Get().DietaryPreference,
	}

	rec, err := h.analyzer.Analyze(ctx, bundle)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encode(ctx, w, toAPIRecord(rec))
}

func (h *Handler) SubmitRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	remaining := h.trackerCtrl.RemainingCalories(h.profiles.Get().DailyCalorieGoal)
	recipe, err := h.analyzer.GenerateRecipe(ctx, req.Ingredients, h.locale(req.Locale), remaining)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encode(ctx, w, toAPIRecipe(recipe))
}

func (h *Handler) CurrentAnalysis(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Current()
	if state.CurrentAnalysis == nil {
		http.Error(w, "no current analysis", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, toAPIRecord(*state.CurrentAnalysis))
}

func (h *Handler) CurrentRecipe(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Current()
	if state.CurrentRecipe == nil {
		http.Error(w, "no current recipe", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, toAPIRecipe(*state.CurrentRecipe))
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records := h.trackerCtrl.Recent(limit)
	response := make([]api.AnalysisRecord, 0, len(records))
	for _, rec := range records {
		response = append(response, toAPIRecord(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, response)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.trackerCtrl.Remove(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.trackerCtrl.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TodaySummary(w http.ResponseWriter, r *http.Request) {
	agg, count := h.trackerCtrl.TodayAggregate()
	prof := h.profiles.Get()

	progress := 0.0
	if prof.DailyCalorieGoal > 0 {
		progress = agg.Calories / prof.DailyCalorieGoal * 100
		if progress > 100 {
			progress = 100
		}
	}

	summary := api.DailySummary{
		Date: h.trackerCtrl.Today(),
		Total: api.TotalNutrition{
			Calories: agg.Calories,
			Protein:  agg.Protein,
			Carbs:    agg.Carbs,
			Fat:      agg.Fat,
			Fiber:    agg.Fiber,
			Sugar:    agg.Sugar,
		},
		Goal:            prof.DailyCalorieGoal,
		GoalProgressPct: progress,
		Records:         count,
		Water: api.WaterStatus{
			Glasses: prof.WaterGlasses,
			Liters:  float64(prof.WaterGlasses) * litersPerGlass,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, summary)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	doc := h.trackerCtrl.Report()

	response := api.Report{
		GeneratedAt: doc.GeneratedAt,
		Rows:        make([]api.ReportRow, 0, len(doc.Rows)),
		Totals: api.ReportTotals{
			Calories: doc.Totals.Calories,
			Protein:  doc.Totals.Protein,
			Carbs:    doc.Totals.Carbs,
			Fat:      doc.Totals.Fat,
		},
	}
	for _, row := range doc.Rows {
		response.Rows = append(response.Rows, api.ReportRow{
			Date:     row.Date,
			Title:    row.Title,
			Calories: row.Calories,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, response)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	encode(r.Context(), w, toAPIProfile(h.profiles.Get()))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated := h.profiles.Update(profile.Update{
		DailyCalorieGoal:  req.DailyCalorieGoal,
		DietaryPreference: req.DietaryPreference,
		HeightCm:          req.HeightCm,
		WeightKg:          req.WeightKg,
	})
	h.trackerCtrl.SaveProfile(ctx, updated)

	w.Header().Set("Content-Type", "application/json")
	encode(ctx, w, toAPIProfile(updated))
}

func (h *Handler) AdjustWater(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.WaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	glasses := h.profiles.AdjustWater(req.Delta)
	h.trackerCtrl.SaveProfile(ctx, h.profiles.Get())

	w.Header().Set("Content-Type", "application/json")
	encode(ctx, w, api.WaterStatus{
		Glasses: glasses,
		Liters:  float64(glasses) * litersPerGlass,
	})
}

func (h *Handler) locale(raw string) domain.Locale {
	if raw == "" {
		return h.defaultLocale
	}
	return domain.ParseLocale(raw)
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	var emptyErr *genai.EmptyInputError
	var genErr *analysis.GenerationFailedError
	var malformedErr *schema.MalformedResponseError
	var violationErr *schema.SchemaViolationError

	switch {
	case errors.As(err, &emptyErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, analysis.ErrInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &genErr), errors.As(err, &malformedErr), errors.As(err, &violationErr):
		http.Error(w, "analysis failed", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func encode(ctx context.Context, w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func toAPIRecord(rec domain.AnalysisRecord) api.AnalysisRecord {
	items := make([]api.NutritionItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, api.NutritionItem{
			Name:     it.Name,
			WeightG:  it.WeightG,
			Calories: it.Calories,
			Protein:  it.Protein,
			Carbs:    it.Carbs,
			Fat:      it.Fat,
		})
	}
	return api.AnalysisRecord{
		ID:      rec.ID,
		Title:   rec.Title,
		Summary: rec.Summary,
		Items:   items,
		Total: api.TotalNutrition{
			Calories: rec.Total.Calories,
			Protein:  rec.Total.Protein,
			Carbs:    rec.Total.Carbs,
			Fat:      rec.Total.Fat,
			Fiber:    rec.Total.Fiber,
			Sugar:    rec.Total.Sugar,
		},
		HealthScore: rec.HealthScore,
		Advice:      rec.Advice,
		Timestamp:   rec.Timestamp,
		HasImage:    rec.Image != nil,
	}
}

func toAPIRecipe(recipe domain.Recipe) api.Recipe {
	return api.Recipe{
		Name:         recipe.Name,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
		Macros: api.Macros{
			Calories: recipe.Macros.Calories,
			Protein:  recipe.Macros.Protein,
			Carbs:    recipe.Macros.Carbs,
			Fat:      recipe.Macros.Fat,
		},
	}
}

func toAPIProfile(p domain.Profile) api.Profile {
	out := api.Profile{
		DailyCalorieGoal:  p.DailyCalorieGoal,
		DietaryPreference: p.DietaryPreference,
		HeightCm:          p.HeightCm,
		WeightKg:          p.WeightKg,
		WaterGlasses:      p.WaterGlasses,
	}
	if bmi, ok := profile.BMI(p.HeightCm, p.WeightKg); ok {
		out.BMI = &api.BMI{Value: bmi.Value, Band: string(bmi.Band)}
	}
	return out
}
