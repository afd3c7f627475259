package genai

import (
	"fmt"
	"strings"

	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/schema"
)

// EmptyInputError is returned when an input bundle has neither text nor an
// image. No request is ever issued without content.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "empty input: provide a description or an image"
}

// InputBundle is everything the request builder needs to assemble an
// analysis request.
type InputBundle struct {
	Text              string
	Image             *domain.ImageRef
	Locale            domain.Locale
	DietaryPreference string
}

// Part is one piece of generator input: either text or inline binary data.
type Part struct {
	Text   string
	Inline *domain.ImageRef
}

// Request is a provider-agnostic structured-generation request.
type Request struct {
	Parts          []Part
	ResponseSchema *schema.Definition
}

// BuildAnalysisRequest assembles the analysis request. Pure transform, no
// side effects.
func BuildAnalysisRequest(b InputBundle) (Request, error) {
	if strings.TrimSpace(b.Text) == "" && b.Image == nil {
		return Request{}, &EmptyInputError{}
	}

	var parts []Part
	if b.Image != nil {
		parts = append(parts, Part{Inline: b.Image})
	}
	parts = append(parts, Part{Text: analysisInstruction(b)})

	return Request{Parts: parts, ResponseSchema: schema.Analysis()}, nil
}

// BuildRecipeRequest assembles the recipe request. remainingCalories is the
// user's calorie budget left for the day; the generator is asked to target it.
func BuildRecipeRequest(ingredients string, locale domain.Locale, remainingCalories float64) (Request, error) {
	if strings.TrimSpace(ingredients) == "" {
		return Request{}, &EmptyInputError{}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a healthy recipe using: %s.\n", strings.TrimSpace(ingredients))
	fmt.Fprintf(&sb, "Write every textual field (name, ingredients, instructions) in %s.\n", locale.LanguageName())
	if remainingCalories > 0 {
		fmt.Fprintf(&sb, "Target roughly %.0f kcal, the calories the user has left for today.\n", remainingCalories)
	}

	return Request{
		Parts:          []Part{{Text: sb.String()}},
		ResponseSchema: schema.Recipe(),
	}, nil
}

func analysisInstruction(b InputBundle) string {
	lang := b.Locale.LanguageName()

	var sb strings.Builder
	sb.WriteString("Analyze the described or pictured food and estimate its nutrition.\n")
	fmt.Fprintf(&sb, "Write every textual field (title, summary, item names, advice) in %s. The output language is %s.\n", lang, lang)
	sb.WriteString("When no explicit weight or portion is given, infer a standard portion weight.\n")
	if pref := strings.TrimSpace(b.DietaryPreference); pref != "" {
		fmt.Fprintf(&sb, "The user's dietary preference is: %s. Let it influence the advice.\n", pref)
	}
	if text := strings.TrimSpace(b.Text); text != "" {
		fmt.Fprintf(&sb, "Description: %s\n", text)
	}
	return sb.String()
}
