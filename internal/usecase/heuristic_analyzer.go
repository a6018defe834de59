package usecase

import (
	"unicode"
	"unicode/utf8"

	"github.com/labellens/backend/internal/domain"
)

// Fixed content of a degraded (non-oracle) analysis
const (
	HeuristicScore          = 50
	HeuristicGrade          = "C"
	HeuristicConfidence     = 0.0
	HeuristicCategory       = "Unknown"
	HeuristicDescription    = "Detailed analysis unavailable for this ingredient."
	HeuristicConcern        = "Could not be verified: the ingredient analysis service was unavailable."
	HeuristicWarning        = "Analysis incomplete: ingredients could not be verified by the analysis service."
	HeuristicAdvice         = "Try scanning again when you are online for a complete, personalized analysis."
	HeuristicDisclaimer     = "This is a placeholder result produced without ingredient analysis. It is not a safety rating."
	DefaultOracleDisclaimer = "This analysis is AI-generated and for informational purposes only. It is not medical advice."
)

// HeuristicAnalyzer produces a conservative placeholder assessment when the oracle is unavailable.
// It never claims an ingredient is safe.
type HeuristicAnalyzer struct {
	extractor *IngredientExtractor
}

// NewHeuristicAnalyzer creates a new heuristic analyzer
func NewHeuristicAnalyzer(extractor *IngredientExtractor) *HeuristicAnalyzer {
	if extractor == nil {
		extractor = NewIngredientExtractor()
	}
	return &HeuristicAnalyzer{extractor: extractor}
}

// Analyze builds a degraded Product from the parsed ingredient names.
// Identity fields (id, names, timestamps) are set by the caller. The profile is not interpreted.
func (a *HeuristicAnalyzer) Analyze(rawText string, _ *domain.UserProfile) *domain.Product {
	names := a.extractor.Parse(rawText)

	ingredients := make([]domain.Ingredient, 0, len(names))
	for _, name := range names {
		ingredients = append(ingredients, domain.Ingredient{
			Name:         capitalize(name),
			Category:     HeuristicCategory,
			Description:  HeuristicDescription,
			HealthRating: domain.RatingCaution,
			Concerns:     []string{HeuristicConcern},
			Benefits:     []string{},
			IsVegan:      true,
			IsNatural:    false,
		})
	}

	return &domain.Product{
		Ingredients:          ingredients,
		OverallScore:         HeuristicScore,
		LetterGrade:          HeuristicGrade,
		PersonalizedWarnings: []string{HeuristicWarning},
		PersonalizedAdvice:   []string{HeuristicAdvice},
		Confidence:           HeuristicConfidence,
		Disclaimer:           HeuristicDisclaimer,
		Degraded:             true,
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
