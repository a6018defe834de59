package usecase

import (
	"strings"

	"github.com/labellens/backend/internal/domain"
)

// nutritionTableThreshold is the number of distinct markers needed to call text a nutrition panel.
// A single "protein" in an ingredient list must not be enough.
const nutritionTableThreshold = 3

// nutritionMarkers are substrings typical of a nutrition-facts panel
var nutritionMarkers = []string{
	"nutrition facts",
	"nutritional information",
	"nutrition information",
	"serving size",
	"servings per",
	"amount per serving",
	"calories",
	"total fat",
	"saturated fat",
	"trans fat",
	"cholesterol",
	"sodium",
	"carbohydrate",
	"dietary fiber",
	"total sugars",
	"protein",
	"vitamin",
	"daily value",
}

// TextClassifier decides whether OCR text is a nutrition table or an ingredient list
type TextClassifier struct{}

// NewTextClassifier creates a new text classifier
func NewTextClassifier() *TextClassifier {
	return &TextClassifier{}
}

// Classify counts distinct nutrition markers (substring match) in the lower-cased text
func (c *TextClassifier) Classify(text string) domain.TextKind {
	if countNutritionMarkers(text) >= nutritionTableThreshold {
		return domain.KindNutritionTable
	}
	return domain.KindIngredientList
}

func countNutritionMarkers(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, marker := range nutritionMarkers {
		if strings.Contains(lower, marker) {
			count++
		}
	}
	return count
}
