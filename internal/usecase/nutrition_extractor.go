package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/labellens/backend/internal/domain"
)

// Nutrient line shapes, tried in order. Only the first match per line is used.
var (
	nutrientNamePart   = `^([A-Za-z][A-Za-z0-9\s,.'%/\-]*?)`
	nutrientAmountPart = `\s+(\d+(?:\.\d+)?\s*(?:mcg|µg|mg|kcal|kj|iu|g)?)`

	// "Total Fat 8g (10%)"
	nutrientWithParenPct = regexp.MustCompile(`(?i)` + nutrientNamePart + nutrientAmountPart + `\s*\(\s*(\d+(?:\.\d+)?)\s*%\s*(?:dv)?\s*\)`)
	// "Sodium 170mg 8%"
	nutrientWithPct = regexp.MustCompile(`(?i)` + nutrientNamePart + nutrientAmountPart + `\s+(\d+(?:\.\d+)?)\s*%`)
	// "Protein 3g"
	nutrientPlain = regexp.MustCompile(`(?i)` + nutrientNamePart + nutrientAmountPart + `\b`)

	nutrientPatterns = []*regexp.Regexp{nutrientWithParenPct, nutrientWithPct, nutrientPlain}

	firstIntegerPattern = regexp.MustCompile(`\d+`)
	servingSizePrefix   = regexp.MustCompile(`(?i)^.*?serving(?:\s+size|:)\s*:?\s*`)
)

// nutritionAnalysisInstruction closes the formatted block so the oracle treats nutrients as components
const nutritionAnalysisInstruction = "Treat each nutrient listed above as an analyzable component of this product and rate its health impact per serving."

// NutritionExtractor parses nutrition-facts panels out of OCR text
type NutritionExtractor struct{}

// NewNutritionExtractor creates a new nutrition extractor
func NewNutritionExtractor() *NutritionExtractor {
	return &NutritionExtractor{}
}

// Extract parses serving size, calories and nutrient rows line by line.
// Lines matching none of the known shapes are dropped.
func (e *NutritionExtractor) Extract(text string) *domain.NutritionFacts {
	facts := &domain.NutritionFacts{Nutrients: []domain.Nutrient{}}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if strings.Contains(lower, "serving size") || strings.Contains(lower, "serving:") {
			facts.ServingSize = strings.TrimSpace(servingSizePrefix.ReplaceAllString(line, ""))
			continue
		}

		if strings.Contains(lower, "calories") && !strings.Contains(lower, "from") {
			if m := firstIntegerPattern.FindString(line); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					facts.Calories = &n
				}
			}
			continue
		}

		if nutrient, ok := parseNutrientLine(line); ok {
			facts.Nutrients = append(facts.Nutrients, nutrient)
		}
	}

	return facts
}

// parseNutrientLine applies the nutrient shapes in order and returns the first match
func parseNutrientLine(line string) (domain.Nutrient, bool) {
	for _, pattern := range nutrientPatterns {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, "amount per") || strings.Contains(lowerName, "% daily value") {
			return domain.Nutrient{}, false
		}

		nutrient := domain.Nutrient{
			Name:   name,
			Amount: strings.Join(strings.Fields(m[2]), ""),
		}
		if len(m) > 3 && m[3] != "" {
			nutrient.DailyValuePercent = m[3] + "%"
		}
		return nutrient, true
	}
	return domain.Nutrient{}, false
}

// FormatForAnalysis renders facts as an ingredient-shaped text block for the oracle
func (e *NutritionExtractor) FormatForAnalysis(facts *domain.NutritionFacts) string {
	var b strings.Builder
	b.WriteString("Nutrition Facts:\n")

	if facts != nil {
		if facts.ServingSize != "" {
			fmt.Fprintf(&b, "Serving Size: %s\n", facts.ServingSize)
		}
		if facts.Calories != nil {
			fmt.Fprintf(&b, "Calories: %d per serving\n", *facts.Calories)
		}
		for _, n := range facts.Nutrients {
			if n.DailyValuePercent != "" {
				fmt.Fprintf(&b, "%s: %s (%s of daily value)\n", n.Name, n.Amount, n.DailyValuePercent)
			} else {
				fmt.Fprintf(&b, "%s: %s\n", n.Name, n.Amount)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(nutritionAnalysisInstruction)
	return b.String()
}
