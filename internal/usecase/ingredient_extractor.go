package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxCleanupPasses       = 4
	maxIngredientTokens    = 50
	minIngredientTokenLen  = 2
	maxIngredientTokenLen  = 100
	minIngredientLineLen   = 3
	maxGarbageCharFraction = 0.30
)

// ingredientSectionMarkers open an ingredient list, in several languages
var ingredientSectionMarkers = []string{
	"ingredients:", "ingredient list:", "ingredients list:", "contains:", "made with:", "composition:",
	// French
	"ingrédients:", "ingrédients :", "ingredients :", "composition :",
	// Spanish
	"ingredientes:", "lista de ingredientes:",
	// German
	"zutaten:", "zusammensetzung:",
}

// ingredientSectionTerminators close an ingredient list when they appear after its start
var ingredientSectionTerminators = []string{
	"contains:", "allergens:", "allergen information", "allergy advice", "may contain",
	"nutrition facts", "nutritional information", "distributed by", "manufactured by",
	"manufactured for", "best before", "best by", "keep refrigerated",
}

var (
	ingredientMarkerPattern     = buildPhrasePattern(ingredientSectionMarkers)
	ingredientTerminatorPattern = buildPhrasePattern(ingredientSectionTerminators)

	// Heuristic starts used when no section marker is present
	ingredientHeuristicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:water|sugar|salt|flour|milk|oil|butter|eggs?|wheat|corn|rice|soy|cocoa|cream|yeast|vinegar|honey|glycerin|aqua)\b\s*[,;(]`),
		regexp.MustCompile(`(?i)\b[a-z]+\s+(?:acid|extract|powder|syrup|starch|protein)\b`),
		regexp.MustCompile(`(?i)\b(?:natural|artificial)\s+[a-z]+`),
	}

	pureQuantityLinePattern = regexp.MustCompile(`(?i)^[\s\d.,/%]*\d[\s\d.,/%]*(?:mg|mcg|g|kg|ml|l|oz|fl\s*oz|lb|kcal|kj|iu|%)?[\s.,%]*$`)
	caloriesLinePattern     = regexp.MustCompile(`(?i)\b\d+\s*calories\b`)
	fractionCupLinePattern  = regexp.MustCompile(`(?i)\d+\s*/\s*\d+\s*cups?\b`)

	leadingNumberPattern     = regexp.MustCompile(`^(?:\d+(?:[.,]\d+)?\s+)+`)
	percentTokenPattern      = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*%`)
	emptyParenPattern        = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	pipeArtifactPattern      = regexp.MustCompile(`[|\\]+`)
	repeatedSeparatorPattern = regexp.MustCompile(`([,;])(?:\s*[,;])+`)
	separatorSpacingPattern  = regexp.MustCompile(`\s*([,;])\s*`)
	leadingSeparatorPattern  = regexp.MustCompile(`^[\s,;.:]+`)
	trailingSeparatorPattern = regexp.MustCompile(`[\s,;.:]+$`)
	ingredientTokenSplitter  = regexp.MustCompile(`[,;•·●▪◦\n]+`)
	pureNumberTokenPattern   = regexp.MustCompile(`^[\d\s.,%]+$`)
)

// ingredientStopPhrases mark lines that are boilerplate rather than ingredients
var ingredientStopPhrases = []string{
	// nutrition-table vocabulary
	"nutrition facts", "nutritional information", "serving size", "servings per", "amount per serving",
	"daily value", "total fat", "saturated fat", "trans fat", "cholesterol", "total carbohydrate",
	"dietary fiber", "total sugars", "added sugars",
	// allergen and warning boilerplate
	"allergen", "allergy advice", "may contain", "produced in a facility", "processed in a facility",
	"manufactured in a facility", "same equipment", "warning:", "caution:", "keep out of reach",
	// storage, dates, lots, manufacturer metadata
	"keep refrigerated", "refrigerate after opening", "store in a cool", "best before", "best by",
	"use by", "exp:", "lot:", "lot no", "batch no", "manufactured by", "distributed by", "packed by",
	"net wt", "net weight", "www.", "http", "customer service",
}

// IngredientExtractor locates and cleans the ingredient list inside noisy OCR text
type IngredientExtractor struct{}

// NewIngredientExtractor creates a new ingredient extractor
func NewIngredientExtractor() *IngredientExtractor {
	return &IngredientExtractor{}
}

// Extract returns the cleaned, comma-delimited ingredient text.
// An empty result means extraction failed; callers must not treat it as "no ingredients".
// The result is a fixed point: Extract(Extract(x)) == Extract(x).
func (e *IngredientExtractor) Extract(text string) string {
	current := extractPass(text)
	for i := 0; i < maxCleanupPasses; i++ {
		next := extractPass(current)
		if next == current {
			return current
		}
		current = next
	}
	return ""
}

// extractPass is one locate, filter and clean round over the text
func extractPass(text string) string {
	candidate := locateIngredientSection(text)
	lines := filterIngredientLines(candidate)
	cleaned := cleanIngredientText(strings.Join(lines, " "))
	cleaned = cleanIngredientText(dropBoilerplateTokens(cleaned))
	if utf8.RuneCountInString(cleaned) < minIngredientLineLen {
		return ""
	}
	return cleaned
}

// Parse splits the cleaned text into at most 50 lower-cased ingredient names, preserving order
func (e *IngredientExtractor) Parse(text string) []string {
	cleaned := e.Extract(text)
	if cleaned == "" {
		return []string{}
	}

	names := make([]string, 0, 16)
	for _, token := range ingredientTokenSplitter.Split(cleaned, -1) {
		name := strings.ToLower(strings.TrimSpace(token))
		name = trimUnbalancedParens(name)
		if !isPlausibleIngredientToken(name) {
			continue
		}
		names = append(names, name)
		if len(names) == maxIngredientTokens {
			break
		}
	}
	return names
}

// locateIngredientSection returns the text after the earliest section marker, or from the
// line holding the earliest heuristic match, or the whole text. It is cut at any terminator
// and later section markers become plain separators.
func locateIngredientSection(text string) string {
	candidate := text
	if loc := ingredientMarkerPattern.FindStringIndex(text); loc != nil {
		candidate = text[loc[1]:]
	} else if start := earliestHeuristicStart(text); start >= 0 {
		candidate = text[lineStart(text, start):]
	}

	if loc := ingredientTerminatorPattern.FindStringIndex(candidate); loc != nil && loc[0] > 0 {
		candidate = candidate[:loc[0]]
	}
	return ingredientMarkerPattern.ReplaceAllString(candidate, ", ")
}

func earliestHeuristicStart(text string) int {
	earliest := -1
	for _, pattern := range ingredientHeuristicPatterns {
		if loc := pattern.FindStringIndex(text); loc != nil && (earliest < 0 || loc[0] < earliest) {
			earliest = loc[0]
		}
	}
	return earliest
}

func lineStart(text string, pos int) int {
	return strings.LastIndexByte(text[:pos], '\n') + 1
}

// filterIngredientLines drops OCR lines that cannot be part of an ingredient list
func filterIngredientLines(text string) []string {
	kept := make([]string, 0)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < minIngredientLineLen {
			continue
		}
		if pureQuantityLinePattern.MatchString(line) ||
			caloriesLinePattern.MatchString(line) ||
			fractionCupLinePattern.MatchString(line) {
			continue
		}
		if containsStopPhrase(line) || isGarbageLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func containsStopPhrase(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range ingredientStopPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isGarbageLine reports whether more than 30% of the runes are neither word characters nor spaces.
// Runs of whitespace count once, as they will after cleanup.
func isGarbageLine(line string) bool {
	total, garbage := 0, 0
	for _, r := range strings.Join(strings.Fields(line), " ") {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && r != '_' {
			garbage++
		}
	}
	return total > 0 && float64(garbage)/float64(total) > maxGarbageCharFraction
}

// dropBoilerplateTokens removes comma or semicolon separated tokens that only became
// boilerplate once lines were joined, e.g. "total" and "fat free milk" from two OCR lines
func dropBoilerplateTokens(text string) string {
	var b strings.Builder
	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != ',' && text[i] != ';' {
			continue
		}
		token := text[start:i]
		if !isBoilerplateToken(token) {
			b.WriteString(token)
			if i < len(text) {
				b.WriteByte(text[i])
			}
		}
		start = i + 1
	}
	return b.String()
}

func isBoilerplateToken(token string) bool {
	return containsStopPhrase(token) ||
		caloriesLinePattern.MatchString(token) ||
		fractionCupLinePattern.MatchString(token)
}

// cleanIngredientText applies the fixed cleanup sequence
func cleanIngredientText(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	s = pipeArtifactPattern.ReplaceAllString(s, " ")
	s = percentTokenPattern.ReplaceAllString(s, "")
	s = emptyParenPattern.ReplaceAllString(s, "")
	s = repeatedSeparatorPattern.ReplaceAllString(s, "$1")
	s = separatorSpacingPattern.ReplaceAllString(s, "$1 ")
	s = strings.Join(strings.Fields(s), " ")
	s = leadingSeparatorPattern.ReplaceAllString(s, "")
	s = leadingNumberPattern.ReplaceAllString(s, "")
	s = leadingSeparatorPattern.ReplaceAllString(s, "")
	s = trailingSeparatorPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var bracketStripper = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ")

// trimUnbalancedParens drops brackets left dangling by splitting "flour (wheat, niacin)" on commas
func trimUnbalancedParens(name string) string {
	if strings.Count(name, "(") != strings.Count(name, ")") ||
		strings.Count(name, "[") != strings.Count(name, "]") {
		name = strings.Join(strings.Fields(bracketStripper.Replace(name)), " ")
	}
	return strings.TrimRight(name, " .*")
}

func isPlausibleIngredientToken(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < minIngredientTokenLen || n > maxIngredientTokenLen {
		return false
	}
	if pureNumberTokenPattern.MatchString(name) {
		return false
	}
	return !strings.Contains(name, "serving") &&
		!strings.Contains(name, "calorie") &&
		!strings.Contains(name, "daily value")
}

// buildPhrasePattern compiles a case-insensitive alternation of literal phrases
func buildPhrasePattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}
