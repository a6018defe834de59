package domain

import (
	"fmt"
	"strings"
	"time"
)

// HealthRating is the ordinal severity of an ingredient's consumer-safety concern
type HealthRating int

const (
	RatingSafe HealthRating = iota
	RatingCaution
	RatingWarning
	RatingDanger
)

var healthRatingNames = [...]string{"safe", "caution", "warning", "danger"}

func (r HealthRating) String() string {
	if r < RatingSafe || r > RatingDanger {
		return fmt.Sprintf("HealthRating(%d)", int(r))
	}
	return healthRatingNames[r]
}

// ParseHealthRating maps a case-insensitive rating name to a HealthRating.
// ok is false for anything outside the four known names.
func ParseHealthRating(s string) (HealthRating, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range healthRatingNames {
		if n == name {
			return HealthRating(i), true
		}
	}
	return RatingCaution, false
}

// MarshalText encodes the rating by name
func (r HealthRating) MarshalText() ([]byte, error) {
	if r < RatingSafe || r > RatingDanger {
		return nil, fmt.Errorf("invalid health rating %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rating name
func (r *HealthRating) UnmarshalText(text []byte) error {
	parsed, ok := ParseHealthRating(string(text))
	if !ok {
		return fmt.Errorf("unknown health rating %q", string(text))
	}
	*r = parsed
	return nil
}

// Ingredient is one analyzed component of a product
type Ingredient struct {
	Name         string       `json:"name" yaml:"name"`
	Category     string       `json:"category" yaml:"category"`
	Description  string       `json:"description" yaml:"description"`
	HealthRating HealthRating `json:"healthRating" yaml:"healthRating"`
	Concerns     []string     `json:"concerns" yaml:"concerns"`
	Benefits     []string     `json:"benefits" yaml:"benefits"`
	IsVegan      bool         `json:"isVegan" yaml:"isVegan"`
	IsNatural    bool         `json:"isNatural" yaml:"isNatural"`
	Tags         []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Product is the scored assessment produced for a single scan
type Product struct {
	ID                   string       `json:"id" yaml:"id"`
	Name                 string       `json:"name" yaml:"name"`
	Brand                string       `json:"brand" yaml:"brand"`
	Category             string       `json:"category" yaml:"category"`
	ImageRef             string       `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	Barcode              string       `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Ingredients          []Ingredient `json:"ingredients" yaml:"ingredients"`
	RawIngredientText    string       `json:"rawIngredientText" yaml:"rawIngredientText"`
	OverallScore         int          `json:"overallScore" yaml:"overallScore"`
	LetterGrade          string       `json:"letterGrade" yaml:"letterGrade"`
	PersonalizedWarnings []string     `json:"personalizedWarnings" yaml:"personalizedWarnings"`
	PersonalizedAdvice   []string     `json:"personalizedAdvice" yaml:"personalizedAdvice"`
	Confidence           float64      `json:"confidence" yaml:"confidence"`
	Disclaimer           string       `json:"disclaimer" yaml:"disclaimer"`
	Degraded             bool         `json:"degraded" yaml:"degraded"` // true when produced by heuristic fallback
	ScannedAt            time.Time    `json:"scannedAt" yaml:"scannedAt"`
}

// ValidLetterGrades are the grades an assessment may carry
var ValidLetterGrades = map[string]bool{"A": true, "B": true, "C": true, "D": true, "F": true}

// AnalyzeRequest carries everything the analysis pipeline needs for one scan
type AnalyzeRequest struct {
	ProductName string       `json:"productName"`
	Brand       string       `json:"brand,omitempty"`
	Category    string       `json:"category,omitempty"`
	RawText     string       `json:"text"`
	Profile     *UserProfile `json:"profile,omitempty"`
	Region      string       `json:"region,omitempty"`
	Barcode     string       `json:"barcode,omitempty"`
	ImageRef    string       `json:"imageRef,omitempty"`
}
