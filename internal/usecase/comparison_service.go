package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/labellens/backend/internal/domain"
)

// MaxComparedProducts is the largest comparison the API accepts
const MaxComparedProducts = 5

const noProductsSummary = "No products to compare"

// ComparisonService ranks analyzed products and finds the ingredients that set them apart.
// It is a pure function of its input.
type ComparisonService struct{}

// NewComparisonService creates a new comparison service
func NewComparisonService() *ComparisonService {
	return &ComparisonService{}
}

// Compare ranks products by score (stable, descending) and lists ingredients
// not shared by every product
func (s *ComparisonService) Compare(products []domain.Product) *domain.ComparisonResult {
	if len(products) == 0 {
		return &domain.ComparisonResult{
			RankedOrder:          []string{},
			Summary:              noProductsSummary,
			DifferingIngredients: []domain.DifferingIngredient{},
		}
	}

	ranked := make([]int, len(products))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return products[ranked[a]].OverallScore > products[ranked[b]].OverallScore
	})

	order := make([]string, len(ranked))
	for i, idx := range ranked {
		order[i] = products[idx].ID
	}

	top := products[ranked[0]]
	return &domain.ComparisonResult{
		RankedOrder:          order,
		Summary:              summarizeComparison(top),
		DifferingIngredients: differingIngredients(products),
	}
}

// ingredientPresence tracks where one ingredient name occurs
type ingredientPresence struct {
	displayName string
	rating      domain.HealthRating
	products    map[int]bool
	productList []string
}

// differingIngredients maps each ingredient (case-insensitive) to the products containing it
// and keeps those present in fewer than all products, in first-seen order
func differingIngredients(products []domain.Product) []domain.DifferingIngredient {
	presence := make(map[string]*ingredientPresence)
	var keys []string

	for i, p := range products {
		for _, ing := range p.Ingredients {
			key := strings.ToLower(strings.TrimSpace(ing.Name))
			if key == "" {
				continue
			}
			entry, ok := presence[key]
			if !ok {
				entry = &ingredientPresence{
					displayName: strings.TrimSpace(ing.Name),
					rating:      ing.HealthRating,
					products:    make(map[int]bool),
				}
				presence[key] = entry
				keys = append(keys, key)
			}
			if !entry.products[i] {
				entry.products[i] = true
				entry.productList = append(entry.productList, p.Name)
			}
		}
	}

	result := make([]domain.DifferingIngredient, 0)
	for _, key := range keys {
		entry := presence[key]
		if len(entry.products) >= len(products) {
			continue
		}
		result = append(result, domain.DifferingIngredient{
			IngredientName:        entry.displayName,
			PresentInProductNames: dedupe(entry.productList),
			Rating:                entry.rating,
		})
	}
	return result
}

func summarizeComparison(top domain.Product) string {
	warnings := len(top.PersonalizedWarnings)
	plural := "s"
	if warnings == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s ranks highest with a score of %d/100 and %d personalized warning%s.",
		top.Name, top.OverallScore, warnings, plural)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
