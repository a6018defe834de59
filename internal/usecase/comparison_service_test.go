package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/domain"
)

func ingredientsNamed(rating domain.HealthRating, names ...string) []domain.Ingredient {
	out := make([]domain.Ingredient, len(names))
	for i, n := range names {
		out[i] = domain.Ingredient{Name: n, HealthRating: rating}
	}
	return out
}

func TestComparisonService_CompareEmpty(t *testing.T) {
	result := NewComparisonService().Compare(nil)

	assert.Equal(t, []string{}, result.RankedOrder)
	assert.Equal(t, "No products to compare", result.Summary)
	assert.Equal(t, []domain.DifferingIngredient{}, result.DifferingIngredients)
}

func TestComparisonService_CompareSingle(t *testing.T) {
	p := domain.Product{ID: "p1", Name: "Soda", OverallScore: 40, Ingredients: ingredientsNamed(domain.RatingSafe, "Water", "Sugar")}
	result := NewComparisonService().Compare([]domain.Product{p})

	assert.Equal(t, []string{"p1"}, result.RankedOrder)
	assert.Empty(t, result.DifferingIngredients)
	assert.Equal(t, "Soda ranks highest with a score of 40/100 and 0 personalized warnings.", result.Summary)
}

func TestComparisonService_CompareDifferingIngredients(t *testing.T) {
	a := domain.Product{ID: "a", Name: "A", OverallScore: 70, Ingredients: []domain.Ingredient{
		{Name: "X", HealthRating: domain.RatingSafe},
		{Name: "Y", HealthRating: domain.RatingWarning},
	}}
	b := domain.Product{ID: "b", Name: "B", OverallScore: 90, PersonalizedWarnings: []string{"contains X"},
		Ingredients: []domain.Ingredient{{Name: "x", HealthRating: domain.RatingSafe}}}
	c := domain.Product{ID: "c", Name: "C", OverallScore: 70, Ingredients: []domain.Ingredient{
		{Name: "X", HealthRating: domain.RatingSafe},
		{Name: "Y", HealthRating: domain.RatingDanger},
		{Name: "Z", HealthRating: domain.RatingCaution},
	}}

	result := NewComparisonService().Compare([]domain.Product{a, b, c})

	assert.Equal(t, []string{"b", "a", "c"}, result.RankedOrder, "ties keep input order")
	assert.Equal(t, "B ranks highest with a score of 90/100 and 1 personalized warning.", result.Summary)

	require.Len(t, result.DifferingIngredients, 2)
	assert.Equal(t, domain.DifferingIngredient{
		IngredientName:        "Y",
		PresentInProductNames: []string{"A", "C"},
		Rating:                domain.RatingWarning,
	}, result.DifferingIngredients[0])
	assert.Equal(t, domain.DifferingIngredient{
		IngredientName:        "Z",
		PresentInProductNames: []string{"C"},
		Rating:                domain.RatingCaution,
	}, result.DifferingIngredients[1])
}

func TestComparisonService_CompareDuplicateIngredientInProduct(t *testing.T) {
	a := domain.Product{ID: "a", Name: "A", Ingredients: ingredientsNamed(domain.RatingSafe, "Sugar", "sugar ")}
	b := domain.Product{ID: "b", Name: "B", Ingredients: ingredientsNamed(domain.RatingSafe, "Water")}

	result := NewComparisonService().Compare([]domain.Product{a, b})

	require.Len(t, result.DifferingIngredients, 2)
	assert.Equal(t, "Sugar", result.DifferingIngredients[0].IngredientName)
	assert.Equal(t, []string{"A"}, result.DifferingIngredients[0].PresentInProductNames)
}
