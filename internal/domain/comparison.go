package domain

// ComparisonResult ranks already-analyzed products against each other
type ComparisonResult struct {
	RankedOrder          []string              `json:"rankedOrder" yaml:"rankedOrder"`
	Summary              string                `json:"summary" yaml:"summary"`
	DifferingIngredients []DifferingIngredient `json:"differingIngredients" yaml:"differingIngredients"`
}

// DifferingIngredient is an ingredient present in some, but not all, compared products
type DifferingIngredient struct {
	IngredientName        string       `json:"ingredientName" yaml:"ingredientName"`
	PresentInProductNames []string     `json:"presentInProductNames" yaml:"presentInProductNames"`
	Rating                HealthRating `json:"rating" yaml:"rating"`
}
