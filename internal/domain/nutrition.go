package domain

// TextKind is the classification of raw OCR text
type TextKind string

const (
	KindNutritionTable TextKind = "nutrition_table"
	KindIngredientList TextKind = "ingredient_list"
)

// NutritionFacts is the intermediate result of parsing a nutrition-facts panel
type NutritionFacts struct {
	ServingSize string     `json:"servingSize,omitempty" yaml:"servingSize,omitempty"`
	Calories    *int       `json:"calories,omitempty" yaml:"calories,omitempty"`
	Nutrients   []Nutrient `json:"nutrients" yaml:"nutrients"`
}

// Nutrient is one row of a nutrition-facts panel, e.g. "Sodium 170mg 8%"
type Nutrient struct {
	Name              string `json:"name" yaml:"name"`
	Amount            string `json:"amount" yaml:"amount"`                                           // number plus unit, e.g. "170mg"
	DailyValuePercent string `json:"dailyValuePercent,omitempty" yaml:"dailyValuePercent,omitempty"` // e.g. "8%"
}

// TextClassification describes how a raw OCR text is prepared for analysis
type TextClassification struct {
	Kind         TextKind        `json:"kind" yaml:"kind"`
	Nutrition    *NutritionFacts `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`
	Ingredients  []string        `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	AnalysisText string          `json:"analysisText" yaml:"analysisText"`
}
