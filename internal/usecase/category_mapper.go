package usecase

import "strings"

// DefaultProductCategory is used when no label matches any category keyword
const DefaultProductCategory = "General"

// CategoryKeywords pairs a product category with the image-label keywords that suggest it
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// defaultCategoryKeywords is checked in order; the first category with a matching keyword wins
var defaultCategoryKeywords = []CategoryKeywords{
	{Category: "Beverages", Keywords: []string{"drink", "beverage", "juice", "soda", "soft drink", "bottle", "tea", "coffee", "water"}},
	{Category: "Snacks", Keywords: []string{"snack", "chips", "crisps", "cracker", "cookie", "biscuit", "candy", "confectionery", "chocolate"}},
	{Category: "Dairy", Keywords: []string{"dairy", "milk", "cheese", "yogurt", "yoghurt", "butter", "cream"}},
	{Category: "Baby Products", Keywords: []string{"baby", "infant", "toddler", "diaper"}},
	{Category: "Supplements", Keywords: []string{"supplement", "vitamin", "capsule", "tablet", "pill", "protein powder"}},
	{Category: "Skincare", Keywords: []string{"skin", "lotion", "moisturizer", "sunscreen", "serum", "cosmetics"}},
	{Category: "Hair Care", Keywords: []string{"hair", "shampoo", "conditioner"}},
	{Category: "Personal Care", Keywords: []string{"soap", "toothpaste", "deodorant", "personal care"}},
	{Category: "Household", Keywords: []string{"detergent", "cleaner", "cleaning", "household", "dishwashing"}},
	{Category: "Pet Food", Keywords: []string{"pet", "dog food", "cat food"}},
	{Category: "Food", Keywords: []string{"food", "ingredient", "cuisine", "dish", "recipe", "produce", "baked goods", "cereal", "packaged goods"}},
}

// CategoryMapper suggests a product category from image labels
type CategoryMapper struct {
	table []CategoryKeywords
}

// NewCategoryMapper creates a mapper; a nil table uses the built-in mapping
func NewCategoryMapper(table []CategoryKeywords) *CategoryMapper {
	if table == nil {
		table = defaultCategoryKeywords
	}
	return &CategoryMapper{table: table}
}

// SuggestCategory returns the first category whose keyword appears in any label
func (m *CategoryMapper) SuggestCategory(labels []string) string {
	lowered := make([]string, 0, len(labels))
	for _, l := range labels {
		if t := strings.ToLower(strings.TrimSpace(l)); t != "" {
			lowered = append(lowered, t)
		}
	}
	for _, entry := range m.table {
		for _, kw := range entry.Keywords {
			for _, label := range lowered {
				if strings.Contains(label, kw) {
					return entry.Category
				}
			}
		}
	}
	return DefaultProductCategory
}
