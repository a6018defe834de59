package openfoodfacts

import (
	"strings"

	"github.com/labellens/backend/internal/domain"
)

// ProductResponse is the Open Food Facts v2 product envelope
type ProductResponse struct {
	Code          string      `json:"code"`
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *OFFProduct `json:"product"`
}

// OFFProduct is the subset of product fields requested from Open Food Facts
type OFFProduct struct {
	Code              string   `json:"code"`
	ProductName       string   `json:"product_name"`
	ProductNameEn     string   `json:"product_name_en"`
	GenericName       string   `json:"generic_name"`
	Brands            string   `json:"brands"`
	Categories        string   `json:"categories"`
	CategoriesTags    []string `json:"categories_tags"`
	IngredientsText   string   `json:"ingredients_text"`
	IngredientsTextEn string   `json:"ingredients_text_en"`
	ImageURL          string   `json:"image_url"`
	ImageFrontURL     string   `json:"image_front_url"`
}

// MapToBarcodeProduct converts an Open Food Facts response to our domain model
func MapToBarcodeProduct(barcode string, resp *ProductResponse) *domain.BarcodeProduct {
	if resp == nil || resp.Status != 1 || resp.Product == nil {
		return &domain.BarcodeProduct{Barcode: barcode, Found: false}
	}
	p := resp.Product

	code := firstNonEmpty(p.Code, resp.Code, barcode)
	return &domain.BarcodeProduct{
		Barcode:         code,
		Name:            firstNonEmpty(p.ProductName, p.ProductNameEn, p.GenericName),
		Brand:           firstListItem(p.Brands),
		Category:        primaryCategory(p),
		IngredientsText: firstNonEmpty(p.IngredientsText, p.IngredientsTextEn),
		ImageURL:        firstNonEmpty(p.ImageFrontURL, p.ImageURL),
		Found:           true,
	}
}

// primaryCategory picks the first human-readable category, else the first tag without its language prefix
func primaryCategory(p *OFFProduct) string {
	if c := firstListItem(p.Categories); c != "" {
		return stripLanguagePrefix(c)
	}
	for _, tag := range p.CategoriesTags {
		if c := stripLanguagePrefix(tag); c != "" {
			return strings.ReplaceAll(c, "-", " ")
		}
	}
	return ""
}

func stripLanguagePrefix(s string) string {
	if idx := strings.Index(s, ":"); idx >= 0 && idx <= 3 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

func firstListItem(s string) string {
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			return t
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
