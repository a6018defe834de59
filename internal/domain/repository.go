package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Oracle is the external ingredient-analysis service.
// Analyze returns the raw response body; parsing and repair are the caller's job.
type Oracle interface {
	Name() string
	Analyze(ctx context.Context, req *OracleRequest) (string, error)
}

// BarcodeClient looks products up by barcode in an external product database
type BarcodeClient interface {
	LookupBarcode(ctx context.Context, barcode string) (*BarcodeProduct, error)
}

// OCRProvider turns label images into free text
type OCRProvider interface {
	ExtractText(ctx context.Context, image []byte) (*OCRResult, error)
}

// BarcodeProduct is the barcode database response
type BarcodeProduct struct {
	Barcode         string `json:"barcode"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	Category        string `json:"category"`
	IngredientsText string `json:"ingredientsText"`
	ImageURL        string `json:"imageUrl"`
	Found           bool   `json:"found"`
}

// OCRResult is the text (and optional image labels) recognised in an image
type OCRResult struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels,omitempty"`
}
