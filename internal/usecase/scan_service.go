package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

var (
	nonDigitRegex        = regexp.MustCompile(`\D`)
	dataURLPrefixPattern = regexp.MustCompile(`^data:[\w/+.-]+;base64,`)
)

// ScanServiceConfig holds configuration for the scan service
type ScanServiceConfig struct {
	CacheTTL time.Duration
}

// ScanService feeds barcode lookups and label images into the analysis pipeline
type ScanService struct {
	analyzer   *AnalysisService
	barcodes   domain.BarcodeClient
	ocr        domain.OCRProvider
	cache      domain.CacheRepository
	categories *CategoryMapper
	cacheTTL   time.Duration
	log        *logger.Logger
}

// NewScanService creates a new scan service. barcodes, ocr and cache may be nil;
// the corresponding operations then report their collaborator as unavailable.
func NewScanService(
	analyzer *AnalysisService,
	barcodes domain.BarcodeClient,
	ocr domain.OCRProvider,
	cache domain.CacheRepository,
	log *logger.Logger,
	config ScanServiceConfig,
) *ScanService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ScanService{
		analyzer:   analyzer,
		barcodes:   barcodes,
		ocr:        ocr,
		cache:      cache,
		categories: NewCategoryMapper(nil),
		cacheTTL:   cacheTTL,
		log:        log.With("service", "ScanService"),
	}
}

// BarcodeScanRequest asks for a barcode lookup followed by analysis
type BarcodeScanRequest struct {
	Barcode string              `json:"barcode"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
	Region  string              `json:"region,omitempty"`
}

// ImageScanRequest asks for OCR of a label image followed by analysis
type ImageScanRequest struct {
	Image       string              `json:"image"` // base64, optionally a data: URL
	ProductName string              `json:"productName,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Category    string              `json:"category,omitempty"`
	Profile     *domain.UserProfile `json:"profile,omitempty"`
	Region      string              `json:"region,omitempty"`
}

// LookupBarcode returns the barcode database record, served from cache when possible.
// Flow: normalize -> cache -> barcode client -> cache -> return
func (s *ScanService) LookupBarcode(ctx context.Context, barcode string) (*domain.BarcodeProduct, error) {
	code := NormalizeBarcode(barcode)
	if code == "" {
		return nil, fmt.Errorf("%w: barcode must contain 8 to 14 digits", domain.ErrInvalidRequest)
	}
	if s.barcodes == nil {
		return nil, fmt.Errorf("%w: barcode lookup not configured", domain.ErrBarcodeLookupFailure)
	}

	cacheKey := "barcode:" + code
	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	product, err := s.barcodes.LookupBarcode(ctx, code)
	if err != nil {
		return nil, err
	}

	if product.Found {
		if err := s.setInCache(ctx, cacheKey, product); err != nil {
			s.log.Warn("failed to cache barcode lookup", "barcode", code, "error", err)
		}
	}
	return product, nil
}

// AnalyzeBarcode looks a barcode up and, when it carries ingredient text, analyzes it
// exactly as OCR text would be
func (s *ScanService) AnalyzeBarcode(ctx context.Context, req *BarcodeScanRequest) (*domain.Product, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}

	found, err := s.LookupBarcode(ctx, req.Barcode)
	if err != nil {
		return nil, err
	}
	if !found.Found || strings.TrimSpace(found.IngredientsText) == "" {
		return nil, domain.ErrProductNotFound
	}

	return s.analyzer.Analyze(ctx, &domain.AnalyzeRequest{
		ProductName: found.Name,
		Brand:       found.Brand,
		Category:    found.Category,
		RawText:     found.IngredientsText,
		Profile:     req.Profile,
		Region:      req.Region,
		Barcode:     found.Barcode,
		ImageRef:    found.ImageURL,
	}), nil
}

// AnalyzeImage runs OCR on a label image and analyzes the recognised text.
// When no category is given one is suggested from the image labels.
func (s *ScanService) AnalyzeImage(ctx context.Context, req *ImageScanRequest) (*domain.Product, error) {
	if req == nil || strings.TrimSpace(req.Image) == "" {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}
	if s.ocr == nil {
		return nil, fmt.Errorf("%w: OCR not configured", domain.ErrOCRFailure)
	}

	image, err := DecodeImage(req.Image)
	if err != nil {
		return nil, err
	}

	result, err := s.ocr.ExtractText(ctx, image)
	if err != nil {
		return nil, err
	}
	if result == nil || strings.TrimSpace(result.Text) == "" {
		return nil, domain.ErrExtractionFailed
	}

	category := req.Category
	if strings.TrimSpace(category) == "" {
		category = s.categories.SuggestCategory(result.Labels)
	}

	return s.analyzer.Analyze(ctx, &domain.AnalyzeRequest{
		ProductName: req.ProductName,
		Brand:       req.Brand,
		Category:    category,
		RawText:     result.Text,
		Profile:     req.Profile,
		Region:      req.Region,
	}), nil
}

// NormalizeBarcode strips separators and returns "" unless 8-14 digits remain
func NormalizeBarcode(barcode string) string {
	digits := nonDigitRegex.ReplaceAllString(barcode, "")
	if len(digits) < 8 || len(digits) > 14 {
		return ""
	}
	return digits
}

// DecodeImage decodes standard or URL-safe base64, with or without a data: URL prefix
func DecodeImage(encoded string) ([]byte, error) {
	s := dataURLPrefixPattern.ReplaceAllString(strings.TrimSpace(encoded), "")
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(s); err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrInvalidRequest)
}

func (s *ScanService) getFromCache(ctx context.Context, key string) (*domain.BarcodeProduct, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var product domain.BarcodeProduct
	if err := json.Unmarshal(data, &product); err != nil {
		s.log.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &product, true
}

func (s *ScanService) setInCache(ctx context.Context, key string, product *domain.BarcodeProduct) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
