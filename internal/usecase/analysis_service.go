package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

// Defaults applied to fields the oracle leaves out
const (
	defaultOracleTimeout = 25 * time.Second
	defaultOverallScore  = 50
	defaultLetterGrade   = "C"
	defaultConfidence    = 0.5
	defaultProductName   = "Unknown Product"
	defaultCategory      = "General"
	defaultIngredientCat = "Unknown"
)

// Fallback stages, used in logs
const (
	stageEmptyInput  = "empty_input"
	stageUnavailable = "oracle_unavailable"
	stageOracleCall  = "oracle_call"
	stageOracleParse = "oracle_parse"
	stagePanic       = "panic"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	OracleTimeout time.Duration
}

// AnalysisService turns raw label text into a scored Product.
// It holds no mutable state and is safe for concurrent use.
type AnalysisService struct {
	oracle      domain.Oracle
	classifier  *TextClassifier
	nutrition   *NutritionExtractor
	ingredients *IngredientExtractor
	heuristic   *HeuristicAnalyzer
	timeout     time.Duration
	log         *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewAnalysisService creates a new analysis service. A nil oracle means every
// analysis takes the heuristic path.
func NewAnalysisService(oracle domain.Oracle, log *logger.Logger, config AnalysisServiceConfig) *AnalysisService {
	timeout := config.OracleTimeout
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	ingredients := NewIngredientExtractor()
	return &AnalysisService{
		oracle:      oracle,
		classifier:  NewTextClassifier(),
		nutrition:   NewNutritionExtractor(),
		ingredients: ingredients,
		heuristic:   NewHeuristicAnalyzer(ingredients),
		timeout:     timeout,
		log:         log.With("service", "AnalysisService"),
		now:         time.Now,
		newID:       newProductID,
	}
}

// newProductID returns a time-ordered UUIDv7
func newProductID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Analyze runs classify -> extract -> oracle -> sanitize, falling back to the
// heuristic analyzer on any failure. It always returns a fully populated Product.
func (s *AnalysisService) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (product *domain.Product) {
	if req == nil {
		req = &domain.AnalyzeRequest{}
	}

	analysisText := req.RawText
	defer func() {
		if r := recover(); r != nil {
			product = s.fallback(req, analysisText, stagePanic, fmt.Errorf("%v", r))
		}
	}()

	analysisText, kind := s.PrepareText(req.RawText)
	if strings.TrimSpace(analysisText) == "" {
		return s.fallback(req, analysisText, stageEmptyInput, domain.ErrExtractionFailed)
	}
	if s.oracle == nil {
		return s.fallback(req, analysisText, stageUnavailable, domain.ErrOracleFailure)
	}

	oracleReq := BuildOracleRequest(req, analysisText)
	body, err := s.callOracle(ctx, oracleReq)
	if err != nil {
		return s.fallback(req, analysisText, stageOracleCall, err)
	}

	resp, err := ParseOracleResponse(body)
	if err != nil {
		return s.fallback(req, analysisText, stageOracleParse, err)
	}

	product = buildProductFromOracle(req, resp)
	s.stamp(product, req, analysisText)
	s.log.Debug("analysis complete",
		"product", product.Name,
		"kind", kind,
		"oracle", s.oracle.Name(),
		"score", product.OverallScore,
		"grade", product.LetterGrade,
		"ingredients", len(product.Ingredients))
	return product
}

// PrepareText classifies raw OCR text and returns the text to analyze.
// Ingredient lists that clean to nothing fall back to the raw text.
func (s *AnalysisService) PrepareText(rawText string) (string, domain.TextKind) {
	kind := s.classifier.Classify(rawText)
	if kind == domain.KindNutritionTable {
		facts := s.nutrition.Extract(rawText)
		return s.nutrition.FormatForAnalysis(facts), kind
	}

	cleaned := s.ingredients.Extract(rawText)
	if cleaned == "" {
		return rawText, kind
	}
	return cleaned, kind
}

// OracleName names the configured oracle, or "none"
func (s *AnalysisService) OracleName() string {
	if s.oracle == nil {
		return "none"
	}
	return s.oracle.Name()
}

// Classify reports how raw text would be handled without calling the oracle
func (s *AnalysisService) Classify(rawText string) *domain.TextClassification {
	result := &domain.TextClassification{Kind: s.classifier.Classify(rawText)}
	if result.Kind == domain.KindNutritionTable {
		result.Nutrition = s.nutrition.Extract(rawText)
	} else {
		result.Ingredients = s.ingredients.Parse(rawText)
	}
	result.AnalysisText, _ = s.PrepareText(rawText)
	return result
}

// callOracle makes the single, time-bounded oracle attempt
func (s *AnalysisService) callOracle(ctx context.Context, req *domain.OracleRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.oracle.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrOracleFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: empty response body", domain.ErrOracleFailure)
	}
	return body, nil
}

func (s *AnalysisService) fallback(req *domain.AnalyzeRequest, analysisText, stage string, cause error) *domain.Product {
	s.log.Warn("falling back to heuristic analysis",
		"stage", stage,
		"product", req.ProductName,
		"error", cause)

	product := s.heuristic.Analyze(req.RawText, req.Profile)
	product.Name = nonEmpty(req.ProductName, defaultProductName)
	product.Category = nonEmpty(req.Category, defaultCategory)
	s.stamp(product, req, analysisText)
	return product
}

// stamp assigns identity and provenance fields
func (s *AnalysisService) stamp(product *domain.Product, req *domain.AnalyzeRequest, analysisText string) {
	product.ID = s.newID()
	product.ScannedAt = s.now()
	product.Brand = req.Brand
	product.Barcode = req.Barcode
	product.ImageRef = req.ImageRef
	product.RawIngredientText = analysisText
}

// BuildOracleRequest assembles the oracle payload for a prepared analysis text
func BuildOracleRequest(req *domain.AnalyzeRequest, analysisText string) *domain.OracleRequest {
	return &domain.OracleRequest{
		ProductName:     nonEmpty(req.ProductName, defaultProductName),
		ProductCategory: nonEmpty(req.Category, defaultCategory),
		RawIngredients:  analysisText,
		UserProfile:     SummarizeProfile(req.Profile),
		Country:         strings.TrimSpace(req.Region),
	}
}

// SummarizeProfile copies the non-empty profile fields; it returns nil when nothing is set
func SummarizeProfile(profile *domain.UserProfile) *domain.ProfileSummary {
	if profile.IsEmpty() {
		return nil
	}
	return &domain.ProfileSummary{
		Allergies:          profile.Allergies,
		Sensitivities:      profile.Sensitivities,
		DietaryPreferences: profile.DietaryPreferences,
		Priorities:         profile.Priorities,
		AvoidList:          profile.AvoidList,
		SeekList:           profile.SeekList,
	}
}

// ParseOracleResponse sanitizes the body and decodes it, with one repair retry
// for truncated JSON
func ParseOracleResponse(body string) (*domain.OracleResponse, error) {
	sanitized := sanitizeOracleBody(body)

	var resp domain.OracleResponse
	firstErr := json.Unmarshal([]byte(sanitized), &resp)
	if firstErr == nil {
		return &resp, nil
	}

	resp = domain.OracleResponse{}
	repaired := repairTruncatedJSON(sanitized)
	if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleMalformed, firstErr)
	}
	return &resp, nil
}

// buildProductFromOracle maps an untrusted oracle response onto a fully populated Product
func buildProductFromOracle(req *domain.AnalyzeRequest, resp *domain.OracleResponse) *domain.Product {
	name := req.ProductName
	category := req.Category
	if resp.Product != nil {
		name = flexOr(resp.Product.Name, name)
		category = flexOr(resp.Product.Category, category)
	}

	ingredients := make([]domain.Ingredient, 0, len(resp.Ingredients))
	for _, oi := range resp.Ingredients {
		if ing, ok := mapOracleIngredient(oi); ok {
			ingredients = append(ingredients, ing)
		}
	}

	return &domain.Product{
		Name:                 nonEmpty(name, defaultProductName),
		Category:             nonEmpty(category, defaultCategory),
		Ingredients:          ingredients,
		OverallScore:         normalizeScore(resp.OverallRating),
		LetterGrade:          normalizeGrade(resp.LetterGrade),
		PersonalizedWarnings: cleanStrings(resp.PersonalizedWarnings),
		PersonalizedAdvice:   cleanStrings(resp.PersonalizedAdvice),
		Confidence:           normalizeConfidence(resp.Confidence),
		Disclaimer:           flexOr(resp.Disclaimer, DefaultOracleDisclaimer),
	}
}

// mapOracleIngredient backfills an oracle ingredient. Nameless entries are dropped
// and unknown ratings become caution.
func mapOracleIngredient(oi domain.OracleIngredient) (domain.Ingredient, bool) {
	name := flexOr(oi.Name, "")
	if name == "" {
		return domain.Ingredient{}, false
	}

	rating := domain.RatingCaution
	if oi.HealthRating.Valid {
		if parsed, ok := domain.ParseHealthRating(oi.HealthRating.Value); ok {
			rating = parsed
		}
	}

	ing := domain.Ingredient{
		Name:         name,
		Category:     flexOr(oi.Category, defaultIngredientCat),
		Description:  flexOr(oi.Description, ""),
		HealthRating: rating,
		Concerns:     cleanStrings(oi.Concerns),
		Benefits:     cleanStrings(oi.Benefits),
		IsVegan:      oi.IsVegan.Valid && oi.IsVegan.Value,
		IsNatural:    oi.IsNatural.Valid && oi.IsNatural.Value,
	}
	if tags := cleanStrings(oi.Tags); len(tags) > 0 {
		ing.Tags = tags
	}
	return ing, true
}

// flexOr returns the trimmed value, or fallback when it is unset or blank
func flexOr(v domain.FlexString, fallback string) string {
	if !v.Valid {
		return fallback
	}
	return nonEmpty(v.Value, fallback)
}

func normalizeScore(v domain.FlexNumber) int {
	if !v.Valid || math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
		return defaultOverallScore
	}
	return int(math.Max(0, math.Min(100, math.Round(v.Value))))
}

// normalizeGrade accepts only A-F; the grade is not cross-checked against the score
func normalizeGrade(v domain.FlexString) string {
	if !v.Valid {
		return defaultLetterGrade
	}
	grade := strings.ToUpper(strings.TrimSpace(v.Value))
	if len(grade) > 1 {
		grade = grade[:1]
	}
	if !domain.ValidLetterGrades[grade] {
		return defaultLetterGrade
	}
	return grade
}

func normalizeConfidence(v domain.FlexNumber) float64 {
	if !v.Valid || math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, v.Value))
}

// cleanStrings trims entries, drops empty ones and never returns nil
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return fallback
}
