package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
	"github.com/labellens/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers. Any service may be nil;
// its endpoints then answer 501.
type Handler struct {
	analysis    *usecase.AnalysisService
	scans       *usecase.ScanService
	comparisons *usecase.ComparisonService
	log         *logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	analysis *usecase.AnalysisService,
	scans *usecase.ScanService,
	comparisons *usecase.ComparisonService,
	log *logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		analysis:    analysis,
		scans:       scans,
		comparisons: comparisons,
		log:         log.With("component", "http"),
	}
}

// ClassifyRequest is the body of POST /api/v1/classify
type ClassifyRequest struct {
	Text string `json:"text"`
}

// CompareRequest is the body of POST /api/v1/compare
type CompareRequest struct {
	Products []domain.Product `json:"products"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	oracle := "none"
	if h.analysis != nil {
		oracle = h.analysis.OracleName()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labellens-backend",
		"version": serviceVersion,
		"oracle":  oracle,
	})
}

// Analyze handles POST /api/v1/analyze. It always answers 200 with a Product,
// degraded when the oracle could not be used.
func (h *Handler) Analyze(c *gin.Context) {
	if h.analysis == nil {
		notConfigured(c, "Analysis")
		return
	}

	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.analysis.Analyze(c.Request.Context(), &req))
}

// AnalyzeImage handles POST /api/v1/analyze/image
func (h *Handler) AnalyzeImage(c *gin.Context) {
	if h.scans == nil {
		notConfigured(c, "Image analysis")
		return
	}

	var req usecase.ImageScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.scans.AnalyzeImage(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Classify handles POST /api/v1/classify
func (h *Handler) Classify(c *gin.Context) {
	if h.analysis == nil {
		notConfigured(c, "Classification")
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.writeError(c, fmt.Errorf("%w: text is required", domain.ErrInvalidRequest))
		return
	}

	c.JSON(http.StatusOK, h.analysis.Classify(req.Text))
}

// GetBarcode handles GET /api/v1/barcode/:code
func (h *Handler) GetBarcode(c *gin.Context) {
	if h.scans == nil {
		notConfigured(c, "Barcode lookup")
		return
	}

	product, err := h.scans.LookupBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !product.Found {
		h.writeError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

// AnalyzeBarcode handles POST /api/v1/barcode/analyze
func (h *Handler) AnalyzeBarcode(c *gin.Context) {
	if h.scans == nil {
		notConfigured(c, "Barcode analysis")
		return
	}

	var req usecase.BarcodeScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.scans.AnalyzeBarcode(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Compare handles POST /api/v1/compare
func (h *Handler) Compare(c *gin.Context) {
	if h.comparisons == nil {
		notConfigured(c, "Comparison")
		return
	}

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Products) > usecase.MaxComparedProducts {
		h.writeError(c, fmt.Errorf("%w: at most %d products, got %d",
			domain.ErrTooManyProducts, usecase.MaxComparedProducts, len(req.Products)))
		return
	}

	c.JSON(http.StatusOK, h.comparisons.Compare(req.Products))
}

func notConfigured(c *gin.Context, feature string) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": feature + " service not configured",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// writeError maps domain errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrTooManyProducts):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		status, message = http.StatusNotFound, "Product not found"
	case errors.Is(err, domain.ErrExtractionFailed):
		status, message = http.StatusUnprocessableEntity, "No text could be read from the image"
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, domain.ErrBarcodeLookupFailure):
		status, message = http.StatusBadGateway, "Barcode database temporarily unavailable"
	case errors.Is(err, domain.ErrOCRFailure):
		status, message = http.StatusBadGateway, "Text recognition temporarily unavailable"
	case errors.Is(err, domain.ErrOracleFailure):
		status, message = http.StatusBadGateway, "Analysis service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": message})
}
