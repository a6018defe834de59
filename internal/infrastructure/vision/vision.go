package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

const (
	requestTimeout = 30 * time.Second
	maxLabels      = 10
	minLabelScore  = 0.6
)

// Provider recognises label text with GCP Vision TEXT_DETECTION and
// tags the image with LABEL_DETECTION
type Provider struct {
	client *vision.ImageAnnotatorClient
	log    *logger.Logger
}

// ClientOptions builds client options from a credentials file path or inline JSON.
// An empty value falls back to application default credentials.
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// NewProvider creates a Vision OCR provider
func NewProvider(ctx context.Context, credentials string, log *logger.Logger) (*Provider, error) {
	if log == nil {
		log = logger.NewNop()
	}
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Provider{
		client: client,
		log:    log.With("service", "gcp.Vision"),
	}, nil
}

// Close releases the underlying client
func (p *Provider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// ExtractText returns the recognised text with line breaks preserved, plus image labels
func (p *Provider) ExtractText(ctx context.Context, image []byte) (*domain.OCRResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_TEXT_DETECTION},
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: maxLabels},
			},
		}},
	}

	resp, err := p.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: vision BatchAnnotateImages: %v", domain.ErrOCRFailure, err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &domain.OCRResult{}, nil
	}

	result, err := resultFromResponse(resp.Responses[0])
	if err != nil {
		return nil, err
	}
	p.log.Debug("ocr complete", "chars", len(result.Text), "labels", len(result.Labels))
	return result, nil
}

// resultFromResponse maps one annotate response onto an OCRResult
func resultFromResponse(r *visionpb.AnnotateImageResponse) (*domain.OCRResult, error) {
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("%w: vision annotate error: %s", domain.ErrOCRFailure, r.Error.Message)
	}

	var text string
	if fta := r.FullTextAnnotation; fta != nil && strings.TrimSpace(fta.Text) != "" {
		text = fta.Text
	} else if len(r.TextAnnotations) > 0 {
		// the first annotation holds the whole detected text
		text = r.TextAnnotations[0].Description
	}

	labels := make([]string, 0, len(r.LabelAnnotations))
	for _, l := range r.LabelAnnotations {
		if l == nil || l.Score < minLabelScore {
			continue
		}
		if d := strings.TrimSpace(l.Description); d != "" {
			labels = append(labels, d)
		}
	}

	return &domain.OCRResult{
		Text:   normalizeLines(text),
		Labels: labels,
	}, nil
}

// normalizeLines collapses whitespace inside each line and drops blank lines
func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
