package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"truthlens/config"
	"truthlens/models"
	"truthlens/risk"
	"truthlens/signals"
)

const (
	MaxImageBytes = 10 << 20

	LayerImageStatistics = "statistics"
	LayerImageMetadata   = "metadata"
	LayerImageModel      = "ai_vision"

	imageFetchTimeout = 15 * time.Second
)

var imageFormats = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"}

// ImageService scores an image for signs of AI generation.
type ImageService struct {
	judge   *Judge
	scoring config.Scoring
	client  *http.Client
}

func NewImageService(judge *Judge, scoring config.Scoring) *ImageService {
	return &ImageService{
		judge:   judge,
		scoring: scoring,
		client:  &http.Client{Timeout: imageFetchTimeout},
	}
}

// Download fetches an image by URL, refusing anything over the size limit.
func (s *ImageService) Download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("image_url must be an http or https URL")
	}
	log.Printf("[IMAGE] 🌐 Downloading %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, invalid("image_url must be an http or https URL")
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[IMAGE] ❌ Download failed: %v", err)
		if isTimeout(err) {
			return nil, invalid("Could not download image: the request timed out")
		}
		return nil, invalid("Could not download image from the given URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, invalid("Could not download image: HTTP %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxImageBytes {
		return nil, invalid("Image too large (max 10 MB)")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, invalid("Could not download image: %v", err)
	}
	if len(data) > MaxImageBytes {
		return nil, invalid("Image too large (max 10 MB)")
	}
	return data, nil
}

// Analyze runs the image pipeline on encoded bytes. source names the upload
// or URL in the result.
func (s *ImageService) Analyze(ctx context.Context, source string, data []byte) (*models.ImageResult, error) {
	if len(data) == 0 {
		return nil, invalid("No image provided")
	}
	if len(data) > MaxImageBytes {
		return nil, invalid("Image too large (max 10 MB)")
	}
	mime := mimetype.Detect(data)
	if !isAllowed(mime, imageFormats) {
		return nil, invalid("Unsupported image format %s. Allowed: PNG, JPEG, GIF, WEBP, BMP", mime.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("Could not decode image: %v", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(s.scoring.Image.MaxPixels) {
		return nil, invalid("Image dimensions too large (%dx%d, max %d megapixels)",
			cfg.Width, cfg.Height, s.scoring.Image.MaxPixels/1_000_000)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("Could not decode image: %v", err)
	}
	b := img.Bounds()
	log.Printf("[IMAGE] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("[IMAGE] 🖼 %s: %s %dx%d, %d bytes", source, format, b.Dx(), b.Dy(), len(data))

	stats := signals.ImageStatistics(img, s.scoring.Image)
	meta := signals.ExifMetadata(data, s.scoring.Image)

	deterministic := append(append([]string{}, stats.Signals...), meta.Signals...)
	j, ok := s.judge.Image(ctx, data, mime.String(), imageData{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Format:  format,
		Exif:    meta.Fields,
		Signals: deterministic,
	})

	model := risk.Unchecked(LayerImageModel)
	if ok {
		var c risk.Contribution
		c.Add(weighted(j.AIProbability, s.scoring.Image.ModelWeight),
			fmt.Sprintf("AI vision model estimates %d%% probability of AI generation (%s)", j.AIProbability, j.ManipulationType))
		model = risk.NewLayer(LayerImageModel, c)
	}

	v := risk.Aggregate(s.scoring.Verdicts.Image, risk.ImageScale,
		risk.NewLayer(LayerImageStatistics, stats),
		risk.NewLayer(LayerImageMetadata, meta.Contribution),
		model,
	)
	log.Printf("[IMAGE] ✓ statistics=%d metadata=%d model=%d → %d %s",
		stats.Points, meta.Points, model.Points, v.TotalRisk(), v.Category())

	return &models.ImageResult{
		Source:           source,
		Format:           format,
		Dimensions:       models.Dimensions{Width: b.Dx(), Height: b.Dy()},
		FileSizeKB:       math.Round(float64(len(data))/1024*10) / 10,
		AIProbability:    v.TotalRisk(),
		Verdict:          string(v.Category()),
		ManipulationType: j.ManipulationType,
		Signals:          v.Signals(),
		Exif:             meta.Fields,
		AIAnalysis: models.ImageAI{
			Explanation:    j.Explanation,
			Recommendation: j.Recommendation,
		},
	}, nil
}

func isAllowed(m *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}

// weighted converts a 0-100 model estimate into risk points.
func weighted(probability int, weight float64) int {
	return int(math.Round(float64(probability) * weight))
}
