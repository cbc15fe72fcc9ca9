package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/config"
)

// texturedPNG is an opaque w x h PNG with a wide colour spread and no EXIF.
func texturedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x + y), G: uint8(x * 3), B: uint8(y * 5), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	return ve
}

func TestImagePowerOfTwoWithoutExif(t *testing.T) {
	s := NewImageService(noModelJudge(t), config.DefaultScoring())

	res, err := s.Analyze(context.Background(), "square.png", texturedPNG(t, 1024, 1024))
	require.NoError(t, err)
	assert.Equal(t, "square.png", res.Source)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 1024, res.Dimensions.Width)
	assert.Equal(t, 20, res.AIProbability)
	assert.Equal(t, "LIKELY_REAL", res.Verdict)
	assert.Contains(t, res.Signals, "Dimensions 1024x1024 are a power of 2 / perfect square, typical of AI generators")
	assert.Contains(t, res.Signals, "No EXIF metadata found")
	assert.Equal(t, ImageFallback.ManipulationType, res.ManipulationType)
	assert.Equal(t, ImageFallback.Explanation, res.AIAnalysis.Explanation)
	assert.Empty(t, res.Exif)
	assert.Greater(t, res.FileSizeKB, 0.0)
}

func TestImageVisionModelAddsWeightedPoints(t *testing.T) {
	m := (&scriptedModel{}).on(markImage, `{"ai_probability": 80, "manipulation_type": "Fully AI-generated", "explanation": "Waxy skin and warped text.", "recommendation": "Do not share."}`)
	s := NewImageService(newJudge(t, m), config.DefaultScoring())

	res, err := s.Analyze(context.Background(), "square.png", texturedPNG(t, 1024, 1024))
	require.NoError(t, err)
	// statistics 20 + 0.6 * 80
	assert.Equal(t, 68, res.AIProbability)
	assert.Equal(t, "LIKELY_AI", res.Verdict)
	assert.Equal(t, "Fully AI-generated", res.ManipulationType)
	assert.Contains(t, res.Signals, "AI vision model estimates 80% probability of AI generation (Fully AI-generated)")
	assert.Contains(t, m.prompts[0], "DIMENSIONS: 1024x1024")
}

func TestImageRejectsBadInput(t *testing.T) {
	s := NewImageService(noModelJudge(t), config.DefaultScoring())
	ctx := context.Background()

	_, err := s.Analyze(ctx, "empty", nil)
	assert.Equal(t, "No image provided", requireValidation(t, err).Msg)

	_, err = s.Analyze(ctx, "notes.txt", []byte("just some text, not an image"))
	assert.Contains(t, requireValidation(t, err).Msg, "Unsupported image format")

	_, err = s.Analyze(ctx, "huge.png", make([]byte, MaxImageBytes+1))
	assert.Equal(t, "Image too large (max 10 MB)", requireValidation(t, err).Msg)

	// A PNG signature with a broken body is detected but cannot be decoded.
	broken := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	_, err = s.Analyze(ctx, "broken.png", broken)
	assert.Contains(t, requireValidation(t, err).Msg, "Could not decode image")
}

// bombPNG is a valid 1x1 grayscale PNG whose header claims w x h pixels.
func bombPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()
	require.Equal(t, "IHDR", string(data[12:16]))

	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestImageRejectsHugeDimensions(t *testing.T) {
	s := NewImageService(noModelJudge(t), config.DefaultScoring())

	_, err := s.Analyze(context.Background(), "bomb.png", bombPNG(t, 12000, 12000))
	assert.Equal(t, "Image dimensions too large (12000x12000, max 50 megapixels)", requireValidation(t, err).Msg)

	scoring := config.DefaultScoring()
	scoring.Image.MaxPixels = 64*48 - 1
	_, err = NewImageService(noModelJudge(t), scoring).Analyze(context.Background(), "small.png", texturedPNG(t, 64, 48))
	requireValidation(t, err)

	scoring.Image.MaxPixels = 64 * 48
	_, err = NewImageService(noModelJudge(t), scoring).Analyze(context.Background(), "small.png", texturedPNG(t, 64, 48))
	assert.NoError(t, err)
}

func TestImageDownload(t *testing.T) {
	img := texturedPNG(t, 64, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cat.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(img)
	}))
	defer srv.Close()

	s := NewImageService(noModelJudge(t), config.DefaultScoring())
	ctx := context.Background()

	data, err := s.Download(ctx, srv.URL+"/cat.png")
	require.NoError(t, err)
	assert.Equal(t, img, data)

	_, err = s.Download(ctx, srv.URL+"/missing.png")
	assert.Equal(t, "Could not download image: HTTP 404", requireValidation(t, err).Msg)

	_, err = s.Download(ctx, "ftp://example.com/cat.png")
	assert.Equal(t, "image_url must be an http or https URL", requireValidation(t, err).Msg)
}
