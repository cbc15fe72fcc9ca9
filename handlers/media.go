package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"

	"truthlens/models"
	"truthlens/services"
)

// ImageAnalyzer runs the /image pipeline.
type ImageAnalyzer interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
	Analyze(ctx context.Context, source string, data []byte) (*models.ImageResult, error)
}

// AudioAnalyzer runs the /audio pipeline.
type AudioAnalyzer interface {
	Analyze(ctx context.Context, fileName string, data []byte) (*models.AudioResult, error)
}

const (
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

type MediaHandler struct {
	image ImageAnalyzer
	audio AudioAnalyzer
}

func NewMediaHandler(image ImageAnalyzer, audio AudioAnalyzer) *MediaHandler {
	return &MediaHandler{image: image, audio: audio}
}

// Image - POST /image, multipart field "image" or JSON {image_url}
func (h *MediaHandler) Image(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req models.ImageURLRequest
		if err := decodeJSON(r, &req); err != nil || req.ImageURL == "" {
			writeFailure(w, http.StatusBadRequest, "", "Provide an image file or image_url")
			return
		}
		log.Printf("[HANDLER] 📥 /image url=%s from %s", req.ImageURL, clientIP(r))
		data, err := h.image.Download(ctx, req.ImageURL)
		if err != nil {
			writeError(w, r, "", err)
			return
		}
		h.finishImage(ctx, w, r, req.ImageURL, data)
		return
	}

	name, data, status, msg := readUpload(w, r, "image", services.MaxImageBytes, "Image too large (max 10 MB)", "No image file provided")
	if msg != "" {
		writeFailure(w, status, "", msg)
		return
	}
	log.Printf("[HANDLER] 📥 /image file=%s (%d bytes) from %s", name, len(data), clientIP(r))
	h.finishImage(ctx, w, r, name, data)
}

func (h *MediaHandler) finishImage(ctx context.Context, w http.ResponseWriter, r *http.Request, source string, data []byte) {
	res, err := h.image.Analyze(ctx, source, data)
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	writeData(w, "", res)
}

// Audio - POST /audio, multipart field "audio"
func (h *MediaHandler) Audio(w http.ResponseWriter, r *http.Request) {
	name, data, status, msg := readUpload(w, r, "audio", services.MaxAudioBytes, "Audio file too large (max 25 MB)", "No audio file provided")
	if msg != "" {
		writeFailure(w, status, "", msg)
		return
	}
	log.Printf("[HANDLER] 📥 /audio file=%s (%d bytes) from %s", name, len(data), clientIP(r))

	res, err := h.audio.Analyze(context.WithoutCancel(r.Context()), name, data)
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	writeData(w, "", res)
}

// readUpload reads one multipart file field of at most limit bytes. The
// form's temporary files are removed before it returns. A non-empty msg is
// the client error to report with status.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64, tooLarge, missing string) (name string, data []byte, status int, msg string) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, http.StatusRequestEntityTooLarge, tooLarge
		}
		return "", nil, http.StatusBadRequest, missing
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, http.StatusBadRequest, missing
	}
	defer file.Close()

	data, err = readLimited(file, limit)
	if err != nil {
		return "", nil, http.StatusRequestEntityTooLarge, tooLarge
	}
	return header.Filename, data, 0, ""
}

func readLimited(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
