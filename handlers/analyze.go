package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"truthlens/models"
)

// Verifier runs the /verify pipelines.
type Verifier interface {
	Verify(ctx context.Context, input string) (string, any, error)
}

// PhishingAnalyzer runs the /phishing pipeline.
type PhishingAnalyzer interface {
	Analyze(ctx context.Context, rawURL string) (*models.PhishingResult, error)
}

type AnalyzeHandler struct {
	verifier Verifier
	phishing PhishingAnalyzer
}

func NewAnalyzeHandler(verifier Verifier, phishing PhishingAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{verifier: verifier, phishing: phishing}
}

// Verify - POST /verify {claim}
func (h *AnalyzeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := decodeJSON(r, &req); err != nil || req.Claim == nil {
		writeFailure(w, http.StatusBadRequest, "", "Missing claim field")
		return
	}
	claim := strings.TrimSpace(*req.Claim)
	if claim == "" {
		writeFailure(w, http.StatusBadRequest, "", "Input cannot be empty")
		return
	}
	log.Printf("[HANDLER] 📥 /verify (%d chars) from %s", len(claim), clientIP(r))

	// A client hanging up must not cut a running lookup short.
	inputType, data, err := h.verifier.Verify(context.WithoutCancel(r.Context()), claim)
	if err != nil {
		writeError(w, r, inputType, err)
		return
	}
	writeData(w, inputType, data)
}

// Phishing - POST /phishing {url}
func (h *AnalyzeHandler) Phishing(w http.ResponseWriter, r *http.Request) {
	var req models.PhishingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "", "Invalid JSON body")
		return
	}
	log.Printf("[HANDLER] 📥 /phishing %s from %s", req.URL, clientIP(r))

	res, err := h.phishing.Analyze(context.WithoutCancel(r.Context()), req.URL)
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	writeData(w, "", res)
}
