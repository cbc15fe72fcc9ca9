package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/models"
	"truthlens/services"
)

type fakeVerifier struct {
	kind string
	data any
	err  error

	input string
	ctx   context.Context
}

func (f *fakeVerifier) Verify(ctx context.Context, input string) (string, any, error) {
	f.input, f.ctx = input, ctx
	return f.kind, f.data, f.err
}

type fakePhishing struct {
	res *models.PhishingResult
	err error
	url string
}

func (f *fakePhishing) Analyze(_ context.Context, rawURL string) (*models.PhishingResult, error) {
	f.url = rawURL
	return f.res, f.err
}

type envelope struct {
	Success   bool            `json:"success"`
	InputType string          `json:"input_type"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.NotEmpty(t, env.Timestamp)
	return env
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestVerifySuccess(t *testing.T) {
	v := &fakeVerifier{kind: models.InputText, data: &models.TextClaimResult{Verdict: "FAKE", Score: 5, Sources: []models.Source{}, Keywords: []string{"flat"}}}
	h := NewAnalyzeHandler(v, &fakePhishing{})

	rec := postJSON(h.Verify, `{"claim": "  the earth is flat  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "text", env.InputType)
	assert.Empty(t, env.Error)
	assert.Equal(t, "the earth is flat", v.input)

	var data models.TextClaimResult
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "FAKE", data.Verdict)
	assert.Equal(t, 5, data.Score)
}

func TestVerifyBadRequests(t *testing.T) {
	h := NewAnalyzeHandler(&fakeVerifier{}, &fakePhishing{})

	tests := []struct {
		body string
		msg  string
	}{
		{`not json`, "Missing claim field"},
		{`{}`, "Missing claim field"},
		{`{"claim": "   "}`, "Input cannot be empty"},
	}
	for _, tt := range tests {
		rec := postJSON(h.Verify, tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, tt.msg, env.Error)
	}
}

func TestVerifyErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		err    error
		status int
		msg    string
	}{
		{"validation", models.InputText, &services.ValidationError{Msg: "Claim too short (min 10 chars)"}, http.StatusBadRequest, "Claim too short (min 10 chars)"},
		{"fetch", models.InputURL, &services.FetchError{Reason: "Access denied. This website blocks automated access.", Err: errors.New("403")}, http.StatusBadRequest, "Access denied. This website blocks automated access."},
		{"unexpected", models.InputText, errors.New("pq: connection refused at 10.0.0.3"), http.StatusInternalServerError, internalErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalyzeHandler(&fakeVerifier{kind: tt.kind, err: tt.err}, &fakePhishing{})
			rec := postJSON(h.Verify, `{"claim": "some claim text"}`)
			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.kind, env.InputType)
			assert.Equal(t, tt.msg, env.Error)
			assert.NotContains(t, rec.Body.String(), "10.0.0.3")
		})
	}
}

func TestVerifySurvivesClientDisconnect(t *testing.T) {
	v := &fakeVerifier{kind: models.InputText, data: map[string]any{}}
	h := NewAnalyzeHandler(v, &fakePhishing{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"claim": "the earth is flat"}`)).WithContext(ctx)
	h.Verify(httptest.NewRecorder(), req)

	require.NotNil(t, v.ctx)
	assert.NoError(t, v.ctx.Err())
}

func TestPhishingHandler(t *testing.T) {
	p := &fakePhishing{res: &models.PhishingResult{URL: "https://example.com", Verdict: "SAFE", Signals: []string{}}}
	h := NewAnalyzeHandler(&fakeVerifier{}, p)

	rec := postJSON(h.Phishing, `{"url": "example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "example.com", p.url)
	assert.Contains(t, string(env.Data), `"verdict":"SAFE"`)

	rec = postJSON(h.Phishing, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decodeEnvelope(t, rec).Error)

	p.err = &services.ValidationError{Msg: "URL is required"}
	rec = postJSON(h.Phishing, `{"url": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "URL is required", decodeEnvelope(t, rec).Error)
}
