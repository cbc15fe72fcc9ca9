package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"truthlens/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input      string
		kind       string
		normalized string
	}{
		{"https://example.com/news/1", models.InputURL, "https://example.com/news/1"},
		{"  http://example.com  ", models.InputURL, "http://example.com"},
		{"www.bbc.com/news", models.InputURL, "http://www.bbc.com/news"},
		{"the earth is flat", models.InputText, "the earth is flat"},
		{"ftp://example.com/file", models.InputText, "ftp://example.com/file"},
		{"https://", models.InputText, "https://"},
		{"example.com", models.InputText, "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, normalized := Classify(tt.input)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.normalized, normalized)
		})
	}
}

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		ok    bool
	}{
		{"empty", "", false},
		{"9 chars", strings.Repeat("a", 9), false},
		{"10 chars", strings.Repeat("a", 10), true},
		{"1000 chars", strings.Repeat("a", 1000), true},
		{"1001 chars", strings.Repeat("a", 1001), false},
		{"10 multibyte chars", strings.Repeat("ж", 10), true},
		{"1000 multibyte chars", strings.Repeat("ж", 1000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClaim(tt.claim)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
		})
	}
}
