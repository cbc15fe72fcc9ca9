package services

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"truthlens/models"
)

const (
	MinClaimLength = 10
	MaxClaimLength = 1000
)

// Classify decides whether the raw input of /verify is an article URL or a
// free-text claim. A leading "www." is treated as an http URL. The returned
// string is the input to hand to the selected pipeline.
func Classify(input string) (kind string, normalized string) {
	input = strings.TrimSpace(input)
	candidate := input
	if strings.HasPrefix(candidate, "www.") {
		candidate = "http://" + candidate
	}

	u, err := url.Parse(candidate)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return models.InputURL, candidate
	}
	return models.InputText, input
}

// ValidateClaim enforces the length bounds of a text claim, counted in
// characters rather than bytes.
func ValidateClaim(claim string) error {
	n := utf8.RuneCountInString(claim)
	switch {
	case n == 0:
		return invalid("Input cannot be empty")
	case n < MinClaimLength:
		return invalid("Claim too short (min %d chars)", MinClaimLength)
	case n > MaxClaimLength:
		return invalid("Claim too long (max %d chars)", MaxClaimLength)
	}
	return nil
}
