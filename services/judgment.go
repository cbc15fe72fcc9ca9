package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"truthlens/models"
	"truthlens/risk"
)

var errBadJudgment = errors.New("judgment failed validation")

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// extractJSON strips markdown fences and any prose around the first JSON
// object or array in a model answer.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	open := strings.IndexAny(text, "{[")
	if open == -1 {
		return text
	}
	closer := "}"
	if text[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < open {
		return text
	}
	return text[open : end+1]
}

// decodeJudgment parses a model answer into out and runs its validation.
// Any failure leaves the caller to substitute its fallback.
func decodeJudgment[T interface{ validate() error }](raw string, out T) error {
	if err := json.Unmarshal([]byte(extractJSON(raw)), out); err != nil {
		return fmt.Errorf("decode judgment: %w", err)
	}
	if err := out.validate(); err != nil {
		return fmt.Errorf("%w: %v", errBadJudgment, err)
	}
	return nil
}

// Judge renders prompts and turns model answers into validated judgments.
type Judge struct {
	model   ModelClient
	vision  VisionClient
	prompts *PromptSet
}

func NewJudge(model ModelClient, vision VisionClient, prompts *PromptSet) *Judge {
	return &Judge{model: model, vision: vision, prompts: prompts}
}

func (j *Judge) ask(ctx context.Context, name string, data any) (string, error) {
	prompt, err := j.prompts.Render(name, data)
	if err != nil {
		return "", err
	}
	return j.model.Ask(ctx, prompt)
}

func checkScore(name string, v *float64) error {
	if v == nil {
		return fmt.Errorf("%s missing", name)
	}
	if *v < 0 || *v > 100 {
		return fmt.Errorf("%s %v out of range", name, *v)
	}
	return nil
}

func checkText(name string, v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fmt.Errorf("%s missing", name)
	}
	return nil
}

func checkEnum(name string, v *string, allowed ...string) error {
	if v == nil {
		return fmt.Errorf("%s missing", name)
	}
	for _, a := range allowed {
		if *v == a {
			return nil
		}
	}
	return fmt.Errorf("%s %q not allowed", name, *v)
}

func score(v *float64) int {
	return risk.Clamp(int(*v+0.5), risk.MinScore, risk.MaxScore)
}

// ── Keywords ────────────────────────────────────────────────────────────────

// Keywords asks the model for 3-5 search keywords; the fallback is the first
// five words of the claim.
func (j *Judge) Keywords(ctx context.Context, claim string) []string {
	fallback := firstWords(claim, 5)
	raw, err := j.ask(ctx, PromptKeywords, struct{ Claim string }{claim})
	if err != nil {
		logJudgmentError("keywords", err)
		return fallback
	}

	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.Trim(strings.TrimSpace(k), `"'.`); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return fallback
	}
	return keywords
}

func firstWords(s string, n int) []string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// ── Text claim ──────────────────────────────────────────────────────────────

type TextJudgment struct {
	Score           int
	Explanation     string
	VerifiedContext string
}

type textClaimWire struct {
	Verdict         *string  `json:"verdict"`
	Score           *float64 `json:"score"`
	Explanation     *string  `json:"explanation"`
	VerifiedContext *string  `json:"verified_context"`
}

func (w *textClaimWire) validate() error {
	if w.Verdict != nil {
		if err := checkEnum("verdict", w.Verdict, string(risk.Real), string(risk.Fake), string(risk.Uncertain)); err != nil {
			return err
		}
	}
	if err := checkScore("score", w.Score); err != nil {
		return err
	}
	return checkText("explanation", w.Explanation)
}

func textFallback(explanation string) TextJudgment {
	return TextJudgment{Score: 50, Explanation: explanation}
}

// TextClaim judges a claim against the evidence found for it.
func (j *Judge) TextClaim(ctx context.Context, claim string, sources []models.Source) TextJudgment {
	raw, err := j.ask(ctx, PromptTextClaim, struct {
		Claim   string
		Sources []models.Source
	}{claim, sources})
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return textFallback("Could not analyze - Groq API key not configured.")
	case err != nil:
		logJudgmentError("text claim", err)
		return textFallback("Analysis error: the language model did not respond.")
	}

	var w textClaimWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("text claim", err)
		return textFallback("Analysis completed but response format was unexpected.")
	}
	out := TextJudgment{Score: score(w.Score), Explanation: *w.Explanation}
	if w.VerifiedContext != nil {
		out.VerifiedContext = *w.VerifiedContext
	}
	return out
}

// ── Article credibility ─────────────────────────────────────────────────────

type CredibilityJudgment struct {
	Score    int
	Bias     string
	Analysis models.CredibilityAnalysis
	RedFlags []string
}

var biasLabels = []string{"neutral", "left", "right", "commercial", "sensationalist"}

type credibilityWire struct {
	Score    *float64 `json:"credibility_score"`
	Verdict  *string  `json:"verdict"`
	Bias     *string  `json:"bias_detected"`
	Analysis *struct {
		Accuracy       *string `json:"accuracy"`
		Bias           *string `json:"bias"`
		Sensationalism *string `json:"sensationalism"`
		Quality        *string `json:"quality"`
	} `json:"analysis"`
	RedFlags *[]string `json:"red_flags"`
}

func (w *credibilityWire) validate() error {
	if err := checkScore("credibility_score", w.Score); err != nil {
		return err
	}
	if w.Verdict != nil {
		if err := checkEnum("verdict", w.Verdict, string(risk.MostlyCredible), string(risk.Questionable), string(risk.NotCredible)); err != nil {
			return err
		}
	}
	if err := checkEnum("bias_detected", w.Bias, biasLabels...); err != nil {
		return err
	}
	if w.Analysis == nil {
		return errors.New("analysis missing")
	}
	for name, v := range map[string]*string{
		"accuracy":       w.Analysis.Accuracy,
		"bias":           w.Analysis.Bias,
		"sensationalism": w.Analysis.Sensationalism,
		"quality":        w.Analysis.Quality,
	} {
		if err := checkText("analysis."+name, v); err != nil {
			return err
		}
	}
	if w.RedFlags == nil {
		return errors.New("red_flags missing")
	}
	return nil
}

// CredibilityFallback is the fixed judgment used when the article could not
// be assessed.
func CredibilityFallback(reason string) CredibilityJudgment {
	const unknown = "Unable to determine."
	return CredibilityJudgment{
		Score: 50,
		Bias:  "unknown",
		Analysis: models.CredibilityAnalysis{
			Accuracy:       "Could not fully analyze: " + reason,
			Bias:           unknown,
			Sensationalism: unknown,
			Quality:        unknown,
		},
		RedFlags: []string{},
	}
}

type articleData struct {
	URL, Domain, Title, Author, Date, Text string
}

func (j *Judge) Credibility(ctx context.Context, a articleData) CredibilityJudgment {
	raw, err := j.ask(ctx, PromptCredibility, a)
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return CredibilityFallback("Groq API key not configured.")
	case err != nil:
		logJudgmentError("credibility", err)
		return CredibilityFallback("the language model did not respond.")
	}

	var w credibilityWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("credibility", err)
		return CredibilityFallback("Response format was unexpected.")
	}
	flags := []string{}
	for _, f := range *w.RedFlags {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, f)
		}
	}
	return CredibilityJudgment{
		Score: score(w.Score),
		Bias:  *w.Bias,
		Analysis: models.CredibilityAnalysis{
			Accuracy:       *w.Analysis.Accuracy,
			Bias:           *w.Analysis.Bias,
			Sensationalism: *w.Analysis.Sensationalism,
			Quality:        *w.Analysis.Quality,
		},
		RedFlags: flags,
	}
}

// ── Article claims ──────────────────────────────────────────────────────────

const maxArticleClaims = 3

type claimList []string

func (c *claimList) validate() error { return nil }

// ExtractClaims returns up to three checkable claims from an article, or
// none when the model fails.
func (j *Judge) ExtractClaims(ctx context.Context, a articleData) []string {
	raw, err := j.ask(ctx, PromptClaimExtraction, a)
	if err != nil {
		logJudgmentError("claim extraction", err)
		return nil
	}
	var list claimList
	if err := decodeJudgment(raw, &list); err != nil {
		logJudgmentError("claim extraction", err)
		return nil
	}

	var claims []string
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			claims = append(claims, c)
		}
		if len(claims) == maxArticleClaims {
			break
		}
	}
	return claims
}

const (
	ClaimVerified   = "VERIFIED"
	ClaimUnverified = "UNVERIFIED"
	ClaimFalse      = "FALSE"
)

type singleClaimWire struct {
	Verdict *string `json:"verdict"`
}

func (w *singleClaimWire) validate() error {
	return checkEnum("verdict", w.Verdict, ClaimVerified, ClaimUnverified, ClaimFalse)
}

// ClaimVerdict judges one extracted claim; UNVERIFIED on any failure.
func (j *Judge) ClaimVerdict(ctx context.Context, claim string, sources []models.Source) string {
	raw, err := j.ask(ctx, PromptSingleClaim, struct {
		Claim   string
		Sources []models.Source
	}{claim, sources})
	if err != nil {
		logJudgmentError("claim verdict", err)
		return ClaimUnverified
	}
	var w singleClaimWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("claim verdict", err)
		return ClaimUnverified
	}
	return *w.Verdict
}

// ── Phishing ────────────────────────────────────────────────────────────────

type phishingWire struct {
	Explanation    *string `json:"explanation"`
	AttackType     *string `json:"attack_type"`
	Recommendation *string `json:"recommendation"`
}

func (w *phishingWire) validate() error {
	if err := checkText("explanation", w.Explanation); err != nil {
		return err
	}
	if err := checkText("attack_type", w.AttackType); err != nil {
		return err
	}
	return checkText("recommendation", w.Recommendation)
}

var PhishingFallback = models.PhishingAI{
	Explanation:    "AI analysis unavailable. The verdict is based on the automated checks only.",
	AttackType:     "Unknown",
	Recommendation: "Do not enter credentials on this page until you have verified the link through an official channel.",
}

type phishingData struct {
	URL, Hostname string
	Risk          int
	Verdict       risk.Category
	DomainAge     string
	Signals       []string
}

func (j *Judge) Phishing(ctx context.Context, d phishingData) models.PhishingAI {
	raw, err := j.ask(ctx, PromptPhishing, d)
	if err != nil {
		logJudgmentError("phishing", err)
		return PhishingFallback
	}
	var w phishingWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("phishing", err)
		return PhishingFallback
	}
	return models.PhishingAI{
		Explanation:    *w.Explanation,
		AttackType:     *w.AttackType,
		Recommendation: *w.Recommendation,
	}
}

// ── Image ───────────────────────────────────────────────────────────────────

type ImageJudgment struct {
	AIProbability    int
	ManipulationType string
	Explanation      string
	Recommendation   string
}

type imageWire struct {
	AIProbability    *float64 `json:"ai_probability"`
	ManipulationType *string  `json:"manipulation_type"`
	Explanation      *string  `json:"explanation"`
	Recommendation   *string  `json:"recommendation"`
}

func (w *imageWire) validate() error {
	if err := checkScore("ai_probability", w.AIProbability); err != nil {
		return err
	}
	if err := checkText("manipulation_type", w.ManipulationType); err != nil {
		return err
	}
	if err := checkText("explanation", w.Explanation); err != nil {
		return err
	}
	return checkText("recommendation", w.Recommendation)
}

var ImageFallback = ImageJudgment{
	ManipulationType: "Unknown",
	Explanation:      "AI analysis unavailable. The verdict is based on image statistics and metadata only.",
	Recommendation:   "Run a reverse image search before sharing this image.",
}

type imageData struct {
	Width, Height int
	Format        string
	Exif          map[string]string
	Signals       []string
}

// Image asks the vision model about the image. ok is false when the
// fallback was used, so the caller can mark the model layer unchecked.
func (j *Judge) Image(ctx context.Context, img []byte, mimeType string, d imageData) (out ImageJudgment, ok bool) {
	prompt, err := j.prompts.Render(PromptImage, d)
	if err != nil {
		logJudgmentError("image", err)
		return ImageFallback, false
	}
	raw, err := j.vision.AskImage(ctx, prompt, img, mimeType)
	if err != nil {
		logJudgmentError("image", err)
		return ImageFallback, false
	}
	var w imageWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("image", err)
		return ImageFallback, false
	}
	return ImageJudgment{
		AIProbability:    score(w.AIProbability),
		ManipulationType: *w.ManipulationType,
		Explanation:      *w.Explanation,
		Recommendation:   *w.Recommendation,
	}, true
}

// ── Audio ───────────────────────────────────────────────────────────────────

type DeepfakeJudgment struct {
	Label         risk.Category
	AIProbability int
	AnalysisType  string
	Explanation   string
}

type deepfakeWire struct {
	Label         *string  `json:"label"`
	AIProbability *float64 `json:"ai_probability"`
	AnalysisType  *string  `json:"analysis_type"`
	Explanation   *string  `json:"explanation"`
}

func (w *deepfakeWire) validate() error {
	if err := checkEnum("label", w.Label, string(risk.LikelyReal), string(risk.Uncertain), string(risk.LikelyFake)); err != nil {
		return err
	}
	if err := checkScore("ai_probability", w.AIProbability); err != nil {
		return err
	}
	if err := checkText("analysis_type", w.AnalysisType); err != nil {
		return err
	}
	return checkText("explanation", w.Explanation)
}

var DeepfakeFallback = DeepfakeJudgment{
	Label:        risk.Uncertain,
	AnalysisType: "Acoustic analysis only",
	Explanation:  "AI analysis unavailable. The verdict is based on acoustic statistics only.",
}

type audioData struct {
	DurationSeconds float64
	Signals         []string
	Transcript      string
}

// Deepfake reports false when the fallback was used; the model layer is then
// left unchecked.
func (j *Judge) Deepfake(ctx context.Context, d audioData) (DeepfakeJudgment, bool) {
	raw, err := j.ask(ctx, PromptAudioDeepfake, d)
	if err != nil {
		logJudgmentError("deepfake", err)
		return DeepfakeFallback, false
	}
	var w deepfakeWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("deepfake", err)
		return DeepfakeFallback, false
	}
	return DeepfakeJudgment{
		Label:         risk.Category(*w.Label),
		AIProbability: score(w.AIProbability),
		AnalysisType:  *w.AnalysisType,
		Explanation:   *w.Explanation,
	}, true
}

type ScamJudgment struct {
	Likelihood int
	Patterns   []string
}

type scamWire struct {
	Likelihood *float64  `json:"scam_likelihood"`
	Patterns   *[]string `json:"patterns"`
}

func (w *scamWire) validate() error {
	if err := checkScore("scam_likelihood", w.Likelihood); err != nil {
		return err
	}
	if w.Patterns == nil {
		return errors.New("patterns missing")
	}
	return nil
}

// ScamLikelihood rates the transcript for social-engineering patterns.
// Without a transcript, or on any failure, the likelihood is zero.
func (j *Judge) ScamLikelihood(ctx context.Context, transcript string) ScamJudgment {
	none := ScamJudgment{Patterns: []string{}}
	if strings.TrimSpace(transcript) == "" {
		return none
	}
	raw, err := j.ask(ctx, PromptAudioScam, struct{ Transcript string }{transcript})
	if err != nil {
		logJudgmentError("scam likelihood", err)
		return none
	}
	var w scamWire
	if err := decodeJudgment(raw, &w); err != nil {
		logJudgmentError("scam likelihood", err)
		return none
	}
	patterns := []string{}
	for _, p := range *w.Patterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return ScamJudgment{Likelihood: score(w.Likelihood), Patterns: patterns}
}

func logJudgmentError(what string, err error) {
	if errors.Is(err, ErrModelUnavailable) {
		log.Printf("[JUDGE] %s: model not configured, using fallback", what)
		return
	}
	log.Printf("[JUDGE] ⚠ %s: %v, using fallback", what, err)
}
