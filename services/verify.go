package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"truthlens/config"
	"truthlens/models"
	"truthlens/risk"
)

// DomainRecorder keeps a running credibility average per news domain.
type DomainRecorder interface {
	RecordDomainScore(ctx context.Context, domain string, score int) error
}

const (
	claimKeywords      = 5
	sourcesPerKeyClaim = 2
)

// VerifyService runs the two /verify pipelines: a free-text claim checked
// against search evidence, and an article URL rated for credibility.
type VerifyService struct {
	judge     *Judge
	search    EvidenceSearcher
	factCheck EvidenceSearcher
	fetcher   ContentFetcher
	domains   DomainRecorder
	verdicts  config.VerdictScoring
}

func NewVerifyService(judge *Judge, search, factCheck EvidenceSearcher, fetcher ContentFetcher, domains DomainRecorder, verdicts config.VerdictScoring) *VerifyService {
	if search == nil {
		search = NoSearch{}
	}
	if factCheck == nil {
		factCheck = NoSearch{}
	}
	return &VerifyService{
		judge:     judge,
		search:    search,
		factCheck: factCheck,
		fetcher:   fetcher,
		domains:   domains,
		verdicts:  verdicts,
	}
}

// Verify classifies the input and dispatches it. It returns the input type
// alongside the result so that failures can still report it.
func (s *VerifyService) Verify(ctx context.Context, input string) (string, any, error) {
	kind, normalized := Classify(input)
	if normalized == "" {
		return kind, nil, invalid("Input cannot be empty")
	}
	if kind == models.InputURL {
		res, err := s.AnalyzeURL(ctx, normalized)
		if err != nil {
			return kind, nil, err
		}
		return kind, res, nil
	}
	res, err := s.VerifyText(ctx, normalized)
	if err != nil {
		return kind, nil, err
	}
	return kind, res, nil
}

// VerifyText checks a free-text claim.
func (s *VerifyService) VerifyText(ctx context.Context, claim string) (*models.TextClaimResult, error) {
	if err := ValidateClaim(claim); err != nil {
		return nil, err
	}
	log.Printf("[VERIFY] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("[VERIFY] 📋 Text claim (%d chars): %s", len([]rune(claim)), truncate(claim, 80))

	log.Printf("[VERIFY] 🔑 STEP 1/3 - Extracting keywords")
	keywords := s.judge.Keywords(ctx, claim)

	log.Printf("[VERIFY] 🌐 STEP 2/3 - Searching evidence for %v", keywords)
	sources := s.evidence(ctx, strings.Join(keywords, " "))

	log.Printf("[VERIFY] 🤖 STEP 3/3 - Judging against %d sources", len(sources))
	j := s.judge.TextClaim(ctx, claim, sources)
	verdict := s.verdicts.Claim.Classify(j.Score, risk.ClaimScale)

	log.Printf("[VERIFY] ✓ %s (score %d)", verdict, j.Score)
	return &models.TextClaimResult{
		Verdict:         string(verdict),
		Score:           j.Score,
		Explanation:     j.Explanation,
		VerifiedContext: j.VerifiedContext,
		Sources:         sources,
		Keywords:        keywords,
	}, nil
}

// evidence merges search results with published fact checks. Either
// collaborator failing just leaves its part empty.
func (s *VerifyService) evidence(ctx context.Context, query string) []models.Source {
	sources := []models.Source{}
	found, err := s.search.Search(ctx, query)
	logSearchError("search", err)
	sources = append(sources, found...)

	checks, err := s.factCheck.Search(ctx, query)
	logSearchError("fact check", err)
	return append(sources, checks...)
}

func logSearchError(what string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrSearchUnavailable):
		log.Printf("[VERIFY] ⚠ %s not configured, skipping", what)
	default:
		log.Printf("[VERIFY] ⚠ %s failed: %v", what, err)
	}
}

// AnalyzeURL rates an article's credibility and checks its key claims. Only
// a failed fetch fails the request.
func (s *VerifyService) AnalyzeURL(ctx context.Context, rawURL string) (*models.URLAnalysisResult, error) {
	log.Printf("[VERIFY] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("[VERIFY] 🌐 STEP 1/3 - Fetching %s", rawURL)

	article, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &FetchError{Reason: fmt.Sprintf("Could not fetch article: %v", err), Err: err}
	}

	data := articleData{
		URL:    article.URL,
		Domain: article.Domain,
		Title:  article.Title,
		Author: article.Author,
		Date:   article.Date,
		Text:   article.Text,
	}

	log.Printf("[VERIFY] 🔎 STEP 2/3 - Rating credibility of %s", article.Domain)
	cred := s.judge.Credibility(ctx, data)
	verdict := s.verdicts.Credibility.Classify(cred.Score, risk.CredibilityScale)

	log.Printf("[VERIFY] 📋 STEP 3/3 - Checking key claims")
	claims := s.judge.ExtractClaims(ctx, data)
	keyClaims := make([]models.KeyClaim, 0, len(claims))
	for _, claim := range claims {
		sources, err := s.search.Search(ctx, strings.Join(firstWords(claim, claimKeywords), " "))
		logSearchError("search", err)
		if sources == nil {
			sources = []models.Source{}
		}
		kc := models.KeyClaim{
			Claim:   claim,
			Verdict: s.judge.ClaimVerdict(ctx, claim, sources),
			Sources: sources,
		}
		if len(kc.Sources) > sourcesPerKeyClaim {
			kc.Sources = kc.Sources[:sourcesPerKeyClaim]
		}
		keyClaims = append(keyClaims, kc)
	}

	if s.domains != nil {
		if err := s.domains.RecordDomainScore(ctx, article.Domain, cred.Score); err != nil {
			log.Printf("[VERIFY] ⚠ Could not record domain score for %s: %v", article.Domain, err)
		}
	}

	log.Printf("[VERIFY] ✓ %s: %s (score %d, %d claims)", article.Domain, verdict, cred.Score, len(keyClaims))
	return &models.URLAnalysisResult{
		URL:    article.URL,
		Domain: article.Domain,
		Article: models.Article{
			Title:   article.Title,
			Author:  article.Author,
			Date:    article.Date,
			Excerpt: article.Excerpt,
		},
		CredibilityScore: cred.Score,
		Verdict:          string(verdict),
		BiasDetected:     cred.Bias,
		Analysis:         cred.Analysis,
		RedFlags:         cred.RedFlags,
		KeyClaims:        keyClaims,
	}, nil
}
