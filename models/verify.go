package models

type VerifyRequest struct {
	Claim *string `json:"claim"`
}

const (
	InputText = "text"
	InputURL  = "url"
)

type TextClaimResult struct {
	Verdict         string   `json:"verdict"`
	Score           int      `json:"score"`
	Explanation     string   `json:"explanation"`
	VerifiedContext string   `json:"verified_context"`
	Sources         []Source `json:"sources"`
	Keywords        []string `json:"keywords"`
}

type Article struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
}

type CredibilityAnalysis struct {
	Accuracy       string `json:"accuracy"`
	Bias           string `json:"bias"`
	Sensationalism string `json:"sensationalism"`
	Quality        string `json:"quality"`
}

type KeyClaim struct {
	Claim   string   `json:"claim"`
	Verdict string   `json:"verdict"`
	Sources []Source `json:"sources"`
}

type URLAnalysisResult struct {
	URL              string              `json:"url"`
	Domain           string              `json:"domain"`
	Article          Article             `json:"article"`
	CredibilityScore int                 `json:"credibility_score"`
	Verdict          string              `json:"verdict"`
	BiasDetected     string              `json:"bias_detected"`
	Analysis         CredibilityAnalysis `json:"analysis"`
	RedFlags         []string            `json:"red_flags"`
	KeyClaims        []KeyClaim          `json:"key_claims"`
}
