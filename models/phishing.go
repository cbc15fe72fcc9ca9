package models

type PhishingRequest struct {
	URL string `json:"url"`
}

// LayerResult is one layer of a multi-layer risk breakdown.
type LayerResult struct {
	Risk    int      `json:"risk"`
	Signals []string `json:"signals"`
}

type WhoisLayer struct {
	LayerResult
	Checked       bool `json:"checked"`
	DomainAgeDays *int `json:"domain_age_days"`
}

type SSLInfo struct {
	Issuer    string `json:"issuer"`
	ExpiresAt string `json:"expires_at"`
}

type SSLLayer struct {
	LayerResult
	Checked bool     `json:"checked"`
	Info    *SSLInfo `json:"info"`
}

type SafeBrowsingLayer struct {
	LayerResult
	Checked bool `json:"checked"`
}

type PhishingLayers struct {
	Heuristics   LayerResult       `json:"heuristics"`
	Whois        WhoisLayer        `json:"whois"`
	SSL          SSLLayer          `json:"ssl"`
	SafeBrowsing SafeBrowsingLayer `json:"safe_browsing"`
}

type PhishingAI struct {
	Explanation    string `json:"explanation"`
	AttackType     string `json:"attack_type"`
	Recommendation string `json:"recommendation"`
}

type PhishingResult struct {
	URL        string         `json:"url"`
	Hostname   string         `json:"hostname"`
	RiskScore  int            `json:"risk_score"`
	Verdict    string         `json:"verdict"`
	Signals    []string       `json:"signals"`
	Layers     PhishingLayers `json:"layers"`
	AIAnalysis PhishingAI     `json:"ai_analysis"`
}
