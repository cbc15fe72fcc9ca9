package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"truthlens/config"
	"truthlens/models"
	"truthlens/risk"
	"truthlens/signals"
)

const (
	LayerHeuristics   = "heuristics"
	LayerWhois        = "whois"
	LayerSSL          = "ssl"
	LayerSafeBrowsing = "safe_browsing"
)

// PhishingService scores a link through four deterministic layers and then
// asks the model to explain the result.
type PhishingService struct {
	whois   signals.WhoisLookup
	certs   signals.CertProber
	threats signals.ThreatLister
	judge   *Judge
	scoring config.Scoring
	now     func() time.Time
}

func NewPhishingService(whois signals.WhoisLookup, certs signals.CertProber, threats signals.ThreatLister, judge *Judge, scoring config.Scoring) *PhishingService {
	return &PhishingService{
		whois:   whois,
		certs:   certs,
		threats: threats,
		judge:   judge,
		scoring: scoring,
		now:     time.Now,
	}
}

// normalizeLink accepts a bare host or a full http(s) URL.
func normalizeLink(raw string) (string, *url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, invalid("URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", nil, invalid("Invalid URL: %s", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, invalid("Only http and https URLs can be checked")
	}
	return raw, u, nil
}

// Analyze runs the phishing pipeline. Only malformed input is an error;
// every unavailable layer degrades to zero points.
func (s *PhishingService) Analyze(ctx context.Context, rawURL string) (*models.PhishingResult, error) {
	link, u, err := normalizeLink(rawURL)
	if err != nil {
		return nil, err
	}
	host := strings.ToLower(u.Hostname())
	log.Printf("[PHISHING] ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("[PHISHING] 🎣 Checking %s", link)

	now := s.now()
	heur := signals.URLHeuristics(rawURL, s.scoring.URL)
	age := signals.DomainAge(ctx, s.whois, host, now, s.scoring.DomainAge)
	cert := signals.Certificate(ctx, s.certs, u.Scheme, host, u.Port(), now, s.scoring.Certificate)
	threat := signals.ThreatList(ctx, s.threats, link, s.scoring.ThreatList)

	v := risk.Aggregate(s.scoring.Verdicts.Phishing, risk.PhishingScale,
		risk.NewLayer(LayerHeuristics, heur),
		layerOf(LayerWhois, age.Contribution, age.Checked),
		layerOf(LayerSSL, cert.Contribution, cert.Checked),
		layerOf(LayerSafeBrowsing, threat.Contribution, threat.Checked),
	)
	log.Printf("[PHISHING] 📊 heuristics=%d whois=%d ssl=%d safe_browsing=%d → %d %s",
		heur.Points, age.Points, cert.Points, threat.Points, v.TotalRisk(), v.Category())

	data := phishingData{
		URL:      link,
		Hostname: host,
		Risk:     v.TotalRisk(),
		Verdict:  v.Category(),
		Signals:  v.Signals(),
	}
	if age.AgeDays != nil {
		data.DomainAge = fmt.Sprintf("%d days", *age.AgeDays)
	}
	ai := s.judge.Phishing(ctx, data)
	if v.Category() == risk.Dangerous && strings.EqualFold(strings.TrimSpace(ai.AttackType), "none") {
		ai.AttackType = "Suspected phishing"
	}

	res := &models.PhishingResult{
		URL:       link,
		Hostname:  host,
		RiskScore: v.TotalRisk(),
		Verdict:   string(v.Category()),
		Signals:   v.Signals(),
		Layers: models.PhishingLayers{
			Heuristics: layerResult(heur),
			Whois: models.WhoisLayer{
				LayerResult:   layerResult(age.Contribution),
				Checked:       age.Checked,
				DomainAgeDays: age.AgeDays,
			},
			SSL: models.SSLLayer{
				LayerResult: layerResult(cert.Contribution),
				Checked:     cert.Checked,
			},
			SafeBrowsing: models.SafeBrowsingLayer{
				LayerResult: layerResult(threat.Contribution),
				Checked:     threat.Checked,
			},
		},
		AIAnalysis: ai,
	}
	if cert.Info != nil {
		res.Layers.SSL.Info = &models.SSLInfo{
			Issuer:    cert.Info.Issuer,
			ExpiresAt: cert.Info.NotAfter.UTC().Format(time.RFC3339),
		}
	}
	log.Printf("[PHISHING] ✓ %s → %s (%d)", host, res.Verdict, res.RiskScore)
	return res, nil
}

func layerOf(name string, c risk.Contribution, checked bool) risk.Layer {
	l := risk.NewLayer(name, c)
	l.Checked = checked
	return l
}

func layerResult(c risk.Contribution) models.LayerResult {
	signals := c.Signals
	if signals == nil {
		signals = []string{}
	}
	return models.LayerResult{Risk: c.Points, Signals: signals}
}
