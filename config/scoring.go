package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"truthlens/risk"
)

// Scoring holds every point value, cap and threshold used by the signal
// producers and the aggregator. Defaults match the production rules; a YAML
// file may override any subset of them.
type Scoring struct {
	URL         URLScoring         `yaml:"url"`
	DomainAge   DomainAgeScoring   `yaml:"domain_age"`
	Certificate CertificateScoring `yaml:"certificate"`
	ThreatList  ThreatListScoring  `yaml:"threat_list"`
	Image       ImageScoring       `yaml:"image"`
	Audio       AudioScoring       `yaml:"audio"`
	Verdicts    VerdictScoring     `yaml:"verdicts"`
}

type URLScoring struct {
	IPHost          int `yaml:"ip_host"`
	AtSign          int `yaml:"at_sign"`
	ManyDots        int `yaml:"many_dots"`
	Homoglyph       int `yaml:"homoglyph"`
	KeywordsMany    int `yaml:"keywords_many"`
	KeywordsOne     int `yaml:"keywords_one"`
	LengthOver100   int `yaml:"length_over_100"`
	LengthOver75    int `yaml:"length_over_75"`
	HyphenatedLabel int `yaml:"hyphenated_label"`
	NonStandardPort int `yaml:"non_standard_port"`
	Shortener       int `yaml:"shortener"`
	RiskyTLD        int `yaml:"risky_tld"`
	PlainHTTP       int `yaml:"plain_http"`
	DoubleSlash     int `yaml:"double_slash"`
	Cap             int `yaml:"cap"`

	SuspiciousKeywords []string `yaml:"suspicious_keywords"`
	Shorteners         []string `yaml:"shorteners"`
	RiskyTLDs          []string `yaml:"risky_tlds"`
}

type DomainAgeScoring struct {
	UnderMonth    int `yaml:"under_30_days"`
	UnderHalfYear int `yaml:"under_180_days"`
	UnderYear     int `yaml:"under_365_days"`
	Unknown       int `yaml:"unknown"`
}

type CertificateScoring struct {
	Expired            int `yaml:"expired"`
	ExpiringSoon       int `yaml:"expiring_soon"`
	ExpiringWithinDays int `yaml:"expiring_within_days"`
	Invalid            int `yaml:"invalid"`
	NoTLS              int `yaml:"no_tls"`
}

type ThreatListScoring struct {
	Match int `yaml:"match"`
}

type ImageScoring struct {
	PowerOfTwo        int     `yaml:"power_of_two"`
	PerfectSquare     int     `yaml:"perfect_square"`
	Smooth            int     `yaml:"smooth"`
	SmoothStdDev      float64 `yaml:"smooth_stddev"`
	Alpha             int     `yaml:"alpha"`
	ExtremeResolution int     `yaml:"extreme_resolution"`
	ExtremeMaxSide    int     `yaml:"extreme_max_side"`
	ExtremeMinSide    int     `yaml:"extreme_min_side"`
	Cap               int     `yaml:"cap"`

	ExifAITool int      `yaml:"exif_ai_tool"`
	AITools    []string `yaml:"ai_tools"`

	// ModelWeight scales the vision judgment's AI probability into points.
	ModelWeight float64 `yaml:"model_weight"`

	// MaxPixels bounds width x height before an image is decoded.
	MaxPixels int `yaml:"max_pixels"`
}

type AudioScoring struct {
	DigitalSilence   int     `yaml:"digital_silence"`
	SilenceFraction  float64 `yaml:"silence_fraction"`
	LowCutoff        int     `yaml:"low_cutoff"`
	CutoffHz         float64 `yaml:"cutoff_hz"`
	PitchStability   int     `yaml:"pitch_stability"`
	ZCRVariance      float64 `yaml:"zcr_variance"`
	ScamWeight       float64 `yaml:"scam_weight"`
	ModelWeight      float64 `yaml:"model_weight"`
	AcousticOverride int     `yaml:"acoustic_override"`
}

type VerdictScoring struct {
	Phishing    risk.Thresholds `yaml:"phishing"`
	Image       risk.Thresholds `yaml:"image"`
	Audio       risk.Thresholds `yaml:"audio"`
	Credibility risk.Thresholds `yaml:"credibility"`
	Claim       risk.Thresholds `yaml:"claim"`
}

func DefaultScoring() Scoring {
	return Scoring{
		URL: URLScoring{
			IPHost:          30,
			AtSign:          20,
			ManyDots:        20,
			Homoglyph:       25,
			KeywordsMany:    15,
			KeywordsOne:     8,
			LengthOver100:   10,
			LengthOver75:    5,
			HyphenatedLabel: 15,
			NonStandardPort: 10,
			Shortener:       10,
			RiskyTLD:        12,
			PlainHTTP:       10,
			DoubleSlash:     8,
			Cap:             60,
			SuspiciousKeywords: []string{
				"login", "signin", "sign-in", "verify", "verification", "account",
				"update", "secure", "security", "banking", "confirm", "password",
				"wallet", "suspend", "unlock", "billing", "invoice", "webscr", "ebayisapi",
			},
			Shorteners: []string{
				"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly",
				"rebrand.ly", "cutt.ly", "shorturl.at", "tiny.cc", "rb.gy", "t.ly",
			},
			RiskyTLDs: []string{
				".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".work", ".click",
				".link", ".zip", ".mov", ".country", ".kim", ".loan", ".men", ".party",
			},
		},
		DomainAge: DomainAgeScoring{
			UnderMonth:    40,
			UnderHalfYear: 20,
			UnderYear:     10,
			Unknown:       5,
		},
		Certificate: CertificateScoring{
			Expired:            25,
			ExpiringSoon:       10,
			ExpiringWithinDays: 14,
			Invalid:            20,
			NoTLS:              15,
		},
		ThreatList: ThreatListScoring{Match: 60},
		Image: ImageScoring{
			PowerOfTwo:        15,
			PerfectSquare:     5,
			Smooth:            10,
			SmoothStdDev:      25,
			Alpha:             8,
			ExtremeResolution: 5,
			ExtremeMaxSide:    4096,
			ExtremeMinSide:    128,
			Cap:               30,
			ExifAITool:        40,
			AITools: []string{
				"midjourney", "dall-e", "dall·e", "stable diffusion", "stablediffusion",
				"firefly", "novelai", "leonardo", "comfyui", "automatic1111", "invokeai",
				"dreamstudio", "imagen", "flux",
			},
			ModelWeight: 0.6,
			MaxPixels:   50_000_000,
		},
		Audio: AudioScoring{
			DigitalSilence:   20,
			SilenceFraction:  0.10,
			LowCutoff:        10,
			CutoffHz:         8500,
			PitchStability:   15,
			ZCRVariance:      0.0001,
			ScamWeight:       0.6,
			ModelWeight:      0.6,
			AcousticOverride: 40,
		},
		Verdicts: VerdictScoring{
			Phishing:    risk.Thresholds{Low: 30, High: 60},
			Image:       risk.Thresholds{Low: 31, High: 66},
			Audio:       risk.Thresholds{Low: 31, High: 66},
			Credibility: risk.Thresholds{Low: 31, High: 70},
			Claim:       risk.Thresholds{Low: 31, High: 70},
		},
	}
}

// LoadScoring returns the default scoring overlaid with the YAML file at path.
// An empty path yields the defaults.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	if path == "" {
		return s, nil
	}

	log.Printf("[CONFIG] Loading scoring overrides from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read scoring file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse scoring file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s Scoring) Validate() error {
	bands := map[string]risk.Thresholds{
		"phishing":    s.Verdicts.Phishing,
		"image":       s.Verdicts.Image,
		"audio":       s.Verdicts.Audio,
		"credibility": s.Verdicts.Credibility,
		"claim":       s.Verdicts.Claim,
	}
	for name, b := range bands {
		if b.Low <= 0 || b.High <= b.Low || b.High > 100 {
			return fmt.Errorf("scoring: %s thresholds must satisfy 0 < low < high <= 100, got %d/%d", name, b.Low, b.High)
		}
	}
	if s.URL.Cap < 0 || s.Image.Cap < 0 {
		return fmt.Errorf("scoring: caps must be non-negative")
	}
	if s.Image.MaxPixels <= 0 {
		return fmt.Errorf("scoring: image max_pixels must be positive")
	}
	if s.Image.ModelWeight < 0 || s.Audio.ScamWeight < 0 || s.Audio.ModelWeight < 0 {
		return fmt.Errorf("scoring: weights must be non-negative")
	}
	return nil
}
