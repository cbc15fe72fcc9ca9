package risk

// Category is the coarse classification derived from a total score.
type Category string

const (
	Safe       Category = "SAFE"
	Suspicious Category = "SUSPICIOUS"
	Dangerous  Category = "DANGEROUS"

	LikelyReal Category = "LIKELY_REAL"
	Uncertain  Category = "UNCERTAIN"
	LikelyAI   Category = "LIKELY_AI"
	LikelyFake Category = "LIKELY_FAKE"

	NotCredible    Category = "NOT_CREDIBLE"
	Questionable   Category = "QUESTIONABLE"
	MostlyCredible Category = "MOSTLY_CREDIBLE"

	Fake Category = "FAKE"
	Real Category = "REAL"
)

// Scale names the three categories of one domain, lowest score first.
type Scale [3]Category

var (
	PhishingScale    = Scale{Safe, Suspicious, Dangerous}
	ImageScale       = Scale{LikelyReal, Uncertain, LikelyAI}
	AudioScale       = Scale{LikelyReal, Uncertain, LikelyFake}
	CredibilityScale = Scale{NotCredible, Questionable, MostlyCredible}
	ClaimScale       = Scale{Fake, Uncertain, Real}
)

// Contains reports whether c belongs to the scale.
func (s Scale) Contains(c Category) bool {
	return c == s[0] || c == s[1] || c == s[2]
}

// Highest is the category reached at or above the high threshold.
func (s Scale) Highest() Category { return s[2] }

// Thresholds splits [0,100] into three bands: score < Low is the first
// category, Low <= score < High the second, score >= High the third.
type Thresholds struct {
	Low  int `yaml:"low" json:"low"`
	High int `yaml:"high" json:"high"`
}

// Classify maps score onto scale.
func (t Thresholds) Classify(score int, scale Scale) Category {
	switch {
	case score >= t.High:
		return scale[2]
	case score >= t.Low:
		return scale[1]
	default:
		return scale[0]
	}
}
