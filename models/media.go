package models

type ImageURLRequest struct {
	ImageURL string `json:"image_url"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ImageAI struct {
	Explanation    string `json:"explanation"`
	Recommendation string `json:"recommendation"`
}

type ImageResult struct {
	Source           string            `json:"source"`
	Format           string            `json:"format"`
	Dimensions       Dimensions        `json:"dimensions"`
	FileSizeKB       float64           `json:"file_size_kb"`
	AIProbability    int               `json:"ai_probability"`
	Verdict          string            `json:"verdict"`
	ManipulationType string            `json:"manipulation_type"`
	Signals          []string          `json:"signals"`
	Exif             map[string]string `json:"exif"`
	AIAnalysis       ImageAI           `json:"ai_analysis"`
}

type AudioResult struct {
	FileName        string   `json:"file_name"`
	DurationSeconds float64  `json:"duration_seconds"`
	AIProbability   int      `json:"ai_probability"`
	Verdict         string   `json:"verdict"`
	AnalysisType    string   `json:"analysis_type"`
	Signals         []string `json:"signals"`
	Transcript      string   `json:"transcript"`
	Explanation     string   `json:"explanation"`
	ScamLikelihood  int      `json:"scam_likelihood"`
	ScamPatterns    []string `json:"scam_patterns"`
}
