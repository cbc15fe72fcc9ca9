package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// LLM (OpenAI-compatible endpoint, Groq by default)
	ModelAPIKey      string
	ModelBaseURL     string
	Model            string
	ModelBackup      string
	VisionModel      string
	TranscribeModel  string
	ModelTemperature float32

	SerpAPIKey            string
	GoogleFactCheckAPIKey string
	SafeBrowsingAPIKey    string
	WhoisEnabled          bool

	RedisUrl     string
	DbUrl        string
	TrendingURLs []string
	TrendingTTL  time.Duration

	AdminToken     string
	AllowedOrigins []string
	RateLimitRPM   int
	LogLevel       string
	ScoringFile    string
	PromptsFile    string
}

// Capabilities reports which optional external credentials are present.
// Presence only; nothing here checks that a key actually works.
type Capabilities struct {
	Model           bool `json:"groq_key_present"`
	Search          bool `json:"serpapi_key_present"`
	FactCheck       bool `json:"factcheck_key_present"`
	SafeBrowsing    bool `json:"safe_browsing_key_present"`
	Whois           bool `json:"whois_enabled"`
	Cache           bool `json:"redis_configured"`
	CuratedTrending bool `json:"database_configured"`
}

func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		Port:                  getEnvOrDefault("PORT", "10000"),
		ModelAPIKey:           strings.TrimSpace(firstEnv("GROQ_API_KEY", "OPENAI_API_KEY")),
		ModelBaseURL:          getEnvOrDefault("MODEL_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:                 getEnvOrDefault("MODEL", "llama-3.3-70b-versatile"),
		ModelBackup:           os.Getenv("MODEL_BACKUP"),
		VisionModel:           getEnvOrDefault("VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		TranscribeModel:       getEnvOrDefault("TRANSCRIBE_MODEL", "whisper-large-v3"),
		ModelTemperature:      float32(getEnvFloat("MODEL_TEMPERATURE", 0.3)),
		SerpAPIKey:            strings.TrimSpace(os.Getenv("SERPAPI_KEY")),
		GoogleFactCheckAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_FACTCHECK_API_KEY")),
		SafeBrowsingAPIKey:    strings.TrimSpace(os.Getenv("SAFE_BROWSING_API_KEY")),
		WhoisEnabled:          os.Getenv("WHOIS_DISABLED") != "true",
		RedisUrl:              os.Getenv("REDIS_URL"),
		DbUrl:                 os.Getenv("DB_URL"),
		TrendingURLs:          splitList(getEnvOrDefault("TRENDING_FEEDS", "https://www.snopes.com/feed/,https://www.politifact.com/rss/factchecks/")),
		TrendingTTL:           getEnvDuration("TRENDING_TTL", 30*time.Minute),
		AdminToken:            os.Getenv("ADMIN_TOKEN"),
		AllowedOrigins:        splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		RateLimitRPM:          getEnvInt("RATE_LIMIT_RPM", 30),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		ScoringFile:           os.Getenv("SCORING_FILE"),
		PromptsFile:           getEnvOrDefault("PROMPTS_FILE", "config/prompts.json"),
	}, nil
}

func (c *Config) Capabilities() Capabilities {
	return Capabilities{
		Model:           c.ModelAPIKey != "",
		Search:          c.SerpAPIKey != "",
		FactCheck:       c.GoogleFactCheckAPIKey != "",
		SafeBrowsing:    c.SafeBrowsingAPIKey != "",
		Whois:           c.WhoisEnabled,
		Cache:           c.RedisUrl != "",
		CuratedTrending: c.DbUrl != "",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
