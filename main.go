package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"truthlens/cache"
	"truthlens/config"
	"truthlens/database"
	"truthlens/handlers"
	"truthlens/logger"
	"truthlens/services"
	"truthlens/signals"
)

const probeTimeout = 5 * time.Second

func main() {
	log.SetOutput(logger.Instance)
	log.Println("🚀 Starting TruthLens...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Could not load configuration:", err)
	}
	_, restoreLog := logger.Init(cfg.LogLevel, logger.Instance)
	defer restoreLog()

	scoring, err := config.LoadScoring(cfg.ScoringFile)
	if err != nil {
		log.Fatal("❌ Could not load scoring:", err)
	}
	prompts, err := services.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		log.Fatal("❌ Could not load prompts:", err)
	}
	log.Printf("✓ Configuration loaded")

	ctx := context.Background()
	store := database.Open(ctx, cfg.DbUrl)
	defer store.Close()
	rdb := cache.Open(ctx, cfg.RedisUrl)
	defer rdb.Close()

	quotas := services.NewQuotaTracker()

	var (
		model       services.ModelClient  = services.NoModel{}
		vision      services.VisionClient = services.NoModel{}
		transcriber services.Transcriber  = services.NoModel{}
	)
	if cfg.ModelAPIKey != "" {
		client := services.NewOpenAIClient(cfg, quotas)
		model, vision, transcriber = client, client, client
		log.Printf("  - Model: %s (backup: %s)", cfg.Model, orNone(cfg.ModelBackup))
		log.Printf("  - Vision: %s, transcription: %s", cfg.VisionModel, cfg.TranscribeModel)
	} else {
		log.Printf("  - Model: disabled, fallback judgments only")
	}

	var search, factCheck services.EvidenceSearcher = services.NoSearch{}, services.NoSearch{}
	if cfg.SerpAPIKey != "" {
		search = services.NewSerpAPIClient(cfg.SerpAPIKey)
		log.Printf("  - SerpAPI: enabled ✓")
	}
	if cfg.GoogleFactCheckAPIKey != "" {
		factCheck = services.NewGoogleFactCheckClient(cfg.GoogleFactCheckAPIKey)
		log.Printf("  - Google Fact Check: enabled ✓")
	}

	var whois signals.WhoisLookup = signals.NoWhois{}
	if cfg.WhoisEnabled {
		whois = signals.NewWhoisClient(probeTimeout)
	}
	var threats signals.ThreatLister = signals.NoThreatList{}
	if cfg.SafeBrowsingAPIKey != "" {
		threats = signals.NewSafeBrowsingClient(cfg.SafeBrowsingAPIKey, probeTimeout)
		log.Printf("  - Safe Browsing: enabled ✓")
	}

	var domains services.DomainRecorder
	var curated services.CuratedSource
	if store != nil {
		domains, curated = store, store
	}

	judge := services.NewJudge(model, vision, prompts)
	verifyService := services.NewVerifyService(judge, search, factCheck, services.NewHTMLFetcher(), domains, scoring.Verdicts)
	phishingService := services.NewPhishingService(whois, signals.TLSProber{Timeout: probeTimeout}, threats, judge, scoring)
	imageService := services.NewImageService(judge, scoring)
	audioService := services.NewAudioService(transcriber, judge, scoring)
	trendingService := services.NewTrendingService(rdb, curated, cfg.TrendingURLs, cfg.TrendingTTL)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.TrendingTTL), func() {
		if _, err := trendingService.Refresh(context.Background()); err != nil {
			log.Printf("[TRENDING] ⚠ Scheduled refresh failed: %v", err)
		}
	}); err != nil {
		log.Fatal("❌ Could not schedule trending refresh:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	analyzeHandler := handlers.NewAnalyzeHandler(verifyService, phishingService)
	mediaHandler := handlers.NewMediaHandler(imageService, audioService)
	infoHandler := handlers.NewInfoHandler(cfg, trendingService)
	adminHandler := handlers.NewAdminHandler(cfg.AdminToken, quotas, logger.Instance, store)
	domainHandler := handlers.NewDomainHandler(store, scoring.Verdicts.Credibility)
	limiter := handlers.NewRateLimiter(cfg.RateLimitRPM)
	log.Println("✓ Services initialized")

	r := mux.NewRouter()
	r.Use(handlers.WithRequestID, handlers.Recover)

	// The web client calls every route under /api.
	route := func(path string, h http.Handler, method string) {
		r.Handle(path, h).Methods(method)
		r.Handle("/api"+path, h).Methods(method)
	}
	limited := func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }

	route("/verify", limited(analyzeHandler.Verify), http.MethodPost)
	route("/phishing", limited(analyzeHandler.Phishing), http.MethodPost)
	route("/image", limited(mediaHandler.Image), http.MethodPost)
	route("/audio", limited(mediaHandler.Audio), http.MethodPost)
	route("/trending", http.HandlerFunc(infoHandler.Trending), http.MethodGet)
	route("/health", http.HandlerFunc(infoHandler.Health), http.MethodGet)
	r.HandleFunc("/api/domain/{domain}", domainHandler.GetDomain).Methods(http.MethodGet)
	r.HandleFunc("/api/domains/top", domainHandler.GetTopDomains).Methods(http.MethodGet)
	r.HandleFunc("/", infoHandler.Root).Methods(http.MethodGet)

	// Admin API
	r.HandleFunc("/api/admin/logs", adminHandler.StreamLogs)
	r.HandleFunc("/api/admin/limits", adminHandler.AuthMiddleware(adminHandler.Limits)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/headlines", adminHandler.AuthMiddleware(adminHandler.AddHeadline)).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Token", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("🎯 TruthLens listening on http://localhost%s\n", addr)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("\n📝 Examples:")
	fmt.Printf(`   curl -X POST http://localhost%s/api/verify -H "Content-Type: application/json" -d '{"claim": "the earth is flat"}'`+"\n", addr)
	fmt.Printf(`   curl -X POST http://localhost%s/api/phishing -H "Content-Type: application/json" -d '{"url": "http://paypa1-login.tk/verify"}'`+"\n", addr)
	fmt.Println("\n" + strings.Repeat("=", 50) + "\n")

	log.Println("✓ Ready to accept requests...")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("❌ Server error:", err)
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
