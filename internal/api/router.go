package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verisight-labs/verisight/internal/api/handlers"
	mw "github.com/verisight-labs/verisight/internal/api/middleware"
	"github.com/verisight-labs/verisight/internal/config"
	"github.com/verisight-labs/verisight/internal/crossref"
	"github.com/verisight-labs/verisight/internal/domain"
	"github.com/verisight-labs/verisight/internal/forensic"
	"github.com/verisight-labs/verisight/internal/orchestrator"
	"github.com/verisight-labs/verisight/internal/redteam"
	"github.com/verisight-labs/verisight/internal/service"
	"github.com/verisight-labs/verisight/internal/storage"
	"github.com/verisight-labs/verisight/internal/store"
	"github.com/verisight-labs/verisight/internal/vision"
	"go.uber.org/zap"
)

// App holds the router and request metrics for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	// Stores
	caseStore := store.NewCaseStore(db)
	opinionStore := store.NewOpinionStore(db)
	resultStore := store.NewResultStore(db)

	// Vision client via provider factory. A misconfigured provider degrades
	// to mock rather than blocking startup: the vision providers already
	// carry placeholder fallbacks for unusable model responses.
	visionClient, err := vision.NewClient(config.VisionProvider(), config.VisionAPIKey())
	if err != nil {
		logger.Warn("vision client initialization failed, falling back to mock",
			zap.String("provider", config.VisionProvider()), zap.Error(err))
		visionClient = vision.NewMockClient()
	} else {
		logger.Info("vision client initialized", zap.String("provider", config.VisionProvider()))
	}

	// Opinion providers
	forensicProvider := forensic.NewAnalyzer(logger)
	physicalProvider := vision.NewPhysicalProvider(visionClient, logger)
	contextualProvider := vision.NewContextualProvider(visionClient, logger)
	aiGenProvider := vision.NewAIGenerationProvider(visionClient, logger)

	// Pipeline engines
	crossRef := crossref.NewEngine()
	redTeam := redteam.NewEngine(redteam.NewHistory(config.CritiqueHistorySize()), logger)
	pipeline := orchestrator.New(
		forensicProvider, physicalProvider, contextualProvider, aiGenProvider,
		crossRef, redTeam, logger,
	)

	fileStore, err := storage.NewLocalStore(config.UploadDir())
	if err != nil {
		return nil, err
	}

	// Services
	verificationSvc := service.NewVerificationService(
		caseStore, opinionStore, resultStore, fileStore, pipeline, logger,
	)

	// Handlers
	verifyHandler := handlers.NewVerifyHandler(verificationSvc, config.MaxUploadBytes())

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(metricsCollector.Middleware)                                  // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/verify", func(r chi.Router) {
			r.Post("/", verifyHandler.Submit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", verifyHandler.GetByID)
				r.Post("/hitl", verifyHandler.RequestHITL)
			})
		})
	})

	return app, nil
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores, providers, and clients satisfy interfaces at compile time.
var (
	_ domain.CaseStore    = (*store.CaseStore)(nil)
	_ domain.OpinionStore = (*store.OpinionStore)(nil)
	_ domain.ResultStore  = (*store.ResultStore)(nil)

	_ domain.OpinionProvider = (*forensic.Analyzer)(nil)
	_ domain.OpinionProvider = (*vision.PhysicalProvider)(nil)
	_ domain.OpinionProvider = (*vision.ContextualProvider)(nil)
	_ domain.OpinionProvider = (*vision.AIGenerationProvider)(nil)

	_ vision.Client = (*vision.AnthropicClient)(nil)
	_ vision.Client = (*vision.OpenAIClient)(nil)
	_ vision.Client = (*vision.MockClient)(nil)

	_ service.Analyzer  = (*orchestrator.Orchestrator)(nil)
	_ service.FileStore = (*storage.LocalStore)(nil)
)
