// cmd/compliance-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"compliance-engine/internal/alerting"
	"compliance-engine/internal/analyzer"
	"compliance-engine/internal/common/config"
	"compliance-engine/internal/common/database"
	stderrors "compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/common/observability"
	"compliance-engine/internal/importer"
	"compliance-engine/internal/models"
	"compliance-engine/internal/screening"
	"compliance-engine/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting compliance manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("compliance-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire components ---
	watchlistRepo := storage.NewWatchlistRepository(pg.DB, log)
	historyRepo := storage.NewScreeningHistoryRepository(pg.DB, log)
	findingsRepo := storage.NewFindingsRepository(esClient.Client, cfg.Database.Elasticsearch.FindingsIndex, log)

	engine := analyzer.New(
		analyzer.Config{
			MinTextLength: cfg.Analyzer.MinTextLength,
			ContextChars:  cfg.Analyzer.ContextChars,
		},
		analyzer.DefaultScoringConfig(),
		log,
	)

	screener := screening.New(
		watchlistRepo, historyRepo, redis.Client,
		screening.Config{
			DefaultThreshold: cfg.Screening.DefaultThreshold,
			CacheTTL:         time.Duration(cfg.Screening.CacheTTL) * time.Second,
		},
		log,
	)

	notifier, err := alerting.New(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("alert notifier init failed", zap.Error(err))
	}

	csvImporter := importer.New(watchlistRepo, importer.Config{BatchSize: cfg.Importer.BatchSize}, log)

	api := &apiServer{
		engine:    engine,
		screener:  screener,
		notifier:  notifier,
		importer:  csvImporter,
		watchlist: watchlistRepo,
		findings:  findingsRepo,
		obs:       obs,
		errs:      stderrors.NewErrorHandler(log),
		logger:    log,
	}

	// --- API, Health & Metrics Server ---
	http.HandleFunc("/v1/analyze", api.handleAnalyze)
	http.HandleFunc("/v1/analyze/collection", api.handleAnalyzeCollection)
	http.HandleFunc("/v1/screen", api.handleScreen)
	http.HandleFunc("/v1/screen/batch", api.handleScreenBatch)
	http.HandleFunc("/v1/findings/search", api.handleFindingsSearch)
	http.HandleFunc("/v1/watchlist/import", api.handleImport)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pg.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unready", "reason": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	http.Handle("/metrics", promhttp.Handler())

	addr := cfg.App.MetricsAddr
	server := &http.Server{Addr: addr}
	go func() {
		zapLog.Info("API/Health/Metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Compliance manager stopped gracefully")
}

// apiServer exposes the engine's call contracts to the surrounding platform.
type apiServer struct {
	engine    *analyzer.Analyzer
	screener  *screening.Screener
	notifier  *alerting.Notifier
	importer  *importer.Importer
	watchlist *storage.WatchlistRepository
	findings  *storage.FindingsRepository
	obs       *observability.Observability
	errs      *stderrors.ErrorHandler
	logger    logger.Logger
}

type analyzeRequest struct {
	Text        string `json:"text"`
	Framework   string `json:"framework"`
	DocumentRef string `json:"documentRef"`
	Index       bool   `json:"index"` // persist findings to the search index
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	findings, err := s.engine.DetectComplianceIssues(req.Text, req.Framework, req.DocumentRef)
	if err != nil {
		s.writeOpError(w, "analyze", err)
		return
	}

	if req.Index && len(findings) > 0 {
		if err := s.findings.IndexFindings(r.Context(), findings); err != nil {
			s.logger.Error("findings indexing failed", map[string]interface{}{
				"documentRef": req.DocumentRef,
				"error":       err.Error(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"findings": findings})
}

type analyzeCollectionRequest struct {
	Documents  []analyzer.DocumentInput `json:"documents"`
	Frameworks []string                 `json:"frameworks"`
}

func (s *apiServer) handleAnalyzeCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req analyzeCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	frameworks := make([]models.Framework, 0, len(req.Frameworks))
	for _, name := range req.Frameworks {
		fw, err := models.ParseFramework(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		frameworks = append(frameworks, fw)
	}

	report, err := s.engine.AnalyzeCollection(req.Documents, frameworks)
	if err != nil {
		s.writeOpError(w, "analyze_collection", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type screenRequest struct {
	Name       string  `json:"name"`
	EntityType string  `json:"entityType"`
	Threshold  float64 `json:"threshold"`
}

func (s *apiServer) handleScreen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.screenOne(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) screenOne(ctx context.Context, req screenRequest) *models.ScreeningResult {
	entityType := models.EntityType(req.EntityType)
	if entityType == "" {
		entityType = models.EntityIndividual
	}

	start := time.Now()
	var result *models.ScreeningResult
	if req.Threshold > 0 {
		result = s.screener.ScreenEntityWithThreshold(ctx, req.Name, entityType, req.Threshold)
	} else {
		result = s.screener.ScreenEntity(ctx, req.Name, entityType)
	}
	s.obs.RecordScreening(ctx, string(result.Status))
	s.obs.RecordScreeningDuration(ctx, time.Since(start), string(result.Status))

	if _, err := s.notifier.NotifyScreening(ctx, result); err != nil {
		s.logger.Error("alert dispatch failed", map[string]interface{}{
			"query": req.Name,
			"error": err.Error(),
		})
	}
	return result
}

func (s *apiServer) handleScreenBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var reqs []screenRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]*models.ScreeningResult, len(reqs))
	for i, req := range reqs {
		results[i] = s.screenOne(r.Context(), req)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *apiServer) handleFindingsSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	params := r.URL.Query()
	query := storage.FindingsQuery{
		Text:      params.Get("q"),
		Framework: models.Framework(params.Get("framework")),
		RiskLevel: models.RiskLevel(params.Get("riskLevel")),
		From:      intParam(params.Get("from")),
		Size:      intParam(params.Get("size")),
	}

	result, err := s.findings.SearchFindings(r.Context(), query)
	if err != nil {
		s.writeOpError(w, "findings_search", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	listName := r.URL.Query().Get("list")
	if listName == "" {
		writeError(w, http.StatusBadRequest, "list query parameter required")
		return
	}

	// Refresh semantics: the previous snapshot of this list is deactivated
	// before the new rows land, so screening only ever sees one snapshot.
	if _, err := s.watchlist.DeactivateList(r.Context(), listName); err != nil {
		s.writeOpError(w, "watchlist_import", err)
		return
	}

	summary, err := s.importer.ImportCSV(r.Context(), listName, r.Body)
	if err != nil {
		s.writeOpError(w, "watchlist_import", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *apiServer) writeOpError(w http.ResponseWriter, operation string, err error) {
	stdErr, status := s.errs.Handle(operation, err)
	writeJSON(w, status, map[string]string{
		"error": stdErr.Message,
		"code":  string(stdErr.Code),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// intParam parses a numeric query parameter; absent or malformed values fall
// back to zero so the repository defaults apply.
func intParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
