// cmd/tools/screen/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"compliance-engine/internal/common/config"
	"compliance-engine/internal/common/database"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
	"compliance-engine/internal/screening"
	"compliance-engine/internal/storage"
)

func main() {
	name := flag.String("name", "", "Name to screen against the active watchlist")
	entityType := flag.String("type", "individual", "Entity type (individual, entity, vessel, aircraft, other)")
	threshold := flag.Float64("threshold", 0, "Similarity threshold override (0 uses the configured default)")
	noAudit := flag.Bool("no-audit", false, "Skip writing the screening-history record")
	flag.Parse()

	if *name == "" {
		fmt.Println("Error: -name is required.")
		flag.Usage()
		os.Exit(1)
	}

	zapLog := logger.New("warn", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	watchlistRepo := storage.NewWatchlistRepository(pg.DB, log)

	var history screening.HistoryRecorder
	if !*noAudit {
		history = storage.NewScreeningHistoryRepository(pg.DB, log)
	}

	// One-off runs bypass the cache; an operator screening a name by hand
	// wants the live answer.
	screener := screening.New(watchlistRepo, history, nil,
		screening.Config{
			DefaultThreshold: cfg.Screening.DefaultThreshold,
			CacheTTL:         time.Duration(0),
		},
		log,
	)

	var result *models.ScreeningResult
	if *threshold > 0 {
		result = screener.ScreenEntityWithThreshold(ctx, *name, models.EntityType(*entityType), *threshold)
	} else {
		result = screener.ScreenEntity(ctx, *name, models.EntityType(*entityType))
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if result.Status == models.ScreeningError {
		os.Exit(2)
	}
	if result.MatchFound {
		os.Exit(1)
	}
}
