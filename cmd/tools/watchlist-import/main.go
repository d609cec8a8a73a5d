// cmd/tools/watchlist-import/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"compliance-engine/internal/common/config"
	"compliance-engine/internal/common/database"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/fetcher"
	"compliance-engine/internal/importer"
	"compliance-engine/internal/storage"
	"compliance-engine/pkg/sources"
)

func main() {
	sourceID := flag.String("source", "", "Source id from the registry to fetch and import")
	filePath := flag.String("file", "", "Local CSV file to import instead of fetching")
	listName := flag.String("list", "", "List name to import under (defaults to the source's listName)")
	keepOld := flag.Bool("keep-old", false, "Skip deactivating the list's previous entries")
	flag.Parse()

	if *sourceID == "" && *filePath == "" {
		fmt.Println("Error: either -source or -file is required.")
		flag.Usage()
		os.Exit(1)
	}

	zapLog := logger.New("info", "console")
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

	var body io.ReadCloser
	switch {
	case *filePath != "":
		f, err := os.Open(*filePath)
		if err != nil {
			zapLog.Fatal("open file failed", zap.Error(err))
		}
		body = f
		if *listName == "" {
			fmt.Println("Error: -list is required with -file.")
			os.Exit(1)
		}
	default:
		registry, err := sources.LoadRegistry(cfg.Importer.SourcesPath)
		if err != nil {
			zapLog.Fatal("source registry load failed", zap.Error(err))
		}
		source, err := registry.Find(*sourceID)
		if err != nil {
			zapLog.Fatal("unknown source", zap.Error(err))
		}
		if *listName == "" {
			*listName = source.ListName
		}

		f := fetcher.New(time.Duration(cfg.Importer.FetchTimeout)*time.Millisecond, log)
		body, err = f.Fetch(ctx, source)
		if err != nil {
			zapLog.Fatal("fetch failed", zap.Error(err))
		}
	}
	defer body.Close()

	repo := storage.NewWatchlistRepository(pg.DB, log)

	if !*keepOld {
		deactivated, err := repo.DeactivateList(ctx, *listName)
		if err != nil {
			zapLog.Fatal("deactivation failed", zap.Error(err))
		}
		zapLog.Info("previous snapshot deactivated",
			zap.String("list", *listName),
			zap.Int64("rows", deactivated),
		)
	}

	im := importer.New(repo, importer.Config{BatchSize: cfg.Importer.BatchSize}, log)
	summary, err := im.ImportCSV(ctx, *listName, body)
	if err != nil {
		zapLog.Fatal("import failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
