// internal/importer/importer.go
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/common/metrics"
	"compliance-engine/internal/models"
)

// WatchlistWriter persists cleaned entities. Each InsertBatch call is one
// storage transaction; a failed batch loses only that batch's rows.
type WatchlistWriter interface {
	InsertBatch(ctx context.Context, entities []models.WatchlistEntity) error
}

// Config holds the import settings.
type Config struct {
	// BatchSize is how many rows are inserted per storage round trip. The
	// chunking paces memory and throughput; it is not a correctness boundary.
	BatchSize int
}

// DefaultConfig returns the standard import settings.
func DefaultConfig() Config {
	return Config{BatchSize: 1000}
}

// Importer turns heterogeneous sanctions/PEP CSV exports into watchlist
// entities. Row-level problems are counted and skipped; only storage setup
// failures abort a run.
type Importer struct {
	writer WatchlistWriter
	config Config
	logger logger.Logger
}

// New creates an Importer.
func New(writer WatchlistWriter, config Config, log logger.Logger) *Importer {
	if config.BatchSize < 1 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Importer{
		writer: writer,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "importer"}),
	}
}

// ImportCSV reads an entire CSV export, detects its format, maps its columns
// and imports every data row under listName.
func (im *Importer) ImportCSV(ctx context.Context, listName string, r io.Reader) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.NewImportBatchFailedError(err)
	}

	format := DetectFormat(headers)
	mapping := MapColumns(headers, format)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewImportBatchFailedError(err)
		}

		row := map[string]string{}
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = value
			}
		}
		rows = append(rows, row)
	}

	return im.ImportRows(ctx, listName, rows, mapping)
}

// ImportRows cleans, validates and inserts raw rows in batches. Every row is
// accounted for exactly once: Imported + Errors == TotalRows.
func (im *Importer) ImportRows(ctx context.Context, listName string, rows []map[string]string, mapping models.ColumnMapping) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{
		TotalRows:      len(rows),
		DetectedFormat: mapping.DetectedFormat,
		Mapping:        mapping,
	}
	formatLabel := string(mapping.DetectedFormat)

	var batch []models.WatchlistEntity
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := im.writer.InsertBatch(ctx, batch); err != nil {
			im.logger.Error("batch insert failed", map[string]interface{}{
				"listName": listName,
				"rows":     len(batch),
				"error":    err.Error(),
			})
			summary.Errors += len(batch)
			metrics.ImportErrors.WithLabelValues(formatLabel).Add(float64(len(batch)))
		} else {
			summary.Imported += len(batch)
			metrics.RowsImported.WithLabelValues(formatLabel).Add(float64(len(batch)))
		}
		batch = batch[:0]
	}

	for i, raw := range rows {
		clean := CleanRow(raw, mapping)
		if err := validateRow(clean); err != nil {
			stdErr := errors.NewRowValidationFailedError(i, err.Error())
			im.logger.Warn("row skipped", map[string]interface{}{
				"listName":  listName,
				"errorCode": string(stdErr.Code),
				"error":     stdErr.Details,
			})
			summary.Errors++
			metrics.ImportErrors.WithLabelValues(formatLabel).Inc()
			continue
		}

		batch = append(batch, entityFromRow(listName, clean))
		if len(batch) >= im.config.BatchSize {
			flush()
		}
	}
	flush()

	im.logger.Info("import finished", map[string]interface{}{
		"listName": listName,
		"format":   formatLabel,
		"total":    summary.TotalRows,
		"imported": summary.Imported,
		"errors":   summary.Errors,
	})
	return summary, nil
}

func entityFromRow(listName string, clean map[models.SemanticField]string) models.WatchlistEntity {
	entityType := models.EntityOther
	if v, ok := clean[models.FieldEntityType]; ok {
		entityType = models.EntityType(v)
	}

	var aliases []string
	if v, ok := clean[models.FieldAliases]; ok {
		aliases = strings.Split(v, "; ")
	}

	return models.WatchlistEntity{
		ID:             uuid.New().String(),
		ListName:       listName,
		EntityType:     entityType,
		Name:           clean[models.FieldName],
		Aliases:        aliases,
		Country:        clean[models.FieldCountry],
		Program:        clean[models.FieldProgram],
		Address:        clean[models.FieldAddress],
		ListDate:       clean[models.FieldListDate],
		IDNumber:       clean[models.FieldIDNumber],
		BaseRiskWeight: 1.0,
		Status:         models.StatusActive,
	}
}
