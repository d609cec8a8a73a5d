// internal/storage/history.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// ScreeningHistoryRepository is the append-only audit log of screening calls.
type ScreeningHistoryRepository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewScreeningHistoryRepository creates a ScreeningHistoryRepository.
func NewScreeningHistoryRepository(db *sql.DB, log logger.Logger) *ScreeningHistoryRepository {
	return &ScreeningHistoryRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "screening-history"}),
	}
}

const insertHistorySQL = `
	INSERT INTO screening_history
		(id, query, entity_type, status, match_found, highest_score,
		 risk_level, matches, screened_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// RecordScreening appends one screening outcome. Records are never updated
// or deleted.
func (r *ScreeningHistoryRepository) RecordScreening(ctx context.Context, result *models.ScreeningResult) error {
	matches, err := json.Marshal(result.Matches)
	if err != nil {
		return errors.NewScreeningHistoryWriteFailedError(err)
	}

	_, err = r.db.ExecContext(ctx, insertHistorySQL,
		uuid.New().String(), result.Query, string(result.EntityType),
		string(result.Status), result.MatchFound, result.HighestScore,
		string(result.RiskLevel), matches, result.ScreenedAt)
	if err != nil {
		return errors.NewScreeningHistoryWriteFailedError(err)
	}
	return nil
}

// CountByQuery reports how many times a name has been screened, for the
// audit tooling.
func (r *ScreeningHistoryRepository) CountByQuery(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM screening_history WHERE query = $1`, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count screening history: %w", err)
	}
	return count, nil
}
