// internal/storage/history_test.go
package storage

import (
	"context"
	"errors"
	"testing"

	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screeningResult() *models.ScreeningResult {
	return &models.ScreeningResult{
		Query:        "John Doe",
		EntityType:   models.EntityIndividual,
		Status:       models.ScreeningOK,
		MatchFound:   true,
		HighestScore: 0.8,
		RiskLevel:    models.RiskHigh,
		Matches: []models.ScreeningMatch{
			{Query: "John Doe", EntityID: "wl-1", SimilarityScore: 0.8, RiskLevel: models.RiskHigh},
		},
		ScreenedAt: "2026-08-27T10:00:00Z",
	}
}

func TestScreeningHistoryRepository_RecordScreening(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO screening_history`).
		WithArgs(sqlmock.AnyArg(), "John Doe", "individual", "ok", true, 0.8,
			"HIGH", sqlmock.AnyArg(), "2026-08-27T10:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewScreeningHistoryRepository(db, logger.NewTestLogger(t))
	err = repo.RecordScreening(context.Background(), screeningResult())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScreeningHistoryRepository_RecordScreening_Error(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO screening_history`).
		WillReturnError(errors.New("table locked"))

	repo := NewScreeningHistoryRepository(db, logger.NewTestLogger(t))
	err = repo.RecordScreening(context.Background(), screeningResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCREENING_HISTORY_WRITE_FAILED")
}

func TestScreeningHistoryRepository_CountByQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM screening_history`).
		WithArgs("John Doe").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := NewScreeningHistoryRepository(db, logger.NewTestLogger(t))
	count, err := repo.CountByQuery(context.Background(), "John Doe")

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
