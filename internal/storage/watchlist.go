// internal/storage/watchlist.go
package storage

import (
	"context"
	"database/sql"
	"strings"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// WatchlistRepository persists watchlist entities in Postgres. Aliases are
// stored as a single "; "-joined text column to keep the schema portable.
type WatchlistRepository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewWatchlistRepository creates a WatchlistRepository.
func NewWatchlistRepository(db *sql.DB, log logger.Logger) *WatchlistRepository {
	return &WatchlistRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "watchlist-repository"}),
	}
}

const queryActiveSQL = `
	SELECT id, list_name, entity_type, name, aliases, country, program,
	       address, list_date, id_number, base_risk_weight, status
	FROM watchlist_entities
	WHERE status = 'active'
	  AND (name ILIKE '%' || $1 || '%' OR aliases ILIKE '%' || $1 || '%')`

// QueryActive returns active entities whose name or aliases contain the given
// substring. This is a cheap pre-filter; callers re-score the candidates.
func (r *WatchlistRepository) QueryActive(ctx context.Context, substring string) ([]models.WatchlistEntity, error) {
	rows, err := r.db.QueryContext(ctx, queryActiveSQL, substring)
	if err != nil {
		return nil, errors.NewWatchlistQueryFailedError(err)
	}
	defer rows.Close()

	var entities []models.WatchlistEntity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, errors.NewWatchlistQueryFailedError(err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewWatchlistQueryFailedError(err)
	}
	return entities, nil
}

const insertEntitySQL = `
	INSERT INTO watchlist_entities
		(id, list_name, entity_type, name, aliases, country, program,
		 address, list_date, id_number, base_risk_weight, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// InsertBatch inserts entities inside one transaction; either the whole batch
// lands or none of it does.
func (r *WatchlistRepository) InsertBatch(ctx context.Context, entities []models.WatchlistEntity) error {
	if len(entities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEntitySQL)
	if err != nil {
		tx.Rollback()
		return errors.NewWatchlistInsertFailedError(len(entities), err)
	}
	defer stmt.Close()

	for _, e := range entities {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.ListName, string(e.EntityType), e.Name,
			strings.Join(e.Aliases, "; "), e.Country, e.Program,
			e.Address, e.ListDate, e.IDNumber, e.BaseRiskWeight, string(e.Status))
		if err != nil {
			tx.Rollback()
			return errors.NewWatchlistInsertFailedError(len(entities), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewWatchlistInsertFailedError(len(entities), err)
	}

	r.logger.Debug("batch inserted", map[string]interface{}{"rows": len(entities)})
	return nil
}

// DeactivateList soft-deletes every active entity of a list. A refresh
// deactivates the old snapshot before importing the new one so the audit
// trail survives.
func (r *WatchlistRepository) DeactivateList(ctx context.Context, listName string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE watchlist_entities SET status = 'inactive' WHERE list_name = $1 AND status = 'active'`,
		listName)
	if err != nil {
		return 0, errors.NewWatchlistDeactivationFailedError(listName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewWatchlistDeactivationFailedError(listName, err)
	}

	r.logger.Info("list deactivated", map[string]interface{}{
		"listName": listName,
		"rows":     affected,
	})
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (models.WatchlistEntity, error) {
	var e models.WatchlistEntity
	var entityType, status, aliases string

	err := row.Scan(&e.ID, &e.ListName, &entityType, &e.Name, &aliases,
		&e.Country, &e.Program, &e.Address, &e.ListDate, &e.IDNumber,
		&e.BaseRiskWeight, &status)
	if err != nil {
		return models.WatchlistEntity{}, err
	}

	e.EntityType = models.EntityType(entityType)
	e.Status = models.EntityStatus(status)
	if aliases != "" {
		e.Aliases = strings.Split(aliases, "; ")
	}
	return e, nil
}
