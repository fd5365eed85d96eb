// Package pushevents keeps the append-only log of publish notifications.
package pushevents

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.PushEvent) (*models.PushEvent, error) {
	query := `INSERT INTO push_events (procedure_id, secret_key, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, e.ProcedureID, e.SecretKey, e.CreatedAt).Scan(&e.ID); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByProcedure(ctx context.Context, procedureID int64) ([]*models.PushEvent, error) {
	query := `SELECT id, procedure_id, secret_key, created_at FROM push_events WHERE procedure_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PushEvent
	for rows.Next() {
		e := &models.PushEvent{}
		if err := rows.Scan(&e.ID, &e.ProcedureID, &e.SecretKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
