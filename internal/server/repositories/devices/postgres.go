// Package devices stores push registration tokens in PostgreSQL.
package devices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Register stores the token, or returns the existing row if it is already known.
func (r *PostgresRepository) Register(ctx context.Context, registrationID string) (*models.Device, error) {
	query := `INSERT INTO devices (registration_id)
		VALUES ($1)
		ON CONFLICT (registration_id) DO UPDATE SET registration_id = EXCLUDED.registration_id
		RETURNING id, registration_id, created_at`

	d := &models.Device{}
	if err := r.db.QueryRowContext(ctx, query, registrationID).Scan(&d.ID, &d.RegistrationID, &d.CreatedAt); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return d, nil
}

func (r *PostgresRepository) Unregister(ctx context.Context, registrationID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE registration_id = $1`, registrationID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, registration_id, created_at FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		d := &models.Device{}
		if err := rows.Scan(&d.ID, &d.RegistrationID, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
