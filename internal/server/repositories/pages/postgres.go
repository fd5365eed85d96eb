// Package pages stores procedure pages in PostgreSQL.
package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	query := `INSERT INTO pages (procedure_id, display_index, created_at, last_modified)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, p.ProcedureID, p.DisplayIndex, p.CreatedAt, p.LastModified).Scan(&p.ID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Page, error) {
	query := `SELECT id, procedure_id, display_index, created_at, last_modified FROM pages WHERE id = $1`

	p := &models.Page{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.ProcedureID, &p.DisplayIndex, &p.CreatedAt, &p.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// ListByProcedure returns the pages of a procedure in display order.
func (r *PostgresRepository) ListByProcedure(ctx context.Context, procedureID int64) ([]*models.Page, error) {
	query := `SELECT id, procedure_id, display_index, created_at, last_modified FROM pages
		WHERE procedure_id = $1 ORDER BY display_index, id`

	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Page
	for rows.Next() {
		p := &models.Page{}
		if err := rows.Scan(&p.ID, &p.ProcedureID, &p.DisplayIndex, &p.CreatedAt, &p.LastModified); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Page) error {
	return r.execOne(ctx, `UPDATE pages SET display_index = $2, last_modified = $3 WHERE id = $1`,
		p.ID, p.DisplayIndex, p.LastModified)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM pages WHERE id = $1`, id)
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, `UPDATE pages SET last_modified = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbx.TranslateError(err)
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
