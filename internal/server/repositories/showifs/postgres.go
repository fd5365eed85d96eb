// Package showifs stores page visibility rules in PostgreSQL. Conditions are
// opaque text.
package showifs

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, s *models.ShowIf) (*models.ShowIf, error) {
	query := `INSERT INTO show_ifs (page_id, conditions, created_at, last_modified)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, s.PageID, s.Conditions, s.CreatedAt, s.LastModified).Scan(&s.ID); err != nil {
		return nil, dbx.TranslateError(err)
	}
	return s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.ShowIf, error) {
	query := `SELECT id, page_id, conditions, created_at, last_modified FROM show_ifs WHERE id = $1`

	s := &models.ShowIf{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.PageID, &s.Conditions, &s.CreatedAt, &s.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByPage(ctx context.Context, pageID int64) ([]*models.ShowIf, error) {
	query := `SELECT id, page_id, conditions, created_at, last_modified FROM show_ifs WHERE page_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShowIf
	for rows.Next() {
		s := &models.ShowIf{}
		if err := rows.Scan(&s.ID, &s.PageID, &s.Conditions, &s.CreatedAt, &s.LastModified); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.ShowIf) error {
	res, err := r.db.ExecContext(ctx, `UPDATE show_ifs SET conditions = $2, last_modified = $3 WHERE id = $1`,
		s.ID, s.Conditions, s.LastModified)
	return oneRow(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM show_ifs WHERE id = $1`, id)
	return oneRow(res, err)
}

func oneRow(res sql.Result, err error) error {
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
