// Package concepts stores concepts in PostgreSQL.
package concepts

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

const columns = `id, uuid, name, display_name, description, data_type, mime_type, constraint_text, created_at, last_modified`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Concept, error) {
	c := &models.Concept{}
	err := s.Scan(&c.ID, &c.UUID, &c.Name, &c.DisplayName, &c.Description, &c.DataType,
		&c.MimeType, &c.Constraint, &c.CreatedAt, &c.LastModified)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Concept) (*models.Concept, error) {
	if err := c.DataType.Validate(); err != nil {
		return nil, err
	}

	query := `INSERT INTO concepts (uuid, name, display_name, description, data_type, mime_type, constraint_text,
			created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		c.UUID, c.Name, c.DisplayName, c.Description, string(c.DataType), c.MimeType, c.Constraint,
		c.CreatedAt, c.LastModified).Scan(&c.ID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Concept, error) {
	c, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM concepts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Concept, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM concepts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Concept
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Concept) error {
	if err := c.DataType.Validate(); err != nil {
		return err
	}

	query := `UPDATE concepts SET name = $2, display_name = $3, description = $4, data_type = $5,
			mime_type = $6, constraint_text = $7, last_modified = $8
		WHERE id = $1`

	return r.execOne(ctx, query,
		c.ID, c.Name, c.DisplayName, c.Description, string(c.DataType), c.MimeType, c.Constraint, c.LastModified)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM concepts WHERE id = $1`, id)
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, `UPDATE concepts SET last_modified = $2 WHERE id = $1`, id, at)
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
