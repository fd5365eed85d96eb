// Package procedures stores procedure versions in PostgreSQL.
package procedures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, uuid, version, title, author, owner_id, created_at, last_modified`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Procedure, error) {
	p := &models.Procedure{}
	err := s.Scan(&p.ID, &p.UUID, &p.Version, &p.Title, &p.Author, &p.OwnerID, &p.CreatedAt, &p.LastModified)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts p and fills in its ID. A second row with the same
// (uuid, version) fails with common.ErrDuplicateVersion.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Procedure) (*models.Procedure, error) {
	query := `INSERT INTO procedures (uuid, version, title, author, owner_id, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		p.UUID, p.Version, p.Title, p.Author, p.OwnerID, p.CreatedAt, p.LastModified).Scan(&p.ID)
	if err != nil {
		err = dbx.TranslateError(err)
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s v%d", common.ErrDuplicateVersion, p.UUID, p.Version)
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Procedure, error) {
	query := `SELECT ` + columns + ` FROM procedures WHERE id = $1`

	p, err := scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Procedure, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Procedure
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Procedure, error) {
	query := `SELECT ` + columns + ` FROM procedures WHERE owner_id = $1 ORDER BY last_modified DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

// ListVersions returns every version sharing the stable UUID, oldest first.
func (r *PostgresRepository) ListVersions(ctx context.Context, id uuid.UUID) ([]*models.Procedure, error) {
	query := `SELECT ` + columns + ` FROM procedures WHERE uuid = $1 ORDER BY version`
	return r.list(ctx, query, id)
}

// Update writes the editable fields of p and its last_modified stamp.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Procedure) error {
	query := `UPDATE procedures SET title = $2, author = $3, last_modified = $4 WHERE id = $1`
	return r.execOne(ctx, query, p.ID, p.Title, p.Author, p.LastModified)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM procedures WHERE id = $1`, id)
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, `UPDATE procedures SET last_modified = $2 WHERE id = $1`, id, at)
}

// LockUUID takes a transaction-scoped advisory lock for the procedure UUID.
// It serializes revisions of one procedure and is released on commit or rollback.
func (r *PostgresRepository) LockUUID(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, id.String()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MaxVersion returns the highest stored version for the UUID, or 0 if none exist.
func (r *PostgresRepository) MaxVersion(ctx context.Context, id uuid.UUID) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM procedures WHERE uuid = $1`, id).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
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
