// Package elements stores page elements in PostgreSQL. Choice lists are kept
// as JSON text.
package elements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

const columns = `id, page_id, concept_id, display_index, element_type, choices, question, answer,
	required, image, audio, action, mime_type, created_at, last_modified`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Element, error) {
	e := &models.Element{}
	var (
		conceptID sql.NullInt64
		choices   string
	)
	err := s.Scan(&e.ID, &e.PageID, &conceptID, &e.DisplayIndex, &e.ElementType, &choices,
		&e.Question, &e.Answer, &e.Required, &e.Image, &e.Audio, &e.Action, &e.MimeType,
		&e.CreatedAt, &e.LastModified)
	if err != nil {
		return nil, err
	}
	if conceptID.Valid {
		id := conceptID.Int64
		e.ConceptID = &id
	}
	if e.Choices, err = models.DecodeChoices(choices); err != nil {
		return nil, err
	}
	return e, nil
}

func nullable(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// Create inserts e. The element type is checked before the write; the
// database check constraint rejects anything that slips past.
func (r *PostgresRepository) Create(ctx context.Context, e *models.Element) (*models.Element, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}
	choices, err := models.EncodeChoices(e.Choices)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO elements (page_id, concept_id, display_index, element_type, choices, question, answer,
			required, image, audio, action, mime_type, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		e.PageID, nullable(e.ConceptID), e.DisplayIndex, string(e.ElementType), choices, e.Question, e.Answer,
		e.Required, e.Image, e.Audio, e.Action, e.MimeType, e.CreatedAt, e.LastModified).Scan(&e.ID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Element, error) {
	e, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM elements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// ListByPage returns the elements of a page in display order.
func (r *PostgresRepository) ListByPage(ctx context.Context, pageID int64) ([]*models.Element, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM elements WHERE page_id = $1 ORDER BY display_index, id`, pageID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Element
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Element) error {
	if err := e.ElementType.Validate(); err != nil {
		return err
	}
	choices, err := models.EncodeChoices(e.Choices)
	if err != nil {
		return err
	}

	query := `UPDATE elements SET concept_id = $2, display_index = $3, element_type = $4, choices = $5,
			question = $6, answer = $7, required = $8, image = $9, audio = $10, action = $11,
			mime_type = $12, last_modified = $13
		WHERE id = $1`

	return r.execOne(ctx, query,
		e.ID, nullable(e.ConceptID), e.DisplayIndex, string(e.ElementType), choices, e.Question, e.Answer,
		e.Required, e.Image, e.Audio, e.Action, e.MimeType, e.LastModified)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM elements WHERE id = $1`, id)
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
