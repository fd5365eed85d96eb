// Package abstractelements stores concept-owned element templates in PostgreSQL.
package abstractelements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

const columns = `id, concept_id, display_index, element_type, choices, question, answer,
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

func scan(s scanner) (*models.AbstractElement, error) {
	e := &models.AbstractElement{}
	var choices string
	err := s.Scan(&e.ID, &e.ConceptID, &e.DisplayIndex, &e.ElementType, &choices,
		&e.Question, &e.Answer, &e.Required, &e.Image, &e.Audio, &e.Action, &e.MimeType,
		&e.CreatedAt, &e.LastModified)
	if err != nil {
		return nil, err
	}
	if e.Choices, err = models.DecodeChoices(choices); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}
	choices, err := models.EncodeChoices(e.Choices)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO abstract_elements (concept_id, display_index, element_type, choices, question, answer,
			required, image, audio, action, mime_type, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		e.ConceptID, e.DisplayIndex, string(e.ElementType), choices, e.Question, e.Answer,
		e.Required, e.Image, e.Audio, e.Action, e.MimeType, e.CreatedAt, e.LastModified).Scan(&e.ID)
	if err != nil {
		return nil, dbx.TranslateError(err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.AbstractElement, error) {
	e, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM abstract_elements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByConcept(ctx context.Context, conceptID int64) ([]*models.AbstractElement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM abstract_elements WHERE concept_id = $1 ORDER BY display_index, id`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AbstractElement
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

func (r *PostgresRepository) Update(ctx context.Context, e *models.AbstractElement) error {
	if err := e.ElementType.Validate(); err != nil {
		return err
	}
	choices, err := models.EncodeChoices(e.Choices)
	if err != nil {
		return err
	}

	query := `UPDATE abstract_elements SET display_index = $2, element_type = $3, choices = $4,
			question = $5, answer = $6, required = $7, image = $8, audio = $9, action = $10,
			mime_type = $11, last_modified = $12
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.DisplayIndex, string(e.ElementType), choices, e.Question, e.Answer,
		e.Required, e.Image, e.Audio, e.Action, e.MimeType, e.LastModified)
	return oneRow(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM abstract_elements WHERE id = $1`, id)
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
