package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes we translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
)

// TranslateError wraps err with the matching sentinel from common when err is a
// PostgreSQL integrity error. The original error stays in the chain.
// Any other non-nil error is wrapped as "db error".
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s: %w", common.ErrAlreadyExists, pgErr.ConstraintName, err)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s: %w", common.ErrConstraintViolation, pgErr.ConstraintName, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s: %w", common.ErrorNotFound, pgErr.ConstraintName, err)
		}
	}

	return fmt.Errorf("db error: %w", err)
}
