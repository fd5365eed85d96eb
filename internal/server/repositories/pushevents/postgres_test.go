package pushevents

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO push_events`).
		WithArgs(int64(42), "deadbeef", stamp).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	e, err := repo.Create(context.Background(), &models.PushEvent{ProcedureID: 42, SecretKey: "deadbeef", CreatedAt: stamp})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}

func TestCreate_UnknownProcedure(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO push_events`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "push_events_procedure_id_fkey"})

	_, err := repo.Create(context.Background(), &models.PushEvent{ProcedureID: 1})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByProcedure(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM push_events WHERE procedure_id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "procedure_id", "secret_key", "created_at"}).
			AddRow(int64(1), int64(42), "k1", stamp).
			AddRow(int64(2), int64(42), "k2", stamp))

	list, err := repo.ListByProcedure(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "k2", list[1].SecretKey)
}
