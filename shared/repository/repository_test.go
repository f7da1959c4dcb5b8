package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"todoapi/infras/otel/mocks"
	"todoapi/infras/postgres"
	"todoapi/shared"
	"todoapi/shared/dto"
	"todoapi/shared/model"
	"todoapi/shared/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   string `db:"id"`
	Body string `db:"body"`
	model.Metadata
}

type tag struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

var noteColumns = []string{"id", "body", "created_at", "updated_at", "deleted_at"}

func newNoteRepository(t *testing.T) (repository.Repository[note], sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.NewRepository[note]("note", "notes", "id", conn, mocks.NewOtel()), mock
}

func TestRepository_InsertColumns(t *testing.T) {
	repo, _ := newNoteRepository(t)

	assert.Equal(t, []string{"id", "body", "created_at", "updated_at", "deleted_at"}, repo.InsertColumns)
}

func TestRepository_Insert(t *testing.T) {
	repo, mock := newNoteRepository(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO notes \(id, body, created_at, updated_at, deleted_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs("n1", "hello", now, now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), note{
		ID:       "n1",
		Body:     "hello",
		Metadata: model.Metadata{CreatedAt: now, UpdatedAt: now},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Insert_Error(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectExec(`INSERT INTO notes`).WillReturnError(errors.New("connection reset"))

	err := repo.Insert(context.Background(), note{ID: "n1"})

	assert.ErrorContains(t, err, "failed to insert data (note)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get(t *testing.T) {
	repo, mock := newNoteRepository(t)
	now := time.Now()

	mock.ExpectPrepare(`SELECT notes\.id, notes\.body, notes\.created_at, notes\.updated_at, notes\.deleted_at FROM notes WHERE \(\(notes\.id = \$1\) AND notes\.deleted_at IS NULL\) LIMIT 1`).
		ExpectQuery().
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(noteColumns).AddRow("n1", "hello", now, now, nil))

	got, err := repo.Get(context.Background(), shared.FilterByID("n1", "id", "notes"))

	require.NoError(t, err)
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "hello", got.Body)
	assert.Nil(t, got.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get_NoRows(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectPrepare(`FROM notes WHERE .*notes\.deleted_at IS NULL`).
		ExpectQuery().
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(noteColumns))

	_, err := repo.Get(context.Background(), shared.FilterByID("missing", "id", "notes"))

	assert.ErrorIs(t, err, repository.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get_SelectedColumns(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectPrepare(`SELECT notes\.id FROM notes WHERE`).
		ExpectQuery().
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("n1"))

	got, err := repo.Get(context.Background(), shared.FilterByID("n1", "id", "notes"), "id")

	require.NoError(t, err)
	assert.Equal(t, "n1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetAll(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		params dto.QueryParams
		filter dto.FilterGroup
		query  string
		args   []driver.Value
	}{
		{
			name:  "no params lists every live row",
			query: `SELECT .+ FROM notes WHERE \(notes\.deleted_at IS NULL\)$`,
		},
		{
			name:   "paginated and sorted",
			params: dto.QueryParams{Page: 2, Limit: 5, SortBy: "created_at", SortDir: dto.SortDirDesc},
			query:  `SELECT .+ FROM notes WHERE \(notes\.deleted_at IS NULL\) ORDER BY notes\.created_at DESC LIMIT \$1 OFFSET \$2`,
			args:   []driver.Value{5, 5},
		},
		{
			name:   "limit only",
			params: dto.QueryParams{Limit: 3},
			query:  `LIMIT \$1$`,
			args:   []driver.Value{3},
		},
		{
			name: "with filter",
			filter: dto.And(dto.Filter{
				Field:    "body",
				Value:    "milk",
				Operator: dto.FilterOperatorLike,
				Table:    "notes",
			}),
			query: `WHERE \(\(LOWER\(notes\.body\) LIKE LOWER\(\$1\) ESCAPE '\\'\) AND notes\.deleted_at IS NULL\)`,
			args:  []driver.Value{"%milk%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newNoteRepository(t)

			query := mock.ExpectPrepare(tt.query).ExpectQuery()
			if len(tt.args) > 0 {
				query = query.WithArgs(tt.args...)
			}

			query.WillReturnRows(sqlmock.NewRows(noteColumns).
				AddRow("n1", "milk", now, now, nil).
				AddRow("n2", "bread", now, now, nil))

			got, err := repo.GetAll(context.Background(), tt.params, tt.filter)

			require.NoError(t, err)
			assert.Len(t, got, 2)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_GetAll_Empty(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectPrepare(`FROM notes`).ExpectQuery().WillReturnRows(sqlmock.NewRows(noteColumns))

	got, err := repo.GetAll(context.Background(), dto.QueryParams{}, dto.FilterGroup{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepository_Count(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectPrepare(`SELECT COUNT\(notes\.id\) FROM notes WHERE \(notes\.deleted_at IS NULL\)`).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), dto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectExec(`UPDATE notes SET body = \$1, updated_at = \$2 WHERE \(\(notes\.id = \$3\) AND notes\.deleted_at IS NULL\)`).
		WithArgs("new body", sqlmock.AnyArg(), "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), map[string]any{
		"body":       "new body",
		"updated_at": time.Now(),
	}, shared.FilterByID("n1", "id", "notes"))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_NothingMatched(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectExec(`UPDATE notes SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), map[string]any{"body": "x"}, shared.FilterByID("n1", "id", "notes"))

	assert.ErrorIs(t, err, repository.ErrNoRows)
}

func TestRepository_Update_Guards(t *testing.T) {
	repo, mock := newNoteRepository(t)

	assert.Error(t, repo.Update(context.Background(), map[string]any{}, shared.FilterByID("n1", "id", "notes")))
	assert.Error(t, repo.Update(context.Background(), map[string]any{"body": "x"}, dto.FilterGroup{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectExec(`UPDATE notes SET deleted_at = \$1, updated_at = \$2 WHERE \(\(notes\.id = \$3\) AND notes\.deleted_at IS NULL\)`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDelete(context.Background(), shared.FilterByID("n1", "id", "notes"))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDelete_AlreadyDeleted(t *testing.T) {
	repo, mock := newNoteRepository(t)

	mock.ExpectExec(`UPDATE notes SET deleted_at`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), shared.FilterByID("n1", "id", "notes"))

	assert.ErrorIs(t, err, repository.ErrNoRows)
}

func TestRepository_HardDeleteWithoutDeletedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := repository.NewRepository[tag]("tag", "tags", "id", &postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel())

	mock.ExpectExec(`DELETE FROM tags WHERE \(tags\.id = \$1\)`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectPrepare(`SELECT tags\.id, tags\.name FROM tags WHERE \(tags\.id = \$1\) LIMIT 1`).
		ExpectQuery().
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	assert.NoError(t, repo.SoftDelete(context.Background(), shared.FilterByID("t1", "id", "tags")))

	_, err = repo.Get(context.Background(), shared.FilterByID("t1", "id", "tags"))
	assert.ErrorIs(t, err, repository.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
