package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresGet_Found(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	q := `(?s)^SELECT\s+value\s+FROM\s+secure_store\s+WHERE\s+key\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).
		WithArgs(KeyAccessToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("tok"))

	v, ok, err := s.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_NotFound(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+secure_store`).
		WithArgs("absent").
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestPostgresSet_Upserts(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	q := `(?s)^\s*INSERT\s+INTO\s+secure_store\b.*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\).*ON\s+CONFLICT\s+\(key\)\s+DO\s+UPDATE`
	mock.ExpectExec(q).
		WithArgs(KeyRefreshToken, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), KeyRefreshToken, "r1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSet_DBError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+secure_store`).
		WillReturnError(errors.New("db down"))

	err := s.Set(context.Background(), "k", "v")
	require.ErrorContains(t, err, "error performing sql request: db down")
}

func TestPostgresRemoveAll_Transactional(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+secure_store\s+WHERE\s+key\s*=\s*\$1`).
		WithArgs(KeyAccessToken).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+secure_store\s+WHERE\s+key\s*=\s*\$1`).
		WithArgs(KeyRefreshToken).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, RemoveAll(context.Background(), s, KeyAccessToken, KeyRefreshToken))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemoveAll_RollsBackOnError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+secure_store`).
		WithArgs(KeyAccessToken).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.RemoveAll(context.Background(), KeyAccessToken, KeyRefreshToken)
	require.ErrorContains(t, err, "boom")
	require.NoError(t, mock.ExpectationsWereMet())
}
