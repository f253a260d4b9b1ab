package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/internal/store/sqlite"
	"github.com/rescuerunner/runnerboard/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) runnerboard.Store {
		s, cleanup, err := sqlite.NewInMemory()
		require.NoError(t, err)
		t.Cleanup(cleanup)
		return s
	})
}

func TestStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	path := sqlite.Path(filepath.Join(t.TempDir(), "scores.db"))

	s, cleanup, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, storetest.Entry("0xaa", 900, 0)))
	cleanup()

	s, cleanup, err = sqlite.New(path)
	require.NoError(t, err)
	defer cleanup()

	got, err := s.Get(ctx, "0xaa")
	require.NoError(t, err)
	assert.Equal(t, storetest.Entry("0xaa", 900, 0), got)
}

func TestUpsertRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE scores SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO scores`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = sqlite.NewWithDB(db).Upsert(context.Background(), storetest.Entry("0xaa", 1, 0))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUpdatesExistingRowWithoutInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := storetest.Entry("0xaa", 7, 0)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE scores SET`).
		WithArgs(e.DisplayName, e.Score, e.SubmittedAt.UnixNano(), e.GameVersion, e.Identity).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sqlite.NewWithDB(db).Upsert(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackWhenEvictionFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE scores SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO scores`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM scores WHERE identity NOT IN`).
		WithArgs(1).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = sqlite.NewWithDB(db).Save(context.Background(), storetest.Entry("0xaa", 1, 0), 1)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCommitsUpsertAndEvictionTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE scores SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM scores WHERE identity NOT IN`).
		WithArgs(100).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, sqlite.NewWithDB(db).Save(context.Background(), storetest.Entry("0xaa", 1, 0), 100))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReportsQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT identity, display_name, score, submitted_at, game_version FROM scores WHERE identity`).
		WithArgs("0xaa").
		WillReturnError(errors.New("database is locked"))

	_, err = sqlite.NewWithDB(db).Get(context.Background(), "0xaa")
	assert.ErrorContains(t, err, "database is locked")
	assert.False(t, errors.Is(err, runnerboard.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnforceCapacityPassesLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM scores WHERE identity NOT IN`).
		WithArgs(100).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, sqlite.NewWithDB(db).EnforceCapacity(context.Background(), 100))
	assert.NoError(t, mock.ExpectationsWereMet())
}
