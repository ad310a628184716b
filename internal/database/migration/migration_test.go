package migration

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/logging"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() error, *bytes.Buffer, func(ctx context.Context) error) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, time.UTC)
	run := func(ctx context.Context) error {
		return EnsureMigrated(ctx, db, log, "db.local")
	}
	return mock, db.Close, &buf, run
}

func TestEnsureMigrated_AppliesPendingSteps(t *testing.T) {
	mock, closeDB, buf, run := newMock(t)
	defer closeDB()

	mock.ExpectExec(createLedger).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT name FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(steps[0].Name))

	for _, step := range steps[1:] {
		mock.ExpectBegin()
		mock.ExpectExec(step.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO schema_migrations (name) VALUES ($1)`).
			WithArgs(step.Name).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
	assert.Contains(t, buf.String(), `"migration_step":"create_table_products"`)
}

func TestEnsureMigrated_SkipsWhenUpToDate(t *testing.T) {
	mock, closeDB, buf, run := newMock(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"name"})
	for _, step := range steps {
		rows.AddRow(step.Name)
	}
	mock.ExpectExec(createLedger).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(rows)

	require.NoError(t, run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"msg":"db_migration_skip"`)
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	mock, closeDB, buf, run := newMock(t)
	defer closeDB()

	mock.ExpectExec(createLedger).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT name FROM schema_migrations`).WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec(steps[0].SQL).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration step create_extension_uuid_ossp failed")
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, strings.Contains(buf.String(), `"level":"error"`))
}

func TestEnsureMigrated_LedgerFailure(t *testing.T) {
	mock, closeDB, _, run := newMock(t)
	defer closeDB()

	mock.ExpectExec(createLedger).WillReturnError(errors.New("connection reset"))

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migration ledger")
}
