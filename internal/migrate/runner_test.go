package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
		create table a (id text);
		insert into a values ('x;y');
		create index i on a (id)`)
	require.Len(t, stmts, 3)
	require.Contains(t, stmts[1], "'x;y'")
}

func TestSplitStatementsEmpty(t *testing.T) {
	require.Empty(t, splitStatements("  \n\t"))
}

func TestUpSkipsApplied(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("0001_first.up.sql", "create table one (id text);")
	write("0001_first.down.sql", "drop table one;")
	write("0002_second.up.sql", "create table two (id text);")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("create table if not exists schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table if not exists schema_seeds").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_first.up.sql"))

	// Only the second migration runs.
	mock.ExpectBegin()
	mock.ExpectExec("create table two").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("insert into schema_migrations").
		WithArgs("0002_second.up.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	runner := NewRunner(db, dir, "")
	require.NoError(t, runner.Up(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectSQLMissingDir(t *testing.T) {
	files, err := collectSQL(filepath.Join(t.TempDir(), "nope"), ".sql")
	require.NoError(t, err)
	require.Empty(t, files)
}
