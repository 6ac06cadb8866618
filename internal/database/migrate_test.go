package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMigrator(t *testing.T, driver string) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMigrator(sqlx.NewDb(db, "mysql"), driver), mock
}

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name        string
		applied     []string
		setup       func(mock sqlmock.Sqlmock)
		wantApplied []string
		wantErr     bool
	}{
		{
			name: "applies pending migration",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE study_records").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES (?)")).
					WithArgs("001_create_study_records.sql").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
			wantApplied: []string{"001_create_study_records.sql"},
		},
		{
			name:    "skips applied migration",
			applied: []string{"001_create_study_records.sql"},
			setup:   func(sqlmock.Sqlmock) {},
		},
		{
			name: "rolls back failed migration",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE study_records").WillReturnError(errors.New("syntax error"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMockMigrator(t, DriverMySQL)

			mock.ExpectExec(regexp.QuoteMeta(createMigrationsTable)).WillReturnResult(sqlmock.NewResult(0, 0))
			rows := sqlmock.NewRows([]string{"version"})
			for _, v := range tt.applied {
				rows.AddRow(v)
			}
			mock.ExpectQuery("SELECT version FROM schema_migrations").WillReturnRows(rows)
			tt.setup(mock)

			got, err := migrator.Up(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantApplied, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMigrator_UnknownDriver(t *testing.T) {
	migrator, mock := newMockMigrator(t, "postgres")

	_, err := migrator.Pending(context.Background())
	assert.ErrorContains(t, err, `unsupported database driver "postgres"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
