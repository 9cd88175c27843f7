package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/migrate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_users_table.sql": {
			"CREATE TABLE IF NOT EXISTS users",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email",
			"DROP TABLE IF EXISTS users",
		},
		"*_create_parking_lots_table.sql": {
			"CREATE TABLE IF NOT EXISTS parking_lots",
			"occupied_slots INTEGER NOT NULL DEFAULT 0",
			"status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE'",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_lots_lot_name",
			"DROP TABLE IF EXISTS parking_lots",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, sub := range checks {
			require.Contains(t, string(data), sub, matches[0])
		}
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, migrate.ValidateDir(dir), "empty dir")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_users.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "missing \"-- +goose Down\"")

	dir = t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_open_block.sql"), []byte(body), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "unterminated")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_reversed.sql"), []byte("-- +goose Down\n-- +goose Up\n"), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "before")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Lot Zones!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301091000_add_lot_zones.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "add lot zones", now.Add(time.Hour))
	require.ErrorContains(t, err, "already exists")

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	conn, err := db.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)

	require.NoError(t, migrate.AutoMigrate(context.Background(), conn))
	require.True(t, conn.Migrator().HasTable("users"))
	require.True(t, conn.Migrator().HasTable("parking_lots"))
	require.True(t, conn.Migrator().HasIndex("users", "idx_users_email"))
	require.True(t, conn.Migrator().HasIndex("parking_lots", "idx_parking_lots_lot_name"))
}
