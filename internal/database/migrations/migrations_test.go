package migrations_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"web-calendar/internal/config"
	"web-calendar/internal/database"
	"web-calendar/internal/database/migrations"
	"web-calendar/internal/logger"
)

func openTestDB(t *testing.T) (*bun.DB, *logger.Logger) {
	t.Helper()
	log := logger.NewLogger("", false)
	log.SetOutput(io.Discard)

	bunDB, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "calendar.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })
	return bunDB, log
}

func tableExists(t *testing.T, bunDB *bun.DB, name string) bool {
	t.Helper()
	var count int
	err := bunDB.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).
		Scan(context.Background(), &count)
	require.NoError(t, err)
	return count == 1
}

func TestRunMigrationsCreatesSchema(t *testing.T) {
	bunDB, log := openTestDB(t)

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	defer runner.Close()

	_, _, ok, err := runner.Version()
	require.NoError(t, err)
	assert.False(t, ok, "fresh database should have no schema version")

	require.NoError(t, runner.RunMigrations())
	assert.True(t, tableExists(t, bunDB, "calendar"))

	version, dirty, ok, err := runner.Version()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	// A second run is a no-op.
	require.NoError(t, runner.RunMigrations())
}

func TestMigrateDownAndTo(t *testing.T) {
	bunDB, log := openTestDB(t)

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	defer runner.Close()

	require.NoError(t, runner.MigrateUp())
	require.NoError(t, runner.MigrateTo(1))

	version, _, ok, err := runner.Version()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(1), version)
	assert.True(t, tableExists(t, bunDB, "calendar"))

	require.NoError(t, runner.MigrateDown())
	assert.False(t, tableExists(t, bunDB, "calendar"))

	_, _, ok, err = runner.Version()
	require.NoError(t, err)
	assert.False(t, ok)

	// The caller's handle stays usable after the runner is closed.
	require.NoError(t, runner.Close())
	assert.NoError(t, bunDB.Ping())
}

func TestUnknownDriver(t *testing.T) {
	bunDB, log := openTestDB(t)

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{Driver: "oracle"}, log)
	assert.Error(t, runner.RunMigrations())
}

func TestCloseAfterStartupMigration(t *testing.T) {
	bunDB, log := openTestDB(t)

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	require.NoError(t, runner.RunMigrations())
	require.NoError(t, runner.Close())
	assert.NoError(t, runner.Close())

	var count int
	require.NoError(t, bunDB.NewRaw("SELECT COUNT(*) FROM calendar").Scan(context.Background(), &count))
	assert.Zero(t, count)
}
