//go:build integration

package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("hacktopia"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgresDriver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestMigrate_Postgres(t *testing.T) {
	t.Setenv("MIGRATIONS_PATH", "../../../migrations")
	db := startPostgres(t)
	log := zaptest.NewLogger(t).Sugar()

	require.NoError(t, Migrate(db, log))
	// second run is a no-op
	require.NoError(t, Migrate(db, log))

	for _, table := range []string{"users", "profiles", "one_time_passwords", "teams", "team_members", "join_requests"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}

	require.NoError(t, db.Exec(`INSERT INTO users (user_id, email, password_hash)
		VALUES ('u1', 'bob@example.com', 'x'), ('u2', 'carol@example.com', 'x')`).Error)

	t.Run("accepted status is never persisted", func(t *testing.T) {
		require.NoError(t, db.Exec(`INSERT INTO teams (team_id, team_name, team_captain, team_motto, team_country)
			VALUES ('t1', 'alpha', 'alice', 'go', 'DE')`).Error)
		err := db.Exec(`INSERT INTO join_requests (id, team_id, user_id, status)
			VALUES ('r1', 't1', 'u1', 'accepted')`).Error
		assert.Error(t, err)
	})

	t.Run("one request per team and user", func(t *testing.T) {
		require.NoError(t, db.Exec(`INSERT INTO join_requests (id, team_id, user_id, status)
			VALUES ('r2', 't1', 'u2', 'pending')`).Error)
		err := db.Exec(`INSERT INTO join_requests (id, team_id, user_id, status)
			VALUES ('r3', 't1', 'u2', 'rejected')`).Error
		assert.Error(t, err)
	})

	require.NoError(t, Rollback(db, log))
	assert.False(t, db.Migrator().HasTable("join_requests"))
	assert.True(t, db.Migrator().HasTable("users"))
}
