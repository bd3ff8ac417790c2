//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/database"
)

// startPostgres runs a throwaway PostgreSQL with the schema applied.
func startPostgres(ctx context.Context, t *testing.T) *sqlx.DB {
	t.Helper()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tanks"),
		tcpostgres.WithUsername("tanks"),
		tcpostgres.WithPassword("tanks"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres container")

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func TestPostgresRepositories(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := startPostgres(ctx, t)
	runRepositoryContract(t, func(t *testing.T) *Repos {
		_, err := db.ExecContext(context.Background(), `TRUNCATE tanks, tank_readings RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return New(db)
	})
}

func TestPostgresMigrateIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := startPostgres(ctx, t)
	require.NoError(t, database.Migrate(ctx, db))
}
