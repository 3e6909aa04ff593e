package session

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/curricuforge/internal/platform/database"
)

func TestNewPostgresStore_NilPool(t *testing.T) {
	_, err := NewPostgresStore(nil)
	require.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("curricuforge"),
		postgres.WithUsername("forge"),
		postgres.WithPassword("forge"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.EnsureSchema(ctx), "schema creation is repeatable")

	s, err := NewPostgresStore(db.Pool)
	require.NoError(t, err)
	exerciseStore(t, s)
}
