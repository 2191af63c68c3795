// Package testutil holds helpers shared by package tests that need a real database.
package testutil

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewDB opens a private in-memory sqlite database with every model migrated. A single
// connection serializes transactions the way row locks would on postgres.
func NewDB(t *testing.T) *database.Client {
	t.Helper()
	client, err := database.Open(context.Background(), database.Config{
		Driver:       database.DriverSQLite,
		DSN:          "file:storefront_" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = client.Close() })
	return client
}
