package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opensourceavatars/avatar-site/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable database named by AVATARS_TEST_POSTGRES_URL.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("AVATARS_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("AVATARS_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	store, err := Open("postgres", dsn)
	require.NoError(t, err)
	defer store.Close()

	col := models.NewCollection()
	col.Name = "pg-" + uuid.NewString()
	require.NoError(t, store.CreateCollection(ctx, col))

	a := models.NewAvatar()
	a.CollectionID = col.ID
	a.Name = "Postgres Robot"
	a.ModelTxID = "tx-" + uuid.NewString()
	a.Tags = []string{"robot"}
	a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.CreateAvatar(ctx, a))

	got, err := store.GetAvatar(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"robot"}, got.Tags)
	assert.Equal(t, col.ID, got.CollectionID)

	require.NoError(t, store.IncrementDownloads(ctx, a.ID))
	got, err = store.GetAvatar(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Downloads)

	byCol, err := store.GetAvatarsByCollection(ctx, col.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byCol, 1)

	found, err := store.SearchAvatars(ctx, "robot", 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, found)
}
