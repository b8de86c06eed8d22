package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolens/diettracker/internal/domain"
)

func TestPostgresStore_RoundTrip(t *testing.T) {
	url := os.Getenv("DIETTRACKER_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("DIETTRACKER_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(url)
	require.NoError(t, err)
	defer store.Close()

	key := "test_" + t.Name()
	defer store.Delete(ctx, key)

	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrKeyNotFound))

	require.NoError(t, store.Set(ctx, key, "one"))
	require.NoError(t, store.Set(ctx, key, "two"))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}
