package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initcareer/init-web/internal/testutil"
)

func TestStorageRepo_SetGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewStorageRepo(db, StorageRepoOptions{Tier: TierLocal})
		ctx := context.Background()

		require.NoError(t, repo.Set(ctx, "dev-1", "authToken", "tok"))
		require.NoError(t, repo.Set(ctx, "dev-1", "userRole", "USER"))
		require.NoError(t, repo.Set(ctx, "dev-1", "authToken", "tok-2"))

		v, err := repo.Get(ctx, "dev-1", "authToken")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", v)

		all, err := repo.GetAll(ctx, "dev-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"authToken": "tok-2", "userRole": "USER"}, all)

		require.NoError(t, repo.Delete(ctx, "dev-1", "authToken", "missing"))
		v, err = repo.Get(ctx, "dev-1", "authToken")
		require.NoError(t, err)
		assert.Empty(t, v)

		require.NoError(t, repo.Clear(ctx, "dev-1"))
		all, err = repo.GetAll(ctx, "dev-1")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestStorageRepo_TiersAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		local := NewStorageRepo(db, StorageRepoOptions{Tier: TierLocal})
		session := NewStorageRepo(db, StorageRepoOptions{Tier: TierSession, TTL: time.Hour})
		ctx := context.Background()

		require.NoError(t, local.Set(ctx, "dev-1", "theme", "dark"))
		require.NoError(t, session.Set(ctx, "dev-1", "sendSessionId", "abc"))
		require.NoError(t, session.Clear(ctx, "dev-1"))

		v, err := local.Get(ctx, "dev-1", "theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", v)
	})
}

func TestStorageRepo_ExpiredRowsHiddenAndPruned(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testutil.WithAutoDB(t, func(db *sql.DB) {
		now := testutil.TestTime()
		clock := func() time.Time { return now }
		repo := NewStorageRepo(db, StorageRepoOptions{Tier: TierSession, TTL: 30 * time.Minute, Now: clock})
		ctx := context.Background()

		require.NoError(t, repo.Set(ctx, "dev-1", "sendSessionId", "abc"))
		require.NoError(t, repo.Set(ctx, "dev-2", "sendSessionId", "def"))

		now = now.Add(20 * time.Minute)
		// A write slides the whole scope forward.
		require.NoError(t, repo.Set(ctx, "dev-2", "other", "x"))

		now = now.Add(15 * time.Minute)
		v, err := repo.Get(ctx, "dev-1", "sendSessionId")
		require.NoError(t, err)
		assert.Empty(t, v, "dev-1 expired")

		v, err = repo.Get(ctx, "dev-2", "sendSessionId")
		require.NoError(t, err)
		assert.Equal(t, "def", v)

		n, err := repo.DeleteExpired(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
