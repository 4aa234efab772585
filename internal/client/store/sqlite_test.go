package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/kadrio/clientkit/internal/common"
)

var dbSeq atomic.Int64

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:credstore%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func TestGetSetDelete(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, KeyToken)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Set(ctx, KeyToken, []byte("T")))
	v, err := repo.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("T"), v)

	// Overwrite.
	require.NoError(t, repo.Set(ctx, KeyToken, []byte("T2")))
	v, err = repo.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("T2"), v)

	require.NoError(t, repo.Delete(ctx, KeyToken))
	_, err = repo.Get(ctx, KeyToken)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// Deleting an absent key is fine.
	require.NoError(t, repo.Delete(ctx, KeyToken))
}

func TestSaveSession_WritesAllKeys(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)
	ctx := context.Background()

	rec := SessionRecord{
		Token:           "T",
		RefreshToken:    "R",
		UserJSON:        []byte(`{"id":7}`),
		PermissionsJSON: []byte(`{"modules":[]}`),
		CompanyID:       "c-1",
	}
	require.NoError(t, repo.SaveSession(ctx, rec))

	loaded, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, &rec, loaded)
}

func TestSaveSession_EmptyFieldsDeleteKeys(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, SessionRecord{
		Token: "T", RefreshToken: "R", UserJSON: []byte(`{"id":1}`), CompanyID: "c-1",
	}))

	// A later login without a refresh token must not leave the old one behind.
	require.NoError(t, repo.SaveSession(ctx, SessionRecord{
		Token: "T2", UserJSON: []byte(`{"id":1}`), CompanyID: "c-1",
	}))

	_, err := repo.Get(ctx, KeyRefreshToken)
	require.ErrorIs(t, err, common.ErrorNotFound)

	loaded, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "T2", loaded.Token)
	require.Empty(t, loaded.RefreshToken)
	require.Nil(t, loaded.PermissionsJSON)
}

func TestLoadSession_EmptyStore(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)

	loaded, err := repo.LoadSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, &SessionRecord{}, loaded)
}

func TestClear_RemovesSessionKeepsDeviceID(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, SessionRecord{
		Token: "T", RefreshToken: "R", UserJSON: []byte(`{"id":1}`),
		PermissionsJSON: []byte(`{"modules":[]}`), CompanyID: "c-1",
	}))
	require.NoError(t, repo.Set(ctx, KeyOfflineVerifier, []byte("v")))
	require.NoError(t, repo.Set(ctx, KeyDeviceID, []byte("dev-1")))

	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{KeyToken, KeyRefreshToken, KeyUser, KeyPermissions, KeyCompanyID, KeyOfflineVerifier} {
		_, err := repo.Get(ctx, key)
		require.ErrorIs(t, err, common.ErrorNotFound, "key %s should be absent", key)
	}

	v, err := repo.Get(ctx, KeyDeviceID)
	require.NoError(t, err)
	require.Equal(t, []byte("dev-1"), v)
}

func TestEnsureDeviceID_StableAcrossCalls(t *testing.T) {
	t.Parallel()
	repo := setupRepo(t)
	ctx := context.Background()

	id1, err := EnsureDeviceID(ctx, repo)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := EnsureDeviceID(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	require.NoError(t, repo.Clear(ctx))
	id3, err := EnsureDeviceID(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, id1, id3)
}
