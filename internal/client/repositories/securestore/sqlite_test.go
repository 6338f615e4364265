package securestore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/localdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRepo(t *testing.T, db *sql.DB, secret string) *SQLiteRepository {
	t.Helper()
	key, err := InstallKey(context.Background(), db, []byte(secret))
	require.NoError(t, err)
	return NewSQLiteRepository(db, key)
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestSet_StoresSealedValue(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session", []byte("access-token-123")))

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM secure_store WHERE key = 'session'`).Scan(&raw))
	assert.NotContains(t, string(raw), "access-token-123")
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestInstallKey_StableAcrossCalls(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	k1, err := InstallKey(ctx, db, []byte("secret"))
	require.NoError(t, err)
	k2, err := InstallKey(ctx, db, []byte("secret"))
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestGet_WrongSecret_Unreadable(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, newRepo(t, db, "right").Set(ctx, "session", []byte("v")))

	_, err := newRepo(t, db, "wrong").Get(ctx, "session")
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestGet_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	require.NoError(t, db.Close())

	v, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	require.Nil(t, v)
	require.Contains(t, err.Error(), "failed to get secure_store[k]")
}

func TestSet_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	require.NoError(t, db.Close())

	err := r.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to set secure_store[k]")
}

func TestDelete_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := newRepo(t, db, "secret")
	require.NoError(t, db.Close())

	err := r.Delete(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to delete secure_store[k]")
}
