package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	r := NewMemoryRepository(clock)

	tok, err := r.Create(ctx, "u1", time.Hour)
	require.NoError(t, err)

	id, err := ksuid.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Unix(), id.Time().Unix())
	assert.Equal(t, clock.Now().Add(time.Hour), tok.Expires)

	got, err := r.Find(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestMemoryRepository_TokensAreUnique(t *testing.T) {
	r := NewMemoryRepository(clockwork.NewFakeClock())

	a, err := r.Create(context.Background(), "u1", time.Hour)
	require.NoError(t, err)
	b, err := r.Create(context.Background(), "u1", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository(clockwork.NewFakeClock())

	tok, err := r.Create(ctx, "u1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, tok.Token))
	require.ErrorIs(t, r.Delete(ctx, tok.Token), ErrNotFound)

	_, err = r.Find(ctx, tok.Token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository(clockwork.NewFakeClock())

	a1, _ := r.Create(ctx, "a", time.Hour)
	a2, _ := r.Create(ctx, "a", time.Hour)
	b1, _ := r.Create(ctx, "b", time.Hour)

	require.NoError(t, r.DeleteByUser(ctx, "a"))

	for _, tok := range []*RefreshToken{a1, a2} {
		_, err := r.Find(ctx, tok.Token)
		require.ErrorIs(t, err, ErrNotFound)
	}
	_, err := r.Find(ctx, b1.Token)
	require.NoError(t, err)
}
