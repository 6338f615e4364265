package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
)

// MemoryRepository keeps refresh tokens in process memory. Tokens are KSUIDs.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
	clock  clockwork.Clock
}

func NewMemoryRepository(clock clockwork.Clock) *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]RefreshToken), clock: clock}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, validity time.Duration) (*RefreshToken, error) {
	id, err := ksuid.NewRandomWithTime(r.clock.Now())
	if err != nil {
		return nil, err
	}

	t := RefreshToken{Token: id.String(), UserID: userID, Expires: r.clock.Now().Add(validity)}

	r.mu.Lock()
	r.tokens[t.Token] = t
	r.mu.Unlock()

	return &t, nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}
