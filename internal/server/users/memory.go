package users

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/jonboulle/clockwork"
)

// MemoryRepository keeps users in process memory. IDs are snowflakes.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byPhone map[string]string
	node    *snowflake.Node
	clock   clockwork.Clock
}

func NewMemoryRepository(nodeID int64, clock clockwork.Clock) (*MemoryRepository, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byPhone: make(map[string]string),
		node:    node,
		clock:   clock,
	}, nil
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPhone[user.Phone]; ok {
		return nil, ErrAlreadyExists
	}

	u := *user
	u.ID = r.node.Generate().String()
	u.CreatedAt = r.clock.Now()
	u.UpdatedAt = u.CreatedAt

	r.byID[u.ID] = &u
	r.byPhone[u.Phone] = u.ID

	out := u
	return &out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	r.mu.RLock()
	id, ok := r.byPhone[phone]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch Patch) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.apply(patch)
	u.UpdatedAt = r.clock.Now()

	out := *u
	return &out, nil
}
