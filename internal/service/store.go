package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"tmsintake/internal/form"
	"tmsintake/internal/model"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// Record is one stored form session. Stored records are replaced, never
// mutated in place.
type Record struct {
	ID        string         `json:"id"`
	FormType  model.FormType `json:"formType"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	State     form.Snapshot  `json:"state"`
}

// Store persists sessions between requests. Update serialises mutations
// of one session: fn sees the latest record and its changes are saved
// only when it returns nil.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id string, fn func(rec *Record) error) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a size-bounded LRU; entries expire after
// ttl without an update.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Record]
}

// NewMemoryStore creates an in-process session store
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, Record](size, nil, ttl),
	}
}

func (m *MemoryStore) Create(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(rec.ID, *rec)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	rec, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(rec *Record) error) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := fn(&rec); err != nil {
		return nil, err
	}
	// Re-adding refreshes the expiry
	m.cache.Add(id, rec)
	return &rec, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cache.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}
