package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsintake/internal/form"
	"tmsintake/internal/model"
	"tmsintake/internal/registry"
)

func newRecord(t *testing.T) *Record {
	t.Helper()
	f, err := registry.Default().Lookup(model.FormContact)
	require.NoError(t, err)
	now := clinicNow()
	return &Record{
		ID:        ulid.Make().String(),
		FormType:  f.Type,
		CreatedAt: now,
		UpdatedAt: now,
		State:     form.New(f, clinicNow).Snapshot(),
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	rec := newRecord(t)
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, got.State.Status)

	updated, err := store.Update(ctx, rec.ID, func(r *Record) error {
		r.State.Status = model.StatusValidating
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidating, updated.State.Status)

	// a failing update is not saved
	_, err = store.Update(ctx, rec.ID, func(r *Record) error {
		r.State.Status = model.StatusSubmitting
		return errors.New("abort")
	})
	assert.Error(t, err)
	got, err = store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidating, got.State.Status)

	_, err = store.Update(ctx, "missing", func(r *Record) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, rec.ID))
	_, err = store.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(16, time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(16, 50*time.Millisecond)
	rec := newRecord(t)
	require.NoError(t, store.Create(context.Background(), rec))

	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), rec.ID)
		return errors.Is(err, ErrSessionNotFound)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}
