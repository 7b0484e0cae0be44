// internal/common/session/store_test.go
package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func sampleSession(id string) *models.Session {
	s := models.NewSession(id)
	s.Profile.MonthlyIncome = models.Float64(50000)
	s.Profile.LoanType = models.LoanTypeHome
	s.AddMessage(models.RoleUser, "I want a home loan", 0)
	s.AddMessage(models.RoleAssistant, "How much would you like to borrow?", 0)
	return s
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "loan-session:", time.Hour), mr
}

// ==========================
// Shared Store Behaviour
// ==========================

func TestStores_RoundTrip(t *testing.T) {
	redisStore, _ := newMiniredisStore(t)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			in := sampleSession("s-1")
			require.NoError(t, store.Put(ctx, in))

			out, err := store.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, in.ID, out.ID)
			assert.Equal(t, in.Profile, out.Profile)
			require.Len(t, out.History, 2)
			assert.Equal(t, "How much would you like to borrow?", out.History[1].Content)
			assert.Equal(t, models.RoleAssistant, out.History[1].Role)

			require.NoError(t, store.Delete(ctx, "s-1"))
			_, err = store.Get(ctx, "s-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, created, err := LoadOrCreate(ctx, store, "new")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new", s.ID)

	require.NoError(t, store.Put(ctx, sampleSession("old")))
	s, created, err = LoadOrCreate(ctx, store, "old")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, s.History, 2)
}

// ==========================
// Memory Store
// ==========================

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := sampleSession("s-1")
	require.NoError(t, store.Put(ctx, in))

	*in.Profile.MonthlyIncome = 1
	in.History[0].Content = "changed"

	out, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, *out.Profile.MonthlyIncome)
	assert.Equal(t, "I want a home loan", out.History[0].Content)

	*out.Profile.MonthlyIncome = 2
	again, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, *again.Profile.MonthlyIncome)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%10))
			_ = store.Put(ctx, sampleSession(id))
			_, _ = store.Get(ctx, id)
		}(n)
	}
	wg.Wait()
	assert.Equal(t, 10, store.Len())
}

// ==========================
// Redis Store
// ==========================

func TestRedisStore_TTLAndKey(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleSession("abc")))

	assert.True(t, mr.Exists("loan-session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("loan-session:abc"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	store, mr := newMiniredisStore(t)
	require.NoError(t, mr.Set("loan-session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionCorrupted))
}

func TestRedisStore_BackendErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "p:", time.Minute)
	ctx := context.Background()

	mock.ExpectGet("p:s-1").SetErr(errors.New("connection refused"))
	_, err := store.Get(ctx, "s-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	mock.ExpectDel("p:s-1").SetErr(errors.New("connection refused"))
	err = store.Delete(ctx, "s-1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	assert.NoError(t, mock.ExpectationsWereMet())
}
