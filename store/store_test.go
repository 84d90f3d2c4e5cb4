package store

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/math-2025/protected-geo/config"
	"github.com/math-2025/protected-geo/obfuscate"
)

func testKey(t *testing.T, secret string) *obfuscate.Key {
	t.Helper()
	key, err := obfuscate.NewKey(secret)
	require.NoError(t, err)
	return key
}

func newTestDecoy(t *testing.T, target string, createdAt time.Time) *Decoy {
	t.Helper()
	d, err := NewDecoy(PublicName(0), target, obfuscate.Coordinate{Lat: 40.4093, Lng: 49.8671}, testKey(t, "commander"))
	require.NoError(t, err)
	d.CreatedAt = createdAt
	return d
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := ConnectRedis(context.Background(), &redis.Options{Addr: mr.Addr()}, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestPublicName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Company Alpha", PublicName(0))
	assert.Equal(t, "Company Zeta", PublicName(5))
	assert.Equal(t, "Company Alpha", PublicName(6))
	assert.Equal(t, "Company Zeta", PublicName(-1))
	assert.Equal(t, "Company Alpha", PublicName(-6))
	assert.NotPanics(t, func() { PublicName(math.MinInt) })
	assert.NotPanics(t, func() { PublicName(math.MaxInt) })
}

func TestNewDecoy(t *testing.T) {
	t.Parallel()

	key := testKey(t, "commander")
	original := obfuscate.Coordinate{Lat: 40.4093, Lng: 49.8671}
	d, err := NewDecoy("Company Alpha", "target-1", original, key)
	require.NoError(t, err)

	expected := key.Encrypt(original)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, expected.Lat, d.Latitude)
	assert.Equal(t, expected.Lng, d.Longitude)
	assert.Equal(t, original, d.Original())
	assert.Equal(t, "target-1", d.OperationTargetID)
	assert.Equal(t, key.Fingerprint(), d.KeyFingerprint)
	require.Len(t, d.Steps, 5)
	assert.Equal(t, "Collatz Diffusion", d.Steps[0].Name)
	last := d.Steps[len(d.Steps)-1]
	assert.Equal(t, d.Latitude, last.Latitude)
	assert.Equal(t, d.Longitude, last.Longitude)
	assert.False(t, d.CreatedAt.IsZero())

	other, err := NewDecoy("Company Alpha", "target-1", original, key)
	require.NoError(t, err)
	assert.NotEqual(t, d.ID, other.ID)
}

func TestNewDecoyValidation(t *testing.T) {
	t.Parallel()

	_, err := NewDecoy("x", "target-1", obfuscate.Coordinate{}, nil)
	assert.ErrorIs(t, err, ErrInvalidDecoy)

	_, err = NewDecoy("x", "  ", obfuscate.Coordinate{}, testKey(t, "commander"))
	assert.ErrorIs(t, err, ErrInvalidDecoy)

	for _, name := range []string{"", " \t "} {
		_, err = NewDecoy(name, "target-1", obfuscate.Coordinate{}, testKey(t, "commander"))
		assert.ErrorIs(t, err, ErrInvalidDecoy)
	}
}

func TestDecoyVerify(t *testing.T) {
	t.Parallel()

	d := newTestDecoy(t, "target-1", time.Now())

	decrypted, ok := d.Verify(testKey(t, "commander"), obfuscate.DefaultTolerance)
	assert.True(t, ok)
	assert.InDelta(t, 40.4093, decrypted.Lat, 1e-9)
	assert.InDelta(t, 49.8671, decrypted.Lng, 1e-9)

	_, ok = d.Verify(testKey(t, "wrong-key"), obfuscate.DefaultTolerance)
	assert.False(t, ok)

	_, ok = d.Verify(nil, obfuscate.DefaultTolerance)
	assert.False(t, ok)
}

func TestStores(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis":  func(t *testing.T) Store { return newRedisStore(t) },
	}

	for name, create := range backends {
		create := create
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testStore(t, create(t))
		})
	}
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.Save(ctx, &Decoy{}), ErrInvalidDecoy)

	second := newTestDecoy(t, "target-1", base.Add(time.Minute))
	first := newTestDecoy(t, "target-1", base)
	other := newTestDecoy(t, "target-2", base)
	for _, d := range []*Decoy{second, first, other} {
		require.NoError(t, s.Save(ctx, d))
	}

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.Latitude, got.Latitude)
	assert.Equal(t, first.Steps, got.Steps)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	list, err := s.ListByTarget(ctx, "target-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	list, err = s.ListByTarget(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)

	// moving a decoy to another target
	second.OperationTargetID = "target-2"
	require.NoError(t, s.Save(ctx, second))
	list, err = s.ListByTarget(ctx, "target-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = s.ListByTarget(ctx, "target-2")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := s.DeleteByTarget(ctx, "target-2")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	list, err = s.ListByTarget(ctx, "target-2")
	require.NoError(t, err)
	assert.Empty(t, list)

	removed, err = s.DeleteByTarget(ctx, "target-2")
	require.NoError(t, err)
	assert.Zero(t, removed)

	assert.NoError(t, s.Close(ctx))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	d := newTestDecoy(t, "target-1", time.Now())
	require.NoError(t, s.Save(ctx, d))

	d.PublicName = "changed"
	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, PublicName(0), got.PublicName)

	got.Steps[0].Name = "changed"
	again, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Collatz Diffusion", again.Steps[0].Name)
}

func TestRedisStoreKeys(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s, err := ConnectRedis(context.Background(), &redis.Options{Addr: mr.Addr()}, "")
	require.NoError(t, err)
	defer s.Close(context.Background())

	d := newTestDecoy(t, "target-1", time.Now())
	require.NoError(t, s.Save(context.Background(), d))

	assert.True(t, mr.Exists("geovault:decoy:"+d.ID))
	members, err := mr.Members("geovault:target:target-1")
	require.NoError(t, err)
	assert.Equal(t, []string{d.ID}, members)
}

func TestRedisStoreConcurrentMoves(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s, err := ConnectRedis(context.Background(), &redis.Options{Addr: mr.Addr()}, "")
	require.NoError(t, err)
	defer s.Close(context.Background())

	d := newTestDecoy(t, "target-a", time.Now())
	require.NoError(t, s.Save(context.Background(), d))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		moved := d.clone()
		moved.OperationTargetID = []string{"target-a", "target-b", "target-c"}[i%3]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(context.Background(), moved); err != nil {
				assert.ErrorIs(t, err, redis.TxFailedErr)
			}
		}()
	}
	wg.Wait()

	stored, err := s.Get(context.Background(), d.ID)
	require.NoError(t, err)
	for _, target := range []string{"target-a", "target-b", "target-c"} {
		members, _ := mr.Members("geovault:target:" + target)
		if target == stored.OperationTargetID {
			assert.Equal(t, []string{d.ID}, members, target)
		} else {
			assert.NotContains(t, members, d.ID, target)
		}
	}
}

func TestRedisStoreMove(t *testing.T) {
	t.Parallel()

	s := newRedisStore(t)
	d := newTestDecoy(t, "target-a", time.Now())
	require.NoError(t, s.Save(context.Background(), d))

	d.OperationTargetID = "target-b"
	require.NoError(t, s.Save(context.Background(), d))

	old, err := s.ListByTarget(context.Background(), "target-a")
	require.NoError(t, err)
	assert.Empty(t, old)
	moved, err := s.ListByTarget(context.Background(), "target-b")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, d.ID, moved[0].ID)
}

func TestConnectRedisUnreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1}, "")
	assert.Error(t, err)
}

func TestMongoDocumentMapping(t *testing.T) {
	t.Parallel()

	d := newTestDecoy(t, "target-1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	raw, err := bson.Marshal(d)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, d.ID, doc["_id"])
	assert.Equal(t, "target-1", doc["operation_target_id"])
	assert.Equal(t, d.KeyFingerprint, doc["key_fingerprint"])
	assert.Contains(t, doc, "derivation_steps")

	assert.Equal(t, bson.D{{Key: "_id", Value: "x"}}, byID("x"))
	assert.Equal(t, bson.D{{Key: "operation_target_id", Value: "t"}}, byTarget("t"))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), config.Store{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(context.Background(), config.Store{Backend: config.BackendRedis, RedisAddress: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	assert.NoError(t, s.Close(context.Background()))

	_, err = Open(context.Background(), config.Store{Backend: "sqlite"})
	assert.True(t, errors.Is(err, config.ErrUnknownBackend))
}
