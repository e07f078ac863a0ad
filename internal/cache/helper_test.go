package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type companyEntry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAside_MissThenHit(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	key := CompanyByNameKey("Acme")

	calls := 0
	fetch := func(dest *companyEntry) func() error {
		return func() error {
			calls++
			*dest = companyEntry{ID: 3, Name: "Acme"}
			return nil
		}
	}

	var first companyEntry
	hit, err := Aside(ctx, rdb, key, &first, CompanyTTL, fetch(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, uint(3), first.ID)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, CompanyTTL, mr.TTL(key))

	var second companyEntry
	hit, err = Aside(ctx, rdb, key, &second, CompanyTTL, fetch(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	key := CompanyByAccountKey(42)

	var dest companyEntry
	_, err := Aside(context.Background(), rdb, key, &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists(key))
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	var dest companyEntry
	hit, err := Aside(context.Background(), nil, "k", &dest, time.Minute, func() error {
		dest.ID = 9
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, uint(9), dest.ID)
}

func TestAside_CorruptEntryRefetches(t *testing.T) {
	mr, rdb := newTestRedis(t)
	key := CompanyByNameKey("Globex")
	require.NoError(t, mr.Set(key, "{not json"))

	var dest companyEntry
	hit, err := Aside(context.Background(), rdb, key, &dest, time.Minute, func() error {
		dest = companyEntry{ID: 5, Name: "Globex"}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, uint(5), dest.ID)
}

func TestInvalidate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	key := CompanyByAccountKey(1)
	require.NoError(t, mr.Set(key, "1"))

	Invalidate(context.Background(), rdb, key)
	assert.False(t, mr.Exists(key))

	Invalidate(context.Background(), nil, key)
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("redis://%zz"))
}
