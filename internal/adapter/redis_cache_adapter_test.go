package adapter

import (
	"context"
	"testing"
	"time"

	"quizfaucet/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheAdapter_GetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectGet("some:key").SetVal("value")

	val, err := cacheAdapter.Get(context.Background(), "some:key")
	require.NoError(t, err)
	assert.Equal(t, "value", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectGet("missing:key").RedisNil()

	_, err := cacheAdapter.Get(context.Background(), "missing:key")
	assert.Equal(t, domain.ErrCacheMiss, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectSet("some:key", "value", time.Minute).SetVal("OK")

	err := cacheAdapter.Set(context.Background(), "some:key", "value", time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectDel("some:key").SetVal(1)

	err := cacheAdapter.Delete(context.Background(), "some:key")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
