package idempotency

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_WinnerComputesAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	result := []byte(`{"booking_id":"BK1"}`)

	mock.ExpectGet("idem:order-1").RedisNil()
	mock.ExpectSetNX("idem:order-1", pendingSentinel, pendingTTL).SetVal(true)
	mock.ExpectSet("idem:order-1", result, EntryTTL).SetVal("OK")

	calls := 0
	payload, replayed, err := store.GetOrCompute(context.Background(), "order-1", func() ([]byte, error) {
		calls++
		return result, nil
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, result, payload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_StoredResultReplaysWithoutCompute(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectGet("idem:order-1").SetVal(`{"booking_id":"BK1"}`)

	calls := 0
	payload, replayed, err := store.GetOrCompute(context.Background(), "order-1", func() ([]byte, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, 0, calls)
	assert.Equal(t, []byte(`{"booking_id":"BK1"}`), payload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ComputeErrorReleasesKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectGet("idem:order-1").RedisNil()
	mock.ExpectSetNX("idem:order-1", pendingSentinel, pendingTTL).SetVal(true)
	mock.ExpectDel("idem:order-1").SetVal(1)

	wantErr := errors.New("persist failed")
	payload, replayed, err := store.GetOrCompute(context.Background(), "order-1", func() ([]byte, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.False(t, replayed)
	assert.Nil(t, payload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_LoserPollsForWinnerResult(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)
	result := []byte(`{"booking_id":"BK1"}`)

	// another instance holds the pending key; first poll still sees it,
	// second poll sees the stored result
	mock.ExpectGet("idem:order-1").RedisNil()
	mock.ExpectSetNX("idem:order-1", pendingSentinel, pendingTTL).SetVal(false)
	mock.ExpectGet("idem:order-1").SetVal(pendingSentinel)
	mock.ExpectGet("idem:order-1").SetVal(string(result))

	payload, replayed, err := store.GetOrCompute(context.Background(), "order-1", func() ([]byte, error) {
		t.Error("loser must not compute")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, result, payload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_LoserFailsWhenWinnerReleases(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db)

	mock.ExpectGet("idem:order-1").RedisNil()
	mock.ExpectSetNX("idem:order-1", pendingSentinel, pendingTTL).SetVal(false)
	mock.ExpectGet("idem:order-1").RedisNil()

	_, _, err := store.GetOrCompute(context.Background(), "order-1", func() ([]byte, error) {
		t.Error("loser must not compute")
		return nil, nil
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
