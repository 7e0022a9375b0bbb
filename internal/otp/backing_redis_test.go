package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchCmdKeyValue compares only the command, key and value; the SET expiry
// tracks the record's ExpiresAt and is not deterministic across runs.
func matchCmdKeyValue(expected, actual []interface{}) error {
	if len(expected) < 3 || len(actual) < 3 {
		return fmt.Errorf("expected at least 3 args, got %d/%d", len(expected), len(actual))
	}
	for i := 0; i < 3; i++ {
		if fmt.Sprint(expected[i]) != fmt.Sprint(actual[i]) {
			return fmt.Errorf("arg %d: want %v, got %v", i, expected[i], actual[i])
		}
	}
	return nil
}

func TestRedisBackingStore_PutGetRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisBackingStore(db)
	ctx := context.Background()

	rec := Record{CodeHash: "deadbeef", ExpiresAt: time.Now().Add(CodeTTL)}
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.CustomMatch(matchCmdKeyValue).
		ExpectSet("otp:code:9876543210", payload, CodeTTL).SetVal("OK")
	require.NoError(t, store.Put(ctx, "9876543210", rec))

	mock.ExpectGet("otp:code:9876543210").SetVal(string(payload))
	got, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.CodeHash, got.CodeHash)
	assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBackingStore_GetMissingReturnsNilRecord(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisBackingStore(db)

	mock.ExpectGet("otp:code:9876543210").RedisNil()

	got, err := store.Get(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBackingStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisBackingStore(db)

	mock.ExpectDel("otp:code:9876543210").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "9876543210"))
	require.NoError(t, mock.ExpectationsWereMet())
}
