package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabsure/cabsure-backend/internal/utils"
)

const testSalt = "test-salt"

func fixedCode(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

func TestStore_IssueAndVerify(t *testing.T) {
	backing := NewMemoryBackingStore(nil)
	store := NewStore(backing, testSalt, utils.GenerateOTPCode, &StoreOpts{
		CodeGen: fixedCode("4321"),
	})
	ctx := context.Background()

	iss, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "4321", iss.Code)

	ok, err := store.Verify(ctx, "9876543210", "4321")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_VerifyIsOneTimeUse(t *testing.T) {
	store := NewStore(NewMemoryBackingStore(nil), testSalt, nil, &StoreOpts{
		CodeGen: fixedCode("4321"),
	})
	ctx := context.Background()

	_, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)

	ok, err := store.Verify(ctx, "9876543210", "4321")
	require.NoError(t, err)
	require.True(t, ok)

	// same code a second time must fail: the record was consumed
	ok, err = store.Verify(ctx, "9876543210", "4321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_MismatchLeavesRecordForRetry(t *testing.T) {
	store := NewStore(NewMemoryBackingStore(nil), testSalt, nil, &StoreOpts{
		CodeGen: fixedCode("4321"),
	})
	ctx := context.Background()

	_, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)

	ok, err := store.Verify(ctx, "9876543210", "9999")
	require.NoError(t, err)
	require.False(t, ok)

	// the correct code still verifies after a wrong guess
	ok, err = store.Verify(ctx, "9876543210", "4321")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_LastIssuanceWins(t *testing.T) {
	codes := []string{"1111", "2222"}
	i := 0
	store := NewStore(NewMemoryBackingStore(nil), testSalt, nil, &StoreOpts{
		CodeGen: func() (string, error) {
			code := codes[i]
			i++
			return code, nil
		},
	})
	ctx := context.Background()

	_, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)
	_, err = store.Issue(ctx, "9876543210")
	require.NoError(t, err)

	// the first code was invalidated by the re-issue
	ok, err := store.Verify(ctx, "9876543210", "1111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Verify(ctx, "9876543210", "2222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_ExpiredCodeFailsVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	backing := NewMemoryBackingStore(clock)
	store := NewStore(backing, testSalt, nil, &StoreOpts{
		CodeGen:      fixedCode("4321"),
		TimeProvider: clock,
	})
	ctx := context.Background()

	_, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)

	now = now.Add(CodeTTL + time.Second)

	ok, err := store.Verify(ctx, "9876543210", "4321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PhoneIsPartOfHash(t *testing.T) {
	store := NewStore(NewMemoryBackingStore(nil), testSalt, nil, &StoreOpts{
		CodeGen: fixedCode("4321"),
	})
	ctx := context.Background()

	_, err := store.Issue(ctx, "9876543210")
	require.NoError(t, err)

	ok, err := store.Verify(ctx, "1234567890", "4321")
	require.NoError(t, err)
	assert.False(t, ok, "a code issued to one phone must not verify for another")
}

func TestGenerateOTPCode_FourDigitSpace(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := utils.GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
	}
}
