package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, ttl time.Duration) (*DeliveryLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewDeliveryLedger(rdb, ttl), mr
}

func TestDeliveryLedger_RecordAndCheck(t *testing.T) {
	t.Parallel()

	ledger, mr := newLedger(t, time.Hour)
	ctx := context.Background()
	at := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	delivered, err := ledger.WasDelivered(ctx, 42)
	require.NoError(t, err)
	assert.False(t, delivered)

	require.NoError(t, ledger.RecordDelivered(ctx, 42, "628111", at))

	delivered, err = ledger.WasDelivered(ctx, 42)
	require.NoError(t, err)
	assert.True(t, delivered)

	key := "reminder:delivered:42"
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var got deliveredValue
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "628111", got.Recipient)
	assert.True(t, got.DeliveredAt.Equal(at))
}

func TestDeliveryLedger_Expires(t *testing.T) {
	t.Parallel()

	ledger, mr := newLedger(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, ledger.RecordDelivered(ctx, 1, "628111", time.Now()))
	mr.FastForward(2 * time.Minute)

	delivered, err := ledger.WasDelivered(ctx, 1)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestDeliveryLedger_ServerDown(t *testing.T) {
	t.Parallel()

	ledger, mr := newLedger(t, time.Minute)
	mr.Close()

	_, err := ledger.WasDelivered(context.Background(), 1)
	assert.Error(t, err)
}
