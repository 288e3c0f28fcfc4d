package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryLedger remembers which reminders were already handed to the chat
// channel, so a failed mark-sent write does not cause a second delivery.
type DeliveryLedger struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeliveryLedger(rdb *redis.Client, ttl time.Duration) *DeliveryLedger {
	return &DeliveryLedger{rdb: rdb, ttl: ttl}
}

type deliveredValue struct {
	Recipient   string    `json:"recipient"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

func ledgerKey(reminderID int64) string {
	return fmt.Sprintf("reminder:delivered:%d", reminderID)
}

func (l *DeliveryLedger) RecordDelivered(ctx context.Context, reminderID int64, recipient string, at time.Time) error {
	b, err := json.Marshal(deliveredValue{Recipient: recipient, DeliveredAt: at.UTC()})
	if err != nil {
		return err
	}
	return l.rdb.Set(ctx, ledgerKey(reminderID), b, l.ttl).Err()
}

func (l *DeliveryLedger) WasDelivered(ctx context.Context, reminderID int64) (bool, error) {
	err := l.rdb.Get(ctx, ledgerKey(reminderID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read delivery ledger: %w", err)
	}
	return true, nil
}
