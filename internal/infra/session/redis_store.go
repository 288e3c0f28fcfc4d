package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"task_reminder_bot/internal/domain/dialog"
)

// RedisStore keeps one JSON document per sender. A zero ttl keeps sessions forever.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func sessionKey(senderID string) string {
	return "session:" + senderID
}

func (s *RedisStore) Load(ctx context.Context, senderID string) (*dialog.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(senderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, dialog.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", senderID, err)
	}

	var sess dialog.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w: %w", senderID, dialog.ErrSessionCorrupt, err)
	}
	if sess.History == nil {
		sess.History = []dialog.State{}
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *dialog.Session) error {
	sess.UpdatedAt = s.now().UTC()
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.SenderID, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.SenderID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sess.SenderID, err)
	}
	return nil
}
