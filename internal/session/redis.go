package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-review-api/internal/models"
)

// RedisStore keeps sessions in a Redis hash per session so several API instances can share them.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "review:session"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

func (s *RedisStore) Create(ctx context.Context, session models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := s.key(session.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "session", payload, "usage", session.DailyUsage)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Session, error) {
	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return models.Session{}, err
	}
	raw, ok := values["session"]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if usage, err := strconv.Atoi(values["usage"]); err == nil {
		session.DailyUsage = usage
	}
	return session, nil
}

// incrementUsageScript bumps the counter only while the session still exists, so an
// expired key is never recreated without its payload and TTL.
var incrementUsageScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], "session") == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "usage", 1)
`)

func (s *RedisStore) IncrementUsage(ctx context.Context, id string) (int, error) {
	usage, err := incrementUsageScript.Run(ctx, s.client, []string{s.key(id)}).Int64()
	if err != nil {
		return 0, err
	}
	if usage < 0 {
		return 0, ErrSessionNotFound
	}
	return int(usage), nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
