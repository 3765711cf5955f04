// Package session tracks the live token session of each user in Redis.
// A token is accepted only while its sid matches the one stored for its user.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionInvalid = errors.New("session is not live")

func Key(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore keeps each session for ttl, which should match the refresh window.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Start opens a new session for the user, replacing any previous one.
func (s *RedisStore) Start(ctx context.Context, userID int64, username string) (string, error) {
	sid := uuid.NewString()
	key := Key(userID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"username":   username,
		"sid":        sid,
		"logged_in":  true,
		"created_at": s.stamp(),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *RedisStore) Check(ctx context.Context, userID int64, sid string) error {
	cur, err := s.rdb.HGet(ctx, Key(userID), "sid").Result()
	if errors.Is(err, redis.Nil) {
		return ErrSessionInvalid
	}
	if err != nil {
		return err
	}
	if sid == "" || cur != sid {
		return ErrSessionInvalid
	}
	return nil
}

// KEYS[1]=session key, ARGV[1]=expected sid, ARGV[2]=new sid, ARGV[3]=updated_at, ARGV[4]=ttl ms
var rotateScript = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "sid")
if cur ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "sid", ARGV[2], "updated_at", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// Rotate swaps sid for a fresh one. Tokens carrying the old sid stop verifying.
func (s *RedisStore) Rotate(ctx context.Context, userID int64, sid string) (string, error) {
	next := uuid.NewString()
	n, err := rotateScript.Run(ctx, s.rdb, []string{Key(userID)}, sid, next, s.stamp(), s.ttl.Milliseconds()).Int()
	if err != nil {
		return "", err
	}
	if n != 1 {
		return "", ErrSessionInvalid
	}
	return next, nil
}

func (s *RedisStore) Revoke(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, Key(userID)).Err()
}
