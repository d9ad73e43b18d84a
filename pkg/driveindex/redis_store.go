package driveindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "drive_index:"

// RedisStore keeps each index as one JSON string value. SET replaces the value
// atomically, so several API instances can share the cache.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*Index, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	data, err := s.rdb.Get(ctx, redisKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if index.UserID == "" {
		index.UserID = userID
	}
	return &index, nil
}

func (s *RedisStore) Save(ctx context.Context, index *Index) error {
	if index == nil {
		return errors.New("nil index")
	}
	if err := validateUserID(index.UserID); err != nil {
		return err
	}

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(index.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set index: %w", err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, userID string) (bool, error) {
	if err := validateUserID(userID); err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, redisKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists index: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete index: %w", err)
	}
	return nil
}
