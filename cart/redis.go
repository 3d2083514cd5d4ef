package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 10

// ErrContention is returned when a cart kept changing under a transaction.
var ErrContention = errors.New("cart: too many concurrent updates")

// RedisStore keeps each cart as a JSON value under cart:<userID>.
type RedisStore struct {
	Client *redis.Client
	// TTL expires idle carts. Zero keeps them forever.
	TTL time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) key(userID uint) string {
	return "cart:" + strconv.FormatUint(uint64(userID), 10)
}

func decode(raw []byte, err error) (*Cart, error) {
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Get(ctx context.Context, userID uint) (*Cart, error) {
	return decode(s.Client.Get(ctx, s.key(userID)).Bytes())
}

// Update runs fn inside an optimistic WATCH/MULTI transaction and retries
// when another writer touched the key first.
func (s *RedisStore) Update(ctx context.Context, userID uint, fn func(*Cart) error) error {
	key := s.key(userID)
	txf := func(tx *redis.Tx) error {
		c, err := decode(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		var payload []byte
		if !c.Empty() {
			if payload, err = json.Marshal(c); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, payload, s.TTL)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContention
}

func (s *RedisStore) Clear(ctx context.Context, userID uint) error {
	return s.Client.Del(ctx, s.key(userID)).Err()
}
