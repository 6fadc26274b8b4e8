package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"zoblogs/internal/storage"
)

const (
	fieldValue   = "value"
	fieldVersion = "version"
)

// NewClient connects to Redis. addr is either a redis:// URL or host:port.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Store keeps every key in a hash holding the value and its version.
// Compare-and-swap is done with WATCH/MULTI.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) Get(ctx context.Context, key string) (storage.Entry, error) {
	if !storage.ValidKey(key) {
		return storage.Entry{}, storage.ErrInvalidInput
	}

	vals, err := s.client.HMGet(ctx, s.key(key), fieldValue, fieldVersion).Result()
	if err != nil {
		return storage.Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return storage.Entry{}, storage.ErrNotFound
	}

	value, _ := vals[0].(string)
	versionStr, _ := vals[1].(string)
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("redis get %s: bad version %q", key, versionStr)
	}
	return storage.Entry{Value: []byte(value), Version: version}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	if !storage.ValidKey(key) {
		return 0, storage.ErrInvalidInput
	}

	k := s.key(key)
	next := expected + 1
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return storage.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, next)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, storage.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, storage.ErrVersionConflict
	default:
		return 0, fmt.Errorf("redis put %s: %w", key, err)
	}
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ storage.Store = (*Store)(nil)
