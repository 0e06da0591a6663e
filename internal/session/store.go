package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/redis/go-redis/v9"
)

const (
	// MarkerKey is the unscoped key holding the marker.
	MarkerKey = "dream_catcher_session"

	// SecretKey holds the generated signing secret when none is configured.
	SecretKey = "dream_catcher_session_secret"
)

// MarkerStore keeps at most one marker.
type MarkerStore interface {
	Load(ctx context.Context) (marker string, ok bool, err error)
	Save(ctx context.Context, marker string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// GlobalStore is the part of *vfs.Store used for unscoped documents.
type GlobalStore interface {
	GetGlobal(ctx context.Context, key string, v any) (bool, error)
	SetGlobal(ctx context.Context, key string, value any) error
	RemoveGlobal(ctx context.Context, key string) error
}

// StoreMarkerStore keeps the marker next to the user data. Expiry is left to
// the token itself.
type StoreMarkerStore struct {
	store GlobalStore
}

func NewStoreMarkerStore(store GlobalStore) *StoreMarkerStore {
	return &StoreMarkerStore{store: store}
}

func (s *StoreMarkerStore) Load(ctx context.Context) (string, bool, error) {
	var marker string
	found, err := s.store.GetGlobal(ctx, MarkerKey, &marker)
	if err != nil {
		return "", false, err
	}
	return marker, found && marker != "", nil
}

func (s *StoreMarkerStore) Save(ctx context.Context, marker string, _ time.Duration) error {
	return s.store.SetGlobal(ctx, MarkerKey, marker)
}

func (s *StoreMarkerStore) Clear(ctx context.Context) error {
	return s.store.RemoveGlobal(ctx, MarkerKey)
}

// RedisMarkerStore keeps the marker in Redis with a TTL, so it disappears on
// its own.
type RedisMarkerStore struct {
	rdb *redis.Client
	key string
}

// NewRedisMarkerStore stores the marker under key; empty means MarkerKey.
func NewRedisMarkerStore(rdb *redis.Client, key string) *RedisMarkerStore {
	if key == "" {
		key = MarkerKey
	}
	return &RedisMarkerStore{rdb: rdb, key: key}
}

func (s *RedisMarkerStore) Load(ctx context.Context) (string, bool, error) {
	marker, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session marker: %w", err)
	}
	return marker, true, nil
}

func (s *RedisMarkerStore) Save(ctx context.Context, marker string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.key, marker, ttl).Err(); err != nil {
		return fmt.Errorf("%w: session marker: %w", common.ErrStorageWrite, err)
	}
	return nil
}

func (s *RedisMarkerStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: session marker: %w", common.ErrStorageWrite, err)
	}
	return nil
}

// NewRedis parses url, connects and pings before returning the client.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// LoadOrCreateSecret returns the signing secret kept under SecretKey,
// generating and saving one on first use.
func LoadOrCreateSecret(ctx context.Context, store GlobalStore) ([]byte, error) {
	var secret string
	found, err := store.GetGlobal(ctx, SecretKey, &secret)
	if err != nil {
		return nil, err
	}
	if found && secret != "" {
		return []byte(secret), nil
	}

	secret, err = common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	if err := store.SetGlobal(ctx, SecretKey, secret); err != nil {
		return nil, err
	}
	return []byte(secret), nil
}
