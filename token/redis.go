package token

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	pkgerrors "github.com/pkg/errors"
)

const defaultRedisKey = "baqend:connector:token"

// Client is the subset of the redis client used by RedisStorage
type Client interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStorageProps are the properties used to create
// a RedisStorage
type RedisStorageProps struct {
	// Key is the redis key under which the token is kept
	Key string

	// Expiration sets a ttl on the stored token. Zero keeps
	// it indefinitely
	Expiration time.Duration
}

// RedisStorageDeps are the dependencies of a RedisStorage
type RedisStorageDeps struct {
	Logger log.Logger
	Client Client
}

// RedisStorage shares a token between processes through redis. The
// last known value is cached locally so that reads never block on
// the network; updates are written through.
type RedisStorage struct {
	client     Client
	logger     log.Logger
	key        string
	expiration time.Duration

	mu    sync.RWMutex
	token string
}

// NewRedisStorage creates a storage backed by a single redis
// instance at addr
func NewRedisStorage(ctx context.Context, logger log.Logger, addr string, props RedisStorageProps) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedisStorageWithDeps(ctx, &RedisStorageDeps{
		Logger: logger,
		Client: client,
	}, props)
}

// NewRedisStorageWithDeps creates a storage using the provided client
// and loads the token currently stored, if any
func NewRedisStorageWithDeps(ctx context.Context, deps *RedisStorageDeps, props RedisStorageProps) (*RedisStorage, error) {
	key := props.Key
	if len(key) == 0 {
		key = defaultRedisKey
	}

	s := &RedisStorage{
		client:     deps.Client,
		logger:     deps.Logger.ForClass("token", "RedisStorage"),
		key:        key,
		expiration: props.Expiration,
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload reads the token from redis replacing the cached value
func (s *RedisStorage) Reload(ctx context.Context) error {
	token, err := s.client.Get(s.key).Result()
	if err == redis.Nil {
		token = ""
	} else if err != nil {
		return errors.New(errors.ErrTokenStorage,
			pkgerrors.Wrapf(err, "failed to load token from key %s", s.key))
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token implementation of Storage for RedisStorage
func (s *RedisStorage) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SignPath implementation of Storage for RedisStorage
func (s *RedisStorage) SignPath(path string) string {
	return SignPath(path, s.Token())
}

// Update implementation of Storage for RedisStorage. A failure to
// persist the token is logged, the local value is updated regardless
func (s *RedisStorage) Update(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.client.Set(s.key, token, s.expiration).Err(); err != nil {
		s.logger.Warn(context.Background(), "failed to persist token", log.MapFields{
			"call_type": "TokenUpdateFailure",
			"key":       s.key,
		}, errors.New(errors.ErrTokenStorage, err))
	}
}
