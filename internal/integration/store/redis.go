package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/chantierpro/finance/internal/integration/domain"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const (
	redisConnectionsKey = "chantierpro:integrations"
	redisLockKeyPrefix  = "chantierpro:integrations:lock:"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var errLockTTL = errors.New("lock ttl must be positive")

// RedisStore keeps every connection as one field of a single hash.
type RedisStore struct {
	client *redis.Client
	sealer *Sealer
}

func NewRedisStore(client *redis.Client, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, sealer: sealer}
}

func (s *RedisStore) Load(ctx context.Context, provider domain.Provider) (domain.Connection, error) {
	raw, err := s.client.HGet(ctx, redisConnectionsKey, string(provider)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Connection{}, domain.ErrNotConnected
	}
	if err != nil {
		return domain.Connection{}, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Connection{}, err
	}
	return open(s.sealer, rec)
}

func (s *RedisStore) Save(ctx context.Context, conn domain.Connection) error {
	rec, err := seal(s.sealer, conn)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, redisConnectionsKey, string(conn.Provider), raw).Err()
}

func (s *RedisStore) Remove(ctx context.Context, provider domain.Provider) error {
	return s.client.HDel(ctx, redisConnectionsKey, string(provider)).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]domain.Connection, error) {
	fields, err := s.client.HGetAll(ctx, redisConnectionsKey).Result()
	if err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(fields))
	for provider := range fields {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	out := make([]domain.Connection, 0, len(providers))
	for _, provider := range providers {
		var rec record
		if err := json.Unmarshal([]byte(fields[provider]), &rec); err != nil {
			return nil, err
		}
		conn, err := open(s.sealer, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

// RedisLocker holds a SET NX lease per provider, released only by its owner.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	if client == nil {
		return nil
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, provider domain.Provider, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, errLockTTL
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, redisLockKeyPrefix+string(provider), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, provider domain.Provider, token string) error {
	if token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{redisLockKeyPrefix + string(provider)}, token).Err()
}
