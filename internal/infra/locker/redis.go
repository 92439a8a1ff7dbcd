package locker

import (
	"context"
	"fmt"
	"time"

	"franchise_ops_worker/internal/domain/lock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "lock:franchise-ops:%s"
	DefaultRedisTTL = 10 * time.Minute
)

// releaseScript deletes the key only if it still carries this holder's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker grants locks with SET NX PX. The TTL stands in for the session
// scope of a database lock: a crashed holder's lock expires on its own.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, name string) (lock.Lease, bool, error) {
	key := fmt.Sprintf(redisKeyPrefix, name)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("error acquiring redis lock %q: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{rdb: l.rdb, key: key, name: name, token: token}, true, nil
}

type redisLease struct {
	rdb   *redis.Client
	key   string
	name  string
	token string
}

func (r *redisLease) Name() string { return r.name }

func (r *redisLease) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, r.rdb, []string{r.key}, r.token).Int64()
	if err != nil {
		return fmt.Errorf("error releasing redis lock %q: %w", r.name, err)
	}
	if n == 0 {
		return fmt.Errorf("releasing %q: %w", r.name, lock.ErrNotHeld)
	}
	return nil
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}
