package locking

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/logging"
	"github.com/redis/go-redis/v9"
	"github.com/samborkent/uuidv7"
	"net"
	"strconv"
	"sync"
	"time"
)

// ErrLocked is returned when another holder owns the lock.
var ErrLocked = errors.New("locking: already locked")

// Locker guards a generation run per meeting.
type Locker interface {
	// Acquire takes the lock for key. The returned function releases it.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// New returns a RedisLocker if a Redis host is configured and a LocalLocker otherwise.
func New(c *config.Configuration, logger logging.Logger) Locker {
	if len(c.Redis.Host) == 0 {
		return NewLocalLocker()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port)),
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ttl := 5 * time.Minute
	if c.Redis.LockTtl != nil {
		ttl = c.Redis.LockTtl.Duration
	}
	return &RedisLocker{Client: client, TTL: ttl, Prefix: "fachschaft:lock:", Logger: logger}
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker holds locks as Redis keys expiring after TTL.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
	Logger logging.Logger
}

// ensure RedisLocker implements Locker
var _ Locker = &RedisLocker{}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuidv7.New().String()

	ok, err := r.Client.SetNX(ctx, k, token, r.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.Client, []string{k}, token).Err(); err != nil && r.Logger != nil {
			r.Logger.LogWarnf(logging.GetLogType("locking", k), "releasing lock failed, it is held until it expires after %v: %v", r.TTL, err)
		}
	}, nil
}

// LocalLocker keeps locks in process memory.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// ensure LocalLocker implements Locker
var _ Locker = &LocalLocker{}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]struct{}{}}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
