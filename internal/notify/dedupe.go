package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers which dedupe tokens have already triggered an emission.
type Deduper interface {
	Seen(ctx context.Context, token string) (bool, error)
	Mark(ctx context.Context, token string) error
}

// MemoryDeduper is a process-local deduper for tests and single-node dev.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

func (d *MemoryDeduper) Seen(_ context.Context, token string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[token]
	return ok, nil
}

func (d *MemoryDeduper) Mark(_ context.Context, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[token] = struct{}{}
	return nil
}

// RedisDeduper shares dedupe state across processes. Tokens expire after TTL
// so the working set stays bounded; a token resurfacing after expiry at worst
// re-sends a receipt, which downstream tolerates.
type RedisDeduper struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDeduper(addr string, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		TTL:    ttl,
	}
}

func (d *RedisDeduper) key(token string) string { return "notify:dedupe:" + token }

func (d *RedisDeduper) Seen(ctx context.Context, token string) (bool, error) {
	n, err := d.Client.Exists(ctx, d.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, token string) error {
	ttl := d.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return d.Client.Set(ctx, d.key(token), "1", ttl).Err()
}
