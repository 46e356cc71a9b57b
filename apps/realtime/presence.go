package realtime

import (
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Presence tracks which users currently hold a live connection, keyed by
// organization. The state is ephemeral and reconstructible from scratch,
// losing it only degrades the online-count display.
type Presence interface {
	Add(ctx context.Context, organizationID, userID string) error
	Remove(ctx context.Context, organizationID, userID string) error
	Members(ctx context.Context, organizationID string) ([]string, error)
}

const presenceKeyPrefix = "online:"

// RedisPresence stores the per-organization online set in Redis so multiple
// engine instances share one view of who is connected.
type RedisPresence struct {
	client goredis.UniversalClient
}

func NewRedisPresence(client goredis.UniversalClient) *RedisPresence {
	return &RedisPresence{client: client}
}

func (p *RedisPresence) Add(ctx context.Context, organizationID, userID string) error {
	return p.client.SAdd(ctx, presenceKeyPrefix+organizationID, userID).Err()
}

func (p *RedisPresence) Remove(ctx context.Context, organizationID, userID string) error {
	return p.client.SRem(ctx, presenceKeyPrefix+organizationID, userID).Err()
}

func (p *RedisPresence) Members(ctx context.Context, organizationID string) ([]string, error) {
	return p.client.SMembers(ctx, presenceKeyPrefix+organizationID).Result()
}

// MemoryPresence is the single-instance fallback used when Redis is not
// configured, and the fake used in tests.
type MemoryPresence struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{sets: make(map[string]map[string]struct{})}
}

func (p *MemoryPresence) Add(ctx context.Context, organizationID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sets[organizationID] == nil {
		p.sets[organizationID] = make(map[string]struct{})
	}
	p.sets[organizationID][userID] = struct{}{}
	return nil
}

func (p *MemoryPresence) Remove(ctx context.Context, organizationID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sets[organizationID], userID)
	if len(p.sets[organizationID]) == 0 {
		delete(p.sets, organizationID)
	}
	return nil
}

func (p *MemoryPresence) Members(ctx context.Context, organizationID string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	members := make([]string, 0, len(p.sets[organizationID]))
	for userID := range p.sets[organizationID] {
		members = append(members, userID)
	}
	return members, nil
}
