package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver wraps a RoleResolver with a TTL cache so that role lookups
// do not hit the database on every request. Moderation decisions that change
// what a user may do (agent verification, profile deletion) must call
// Invalidate for that user.
type CachedResolver[U comparable] struct {
	inner RoleResolver[U]
	mu    sync.RWMutex
	cache map[U]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	role      Role
	expiresAt time.Time
}

// NewCachedResolver wraps inner; entries live for ttl.
func NewCachedResolver[U comparable](inner RoleResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner: inner,
		cache: make(map[U]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Resolve returns the cached role when fresh, otherwise asks inner.
// Errors are not cached.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Role, error) {
	r.mu.RLock()
	entry, ok := r.cache[user]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.role, nil
	}

	role, err := r.inner.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[user] = cacheEntry{role: role, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return role, nil
}

// Invalidate drops a single subject from the cache.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.cache, user)
	r.mu.Unlock()
}

// InvalidateAll clears the cache, e.g. after role permissions are reseeded.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[U]cacheEntry)
	r.mu.Unlock()
}

// Len returns the number of cached entries, expired ones included.
func (r *CachedResolver[U]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
