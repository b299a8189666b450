// Package durable provides capability.DurableStore implementations: an
// in-memory store for tests and offline CLI use, and a Postgres-backed
// adapter over internal/infrastructure/database/postgres for production.
// DurableStore's two halves -- profile persistence for the Local Catalog
// and cache-entry persistence for the Cache Hierarchy's L3 tier -- share
// one backing connection but address disjoint tables/maps.
package durable

import (
	"context"
	"sync"
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
)

type cacheRow struct {
	value    []byte
	expireAt time.Time
}

func (r cacheRow) expired(now time.Time) bool {
	return !r.expireAt.IsZero() && now.After(r.expireAt)
}

// MemoryStore is an in-process capability.DurableStore. Nothing here
// survives a process restart; it exists for tests and an offline CLI run
// with no Postgres configured.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[ingredient.CanonicalName]*safety.SafetyProfile
	cache    map[string]cacheRow
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[ingredient.CanonicalName]*safety.SafetyProfile),
		cache:    make(map[string]cacheRow),
	}
}

func (m *MemoryStore) UpsertProfile(ctx context.Context, profile *safety.SafetyProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.CanonicalName] = profile.Clone()
	return nil
}

func (m *MemoryStore) LoadAllProfiles(ctx context.Context) ([]*safety.SafetyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*safety.SafetyProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (m *MemoryStore) DeleteProfile(ctx context.Context, name ingredient.CanonicalName) error {
	m.mu.Lock()
	delete(m.profiles, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetCacheEntry(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.cache[key]
	if !ok {
		return nil, false, nil
	}
	if row.expired(time.Now()) {
		delete(m.cache, key)
		return nil, false, nil
	}
	out := make([]byte, len(row.value))
	copy(out, row.value)
	return out, true, nil
}

func (m *MemoryStore) SetCacheEntry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	row := cacheRow{value: stored}
	if ttl > 0 {
		row.expireAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.cache[key] = row
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteCacheEntry(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.cache, key)
	m.mu.Unlock()
	return nil
}

// ProfileCount reports how many profiles are currently stored, surfaced by
// tests asserting on RefreshFromDurable behavior.
func (m *MemoryStore) ProfileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles)
}
