// Package repository is the explicit table cache: (source, version) keys map
// to immutable tables, and derived artifacts hang off those keys.
package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Cache kinds used for hit/miss metrics.
const (
	kindTable   = "table"
	kindDerived = "derived"
)

// Key identifies one version of one source. Callers must change Version
// whenever the underlying data changes; content is never inspected.
type Key struct {
	Source  string `json:"source"`
	Version string `json:"version"`
}

func (k Key) String() string { return k.Source + "@" + k.Version }

// Stats is a point-in-time view of the cache.
type Stats struct {
	Tables    int   `json:"tables"`
	Derived   int   `json:"derived"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type entry struct {
	table   *model.Table
	derived map[string]any
}

// Store is safe for concurrent use. Loads and derived builds are
// single-flighted per key.
type Store struct {
	mu          sync.RWMutex
	entries     map[Key]*entry
	versions    map[string][]Key // source -> keys, oldest first
	maxVersions int
	stats       Stats

	group      singleflight.Group
	logger     logger.Logger
	loggerOnce sync.Once
}

// NewStore constructs an empty cache.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:     make(map[Key]*entry),
		versions:    make(map[string][]Key),
		maxVersions: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) log() logger.Logger {
	s.loggerOnce.Do(func() {
		if s.logger == nil {
			s.logger = logger.Named("cache")
		}
	})
	return s.logger
}

// Table returns the cached table for key or runs load once. After a
// successful load older versions of the same source beyond the retention
// limit are evicted with all their derived artifacts. A failed load leaves
// the cache untouched.
func (s *Store) Table(ctx context.Context, key Key, load func(context.Context) (*model.Table, error)) (*model.Table, error) {
	if key.Source == "" {
		return nil, ErrEmptyKey
	}
	if t, ok := s.lookup(key); ok {
		s.hit(kindTable)
		return t, nil
	}

	v, err, _ := s.group.Do("table\x00"+key.String(), func() (any, error) {
		if t, ok := s.lookup(key); ok {
			return t, nil
		}
		s.miss(kindTable)
		t, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("%s: %w", key, ErrNilTable)
		}
		s.put(ctx, key, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Table), nil
}

func (s *Store) lookup(key Key) (*model.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.table, true
}

func (s *Store) put(ctx context.Context, key Key, t *model.Table) {
	s.mu.Lock()
	s.entries[key] = &entry{table: t, derived: make(map[string]any)}
	keys := append(s.versions[key.Source], key)
	var evicted []Key
	for s.maxVersions > 0 && len(keys) > s.maxVersions {
		evicted = append(evicted, keys[0])
		delete(s.entries, keys[0])
		keys = keys[1:]
	}
	s.versions[key.Source] = keys
	s.stats.Evictions += int64(len(evicted))
	s.mu.Unlock()

	for _, k := range evicted {
		metrics.RecordCacheEviction()
		s.log().Info(ctx, "evicted table", logger.String("source", k.Source), logger.String("version", k.Version))
	}
	s.log().Info(ctx, "cached table", logger.String("source", key.Source), logger.String("version", key.Version), logger.Int("rows", t.Len()))
}

// Derived returns the artifact cached under (key, transform) or builds it
// once. The key's table must be cached.
func Derived[T any](ctx context.Context, s *Store, key Key, transform string, build func(context.Context, *model.Table) (T, error)) (T, error) {
	var zero T
	v, err := s.derived(ctx, key, transform, func(ctx context.Context, t *model.Table) (any, error) {
		return build(ctx, t)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s/%s: cached artifact has type %T", key, transform, v)
	}
	return out, nil
}

func (s *Store) derived(ctx context.Context, key Key, transform string, build func(context.Context, *model.Table) (any, error)) (any, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	var (
		v   any
		hit bool
	)
	if ok {
		v, hit = e.derived[transform]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	if hit {
		s.hit(kindDerived)
		return v, nil
	}

	v, err, _ := s.group.Do("derived\x00"+key.String()+"\x00"+transform, func() (any, error) {
		s.mu.RLock()
		cached, hit := e.derived[transform]
		s.mu.RUnlock()
		if hit {
			return cached, nil
		}
		s.miss(kindDerived)
		out, err := build(ctx, e.table)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		// Only cache while the key is still live.
		if cur, ok := s.entries[key]; ok && cur == e {
			e.derived[transform] = out
		}
		s.mu.Unlock()
		return out, nil
	})
	return v, err
}

// Evict drops a key and its derived artifacts.
func (s *Store) Evict(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	s.versions[key.Source] = slices.DeleteFunc(s.versions[key.Source], func(k Key) bool { return k == key })
	if len(s.versions[key.Source]) == 0 {
		delete(s.versions, key.Source)
	}
	s.stats.Evictions++
	metrics.RecordCacheEviction()
	return true
}

// Retain drops every other version of key's source and returns the evicted
// keys. It is a no-op when key itself is not cached.
func (s *Store) Retain(ctx context.Context, key Key) []Key {
	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.mu.Unlock()
		return nil
	}
	var evicted []Key
	for _, k := range s.versions[key.Source] {
		if k != key {
			evicted = append(evicted, k)
			delete(s.entries, k)
		}
	}
	s.versions[key.Source] = []Key{key}
	s.stats.Evictions += int64(len(evicted))
	s.mu.Unlock()

	for _, k := range evicted {
		metrics.RecordCacheEviction()
		s.log().Info(ctx, "evicted table", logger.String("source", k.Source), logger.String("version", k.Version))
	}
	return evicted
}

// Keys lists cached keys.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Version, b.Version))
	})
	return out
}

// Stats returns cache counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.Tables = len(s.entries)
	for _, e := range s.entries {
		st.Derived += len(e.derived)
	}
	return st
}

func (s *Store) hit(kind string) {
	s.mu.Lock()
	s.stats.Hits++
	s.mu.Unlock()
	metrics.RecordCacheHit(kind)
}

func (s *Store) miss(kind string) {
	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()
	metrics.RecordCacheMiss(kind)
}
