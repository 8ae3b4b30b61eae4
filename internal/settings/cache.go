package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

// DefaultTTL is how long a populated cache serves values before refreshing.
const DefaultTTL = 60 * time.Second

// Store is the persistence surface the cache reads through.
type Store interface {
	FindByKey(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	UpdateValue(ctx context.Context, key string, value *string) error
}

// CacheParams configure a Cache.
type CacheParams struct {
	Store  Store
	Logger *logger.Logger
	TTL    time.Duration
	Now    func() time.Time
}

// Cache serves decoded setting values from memory for TTL after the first
// read following a clear or expiry. Store reads happen outside the lock, so
// concurrent misses may each hit the store. A read that started before a
// Clear is returned to its caller but never cached.
type Cache struct {
	store Store
	logg  *logger.Logger
	ttl   time.Duration
	now   func() time.Time

	mu         sync.Mutex
	values     map[string]any
	expiresAt  time.Time
	generation uint64
}

// NewCache builds an empty cache.
func NewCache(params CacheParams) (*Cache, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("settings store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:  params.Store,
		logg:   params.Logger,
		ttl:    ttl,
		now:    now,
		values: map[string]any{},
	}, nil
}

// Get returns the typed value for key, or def when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string, def any) (any, error) {
	value, ok, err := c.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

// Lookup is Get with an explicit presence flag. A value that does not decode
// under its type returns an error wrapping ErrParse.
func (c *Cache) Lookup(ctx context.Context, key string) (any, bool, error) {
	value, ok, gen := c.cached(key)
	if ok {
		return value, true, nil
	}

	setting, err := c.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load setting %s: %w", key, err)
	}

	value, err = Decode(*setting)
	if err != nil {
		return nil, false, err
	}

	c.remember(key, value, gen)
	return value, true, nil
}

// Update writes a new value for an existing key and clears the cache.
// It returns false without writing when the key does not exist.
func (c *Cache) Update(ctx context.Context, key string, value any) (bool, error) {
	setting, err := c.store.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load setting %s: %w", key, err)
	}

	encoded, err := Encode(setting.Type, value)
	if err != nil {
		return false, err
	}
	if err := c.store.UpdateValue(ctx, key, encoded); err != nil {
		return false, fmt.Errorf("update setting %s: %w", key, err)
	}

	c.Clear()
	c.logg.Info(c.logg.WithField(ctx, "setting_key", key), "setting updated")
	return true, nil
}

// GetAll decodes every stored setting, bypassing the cache.
func (c *Cache) GetAll(ctx context.Context) (map[string]any, error) {
	rows, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		value, err := Decode(row)
		if err != nil {
			return nil, err
		}
		out[row.Key] = value
	}
	return out, nil
}

// Clear drops every cached value.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = map[string]any{}
	c.expiresAt = time.Time{}
	c.generation++
}

// cached also returns the generation a miss should be remembered under.
func (c *Cache) cached(key string) (any, bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.now().Before(c.expiresAt) {
		return nil, false, c.generation
	}
	value, ok := c.values[key]
	return value, ok, c.generation
}

// remember records a freshly read value, starting a new validity window when
// the previous one has lapsed. Values read before the latest Clear are dropped.
func (c *Cache) remember(key string, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	now := c.now()
	if !now.Before(c.expiresAt) {
		c.values = map[string]any{}
		c.expiresAt = now.Add(c.ttl)
	}
	c.values[key] = value
}
