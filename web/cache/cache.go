package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/allblack/allblack-panel/logger"

	"github.com/goccy/go-json"
)

const (
	TTLMenu       = 30 * time.Second
	TTLCategories = 5 * time.Minute
)

const (
	KeyMenuAllPrefix = "menu:"
	// KeyMenuVersion is bumped by InvalidateMenu. It lives outside the menu:
	// prefix so the pattern delete keeps it.
	KeyMenuVersion = "menuversion"
)

// menuVersion is the current menu generation, "0" when unknown. Listings
// are cached under it, so a fill that read the store before a write
// committed lands in a generation nobody reads any more.
func menuVersion() string {
	v, err := Get(KeyMenuVersion)
	if err != nil || v == "" {
		return "0"
	}
	return v
}

// MenuKey is the cache key of one filtered active-menu listing.
func MenuKey(category, search string) string {
	return fmt.Sprintf("%sv%s:active:%s:%s", KeyMenuAllPrefix, menuVersion(), category, search)
}

// CategoriesKey is the cache key of the active category set.
func CategoriesKey() string {
	return fmt.Sprintf("%sv%s:categories", KeyMenuAllPrefix, menuVersion())
}

// GetJSON loads key into dest. It returns ErrMiss when the key is absent.
func GetJSON(key string, dest any) error {
	val, err := Get(key)
	if err != nil {
		return err
	}
	if val == "" {
		return ErrMiss
	}
	return json.Unmarshal([]byte(val), dest)
}

func SetJSON(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return Set(key, string(data), expiration)
}

// GetOrSet fills dest from the cache, or from fn on a miss. Cache failures
// never fail the call; fn's result is returned directly.
func GetOrSet[T any](key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	err := GetJSON(key, &cached)
	if err == nil {
		logger.Debug("cache hit:", key)
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		logger.Debug("cache read failed:", key, err)
	}

	value, err := fn()
	if err != nil {
		return value, err
	}
	if err := SetJSON(key, value, expiration); err != nil {
		logger.Debug("cache write failed:", key, err)
	}
	return value, nil
}

// InvalidateMenu drops every cached menu listing and the category set. It
// is called after menu writes commit.
func InvalidateMenu() {
	if GetClient() == nil {
		return
	}
	if _, err := Incr(KeyMenuVersion); err != nil {
		logger.Warning("bump menu cache version failed:", err)
	}
	if err := DeletePattern(KeyMenuAllPrefix + "*"); err != nil {
		logger.Warning("invalidate menu cache failed:", err)
	}
}
