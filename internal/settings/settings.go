package settings

import (
	"context"
	"sync"

	"github.com/postloom/postloom/internal/store"
)

var (
	cache map[string]string
	mu    sync.RWMutex
)

// Load reads all settings rows into the in-memory cache.
func Load(ctx context.Context, st store.Store) error {
	rows, err := st.Settings(ctx)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	cache = make(map[string]string, len(rows))
	for _, s := range rows {
		cache[s.Name] = s.Value
	}
	return nil
}

// Get retrieves a setting value by name.
func Get(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	return cache[name]
}

// GetOr retrieves a setting value, falling back to def (typically the
// matching environment variable) when the row is absent.
func GetOr(name, def string) string {
	if v := Get(name); v != "" {
		return v
	}
	return def
}

// Refresh reloads settings from the store.
func Refresh(ctx context.Context, st store.Store) error {
	return Load(ctx, st)
}
