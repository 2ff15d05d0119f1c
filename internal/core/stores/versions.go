// internal/core/stores/versions.go
package stores

import (
	"fmt"
	"sync"
)

// versionTable tracks a monotonic version counter per cache key. Counters are
// session-scoped: they start at zero on construction and die with the store,
// so a page reload always refetches. A version that moved since the last
// completed fetch marks the cached entry stale.
type versionTable struct {
	mu       sync.Mutex
	versions map[string]uint64
}

func newVersionTable() *versionTable {
	return &versionTable{versions: make(map[string]uint64)}
}

func (t *versionTable) get(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.versions[key]
}

// bump increments and returns the new version
func (t *versionTable) bump(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.versions[key]++
	return t.versions[key]
}

func (t *versionTable) set(key string, v uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.versions[key] = v
}

func (t *versionTable) drop(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.versions, key)
}

func collectionKey(id int64) string {
	return fmt.Sprintf("collection:%d", id)
}

func itemsKey(collectionID int64) string {
	return fmt.Sprintf("items:%d", collectionID)
}

const ordersKey = "orders"
