package engine

import (
	"sync"

	"github.com/tliron/commonlog"

	"github.com/stepflow/codestep/vm"
)

// ArtifactStore is an optional persistent tier behind the in-memory cache.
// Implementations store encoded artifacts keyed by hex content hash and
// must keep the first value written for a key.
type ArtifactStore interface {
	// Get returns the encoded artifact for a key, or false if absent.
	Get(key string) ([]byte, bool, error)
	// Put stores an encoded artifact if the key is absent.
	Put(key string, data []byte) error
}

// Cache is the content-addressed artifact cache: an explicitly constructed
// service with process lifetime, built once and passed into the engine.
//
// It is unbounded and never evicts; unbounded growth is an accepted
// resource risk. Entries are never replaced: the
// first artifact stored for a hash wins, so concurrent first-writers may
// each compile, but the cache converges to a single stored artifact.
type Cache struct {
	mu      sync.RWMutex
	entries map[ContentHash]*vm.Artifact

	store ArtifactStore // optional persistent tier, may be nil
	log   commonlog.Logger
}

// NewCache creates an in-memory artifact cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[ContentHash]*vm.Artifact),
		log:     commonlog.GetLogger("codestep.cache"),
	}
}

// NewCacheWithStore creates a cache backed by a persistent store. Entries
// found in the store are promoted into memory on first access; new entries
// are written through. Store failures degrade to memory-only operation.
func NewCacheWithStore(store ArtifactStore) *Cache {
	c := NewCache()
	c.store = store
	return c
}

// Get returns the cached artifact for a hash, or false if absent.
func (c *Cache) Get(hash ContentHash) (*vm.Artifact, bool) {
	c.mu.RLock()
	artifact, ok := c.entries[hash]
	c.mu.RUnlock()
	if ok {
		return artifact, true
	}

	if c.store == nil {
		return nil, false
	}

	data, ok, err := c.store.Get(hash.String())
	if err != nil {
		c.log.Errorf("store read for %s: %v", hash, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	artifact, err = vm.UnmarshalArtifact(data)
	if err != nil {
		c.log.Errorf("stored artifact %s is unreadable: %v", hash, err)
		return nil, false
	}

	c.promote(hash, artifact)
	c.mu.RLock()
	artifact = c.entries[hash]
	c.mu.RUnlock()
	return artifact, true
}

// Put stores an artifact for a hash if absent; an existing entry is left
// in place (values for the same hash are expected to be equivalent).
func (c *Cache) Put(hash ContentHash, artifact *vm.Artifact) {
	if !c.promote(hash, artifact) {
		return
	}

	if c.store == nil {
		return
	}
	data, err := vm.MarshalArtifact(artifact)
	if err != nil {
		c.log.Errorf("encode artifact %s: %v", hash, err)
		return
	}
	if err := c.store.Put(hash.String(), data); err != nil {
		c.log.Errorf("store write for %s: %v", hash, err)
	}
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// promote inserts into the memory tier if absent. Returns true if the
// provided artifact became the canonical entry.
func (c *Cache) promote(hash ContentHash, artifact *vm.Artifact) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[hash]; ok {
		return false
	}
	c.entries[hash] = artifact
	return true
}
