package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stepflow/codestep/vm"
)

// memStore is an in-memory ArtifactStore for tests.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	gets    int
	puts    int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.failGet {
		return nil, false, fmt.Errorf("store unavailable")
	}
	data, ok := s.data[key]
	return data, ok, nil
}

func (s *memStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if _, ok := s.data[key]; !ok {
		s.data[key] = data
	}
	return nil
}

func TestCacheFirstPutWins(t *testing.T) {
	cache := NewCache()
	hash := HashSource("some source")

	first := vm.Synthesize()
	second := vm.Synthesize()

	cache.Put(hash, first)
	cache.Put(hash, second)

	got, ok := cache.Get(hash)
	if !ok {
		t.Fatal("entry missing")
	}
	if got != first {
		t.Error("second Put replaced the first entry")
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", cache.Len())
	}
}

func TestCacheMissingEntry(t *testing.T) {
	cache := NewCache()
	if _, ok := cache.Get(HashSource("never stored")); ok {
		t.Error("Get reported a hit for a missing entry")
	}
}

func TestCacheWriteThrough(t *testing.T) {
	store := newMemStore()
	cache := NewCacheWithStore(store)
	hash := HashSource("persisted")

	cache.Put(hash, vm.Synthesize())

	data, ok := store.data[hash.String()]
	if !ok {
		t.Fatal("artifact not written through to store")
	}
	if _, err := vm.UnmarshalArtifact(data); err != nil {
		t.Errorf("stored bytes do not decode: %v", err)
	}
}

func TestCacheReadThroughPromotes(t *testing.T) {
	store := newMemStore()
	hash := HashSource("persisted earlier")
	data, err := vm.MarshalArtifact(vm.Synthesize())
	if err != nil {
		t.Fatalf("MarshalArtifact: %v", err)
	}
	store.data[hash.String()] = data

	// A fresh cache over the same store finds the entry
	cache := NewCacheWithStore(store)
	artifact, ok := cache.Get(hash)
	if !ok {
		t.Fatal("entry not found via store")
	}
	if entry, err := vm.Load(artifact); err != nil {
		t.Errorf("promoted artifact does not load: %v", err)
	} else if _, err := entry.Invoke(nil); err != nil {
		t.Errorf("promoted artifact does not run: %v", err)
	}

	// Promoted into memory: the second Get skips the store
	before := store.gets
	if _, ok := cache.Get(hash); !ok {
		t.Fatal("promoted entry missing")
	}
	if store.gets != before {
		t.Errorf("second Get hit the store (%d reads)", store.gets-before)
	}
}

func TestCacheCorruptStoreEntry(t *testing.T) {
	store := newMemStore()
	hash := HashSource("corrupt")
	store.data[hash.String()] = []byte{0xDE, 0xAD}

	cache := NewCacheWithStore(store)
	if _, ok := cache.Get(hash); ok {
		t.Error("Get reported a hit for a corrupt stored artifact")
	}
}

func TestCacheStoreFailureDegrades(t *testing.T) {
	store := newMemStore()
	store.failGet = true

	cache := NewCacheWithStore(store)
	hash := HashSource("degraded")

	if _, ok := cache.Get(hash); ok {
		t.Error("Get reported a hit despite store failure")
	}

	// Memory tier still works
	cache.Put(hash, vm.Synthesize())
	if _, ok := cache.Get(hash); !ok {
		t.Error("memory entry missing after store failure")
	}
}

func TestCacheConcurrentPuts(t *testing.T) {
	cache := NewCache()
	hash := HashSource("raced")

	const goroutines = 16
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Put(hash, vm.Synthesize())
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", cache.Len())
	}

	// All readers see the same canonical artifact
	first, _ := cache.Get(hash)
	for i := 0; i < goroutines; i++ {
		if got, _ := cache.Get(hash); got != first {
			t.Fatal("readers observed different artifacts for one hash")
		}
	}
}
