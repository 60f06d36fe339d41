package auth

import (
	"fmt"
	"sync"
	"testing"
)

func TestVerifyCacheGetSet(t *testing.T) {
	cache := NewVerifyCache(4)

	if _, cached := cache.Get("pass", "hash"); cached {
		t.Fatal("Get() on empty cache reported a hit")
	}

	cache.Set("pass", "hash", true)
	ok, cached := cache.Get("pass", "hash")
	if !cached || !ok {
		t.Errorf("Get() = (%v, %v), want (true, true)", ok, cached)
	}

	// Same password against a different hash is a distinct key.
	if _, cached := cache.Get("pass", "other"); cached {
		t.Error("Get() with different hash reported a hit")
	}

	cache.Set("pass", "hash", false)
	ok, cached = cache.Get("pass", "hash")
	if !cached || ok {
		t.Errorf("Get() after overwrite = (%v, %v), want (false, true)", ok, cached)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestVerifyCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewVerifyCache(3)

	cache.Set("p1", "h", true)
	cache.Set("p2", "h", true)
	cache.Set("p3", "h", true)

	// Touch p1 so p2 becomes the eviction candidate.
	cache.Get("p1", "h")
	cache.Set("p4", "h", true)

	if cache.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", cache.Size())
	}
	if _, cached := cache.Get("p2", "h"); cached {
		t.Error("least recently used entry survived eviction")
	}
	for _, p := range []string{"p1", "p3", "p4"} {
		if _, cached := cache.Get(p, "h"); !cached {
			t.Errorf("entry %q was evicted unexpectedly", p)
		}
	}
}

func TestVerifyCacheDefaultCapacity(t *testing.T) {
	cache := NewVerifyCache(0)
	for i := 0; i < DefaultCacheSize+10; i++ {
		cache.Set(fmt.Sprintf("p%d", i), "h", true)
	}
	if cache.Size() != DefaultCacheSize {
		t.Errorf("Size() = %d, want %d", cache.Size(), DefaultCacheSize)
	}
}

func TestVerifyCacheClear(t *testing.T) {
	cache := NewVerifyCache(4)
	cache.Set("p1", "h", true)
	cache.Set("p2", "h", false)

	cache.Clear()

	if cache.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", cache.Size())
	}
	if _, cached := cache.Get("p1", "h"); cached {
		t.Error("Get() after Clear reported a hit")
	}

	// The cache stays usable after a clear.
	cache.Set("p3", "h", true)
	if _, cached := cache.Get("p3", "h"); !cached {
		t.Error("Set() after Clear did not stick")
	}
}

func TestVerifyCacheConcurrent(t *testing.T) {
	cache := NewVerifyCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("p%d", j%32)
				cache.Set(key, "h", j%2 == 0)
				cache.Get(key, "h")
				if j%50 == 0 && n == 0 {
					cache.Clear()
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() > 16 {
		t.Errorf("Size() = %d exceeds capacity 16", cache.Size())
	}
}
