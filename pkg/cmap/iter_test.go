package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestSetIfAbsent(t *testing.T) {
	m := New[string, string]()

	if !m.SetIfAbsent("node-1", "power") {
		t.Fatal("SetIfAbsent() on empty map = false")
	}
	if m.SetIfAbsent("node-1", "deploy") {
		t.Error("SetIfAbsent() on held key = true")
	}

	// Losing the claim must not overwrite the holder.
	if v, _ := m.Get("node-1"); v != "power" {
		t.Errorf("Get() = %q, want %q", v, "power")
	}

	m.Delete("node-1")
	if !m.SetIfAbsent("node-1", "deploy") {
		t.Error("SetIfAbsent() after Delete = false")
	}
}

func TestSetIfAbsentConcurrent(t *testing.T) {
	m := New[string, int]()

	var wg sync.WaitGroup
	wins := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if m.SetIfAbsent("node-1", n) {
				wins <- n
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []int
	for n := range wins {
		winners = append(winners, n)
	}
	if len(winners) != 1 {
		t.Fatalf("SetIfAbsent() had %d winners, want 1", len(winners))
	}
	if v, _ := m.Get("node-1"); v != winners[0] {
		t.Errorf("Get() = %d, want winner %d", v, winners[0])
	}
}

func TestRange(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	seen := 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return true
	})
	if seen != 10 {
		t.Errorf("Range() visited %d entries, want 10", seen)
	}
}

func TestRangeEarlyStop(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	seen := 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Errorf("Range() visited %d entries after stop, want 3", seen)
	}
}

func TestKeys(t *testing.T) {
	m := New[string, int]()
	want := []string{"alpha", "bravo", "charlie"}
	for i, k := range want {
		m.Set(k, i)
	}

	keys := m.Keys()
	sort.Strings(keys)
	if len(keys) != len(want) {
		t.Fatalf("Keys() length = %d, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestSnapshot(t *testing.T) {
	m := New[string, string]()
	m.Set("node-1", "power")
	m.Set("node-2", "deploy")

	snap := m.Snapshot()
	if len(snap) != 2 || snap["node-1"] != "power" || snap["node-2"] != "deploy" {
		t.Fatalf("Snapshot() = %v", snap)
	}

	// The snapshot is detached from the map.
	m.Delete("node-1")
	if _, ok := snap["node-1"]; !ok {
		t.Error("Snapshot() tracked a later Delete")
	}
}
