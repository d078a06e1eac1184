// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[[]float64](3, time.Minute)

	c.Add("a", []float64{1})
	c.Add("b", []float64{2})
	c.Add("c", []float64{3})

	for _, key := range []string{"a", "b", "c"} {
		if _, found := c.Get(key); !found {
			t.Errorf("Get(%q) found = false, want true", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	got, _ := c.Get("b")
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Get(b) = %v, want [2]", got)
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// 'a' becomes most recently used, leaving 'b' as the eviction candidate
	c.Get("a")
	c.Add("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("Get(b) found = true, want evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("Get(%q) found = false, want true", key)
		}
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", s.Evictions)
	}
}

func TestLRU_Replace(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	c.Add("k", "old")
	c.Add("k", "new")

	if got, _ := c.Get("k"); got != "new" {
		t.Errorf("Get(k) = %q, want %q", got, "new")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int](10, 20*time.Millisecond)

	c.Add("short", 1)
	time.Sleep(40 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Get(short) found = true after TTL, want false")
	}
}

func TestLRU_NoExpiration(t *testing.T) {
	c := NewLRU[int](10, NoExpiration)

	c.Add("forever", 7)
	time.Sleep(10 * time.Millisecond)

	if removed := c.CleanupExpired(); removed != 0 {
		t.Errorf("CleanupExpired() = %d, want 0", removed)
	}
	if got, found := c.Get("forever"); !found || got != 7 {
		t.Errorf("Get(forever) = %d, %v, want 7, true", got, found)
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	c := NewLRU[int](10, 20*time.Millisecond)

	c.Add("a", 1)
	c.Add("b", 2)
	time.Sleep(40 * time.Millisecond)
	c.Add("c", 3)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("Remove(a) second call = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Add("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Size != 1 {
		t.Errorf("Stats() = %+v, want hits=2 misses=1 size=1", s)
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[int](0, 0)
	if c.capacity != defaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, defaultCapacity)
	}
	if c.ttl != defaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, defaultTTL)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](100, time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((w*500 + i) % 150)
				c.Add(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d, want <= 100", c.Len())
	}
}
