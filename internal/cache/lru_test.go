package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := New(2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v.(int) != 2 {
		t.Errorf("expected b=2, got %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a")    // a becomes MRU
	c.Add("c", 3) // evicts "b"

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}

func TestLRURemove(t *testing.T) {
	c := New(2)
	c.Add("a", 1)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be removed")
	}
	c.Remove("ghost") // no-op
}

// Mirrors the geo-lookup pattern: many goroutines doing a Get miss
// followed by an Add on a shared cache.  Run under -race.
func TestLRUConcurrentGetAdd(t *testing.T) {
	c := New(64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := "ip-" + strconv.Itoa(i%100)
				if _, ok := c.Get(key); !ok {
					c.Add(key, g)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("len %d exceeds capacity", c.Len())
	}
}
