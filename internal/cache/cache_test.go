package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCacheOperations(t *testing.T) {
	c := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		c.Set("token", "abc")
		got, ok := c.Get("token")
		if !ok || got != "abc" {
			t.Errorf("Expected 'abc', got %q (found=%v)", got, ok)
		}
	})

	t.Run("Missing key", func(t *testing.T) {
		if _, ok := c.Get("missing"); ok {
			t.Error("Expected missing key to be absent")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("draftId", "7")
		c.Delete("draftId")
		if _, ok := c.Get("draftId"); ok {
			t.Error("Expected key to be deleted")
		}
		c.Delete("never-set")
	})

	t.Run("SetTo replaces content", func(t *testing.T) {
		c.Set("old", "value")
		c.SetTo(map[string]string{"new": "value"})
		if _, ok := c.Get("old"); ok {
			t.Error("Expected old key to be gone")
		}
		if c.Len() != 1 {
			t.Errorf("Expected 1 item, got %d", c.Len())
		}
	})

	t.Run("SetTo nil leaves a usable cache", func(t *testing.T) {
		c.SetTo(nil)
		c.Set("k", "v")
		if c.Len() != 1 {
			t.Errorf("Expected 1 item, got %d", c.Len())
		}
	})

	t.Run("Clear", func(t *testing.T) {
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("Expected empty cache, got %d items", c.Len())
		}
	})
}

func TestCacheConcurrency(t *testing.T) {
	c := NewCache[int, string]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set(id*200+j, fmt.Sprintf("v-%d", j))
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Get(id*200 + j)
				c.Delete(id*200 + j - 1)
			}
		}(i)
	}
	wg.Wait()
}

func TestRenderedCache(t *testing.T) {
	ClearRendered()

	SetRendered("hash", "excerpt:150", "short text...")
	SetRendered("hash", "source:gruvbox", "highlighted")

	got, ok := GetRendered("hash", "excerpt:150")
	if !ok || got != "short text..." {
		t.Errorf("Expected excerpt entry, got %q (found=%v)", got, ok)
	}
	got, ok = GetRendered("hash", "source:gruvbox")
	if !ok || got != "highlighted" {
		t.Errorf("Expected source entry, got %q (found=%v)", got, ok)
	}

	ClearRendered()
	if _, ok := GetRendered("hash", "excerpt:150"); ok {
		t.Error("Expected rendered cache to be cleared")
	}
}
