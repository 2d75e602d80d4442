package cache

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("categories", []string{"tools", "web-dev"})

	got, ok := c.Get("categories")
	if !ok {
		t.Fatal("Get() returned false for existing key")
	}
	if len(got.([]string)) != 2 {
		t.Errorf("Get() = %v, want two entries", got)
	}
}

func TestMemoryCache_Get_Missing(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("Get() should return false for a missing key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL("short", "v", 30*time.Millisecond)
	if _, ok := c.Get("short"); !ok {
		t.Fatal("Get() should return true before the TTL elapses")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Get() should return false after the TTL elapses")
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get() should return false after Delete()")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Get() should return false after Clear()")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key", "old")
	c.Set("key", "new")

	if got, _ := c.Get("key"); got != "new" {
		t.Errorf("Get() = %v, want %q", got, "new")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n*100+j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("shared")
			}
		}()
	}
	wg.Wait()
}
