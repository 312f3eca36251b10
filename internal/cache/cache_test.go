package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/flipintegrity/flipscan/pkg/models"
)

func TestSetAndGet(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	product := &models.Product{Name: "Acme Phone X", Price: 45990}
	if err := mc.Set("k1", product, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := mc.Get("k1")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.Name != "Acme Phone X" || got.Price != 45990 {
		t.Errorf("got %q/%d", got.Name, got.Price)
	}

	if _, ok := mc.Get("missing"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestGetExpired(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	mc.Set("k1", &models.Product{Name: "x"}, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := mc.Get("k1"); ok {
		t.Error("expired entry must not be returned")
	}
}

func TestSetUpdatesExisting(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	mc.Set("k1", &models.Product{Price: 100}, time.Minute)
	mc.Set("k1", &models.Product{Price: 200}, time.Minute)

	got, ok := mc.Get("k1")
	if !ok || got.Price != 200 {
		t.Errorf("got %v/%v, want updated entry", got, ok)
	}

	stats := mc.Stats()
	if stats["entries"].(int) != 1 {
		t.Errorf("entries = %v, want 1", stats["entries"])
	}
}

func TestLRUEviction(t *testing.T) {
	mc := NewMemoryCache(3)
	defer mc.Close()

	for i := 0; i < 3; i++ {
		mc.Set(fmt.Sprintf("k%d", i), &models.Product{Price: i}, time.Minute)
	}

	// Touch k0 so k1 becomes the least recently used.
	mc.Get("k0")

	mc.Set("k3", &models.Product{Price: 3}, time.Minute)

	if _, ok := mc.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := mc.Get(key); !ok {
			t.Errorf("%s should have survived eviction", key)
		}
	}
}

func TestDeleteAndClear(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	mc.Set("k1", &models.Product{}, time.Minute)
	mc.Set("k2", &models.Product{}, time.Minute)

	if err := mc.Delete("k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := mc.Get("k1"); ok {
		t.Error("deleted entry still present")
	}
	if err := mc.Delete("k1"); err != nil {
		t.Errorf("deleting an absent key: %v", err)
	}

	if err := mc.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := mc.Get("k2"); ok {
		t.Error("entry survived Clear")
	}
}

func TestStats(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	mc.Set("k1", &models.Product{}, time.Minute)
	mc.Get("k1")
	mc.Get("k1")
	mc.Get("missing")

	stats := mc.Stats()
	if stats["hits"].(uint64) != 2 {
		t.Errorf("hits = %v, want 2", stats["hits"])
	}
	if stats["misses"].(uint64) != 1 {
		t.Errorf("misses = %v, want 1", stats["misses"])
	}
	hitRate := stats["hit_rate"].(float64)
	if hitRate < 66 || hitRate > 67 {
		t.Errorf("hit_rate = %v", hitRate)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		url     string
		session string
		want    string
	}{
		{"https://www.flipkart.com/x/p/itm1", "", "https://www.flipkart.com/x/p/itm1"},
		{"https://www.flipkart.com/x/p/itm1", "personal", "https://www.flipkart.com/x/p/itm1::personal"},
	}

	for _, tt := range tests {
		if got := Key(tt.url, tt.session); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.url, tt.session, got, tt.want)
		}
	}
}
