package memory

import (
	"testing"
	"time"
)

func TestTTLCacheExpiresEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewTTLCache[string, int](4, 0, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v,%v", v, ok)
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if st := c.Stats(); st.Entries != 0 || st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestTTLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTTLCache[string, string](2, 0, time.Hour)
	c.Set("a", "A", 0)
	c.Set("b", "B", 0)
	c.Get("a")
	c.Set("c", "C", 0)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a was used recently and should remain")
	}
}

func TestTTLCacheByteBound(t *testing.T) {
	c := NewTTLCache[string, []byte](10, 10, time.Hour)
	c.Set("a", make([]byte, 6), 6)
	c.Set("b", make([]byte, 6), 6)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should have been evicted by the byte bound")
	}
	if st := c.Stats(); st.Bytes != 6 {
		t.Fatalf("bytes = %d, want 6", st.Bytes)
	}
	c.Purge()
	if st := c.Stats(); st.Entries != 0 || st.Bytes != 0 {
		t.Fatalf("purge left %+v", st)
	}
}
