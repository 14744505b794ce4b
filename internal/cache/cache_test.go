package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type result struct {
	Language string `json:"language"`
	Errors   int    `json:"errors"`
}

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")

	c, err := New(cacheDir, 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}

	c, err = New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestSetAndGet(t *testing.T) {
	c := newCache(t)
	want := result{Language: "python", Errors: 2}

	if err := c.Set("src/app.py", "h1", want); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got result
	if !c.Get("src/app.py", "h1", &got) {
		t.Fatal("Get() should hit")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetMisses(t *testing.T) {
	c := newCache(t)
	if err := c.Set("a.js", "h1", result{Language: "javascript"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got result
	if c.Get("missing.js", "h1", &got) {
		t.Error("Get() should miss for an unknown key")
	}
	if c.Get("a.js", "h2", &got) {
		t.Error("Get() should miss when the hash changed")
	}
	if got != (result{}) {
		t.Errorf("a miss should leave v untouched, got %+v", got)
	}
}

func TestGetCorruptEntry(t *testing.T) {
	c := newCache(t)
	if err := os.WriteFile(c.keyPath("broken"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	var got result
	if c.Get("broken", "", &got) {
		t.Error("Get() should miss for a corrupt entry")
	}
}

func TestInvalidate(t *testing.T) {
	c := newCache(t)
	if err := c.Set("k", "h", 1); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := c.Invalidate("k"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}

	var n int
	if c.Get("k", "h", &n) {
		t.Error("Get() should miss after Invalidate()")
	}
	if err := c.Invalidate("k"); err != nil {
		t.Errorf("Invalidate() of a missing key should not fail: %v", err)
	}
}

func TestClear(t *testing.T) {
	c := newCache(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(k, "h", k); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := os.Stat(c.dir); !os.IsNotExist(err) {
		t.Error("Clear() should remove the cache directory")
	}
}

func TestDisabledCache(t *testing.T) {
	c, _ := New("", 0, false)

	if err := c.Set("k", "h", 1); err != nil {
		t.Errorf("Set() on disabled cache should not error: %v", err)
	}
	var n int
	if c.Get("k", "h", &n) {
		t.Error("Get() on disabled cache should miss")
	}
	if err := c.Invalidate("k"); err != nil {
		t.Errorf("Invalidate() on disabled cache should not error: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on disabled cache should not error: %v", err)
	}
	stats, err := c.GetStats()
	if err != nil || stats.Entries != 0 {
		t.Errorf("GetStats() = %+v, %v", stats, err)
	}
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint("x = 1", "python", "indent=2")

	if len(base) != 64 {
		t.Errorf("Fingerprint() length = %d, want 64 hex chars", len(base))
	}
	if base != Fingerprint("x = 1", "python", "indent=2") {
		t.Error("Fingerprint() should be deterministic")
	}
	if base == Fingerprint("x = 2", "python", "indent=2") {
		t.Error("content change should change the fingerprint")
	}
	if base == Fingerprint("x = 1", "python", "indent=4") {
		t.Error("settings change should change the fingerprint")
	}
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("field boundaries should be part of the fingerprint")
	}
}

func TestHashBytes(t *testing.T) {
	// BLAKE3 of the empty input.
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := HashBytes(nil); got != want {
		t.Errorf("HashBytes(nil) = %s, want %s", got, want)
	}
}

func TestGetStats(t *testing.T) {
	c := newCache(t)
	for _, k := range []string{"a", "b"} {
		if err := c.Set(k, "h", k); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalSize <= 0 {
		t.Errorf("TotalSize = %d, want > 0", stats.TotalSize)
	}
}

func TestTTLExpiration(t *testing.T) {
	c := newCache(t)
	c.ttl = time.Hour

	entry := `{"hash":"h","timestamp":"2000-01-01T00:00:00Z","data":1}`
	path := c.keyPath("old")
	if err := os.WriteFile(path, []byte(entry), 0600); err != nil {
		t.Fatal(err)
	}

	var n int
	if c.Get("old", "h", &n) {
		t.Error("Get() should miss after TTL expires")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	c.ttl = 0
	if err := os.WriteFile(path, []byte(entry), 0600); err != nil {
		t.Fatal(err)
	}
	if !c.Get("old", "h", &n) || n != 1 {
		t.Error("a zero TTL should never expire entries")
	}
}

func TestSpecialCharactersInKey(t *testing.T) {
	c := newCache(t)

	for _, key := range []string{"/path/to/file.go", "file:with:colons", "file with spaces", "unicode/文件/test"} {
		t.Run(key, func(t *testing.T) {
			if err := c.Set(key, "h", key); err != nil {
				t.Fatalf("Set(%q) error: %v", key, err)
			}
			var got string
			if !c.Get(key, "h", &got) || got != key {
				t.Errorf("Get(%q) = %q", key, got)
			}
			if filepath.Dir(c.keyPath(key)) != c.dir {
				t.Errorf("key path for %q escapes the cache directory", key)
			}
		})
	}
}
