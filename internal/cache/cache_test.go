//go:build unit

package cache

import (
	"bytes"
	"testing"
	"time"

	"go-newsblog-app/internal/config"
)

// newTestCache creates a new in-memory cache for testing.
func newTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()
	c, err := New(config.CacheConfig{FilePath: "file::memory:", TTL: 60})
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	teardown := func() {
		c.Close()
	}
	return c, teardown
}

func TestCache_SetAndGet(t *testing.T) {
	c, teardown := newTestCache(t)
	defer teardown()

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Errorf("expected 'v', got '%s'", got)
	}
}

func TestCache_MissReturnsNil(t *testing.T) {
	c, teardown := newTestCache(t)
	defer teardown()

	got, err := c.Get("absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got '%s'", got)
	}
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	c, teardown := newTestCache(t)
	defer teardown()

	// Set falls back to the default TTL for non-positive values, so write the
	// expired row directly.
	if _, err := c.db.Exec(
		`INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`,
		"k", []byte("v"), time.Now().Add(-time.Hour).Unix(),
	); err != nil {
		t.Fatalf("failed to insert expired row: %v", err)
	}

	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired entry to be a miss, got '%s'", got)
	}
}

func TestCache_OverwriteWins(t *testing.T) {
	c, teardown := newTestCache(t)
	defer teardown()

	if err := c.Set("k", []byte("old"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", []byte("new"), time.Minute); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("expected 'new', got '%s'", got)
	}
}

func TestKey(t *testing.T) {
	testCases := []struct {
		name     string
		kind     Kind
		ns       string
		language string
		editor   bool
		want     string
	}{
		{"reader mode", KindTags, "blog", "en", false, "nb:tags:blog:en:0"},
		{"editor mode", KindTags, "blog", "en", true, "nb:tags:blog:en:1"},
		{"different widget", KindArchive, "blog", "en", false, "nb:archive:blog:en:0"},
		{"different language", KindTags, "blog", "de", false, "nb:tags:blog:de:0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key(tc.kind, tc.ns, tc.language, tc.editor); got != tc.want {
				t.Errorf("Key() = %q, want %q", got, tc.want)
			}
		})
	}

	// Keys must differ across every dimension of the partition.
	seen := map[string]bool{}
	for _, kind := range []Kind{KindArchive, KindAuthors, KindCategories, KindTags} {
		for _, editor := range []bool{false, true} {
			k := Key(kind, "blog", "en", editor)
			if seen[k] {
				t.Errorf("duplicate cache key %q", k)
			}
			seen[k] = true
		}
	}
}
