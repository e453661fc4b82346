package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "layout")
	if err != nil || hit {
		t.Fatalf("Get before Set: hit=%v err=%v", hit, err)
	}

	// Set then Get
	if err := c.Set(ctx, "layout", []byte(`{"rows":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != `{"rows":[]}` {
		t.Errorf("Get: hit=%v data=%q", hit, data)
	}

	// Expired entry is a miss
	if err := c.Set(ctx, "expiring", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "expiring"); hit {
		t.Error("expired entry should be a miss")
	}

	// Delete removes, and deleting again is fine
	if err := c.Delete(ctx, "layout"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "layout"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// GraphKey varies with content hash
	gk1 := k.GraphKey("xor", "hash1")
	gk2 := k.GraphKey("xor", "hash2")
	if gk1 == gk2 {
		t.Error("Different content hashes should produce different keys")
	}

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "TB", Spacing: 40})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "LR", Spacing: 40})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Direction: "TB"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Direction: "TB"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	gk := scoped.GraphKey("xor", "hash1")
	if len(gk) < 15 || gk[:9] != "user:123:" {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", gk)
	}
	if gk[9:] != inner.GraphKey("xor", "hash1") {
		t.Errorf("ScopedKeyer should delegate to inner keyer: %s", gk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if key[:7] != "prefix:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
