package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("null cache Get should always return a miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("null cache should not store data")
	}
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

	if err := c.Set(ctx, "a", []byte("report"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "report" {
		t.Errorf("Get = %q, %v, %v, want report, true, nil", data, hit, err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "keep", []byte("y"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	start := time.Now()
	c.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "keep"); !hit {
		t.Error("entry without ttl should not expire")
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}

	n, err := c.Clear()
	if err != nil || n != 1 {
		t.Errorf("Clear = %d, %v, want 1, nil", n, err)
	}
	if _, hit, _ := c.Get(ctx, "keep"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	start := time.Now()
	c.now = func() time.Time { return start }

	for key, ttl := range map[string]time.Duration{"short": time.Minute, "long": time.Hour, "forever": 0} {
		if err := c.Set(ctx, key, []byte(key), ttl); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	corrupt := c.path("corrupt")
	if err := os.MkdirAll(filepath.Dir(corrupt), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(corrupt, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	c.now = func() time.Time { return start.Add(10 * time.Minute) }
	n, err := c.Prune()
	if err != nil || n != 2 {
		t.Errorf("Prune = %d, %v, want 2, nil", n, err)
	}
	for key, want := range map[string]bool{"short": false, "long": true, "forever": true} {
		if _, hit, _ := c.Get(ctx, key); hit != want {
			t.Errorf("Get(%s) hit = %v, want %v", key, hit, want)
		}
	}
}

func TestFileCacheKeyMismatch(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(ctx, "a", []byte("report"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Move a's file to where b is looked up.
	if err := os.MkdirAll(filepath.Dir(c.path("b")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(c.path("a"), c.path("b")); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "b"); hit || err != nil {
		t.Errorf("Get(b) = %v, %v, want miss", hit, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.ReportKey("doc", ReportKeyOpts{VXVersion: "1.2"})
	k2 := k.ReportKey("doc", ReportKeyOpts{VXVersion: "1.1"})
	k3 := k.ReportKey("other", ReportKeyOpts{VXVersion: "1.2"})
	if k1 == k2 || k1 == k3 {
		t.Error("different documents or options should produce different keys")
	}
	if k1 != k.ReportKey("doc", ReportKeyOpts{VXVersion: "1.2"}) {
		t.Error("ReportKey should be deterministic")
	}
	if got := k.LibraryKey("1.2"); got != "library:1.2" {
		t.Errorf("LibraryKey = %q, want library:1.2", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.LibraryKey("1.1"); got != "staging:library:1.1" {
		t.Errorf("LibraryKey = %q", got)
	}
	key := scoped.ReportKey("doc", ReportKeyOpts{})
	if len(key) < 15 || key[:8] != "staging:" {
		t.Errorf("ReportKey should be prefixed: %s", key)
	}

	if got := NewScopedKeyer(nil, "p:").LibraryKey("1.2"); got != "p:library:1.2" {
		t.Errorf("nil inner: LibraryKey = %q", got)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should return nil")
	}
	err := Transient(ErrNetwork)
	if !IsTransient(err) {
		t.Error("IsTransient should return true for marked error")
	}
	if !errors.Is(err, ErrNetwork) || err.Error() != ErrNetwork.Error() {
		t.Errorf("marked error should wrap the original: %v", err)
	}
	if IsTransient(errMiss) {
		t.Error("IsTransient should return false for unmarked error")
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := b.Do(ctx, func() error {
		calls++
		return errMiss
	})
	if err != errMiss || calls != 1 {
		t.Errorf("permanent: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		if calls < 2 {
			return Transient(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("transient: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		return Transient(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d", err, calls)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := b.Do(cctx, func() error { return Transient(ErrNetwork) }); err != context.Canceled {
		t.Errorf("canceled: err = %v, want context.Canceled", err)
	}

	calls = 0
	_ = Backoff{}.Do(ctx, func() error {
		calls++
		return errMiss
	})
	if calls != 1 {
		t.Errorf("zero backoff: calls = %d, want 1", calls)
	}
}

func TestClassify(t *testing.T) {
	if err := classify(nil); err != nil {
		t.Errorf("classify(nil) = %v", err)
	}
	if err := classify(redis.Nil); !errors.Is(err, errMiss) {
		t.Errorf("classify(redis.Nil) = %v, want errMiss", err)
	}
	other := errors.New("WRONGTYPE")
	if err := classify(other); err != other || IsTransient(err) {
		t.Errorf("classify(other) = %v", err)
	}
}
