package pool

import (
	"testing"
)

func TestBufferPoolGet(t *testing.T) {
	bp := NewBufferPool(1024)

	buf := bp.Get(512)
	if len(buf) != 0 {
		t.Fatalf("expected zero-length buffer, got %d", len(buf))
	}
	if cap(buf) < 512 {
		t.Fatalf("expected capacity >= 512, got %d", cap(buf))
	}
	bp.Put(buf)
}

func TestBufferPoolGrowsForLargeRequests(t *testing.T) {
	bp := NewBufferPool(64)

	buf := bp.Get(4096)
	if cap(buf) < 4096 {
		t.Fatalf("expected capacity >= 4096, got %d", cap(buf))
	}

	// Oversized buffers are dropped on Put instead of pinning memory.
	bp.Put(buf)
	if next := bp.Get(1); cap(next) >= 4096 {
		t.Fatalf("oversized buffer was pooled: cap %d", cap(next))
	}
}

func TestBufferPoolReusedBufferIsClean(t *testing.T) {
	bp := NewBufferPool(256)

	buf := bp.Get(16)
	buf = append(buf, []byte("dirty")...)
	bp.Put(buf)

	if got := bp.Get(16); len(got) != 0 {
		t.Fatalf("reused buffer has stale length %d", len(got))
	}
}
