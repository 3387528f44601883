package repcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Minute, zap.NewNop())
	defer cache.Stop()
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "http://example.com"); ok {
		t.Fatal("empty cache returned a hit")
	}

	want := &core.URLVerdict{URL: "http://example.com", IsMalicious: true}
	cache.Set(ctx, "http://example.com", want)

	got, ok := cache.Get(ctx, "http://example.com")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.URL != want.URL || !got.IsMalicious {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(10*time.Millisecond, zap.NewNop())
	defer cache.Stop()
	ctx := context.Background()

	cache.Set(ctx, "http://example.com", &core.URLVerdict{URL: "http://example.com"})
	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get(ctx, "http://example.com"); ok {
		t.Error("expired entry returned a hit")
	}
}
