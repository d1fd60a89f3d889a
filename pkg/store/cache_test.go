package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ecotrace/verity/pkg/analysis"
)

func testCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewResultCache(mr.Addr(), time.Minute)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestCacheKeyDeterministic(t *testing.T) {
	req := &analysis.Request{ContentType: analysis.ContentText, Content: "hello world"}
	if Key(req) != Key(req) {
		t.Error("same request produced different keys")
	}

	other := &analysis.Request{ContentType: analysis.ContentText, Content: "hello worlds"}
	if Key(req) == Key(other) {
		t.Error("different content produced the same key")
	}
}

func TestCacheKeySeparatesContentTypes(t *testing.T) {
	// Identical bytes submitted as text and as image must cache separately.
	text := &analysis.Request{ContentType: analysis.ContentText, Content: "payload"}
	img := &analysis.Request{ContentType: analysis.ContentImage, Payload: []byte("payload")}
	if Key(text) == Key(img) {
		t.Error("content type not part of the cache key")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	key := Key(&analysis.Request{ContentType: analysis.ContentText, Content: "sample"})
	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	stored := &analysis.Result{
		RequestID:      "req-1",
		ContentType:    analysis.ContentText,
		FinalVerdict:   analysis.VerdictSynthetic,
		Likelihood:     0.82,
		AgreementLevel: "high",
	}
	cache.Set(ctx, key, stored)

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after Set")
	}
	if got.RequestID != stored.RequestID || got.Likelihood != stored.Likelihood {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.FinalVerdict != analysis.VerdictSynthetic {
		t.Errorf("verdict = %q, want synthetic", got.FinalVerdict)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	key := Key(&analysis.Request{ContentType: analysis.ContentText, Content: "ephemeral"})
	cache.Set(ctx, key, &analysis.Result{RequestID: "req-2"})

	mr.FastForward(2 * time.Minute)
	if _, ok := cache.Get(ctx, key); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestCacheDropsCorruptEntry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	key := Key(&analysis.Request{ContentType: analysis.ContentText, Content: "corrupt"})
	mr.Set(key, "{not json")

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("corrupt entry reported as a hit")
	}
	if mr.Exists(key) {
		t.Error("corrupt entry not deleted")
	}
}

func TestCacheDisabled(t *testing.T) {
	cache := NewResultCache("", time.Minute)
	if cache.Enabled() {
		t.Error("empty address should disable the cache")
	}

	ctx := context.Background()
	key := Key(&analysis.Request{ContentType: analysis.ContentText, Content: "x"})
	cache.Set(ctx, key, &analysis.Result{RequestID: "req-3"})
	if _, ok := cache.Get(ctx, key); ok {
		t.Error("disabled cache returned a hit")
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close on disabled cache: %v", err)
	}
}
