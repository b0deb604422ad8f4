package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryStoreSignedURLsResolveToSameObject(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("/resumes")
	if err := store.Upload(ctx, "public/ana@x.com-1.pdf", strings.NewReader("%PDF"), 4, "application/pdf"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	first, err := store.SignedURL(ctx, "public/ana@x.com-1.pdf", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	second, _ := store.SignedURL(ctx, "public/ana@x.com-1.pdf", time.Minute)
	if first == second {
		t.Fatal("expected a fresh link per call")
	}

	a, okA := store.Resolve(first)
	b, okB := store.Resolve(second)
	if !okA || !okB || string(a.Data) != string(b.Data) || a.Path != b.Path {
		t.Fatalf("links resolved to different objects: %v %v", a, b)
	}
}

func TestMemoryStoreLinkExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("/resumes")
	now := time.Now()
	store.now = func() time.Time { return now }
	_ = store.Upload(ctx, "p.pdf", strings.NewReader("x"), 1, "application/pdf")

	link, _ := store.SignedURL(ctx, "p.pdf", 60*time.Second)
	now = now.Add(61 * time.Second)
	if _, ok := store.Resolve(link); ok {
		t.Fatal("expired link should not resolve")
	}
}

func TestMemoryStoreDropsExpiredLinksWhenSigning(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("/resumes")
	now := time.Now()
	store.now = func() time.Time { return now }
	_ = store.Upload(ctx, "p.pdf", strings.NewReader("x"), 1, "application/pdf")

	for i := 0; i < 5; i++ {
		if _, err := store.SignedURL(ctx, "p.pdf", time.Minute); err != nil {
			t.Fatalf("sign: %v", err)
		}
	}
	now = now.Add(2 * time.Minute)
	fresh, _ := store.SignedURL(ctx, "p.pdf", time.Minute)

	store.mu.Lock()
	live := len(store.grants)
	store.mu.Unlock()
	if live != 1 {
		t.Fatalf("grants = %d, want only the fresh link", live)
	}
	if _, ok := store.Resolve(fresh); !ok {
		t.Fatal("fresh link should resolve")
	}
}

func TestMemoryStoreMissingObject(t *testing.T) {
	store := NewMemoryStore("/resumes")
	if _, err := store.SignedURL(context.Background(), "nope", time.Minute); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
