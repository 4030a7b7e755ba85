package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory(time.Minute)
	t.Cleanup(func() { _ = s.Shutdown() })

	ctx := context.Background()
	id := s.Put(ctx, Image{Data: []byte("fake png"), Format: "png"})
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	img, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != "fake png" || img.Format != "png" {
		t.Errorf("got %q/%q", img.Data, img.Format)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemory(time.Minute)
	t.Cleanup(func() { _ = s.Shutdown() })

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemory(5 * time.Millisecond)
	t.Cleanup(func() { _ = s.Shutdown() })

	ctx := context.Background()
	id := s.Put(ctx, Image{Data: []byte("x"), Format: "png"})

	time.Sleep(10 * time.Millisecond)

	_, err := s.Get(ctx, id)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("got %v, want ErrExpired", err)
	}
}

func TestMemoryStoreShutdown(t *testing.T) {
	s := NewMemory(time.Minute)
	if err := s.Shutdown(); err != nil {
		t.Fatal(err)
	}
}
