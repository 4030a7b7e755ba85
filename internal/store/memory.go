package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/tobyward/chronoflux/internal/config"
	"github.com/tobyward/chronoflux/internal/log"
)

const sweepInterval = time.Minute

type entry struct {
	image     Image
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

func NewMemoryStore(i *do.Injector) (Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return NewMemory(cfg.ImageTTL), nil
}

func NewMemory(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Put(ctx context.Context, img Image) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = entry{image: img, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	log.FromContextOrDiscard(ctx).WithGroup("store").Info("stored image", "id", id, "bytes", len(img.Data))
	return id
}

func (s *MemoryStore) Get(_ context.Context, id string) (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Image{}, ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, id)
		return Image{}, ErrExpired
	}
	return e.image, nil
}

// Shutdown implements do.Shutdownable so the injector stops the janitor.
func (s *MemoryStore) Shutdown() error {
	close(s.stop)
	<-s.done
	return nil
}

func (s *MemoryStore) janitor() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
