// Package settings provides the read-through accessor for the singleton shop
// settings row. A plain per-process cache with no invalidation would let
// processes disagree after an admin update until restart; this accessor
// instead pairs a cached copy with a monotonic version counter that is bumped
// on every write and checked on every read.
package settings

import (
	"context"
	"sync"

	"github.com/hieplq/barber-queue/internal/model"
	"github.com/hieplq/barber-queue/internal/repository"
)

// Store caches the settings row in front of a SettingRepo. Get is safe for
// concurrent use; the version check costs one single-column SELECT, which is
// cheap enough for the ticket-creation hot path while guaranteeing a write is
// visible on the very next read.
type Store struct {
	repo *repository.SettingRepo

	mu     sync.RWMutex
	cached *model.ShopSetting
}

// NewStore returns a Store backed by the given repo.
func NewStore(repo *repository.SettingRepo) *Store { return &Store{repo: repo} }

// Get returns the current settings, serving the cached copy when its version
// still matches the row. A copy is returned so callers can't mutate the cache.
func (s *Store) Get(ctx context.Context) (*model.ShopSetting, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.Version == version {
		out := *cached
		return &out, nil
	}

	fresh, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	// keep the newest copy if another goroutine refreshed concurrently
	if s.cached == nil || s.cached.Version < fresh.Version {
		s.cached = fresh
	}
	out := *s.cached
	s.mu.Unlock()
	return &out, nil
}

// Update writes new settings (bumping the row version) and drops the cached
// copy so the next read refetches.
func (s *Store) Update(ctx context.Context, setting *model.ShopSetting) error {
	if err := s.repo.Update(ctx, setting); err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	return nil
}
