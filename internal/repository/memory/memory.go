package memory

import (
	"clickify/internal/domain"
	"clickify/internal/repository"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemStorage struct {
	mu           sync.RWMutex
	linksBySlug  map[string]*domain.TrackedLink
	clicks       []domain.ClickEvent
	clickCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		linksBySlug: make(map[string]*domain.TrackedLink),
	}
}

// --- Link Methods ---

func (s *MemStorage) SaveLink(_ context.Context, link *domain.TrackedLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.linksBySlug[link.Slug]; exists {
		return repository.ErrSlugExists
	}

	now := time.Now()
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = now
	link.UpdatedAt = now

	stored := *link
	s.linksBySlug[link.Slug] = &stored
	return nil
}

func (s *MemStorage) GetLinkBySlug(_ context.Context, slug string) (*domain.TrackedLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.linksBySlug[slug]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	found := *link
	return &found, nil
}

// DeleteLink removes the link together with its click history.
func (s *MemStorage) DeleteLink(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.linksBySlug[slug]
	if !ok {
		return repository.ErrLinkNotFound
	}
	delete(s.linksBySlug, slug)

	kept := s.clicks[:0]
	for _, click := range s.clicks {
		if click.LinkID != link.ID {
			kept = append(kept, click)
		}
	}
	s.clicks = kept
	return nil
}

// --- Click Methods ---

func (s *MemStorage) CreateClick(_ context.Context, click *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	click.ID = s.clickCounter
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}
	s.clicks = append(s.clicks, *click)
	return nil
}

// Clicks returns a copy of the clicks recorded for a link, oldest first.
func (s *MemStorage) Clicks(linkID uuid.UUID) []domain.ClickEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ClickEvent
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			result = append(result, click)
		}
	}
	return result
}

// ClickCount returns the total number of clicks across all links.
func (s *MemStorage) ClickCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clicks)
}
