package repository

import (
	"clickify/internal/domain"
	"context"
	"errors"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrSlugExists   = errors.New("slug already exists")
)

type Storage interface {
	// Link methods
	GetLinkBySlug(ctx context.Context, slug string) (*domain.TrackedLink, error)
	SaveLink(ctx context.Context, link *domain.TrackedLink) error
	DeleteLink(ctx context.Context, slug string) error

	// Click methods
	CreateClick(ctx context.Context, click *domain.ClickEvent) error
}
