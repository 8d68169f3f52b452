package service

import (
	"clickify/internal/domain"
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of repository.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetLinkBySlug(ctx context.Context, slug string) (*domain.TrackedLink, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackedLink), args.Error(1)
}

func (m *MockStorage) SaveLink(ctx context.Context, link *domain.TrackedLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockStorage) DeleteLink(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockStorage) CreateClick(ctx context.Context, click *domain.ClickEvent) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

// MockLocator is a mock implementation of geo.Locator
type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Locate(ctx context.Context, ip string) (*string, *string) {
	args := m.Called(ctx, ip)
	var country, city *string
	if v := args.Get(0); v != nil {
		country = v.(*string)
	}
	if v := args.Get(1); v != nil {
		city = v.(*string)
	}
	return country, city
}

func strPtr(s string) *string {
	return &s
}
