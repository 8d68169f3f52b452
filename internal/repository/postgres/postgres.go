package postgres

import (
	"clickify/internal/domain"
	"clickify/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

// SaveLink сохраняет новую ссылку
func (s *PostgresStorage) SaveLink(ctx context.Context, link *domain.TrackedLink) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.TrackedLink{}).Where("slug = ?", link.Slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check slug existence", zap.String("slug", link.Slug), zap.Error(err))
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return repository.ErrSlugExists
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to save link", zap.String("slug", link.Slug), zap.Error(err))
		return fmt.Errorf("failed to save link: %w", err)
	}

	s.log.Info("saved new link", zap.String("slug", link.Slug), zap.String("link_id", link.ID.String()))
	return nil
}

// GetLinkBySlug получает ссылку по slug
func (s *PostgresStorage) GetLinkBySlug(ctx context.Context, slug string) (*domain.TrackedLink, error) {
	var link domain.TrackedLink

	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// DeleteLink удаляет ссылку; клики удаляются каскадно на уровне БД
func (s *PostgresStorage) DeleteLink(ctx context.Context, slug string) error {
	result := s.db.WithContext(ctx).Where("slug = ?", slug).Delete(&domain.TrackedLink{})
	if result.Error != nil {
		s.log.Error("failed to delete link", zap.String("slug", slug), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("deleted link", zap.String("slug", slug))
	return nil
}

// --- Click Methods ---

// CreateClick записывает клик одной вставкой
func (s *PostgresStorage) CreateClick(ctx context.Context, click *domain.ClickEvent) error {
	if err := s.db.WithContext(ctx).Omit("Link").Create(click).Error; err != nil {
		s.log.Error("failed to create click record",
			zap.String("link_id", click.LinkID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create click: %w", err)
	}

	s.log.Debug("recorded click",
		zap.String("link_id", click.LinkID.String()),
		zap.Int64("click_id", click.ID))
	return nil
}

// CountClicks возвращает количество кликов по ссылке
func (s *PostgresStorage) CountClicks(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ClickEvent{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}
