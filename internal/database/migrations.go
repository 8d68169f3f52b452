package database

import (
	"clickify/internal/config"
	"clickify/internal/domain"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.TrackedLink{}, // Сначала ссылки
		&domain.ClickEvent{},  // Клики (зависят от ссылок, удаляются каскадно)
	}

	log.Info("migrating database models", zap.Int("total_models", len(models)))

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Info("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}

		log.Info("model migrated successfully", zap.String("model", modelName))
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData создает ссылки из конфигурации, если их еще нет
func SeedData(db *gorm.DB, seeds []config.SeedLink, log *zap.Logger) error {
	log.Info("starting database seeding", zap.Int("seed_links", len(seeds)))

	created := 0
	for _, seed := range seeds {
		var existing domain.TrackedLink
		err := db.Where("slug = ?", seed.Slug).First(&existing).Error
		if err == nil {
			log.Debug("seed link already exists, skipping", zap.String("slug", seed.Slug))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check seed link %s: %w", seed.Slug, err)
		}

		link := domain.TrackedLink{
			Name: seed.Name,
			Slug: seed.Slug,
		}
		if seed.TargetURL != "" {
			target := seed.TargetURL
			link.TargetURL = &target
		}

		if err := db.Create(&link).Error; err != nil {
			log.Error("failed to seed link", zap.String("slug", seed.Slug), zap.Error(err))
			return fmt.Errorf("failed to seed link %s: %w", seed.Slug, err)
		}
		created++
	}

	log.Info("database seeding completed successfully", zap.Int("links_created", created))
	return nil
}
