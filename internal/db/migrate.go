package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/ikkim/minishop-backend/pkg/util"
)

// Migrate creates any missing tables and indexes.
func (g *Gateway) Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Product{},
		&model.User{},
		&model.CartItem{},
	}

	if err := g.db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// StarterCatalog returns the products inserted into an empty catalog.
func StarterCatalog() []model.Product {
	return []model.Product{
		{Name: "Chaussures", Price: 59.99, Description: "Chaussures de sport confortables"},
		{Name: "T-shirt", Price: 19.99, Description: "T-shirt 100% coton"},
		{Name: "Casquette", Price: 14.99, Description: "Casquette stylée pour l'été"},
	}
}

// ErrSeedAdminPassword rejects an admin seed without a password.
var ErrSeedAdminPassword = errors.New("seed admin password is empty")

// Seed inserts the starter catalog and the admin account, but only when the
// products table is empty. A populated table is left untouched.
func (g *Gateway) Seed(ctx context.Context, cfg config.SeedConfig) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		return ErrSeedAdminPassword
	}

	return g.WithSession(ctx, func(s *Session) error {
		var count int64
		if err := s.DB().Model(&model.Product{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count products: %w", err)
		}

		if count > 0 {
			logger.Info("Products already seeded, skipping...", map[string]interface{}{
				"existing_count": count,
			})
			return nil
		}

		products := StarterCatalog()
		if err := s.DB().Create(&products).Error; err != nil {
			logger.Error("Failed to seed products", err)
			return fmt.Errorf("seed products: %w", err)
		}

		if cfg.AdminEmail != "" {
			hash, err := util.HashPassword(cfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin := model.User{
				Email:        cfg.AdminEmail,
				Username:     cfg.AdminUsername,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
			}
			// The admin may survive a wiped catalog, so match on email.
			if err := s.DB().Where(model.User{Email: cfg.AdminEmail}).FirstOrCreate(&admin).Error; err != nil {
				logger.Error("Failed to seed admin user", err, map[string]interface{}{
					"email": cfg.AdminEmail,
				})
				return fmt.Errorf("seed admin: %w", err)
			}
		}

		if err := s.Commit(); err != nil {
			return err
		}

		logger.Info("Initial data seeded successfully", map[string]interface{}{
			"products": len(products),
			"admin":    cfg.AdminEmail,
		})
		return nil
	})
}
