package service

import (
	"context"
	"errors"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
}

type productService struct {
	sessions SessionFactory
}

func NewProductService(sessions SessionFactory) ProductService {
	return &productService{sessions: sessions}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		products, err = repository.NewProductRepository(sess.DB()).FindAll()
		return err
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	var product *model.Product
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		product, err = repository.NewProductRepository(sess.DB()).FindByID(id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

// CreateProduct stores product as given and fills in its ID.
// Price sign and text length are accepted as-is.
func (s *productService) CreateProduct(ctx context.Context, product *model.Product) error {
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		if err := repository.NewProductRepository(sess.DB()).Create(product); err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}
