package service

import (
	"context"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/ikkim/minishop-backend/pkg/logger"
)

type CartService interface {
	GetCart(ctx context.Context, userID uint) ([]model.CartItem, error)
	AddToCart(ctx context.Context, userID, productID uint, quantity int) (*model.CartItem, error)
}

type cartService struct {
	sessions SessionFactory
}

func NewCartService(sessions SessionFactory) CartService {
	return &cartService{sessions: sessions}
}

// GetCart returns the user's items, or an empty slice. The user is not looked up.
func (s *cartService) GetCart(ctx context.Context, userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		items, err = repository.NewCartRepository(sess.DB()).FindByUserID(userID)
		return err
	})
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("User cart fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

// AddToCart adds quantity to the (user, product) row, creating it on first use.
// Neither the product nor the quantity is validated.
func (s *cartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*model.CartItem, error) {
	var item *model.CartItem
	err := s.sessions.WithSession(ctx, func(sess *db.Session) error {
		var err error
		item, err = repository.NewCartRepository(sess.DB()).AddQuantity(userID, productID, quantity)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"quantity":   quantity,
		})
		return nil, err
	}

	logger.Info("Cart item saved", map[string]interface{}{
		"cart_item_id": item.ID,
		"user_id":      userID,
		"product_id":   productID,
		"quantity":     item.Quantity,
	})
	return item, nil
}
