package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// GetCart returns the cart rows of one user
// GET /cart?user_id=
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	raw := c.Query("user_id")
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		log.Warn("Invalid user_id query", map[string]interface{}{
			"user_id": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "user_id query parameter is required")
		return
	}

	items, err := ctrl.cartService.GetCart(c.Request.Context(), uint(userID))
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, err, "cart")
		return
	}

	c.JSON(http.StatusOK, newCartItemResponses(items))
}

// AddToCart creates or increments the row for a user and product
// POST /cart/add
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	userID, productID := *req.UserID, *req.ProductID
	item, err := ctrl.cartService.AddToCart(c.Request.Context(), userID, productID, *req.Quantity)
	if err != nil {
		log.Error("Failed to add to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apperrors.ParseAndRespond(c, err, "cart")
		return
	}

	log.Info("Cart updated", map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	c.JSON(http.StatusOK, newCartItemResponse(item))
}
