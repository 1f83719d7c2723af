package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/controller"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type Router struct {
	healthController  *controller.HealthController
	authController    *controller.AuthController
	productController *controller.ProductController
	cartController    *controller.CartController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		healthController:  healthController,
		authController:    authController,
		productController: productController,
		cartController:    cartController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(recoverPanic))
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(r.authMiddleware.OptionalAuthenticate())

	router.GET("/", r.healthController.Root)
	router.GET("/health", r.healthController.Health)

	products := router.Group("/products")
	{
		products.GET("", r.productController.ListProducts)
		products.GET("/:id", r.productController.GetProduct)
		products.POST("", r.productController.CreateProduct)
	}

	cart := router.Group("/cart")
	{
		cart.GET("", r.cartController.GetCart)
		cart.POST("/add", r.cartController.AddToCart)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", r.authController.Login)
		auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
	}

	return router
}

// recoverPanic answers a panicking handler with the standard 500 envelope.
func recoverPanic(c *gin.Context, recovered interface{}) {
	middleware.GetLoggerFromContext(c).Error("Recovered from panic", nil, map[string]interface{}{
		"panic": fmt.Sprint(recovered),
	})
	apperrors.InternalError(c, "")
	c.Abort()
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		header := c.Writer.Header()

		switch {
		case origin == "" && allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[origin]; ok || allowAll {
				// Credentials cannot be combined with a literal "*".
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Add("Vary", "Origin")
			}
		}

		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
			header.Set("Access-Control-Allow-Headers", requested)
		} else {
			header.Set("Access-Control-Allow-Headers", "*")
		}
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		header.Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
