package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/controller"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/ikkim/minishop-backend/internal/middleware"
	"github.com/ikkim/minishop-backend/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Router  *gin.Engine
	Gateway *db.Gateway
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gateway, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(gateway)
	})

	require.NoError(t, gateway.Seed(context.Background(), config.SeedConfig{
		AdminEmail:    "admin@minishop.test",
		AdminUsername: "admin",
		AdminPassword: "admin-pw",
	}))

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	authService := service.NewAuthService(gateway, "integration-secret", 15*time.Minute)

	r := router.NewRouter(
		controller.NewHealthController(),
		controller.NewAuthController(authService),
		controller.NewProductController(service.NewProductService(gateway)),
		controller.NewCartController(service.NewCartService(gateway)),
		middleware.NewAuthMiddleware("integration-secret"),
		cfg,
	)

	return &TestServer{Router: r.Setup(), Gateway: gateway}
}

func (s *TestServer) request(t *testing.T, method, path string, payload interface{}, token string) (int, []byte) {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func TestIntegration_ShoppingFlow(t *testing.T) {
	server := setupIntegrationTest(t)

	// Seeded catalog
	code, body := server.request(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, code)
	var products []controller.ProductResponse
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 3)
	assert.Equal(t, "Chaussures", products[0].Name)
	assert.Equal(t, 59.99, products[0].Price)
	assert.Equal(t, "T-shirt", products[1].Name)
	assert.Equal(t, "Casquette", products[2].Name)

	// Account
	code, body = server.request(t, http.MethodPost, "/auth/register", map[string]string{
		"email": "shopper@minishop.test", "username": "shopper", "password": "pw",
	}, "")
	require.Equal(t, http.StatusOK, code)
	var registered controller.RegisterResponse
	require.NoError(t, json.Unmarshal(body, &registered))

	code, body = server.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "shopper@minishop.test", "password": "pw",
	}, "")
	require.Equal(t, http.StatusOK, code)
	var login controller.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	assert.Equal(t, registered.UserID, login.User.ID)

	// Cart, with a token attached that the catalog routes merely log
	for _, qty := range []int{1, 2} {
		code, _ = server.request(t, http.MethodPost, "/cart/add", map[string]interface{}{
			"user_id": registered.UserID, "product_id": products[1].ID, "quantity": qty,
		}, login.Token)
		require.Equal(t, http.StatusOK, code)
	}

	code, body = server.request(t, http.MethodGet, "/cart?user_id="+strconv.FormatUint(uint64(registered.UserID), 10), nil, login.Token)
	require.Equal(t, http.StatusOK, code)
	var cart []controller.CartItemResponse
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart, 1)
	assert.Equal(t, products[1].ID, cart[0].ProductID)
	assert.Equal(t, 3, cart[0].Quantity)
}

func TestIntegration_SeededAdminCanLogIn(t *testing.T) {
	server := setupIntegrationTest(t)

	code, body := server.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "admin@minishop.test", "password": "admin-pw",
	}, "")
	require.Equal(t, http.StatusOK, code)

	var login controller.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))

	code, body = server.request(t, http.MethodGet, "/auth/me", nil, login.Token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "admin@minishop.test")
}
