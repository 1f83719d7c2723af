package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/ikkim/minishop-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret)
}

func generateTestToken(t *testing.T, userID uint, email, role string, expiry time.Duration) string {
	token, err := util.CreateAccessToken(userID, email, role, testJWTSecret, expiry)
	require.NoError(t, err)
	return token
}

func echoUser(c *gin.Context) {
	userID, ok := GetUserID(c)
	email, _ := GetUserEmail(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ok,
		"user_id":       userID,
		"email":         email,
		"role":          role,
	})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), echoUser)

	token := generateTestToken(t, 1, "test@example.com", "user", 15*time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "user", body["role"])
}

func TestAuthMiddleware_Authenticate_Rejects(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), echoUser)

	expired := generateTestToken(t, 1, "test@example.com", "user", -time.Minute)
	foreign, err := util.CreateAccessToken(1, "test@example.com", "user", "other-secret", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "No header", header: "", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Missing Bearer prefix", header: "invalid-token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Wrong prefix", header: "Basic token123", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Empty token", header: "Bearer ", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Garbage token", header: "Bearer invalid.jwt.token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Wrong secret", header: "Bearer " + foreign, wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Expired", header: "Bearer " + expired, wantCode: "AUTH_TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.OptionalAuthenticate(), echoUser)

	valid := generateTestToken(t, 9, "guest@example.com", "admin", 15*time.Minute)

	tests := []struct {
		name     string
		header   string
		wantAuth bool
	}{
		{name: "No header", header: "", wantAuth: false},
		{name: "Invalid token", header: "Bearer nope", wantAuth: false},
		{name: "Valid token", header: "Bearer " + valid, wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantAuth, decodeBody(t, w)["authenticated"])
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router, _ := setupMiddlewareTest()
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "given-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "given-id", w.Body.String())
}

func TestLoggingMiddleware_LogsAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	logger.Initialize(logger.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() {
		logger.Initialize(logger.Config{Level: "info", Format: "console"})
	})

	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.OptionalAuthenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token := generateTestToken(t, 4, "shopper@example.com", "admin", 15*time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	var completed map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "Request completed" {
			completed = entry
		}
	}
	require.NotNil(t, completed)
	assert.Equal(t, float64(4), completed["user_id"])
	assert.Equal(t, "shopper@example.com", completed["user_email"])
	assert.Equal(t, "admin", completed["user_role"])
}
