package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func setupTestGateway(t *testing.T) *db.Gateway {
	gin.SetMode(gin.TestMode)
	gateway, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(gateway)
	})
	return gateway
}

func performJSON(router *gin.Engine, method, path string, payload interface{}, headers ...string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	switch p := payload.(type) {
	case nil:
		body = bytes.NewBuffer(nil)
	case string:
		body = bytes.NewBufferString(p)
	default:
		raw, _ := json.Marshal(p)
		body = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func decodeArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

