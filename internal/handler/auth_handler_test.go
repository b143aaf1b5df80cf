package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/memento-app/memento-auth/internal/config"
	"github.com/memento-app/memento-auth/internal/handler"
	"github.com/memento-app/memento-auth/internal/middleware"
	"github.com/memento-app/memento-auth/internal/recordstore"
	"github.com/memento-app/memento-auth/internal/service"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := recordstore.New(config.RecordStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": filepath.Join(t.TempDir(), "users")},
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureNamespace(t.Context()))

	authService := service.NewAuthService(store, []byte("test-secret"), time.Hour)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	handler.RegisterRoutes(engine.Group("/"), handler.RouterDeps{
		Auth: handler.NewAuthHandler(authService),
	})
	return engine
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, map[string]interface{}{"status": "ok"}, decodeBody(t, resp))
}

func TestSignupSigninProfileFlow(t *testing.T) {
	router := setupRouter(t)

	signup := map[string]string{
		"name":     "Ann",
		"email":    "a@x.com",
		"password": "secret1",
		"dob":      "1990-01-01",
	}
	resp := doJSON(t, router, http.MethodPost, "/signup", signup)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, map[string]interface{}{"ok": true}, decodeBody(t, resp))

	resp = doJSON(t, router, http.MethodPost, "/signup", signup)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "User already exists", decodeBody(t, resp)["detail"])

	resp = doJSON(t, router, http.MethodPost, "/signin", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.Code)
	token, _ := decodeBody(t, resp)["token"].(string)
	require.NotEmpty(t, token)

	resp = doJSON(t, router, http.MethodPost, "/signin", map[string]string{"email": "a@x.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Invalid credentials", decodeBody(t, resp)["detail"])

	resp = doJSON(t, router, http.MethodPost, "/signin", map[string]string{"email": "nobody@x.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Invalid credentials", decodeBody(t, resp)["detail"])

	resp = doJSON(t, router, http.MethodGet, "/profile?email=a@x.com", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, map[string]interface{}{
		"name":  "Ann",
		"email": "a@x.com",
		"dob":   "1990-01-01",
	}, decodeBody(t, resp))
}

func TestProfileUnknownEmail(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/profile?email=nobody@x.com", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Profile not found", decodeBody(t, resp)["detail"])
}

func TestProfileRequiresEmail(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSignupValidation(t *testing.T) {
	router := setupRouter(t)

	cases := []map[string]string{
		// missing name
		{"email": "a@x.com", "password": "secret1", "dob": "1990-01-01"},
		// invalid email shape
		{"name": "Ann", "email": "not-an-email", "password": "p", "dob": "1990-01-01"},
		// missing password
		{"name": "Ann", "email": "a@x.com", "dob": "1990-01-01"},
		// dob not ISO-8601
		{"name": "Ann", "email": "a@x.com", "password": "p", "dob": "01/01/1990"},
	}
	for _, body := range cases {
		resp := doJSON(t, router, http.MethodPost, "/signup", body)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	}

	// No record was created by any rejected payload.
	resp := doJSON(t, router, http.MethodGet, "/profile?email=a@x.com", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestResponsesNeverLeakPasswordHash(t *testing.T) {
	router := setupRouter(t)

	signup := map[string]string{"name": "Ann", "email": "a@x.com", "password": "secret1", "dob": "1990-01-01"}
	resp := doJSON(t, router, http.MethodPost, "/signup", signup)
	require.Equal(t, http.StatusOK, resp.Code)

	for _, r := range []*httptest.ResponseRecorder{
		doJSON(t, router, http.MethodPost, "/signin", map[string]string{"email": "a@x.com", "password": "secret1"}),
		doJSON(t, router, http.MethodGet, "/profile?email=a@x.com", nil),
	} {
		require.NotContains(t, r.Body.String(), "password_hash")
		require.NotContains(t, r.Body.String(), "secret1")
	}
}
