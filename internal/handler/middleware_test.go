package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewflow/internal/config"
	"reviewflow/pkg/auth"
	"reviewflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	protected := r.Group("", AuthRequired(cfg))
	protected.GET("/me", func(c *gin.Context) {
		response.Success(c, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	protected.GET("/admin", RoleRequired("admin"), func(c *gin.Context) {
		response.Success(c, nil)
	})
	return r
}

func doRequest(t *testing.T, router *gin.Engine, path, authHeader string) response.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	router := newAuthTestRouter(cfg)

	token, err := auth.GenerateToken("test-secret", 42, "asha", "seller", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid token", "Bearer " + token, response.CodeSuccess},
		{"missing header", "", response.CodeUnauthorized},
		{"not bearer", "Basic abc", response.CodeUnauthorized},
		{"garbage token", "Bearer not.a.token", response.CodeUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, router, "/me", tc.header)
			require.Equal(t, tc.wantCode, resp.Code)
		})
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	router := newAuthTestRouter(cfg)

	token, err := auth.GenerateToken("test-secret", 42, "asha", "seller", -time.Minute)
	require.NoError(t, err)

	resp := doRequest(t, router, "/me", "Bearer "+token)
	require.Equal(t, response.CodeUnauthorized, resp.Code)
}

func TestRoleRequired(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	router := newAuthTestRouter(cfg)

	sellerToken, err := auth.GenerateToken("test-secret", 42, "asha", "seller", time.Hour)
	require.NoError(t, err)
	adminToken, err := auth.GenerateToken("test-secret", 1, "root", "admin", time.Hour)
	require.NoError(t, err)

	resp := doRequest(t, router, "/admin", "Bearer "+sellerToken)
	require.Equal(t, response.CodeForbidden, resp.Code)

	resp = doRequest(t, router, "/admin", "Bearer "+adminToken)
	require.Equal(t, response.CodeSuccess, resp.Code)
}
