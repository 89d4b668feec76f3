package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/pkg/jwt"
)

type mockBlacklist map[string]bool

func (m mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m[jti], nil
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func newAuthRouter(mgr *jwt.Manager, bl Blacklist) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, bl), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"jti":     c.GetString(ContextTokenJTI),
		})
	})
	r.GET("/admin", JWTAuth(mgr, bl), RoleAuth("Admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newJWTManager()
	id := jwt.Identity{UserID: "u1", Email: "u1@example.com", Name: "U1", Role: "Member"}
	access, _ := mgr.GenerateAccessToken(id)
	refresh, _ := mgr.GenerateRefreshToken(id)
	claims, _ := mgr.ParseToken(access)

	r := newAuthRouter(mgr, mockBlacklist{})
	if w := doGet(r, "/me", access); w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}
	if w := doGet(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}
	if w := doGet(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}
	if w := doGet(r, "/me", refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token: expected 401, got %d", w.Code)
	}

	revoked := newAuthRouter(mgr, mockBlacklist{claims.ID: true})
	if w := doGet(revoked, "/me", access); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	mgr := newJWTManager()
	r := newAuthRouter(mgr, nil)

	member, _ := mgr.GenerateAccessToken(jwt.Identity{UserID: "u1", Role: "Member"})
	admin, _ := mgr.GenerateAccessToken(jwt.Identity{UserID: "u2", Role: "Admin"})

	if w := doGet(r, "/admin", member); w.Code != http.StatusForbidden {
		t.Errorf("Member: expected 403, got %d", w.Code)
	}
	if w := doGet(r, "/admin", admin); w.Code != http.StatusOK {
		t.Errorf("Admin: expected 200, got %d", w.Code)
	}
}
