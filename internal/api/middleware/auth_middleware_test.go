package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobtrack/internal/auth"
)

func newGuardedRouter(t *testing.T) (*gin.Engine, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := auth.NewAuthService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	router := gin.New()
	router.GET("/protected", AuthMiddleware(svc), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return router, svc
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, _ := newGuardedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No token, authorization denied") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router, _ := newGuardedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("x-auth-token", "garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Token is not valid") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAuthMiddleware_ValidTokenBindsUserID(t *testing.T) {
	router, svc := newGuardedRouter(t)

	token, err := svc.GenerateToken(7)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("x-auth-token", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"userID":7`) {
		t.Fatalf("expected bound user id, got %s", w.Body.String())
	}
}
