package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"jobtrack/internal/auth"
	"jobtrack/internal/database"
)

type fakeStorage struct {
	uploaded map[string][]byte
	presign  map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploaded: map[string][]byte{},
		presign:  map[string]string{},
	}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if v, ok := s.presign[objectKey]; ok {
		return v, nil
	}
	return "https://example.invalid/" + objectKey, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.User{}, &database.Board{}, &database.Job{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	svc, err := auth.NewAuthService("test-secret", 100*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

// newTestRouter 注册完整路由。Redis 指向一个不可达地址：
// 速率限制与事件投递在命令报错后被跳过，不影响被测行为。
func newTestRouter(t *testing.T) (*gin.Engine, *fakeStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	authService := newTestAuthService(t)
	storage := newFakeStorage()
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = redisClient.Close() })

	router := gin.New()
	RegisterRoutes(router, db, nil, authService, redisClient, slog.Default(), storage, "", 0)
	return router, storage
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list %q: %v", w.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, router *gin.Engine, name, email, password string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: expected 200 got %d body=%s", email, w.Code, w.Body.String())
	}
	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("register %s: empty token", email)
	}
	return token
}

func createBoard(t *testing.T, router *gin.Engine, token, name string) uint {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/boards", token, gin.H{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create board: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	id, ok := decodeBody(t, w)["id"].(float64)
	if !ok || id <= 0 {
		t.Fatalf("create board: missing id in %s", w.Body.String())
	}
	return uint(id)
}
