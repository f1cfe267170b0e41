package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"messenger_backend/internal/config"
	"messenger_backend/internal/model"
	"messenger_backend/internal/util"
	"messenger_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-test-secret-0123456789ab"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func newAuthRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		util.Success(c, gin.H{"userId": claims.UserID})
	})
	return r
}

func signToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	u := &model.User{Name: "bob", Email: "bob@example.com"}
	u.ID = 7
	token, err := util.GenerateJWT(u, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Message
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := newAuthRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := doRequest(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if msg := responseMessage(t, w); msg != "access denied" {
		t.Errorf("message = %q, want %q", msg, "access denied")
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := newAuthRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.value")
	w := doRequest(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if msg := responseMessage(t, w); msg != "invalid token" {
		t.Errorf("message = %q, want %q", msg, "invalid token")
	}
}

func TestAuthMiddlewareValidHeaderToken(t *testing.T) {
	cfg := testConfig()
	r := newAuthRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg))
	w := doRequest(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	cfg := testConfig()
	r := newAuthRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, cfg), nil)
	w := doRequest(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	cfg := testConfig()
	other := testConfig()
	other.JWT.Secret = "another-secret-entirely-0123456789"

	r := newAuthRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, other))
	w := doRequest(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if msg := responseMessage(t, w); msg != "invalid token" {
		t.Errorf("message = %q, want %q", msg, "invalid token")
	}
}
