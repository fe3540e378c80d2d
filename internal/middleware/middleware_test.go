package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/models"
	"autoshop-server/internal/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		c.String(http.StatusOK, string(actor.Role)+":"+actor.ID)
	})...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(testSecret), RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin))

	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	forged, _ := utils.GenerateToken("u1", models.RoleAdmin, "other-secret", time.Hour)
	if w := get(r, forged); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", w.Code)
	}

	unknown, _ := utils.GenerateToken("u1", models.Role("doctor"), testSecret, time.Hour)
	if w := get(r, unknown); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown role, got %d", w.Code)
	}

	customer, _ := utils.GenerateToken("u2", models.RoleCustomer, testSecret, time.Hour)
	if w := get(r, customer); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", w.Code)
	}

	staff, _ := utils.GenerateToken("u3", models.RoleStaff, testSecret, time.Hour)
	w := get(r, staff)
	if w.Code != http.StatusOK || w.Body.String() != "staff:u3" {
		t.Fatalf("expected staff actor, got %d %q", w.Code, w.Body.String())
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newEngine(RequestLogger(quietLogger()))

	w := get(r, "")
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected the caller's request id, got %q", got)
	}
}

// countingScripter stands in for Redis and counts per key.
type countingScripter struct {
	counts map[string]int64
	err    error
}

func (s *countingScripter) run(ctx context.Context, keys []string) *redis.Cmd {
	if s.err != nil {
		return redis.NewCmdResult(nil, s.err)
	}
	s.counts[keys[0]]++
	return redis.NewCmdResult(s.counts[keys[0]], nil)
}

func (s *countingScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.run(ctx, keys)
}

func (s *countingScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.run(ctx, keys)
}

func (s *countingScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.run(ctx, keys)
}

func (s *countingScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return s.run(ctx, keys)
}

func (s *countingScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (s *countingScripter) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("sha", nil)
}

func TestRateLimiter(t *testing.T) {
	scripter := &countingScripter{counts: map[string]int64{}}
	limiter := NewRateLimiter(scripter, 2, time.Minute, "test")
	r := newEngine(AuthMiddleware(testSecret), limiter.Middleware(quietLogger()))

	alice, _ := utils.GenerateToken("alice", models.RoleCustomer, testSecret, time.Hour)
	bob, _ := utils.GenerateToken("bob", models.RoleCustomer, testSecret, time.Hour)

	for i := 0; i < 2; i++ {
		if w := get(r, alice); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if w := get(r, alice); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", w.Code)
	}
	if w := get(r, bob); w.Code != http.StatusOK {
		t.Fatalf("other callers keep their own window, got %d", w.Code)
	}
	if scripter.counts["test:user:alice"] != 3 {
		t.Fatalf("unexpected counter %v", scripter.counts)
	}

	scripter.err = errors.New("connection refused")
	if w := get(r, alice); w.Code != http.StatusOK {
		t.Fatalf("expected requests to pass while redis is down, got %d", w.Code)
	}
}
