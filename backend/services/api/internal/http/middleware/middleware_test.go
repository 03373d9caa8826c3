package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS_AllowList(t *testing.T) {
	handler := CORS([]string{"https://app.voltstart.in"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/chargers", nil)
	req.Header.Set("Origin", "https://app.voltstart.in")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.voltstart.in" {
		t.Errorf("allowed origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed for listed origin")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/chargers", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin allowed: %q", got)
	}
}

func TestCORS_WildcardAndPreflight(t *testing.T) {
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/start", nil)
	req.Header.Set("Origin", "https://any.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" || w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Errorf("headers = %v", w.Header())
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("Authorization header not allowed")
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Strict-Transport-Security", "Referrer-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("%s not set", h)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":100}`)))
	if w.Code != http.StatusOK {
		t.Errorf("small body status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 40))))
	if w.Code != http.StatusRequestEntityTooLarge || decodeEnvelope(t, w).Error.Code != response.CodePayloadTooLarge {
		t.Errorf("declared large body = %d %s", w.Code, w.Body.String())
	}

	// Unknown length: the cap is enforced while reading.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", io.MultiReader(strings.NewReader(strings.Repeat("x", 40)))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("streamed large body = %d", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	})

	core, logs := observer.New(zapcore.ErrorLevel)
	w := httptest.NewRecorder()
	Recovery(zap.New(core), false)(panicky).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	env := decodeEnvelope(t, w)
	if w.Code != http.StatusInternalServerError || env.Error.Code != response.CodeInternalError {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
	if env.Error.Details != nil || strings.Contains(w.Body.String(), "nil map write") {
		t.Errorf("panic leaked in production mode: %s", w.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic not logged")
	}

	w = httptest.NewRecorder()
	Recovery(zap.NewNop(), true)(panicky).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if !strings.Contains(w.Body.String(), "nil map write") {
		t.Errorf("details missing in development mode: %s", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Window: time.Minute, MaxRequests: 3}, zap.NewNop())
	defer rl.Stop()
	handler := rl.Middleware(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/chargers", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		if w := send("10.0.0.1:5000"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := send("10.0.0.1:5001")
	if w.Code != http.StatusTooManyRequests || decodeEnvelope(t, w).Error.Code != response.CodeRateLimited {
		t.Errorf("over limit = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") != "20" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if w := send("10.0.0.2:5000"); w.Code != http.StatusOK {
		t.Errorf("other client limited: %d", w.Code)
	}
	if rl.ClientCount() != 2 {
		t.Errorf("ClientCount = %d", rl.ClientCount())
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Window: time.Minute, MaxRequests: 3, CleanupInterval: time.Hour}, zap.NewNop())
	defer rl.Stop()

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.allow("10.0.0.1")
	now = now.Add(90 * time.Minute)
	rl.allow("10.0.0.2")
	now = now.Add(60 * time.Minute)

	rl.evictIdle()
	if rl.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1", rl.ClientCount())
	}
	rl.Stop()
}

func TestLogging_IncludesUserID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WithClaims(r.Context(), &service.Claims{UserID: "u-1"})
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["user_id"] != "u-1" || fields["path"] != "/api/auth/me" {
		t.Errorf("fields = %v", fields)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v", entries[0].Level)
	}
}

type recordedRequest struct {
	method, route string
	status        int
}

type requestRecorder struct {
	got []recordedRequest
}

func (r *requestRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	r.got = append(r.got, recordedRequest{method, route, status})
}
func (r *requestRecorder) RecordOTPIssued(string)     {}
func (r *requestRecorder) RecordOTPVerification(bool) {}
func (r *requestRecorder) RecordTagRegistration(bool) {}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	rec := &requestRecorder{}
	router := chi.NewRouter()
	router.Use(Metrics(rec))
	router.Get("/api/chargers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chargers/CB-1", nil))

	if len(rec.got) != 1 || rec.got[0] != (recordedRequest{http.MethodGet, "/api/chargers/{id}", http.StatusNotFound}) {
		t.Errorf("recorded = %+v", rec.got)
	}
}
