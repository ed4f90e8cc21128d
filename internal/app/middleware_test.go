package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-hrms/atlas-hrms/internal/app"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
	_ "github.com/atlas-hrms/atlas-hrms/testing"
)

// newTestRouter mounts the full middleware chain in front of a stub login
// handler that mints the CSRF token the way the real one does, plus one
// protected mutating route.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         logger,
		SessionManager: sessions,
		CSRFManager:    csrf,
	}) {
		r.Use(mw)
	}
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		sess.SetUser("7")
		token, err := csrf.EnsureToken(r.Context(), sess)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"csrfToken": token})
	})
	r.Post("/api/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func TestLoginReachableByFreshClient(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200 for fresh login, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.CSRFToken == "" {
		t.Fatalf("expected csrf token in login response")
	}
	if len(res.Result().Cookies()) == 0 {
		t.Fatalf("expected session cookie")
	}
}

func TestMutatingRequestsRequireCSRFToken(t *testing.T) {
	router := newTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	loginRes := httptest.NewRecorder()
	router.ServeHTTP(loginRes, login)
	if loginRes.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", loginRes.Code, loginRes.Body.String())
	}
	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(loginRes.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	withSession := func(req *http.Request) {
		for _, c := range loginRes.Result().Cookies() {
			req.AddCookie(c)
		}
	}

	blocked := httptest.NewRequest(http.MethodPost, "/api/roles", nil)
	withSession(blocked)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, blocked)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 without token, got %d", res.Code)
	}

	allowed := httptest.NewRequest(http.MethodPost, "/api/roles", nil)
	withSession(allowed)
	allowed.Header.Set("X-CSRF-Token", payload.CSRFToken)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, allowed)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with token, got %d: %s", res.Code, res.Body.String())
	}
}
