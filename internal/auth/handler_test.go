package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrms/atlas-hrms/internal/auth"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
	_ "github.com/atlas-hrms/atlas-hrms/testing"
)

type stubRepo struct {
	user        *auth.User
	identity    auth.Identity
	lastLoginAt int64
	sessions    map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) TouchLastLogin(ctx context.Context, userID int64) error {
	s.lastLoginAt = time.Now().Unix()
	return nil
}

func (s *stubRepo) IdentitySnapshot(ctx context.Context, userID int64) (auth.Identity, error) {
	return s.identity, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &auth.User{ID: 7, Email: "mia@example.com", PasswordHash: string(hash), FullName: "Mia", IsActive: true}
}

// commitRecorder commits the session on the first header write, mirroring the
// production session middleware, so the cookie lands in the recorder's header
// snapshot.
type commitRecorder struct {
	*httptest.ResponseRecorder
	sessions  *shared.SessionManager
	ctx       context.Context
	req       *http.Request
	sess      *shared.Session
	committed bool
	commitErr error
}

func (w *commitRecorder) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		w.commitErr = w.sessions.Commit(w.ctx, w.ResponseRecorder, w.req, w.sess)
	}
	w.ResponseRecorder.WriteHeader(statusCode)
}

func (w *commitRecorder) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseRecorder.Write(data)
}

func doLogin(t *testing.T, handler http.HandlerFunc, sessions *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	cw := &commitRecorder{ResponseRecorder: res, sessions: sessions, ctx: ctx, req: req, sess: sess}
	handler(cw, req)
	if !cw.committed {
		cw.commitErr = sessions.Commit(ctx, res, req, sess)
	}
	if cw.commitErr != nil {
		t.Fatalf("commit session: %v", cw.commitErr)
	}
	return res
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{
		user:     activeUser(t, "supersecret"),
		identity: auth.Identity{Roles: []string{"HR"}, UserType: "employee"},
	}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler.HandleLoginForTest, sessions, `{"email":"mia@example.com","password":"supersecret"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		User struct {
			ID       int64    `json:"id"`
			Roles    []string `json:"roles"`
			UserType string   `json:"userType"`
		} `json:"user"`
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.User.ID != 7 {
		t.Fatalf("expected user id 7, got %d", payload.User.ID)
	}
	if payload.User.UserType != "employee" {
		t.Fatalf("expected userType employee, got %q", payload.User.UserType)
	}
	if len(payload.User.Roles) != 1 || payload.User.Roles[0] != "HR" {
		t.Fatalf("unexpected roles: %v", payload.User.Roles)
	}
	if payload.CSRFToken == "" {
		t.Fatalf("expected csrf token in response")
	}
	if repo.lastLoginAt == 0 {
		t.Fatalf("expected last login touch")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected one registered session, got %d", len(repo.sessions))
	}
	if len(res.Result().Cookies()) == 0 {
		t.Fatalf("expected session cookie")
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "supersecret")}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler.HandleLoginForTest, sessions, `{"email":"mia@example.com","password":"wrongwrong"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "invalid email or password") {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "supersecret")
	user.IsActive = false
	repo := &stubRepo{user: user}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler.HandleLoginForTest, sessions, `{"email":"mia@example.com","password":"supersecret"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
	if repo.lastLoginAt != 0 {
		t.Fatalf("inactive login must not touch last login")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &stubRepo{}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler.HandleLoginForTest, sessions, `{"email":"ghost@example.com","password":"supersecret"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{
		user:     activeUser(t, "supersecret"),
		identity: auth.Identity{UserType: "user"},
	}
	handler, sessions := newAuthHandler(t, repo)

	res := doLogin(t, handler.HandleLoginForTest, sessions, `{"email":"mia@example.com","password":"supersecret"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("login failed: %d", res.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range res.Result().Cookies() {
		req.AddCookie(c)
	}
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	out := httptest.NewRecorder()
	cw := &commitRecorder{ResponseRecorder: out, sessions: sessions, ctx: ctx, req: req, sess: sess}
	handler.HandleLogoutForTest(cw, req)
	if !cw.committed {
		cw.commitErr = sessions.Commit(ctx, out, req, sess)
	}
	if cw.commitErr != nil {
		t.Fatalf("commit session: %v", cw.commitErr)
	}
	if out.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", out.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("expected session record removed, got %d", len(repo.sessions))
	}
}
