package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/asetdesk/asetdesk/internal/auth"
	"github.com/asetdesk/asetdesk/internal/shared"
	_ "github.com/asetdesk/asetdesk/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessions)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, sessions
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 7, Username: "budi", Role: "admin", PasswordHash: string(hashed), IsActive: true}
}

func postLogin(t *testing.T, router chi.Router, sessions *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	router, sessions := newAuthRouter(t, &stubRepo{user: activeUser(t, "rahasia-123")})

	res, sess := postLogin(t, router, sessions, `{"username":"budi","password":"rahasia-123"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if got := sess.Principal(); got.Username != "budi" || got.ID != 7 {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if !strings.Contains(res.Body.String(), `"username":"budi"`) {
		t.Fatalf("expected principal in body, got %s", res.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, sessions := newAuthRouter(t, &stubRepo{user: activeUser(t, "rahasia-123")})

	res, sess := postLogin(t, router, sessions, `{"username":"budi","password":"salah-semua"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
	if !sess.Principal().IsZero() {
		t.Fatalf("principal must stay anonymous after failed login")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "rahasia-123")
	user.IsActive = false
	router, sessions := newAuthRouter(t, &stubRepo{user: user})

	res, _ := postLogin(t, router, sessions, `{"username":"budi","password":"rahasia-123"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	router, sessions := newAuthRouter(t, &stubRepo{})

	res, _ := postLogin(t, router, sessions, `{"username":"ab","password":"pendek"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}

	res, _ = postLogin(t, router, sessions, `bukan json`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	router, sessions := newAuthRouter(t, &stubRepo{user: activeUser(t, "rahasia-123")})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetPrincipal(shared.Principal{ID: 7, Username: "budi"})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.Code)
	}
}
